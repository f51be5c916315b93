// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package translate

import (
	"context"
	"fmt"
)

// Generator is the text generation call of an AI provider registry.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

const systemPrompt = `You are a professional translator for a sports website.
Translate the HTML document the user sends from %s to %s.

Rules:
- Keep every HTML tag, attribute and attribute value exactly as it is.
- Translate only the text between tags.
- Keep numbers, team names, league names and proper nouns unchanged.
- Keep HTML comments unchanged.
- Reply with the translated HTML only. No explanations, no Markdown, no code fences.`

// AIBackend translates through an LLM.
type AIBackend struct {
	gen Generator
}

// NewAIBackend creates a backend over gen, usually an *ai.Registry.
func NewAIBackend(gen Generator) *AIBackend {
	return &AIBackend{gen: gen}
}

func (b *AIBackend) Translate(ctx context.Context, html, sourceLanguage, targetLanguage string) (string, error) {
	out, err := b.gen.Generate(ctx, fmt.Sprintf(systemPrompt, sourceLanguage, targetLanguage), html)
	if err != nil {
		return "", fmt.Errorf("translate to %s: %w", targetLanguage, err)
	}
	return out, nil
}
