// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"seogen/internal/ai"
	"seogen/internal/engine"
	"seogen/internal/models"
)

// LanguageLister lists the language registry.
type LanguageLister interface {
	List(ctx context.Context) ([]models.Language, error)
}

// TranslationProviders selects the AI provider translations run through.
type TranslationProviders interface {
	ActiveName() string
	Available() []string
	SetActive(name string) error
}

// SetLanguages enables the language registry endpoint.
func (h *SEO) SetLanguages(l LanguageLister) {
	h.languages = l
}

// SetTranslationProviders enables the provider selection endpoints.
func (h *SEO) SetTranslationProviders(p TranslationProviders) {
	h.providers = p
}

// ListLanguages returns every language in registry order, active or not.
func (h *SEO) ListLanguages(w http.ResponseWriter, r *http.Request) {
	if h.languages == nil {
		writeError(w, r, fmt.Errorf("%w: language registry not configured", engine.ErrNotFound))
		return
	}
	langs, err := h.languages.List(r.Context())
	if err != nil {
		writeError(w, r, fmt.Errorf("list languages: %w", err))
		return
	}
	if langs == nil {
		langs = []models.Language{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"languages": langs})
}

// providerStatus is the body of the provider endpoints.
type providerStatus struct {
	Active    string   `json:"active"`
	Available []string `json:"available"`
}

// TranslationProviderStatus returns the active and configured providers.
func (h *SEO) TranslationProviderStatus(w http.ResponseWriter, r *http.Request) {
	if h.providers == nil {
		writeError(w, r, fmt.Errorf("%w: translation providers not configured", engine.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, providerStatus{
		Active:    h.providers.ActiveName(),
		Available: h.providers.Available(),
	})
}

// SetTranslationProvider switches the active provider at runtime.
func (h *SEO) SetTranslationProvider(w http.ResponseWriter, r *http.Request) {
	if h.providers == nil {
		writeError(w, r, fmt.Errorf("%w: translation providers not configured", engine.ErrNotFound))
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, r, fmt.Errorf("%w: name is required", engine.ErrValidation))
		return
	}

	if err := h.providers.SetActive(name); err != nil {
		if errors.Is(err, ai.ErrNoProvider) {
			err = fmt.Errorf("%w: %v", engine.ErrValidation, err)
		}
		writeError(w, r, err)
		return
	}
	slog.Info("translation provider switched", "provider", name)
	writeJSON(w, http.StatusOK, providerStatus{
		Active:    h.providers.ActiveName(),
		Available: h.providers.Available(),
	})
}
