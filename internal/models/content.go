// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ContentStatus is the machine-readable health of a rendered text.
type ContentStatus string

const (
	// ContentStatusOK means every variable resolved and, for translated
	// rows, the translation backend answered.
	ContentStatusOK ContentStatus = "ok"
	// ContentStatusFailed marks text that carries an inline error sentinel
	// or is an untranslated fallback copy of the base language.
	ContentStatusFailed ContentStatus = "failed"
)

// Content is the finished SEO text for one entity in one language.
// Rows are overwritten on every regeneration, never versioned.
type Content struct {
	ID        uuid.UUID     `json:"id"`
	PageType  PageType      `json:"page_type"`
	EntityID  string        `json:"entity_id"`
	Language  string        `json:"language"`
	SEOText   string        `json:"seo_text"`
	Status    ContentStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Entity is one concrete instance of a page type. The ID is meaningful only
// to the provider of that page type.
type Entity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
