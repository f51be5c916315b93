// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models holds the records shared by the store, engine and
// translation packages.
package models

import (
	"time"

	"github.com/google/uuid"
)

// PageType identifies a class of pages that share one template shape but
// render for many entities.
type PageType string

const (
	PageTypeLeagueStandings PageType = "league-standings"
	PageTypeTeamProfile     PageType = "team-profile"
)

// PageTypes lists every page type the engine knows about, in display order.
var PageTypes = []PageType{
	PageTypeLeagueStandings,
	PageTypeTeamProfile,
}

// Valid reports whether p is one of the known page types.
func (p PageType) Valid() bool {
	for _, pt := range PageTypes {
		if p == pt {
			return true
		}
	}
	return false
}

// BodyFormat tells the engine how to treat a template body after the
// placeholders have been substituted.
type BodyFormat string

const (
	BodyFormatHTML     BodyFormat = "html"
	BodyFormatMarkdown BodyFormat = "markdown"
)

// VariableMapping binds a placeholder name to the expression that extracts
// its value from an entity's context document.
type VariableMapping struct {
	Variable   string `json:"variable"`
	Expression string `json:"expression"`
}

// Template is the master SEO template for one (page type, language) pair.
// Body contains {variable} placeholders; Mappings is ordered and variable
// names are unique within it.
type Template struct {
	ID         uuid.UUID         `json:"id"`
	PageType   PageType          `json:"page_type"`
	Language   string            `json:"language"`
	Body       string            `json:"template_body"`
	BodyFormat BodyFormat        `json:"body_format"`
	Mappings   []VariableMapping `json:"variable_mappings"`
	Version    int               `json:"version"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}
