// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store implements the persistence contracts of the SEO engine on
// PostgreSQL: templates keyed by (page type, language), content keyed by
// (page type, entity, language) and the language registry.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"seogen/internal/models"
)

// TemplateStore handles all SEO template database operations.
type TemplateStore struct {
	db *sql.DB
}

// NewTemplateStore creates a new TemplateStore with the given database connection.
func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

const templateColumns = `id, page_type, language, template_body, body_format, variable_mappings, version, created_at, updated_at`

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row scanner) (*models.Template, error) {
	t := &models.Template{}
	var mappings []byte
	if err := row.Scan(
		&t.ID, &t.PageType, &t.Language, &t.Body, &t.BodyFormat,
		&mappings, &t.Version, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(mappings, &t.Mappings); err != nil {
		return nil, fmt.Errorf("decode variable mappings: %w", err)
	}
	return t, nil
}

// Find returns the template for a (page type, language) pair. Returns nil
// if no template has been saved for it yet.
func (s *TemplateStore) Find(ctx context.Context, pageType models.PageType, language string) (*models.Template, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+templateColumns+`
		FROM seo_templates WHERE page_type = $1 AND language = $2
	`, pageType, language)

	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template: %w", err)
	}
	return t, nil
}

// List returns all templates ordered by page type and language.
func (s *TemplateStore) List(ctx context.Context) ([]models.Template, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+templateColumns+`
		FROM seo_templates
		ORDER BY page_type, language
	`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []models.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

// Save creates the template for its (page type, language) pair or updates
// it in place, bumping the version. Returns the stored row.
func (s *TemplateStore) Save(ctx context.Context, t *models.Template) (*models.Template, error) {
	if t.BodyFormat == "" {
		t.BodyFormat = models.BodyFormatHTML
	}
	mappings := t.Mappings
	if mappings == nil {
		mappings = []models.VariableMapping{}
	}
	encoded, err := json.Marshal(mappings)
	if err != nil {
		return nil, fmt.Errorf("encode variable mappings: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO seo_templates (page_type, language, template_body, body_format, variable_mappings)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (page_type, language) DO UPDATE SET
			template_body = EXCLUDED.template_body,
			body_format = EXCLUDED.body_format,
			variable_mappings = EXCLUDED.variable_mappings,
			version = seo_templates.version + 1,
			updated_at = NOW()
		RETURNING `+templateColumns+`
	`, t.PageType, t.Language, t.Body, t.BodyFormat, encoded)

	saved, err := scanTemplate(row)
	if err != nil {
		return nil, fmt.Errorf("save template: %w", err)
	}
	return saved, nil
}
