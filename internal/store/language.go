// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"seogen/internal/models"
)

// LanguageStore reads the language registry.
type LanguageStore struct {
	db *sql.DB
}

// NewLanguageStore creates a new LanguageStore with the given database connection.
func NewLanguageStore(db *sql.DB) *LanguageStore {
	return &LanguageStore{db: db}
}

// ListActive returns the active languages in registry order.
func (s *LanguageStore) ListActive(ctx context.Context) ([]models.Language, error) {
	return s.query(ctx, `
		SELECT code, name, native_name, is_active, is_default, position
		FROM languages WHERE is_active = TRUE
		ORDER BY position, code
	`)
}

// List returns every language, active or not, in registry order.
func (s *LanguageStore) List(ctx context.Context) ([]models.Language, error) {
	return s.query(ctx, `
		SELECT code, name, native_name, is_active, is_default, position
		FROM languages
		ORDER BY position, code
	`)
}

func (s *LanguageStore) query(ctx context.Context, q string) ([]models.Language, error) {
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}
	defer rows.Close()

	var langs []models.Language
	for rows.Next() {
		var l models.Language
		if err := rows.Scan(&l.Code, &l.Name, &l.NativeName, &l.IsActive, &l.IsDefault, &l.Position); err != nil {
			return nil, fmt.Errorf("scan language: %w", err)
		}
		langs = append(langs, l)
	}
	return langs, rows.Err()
}
