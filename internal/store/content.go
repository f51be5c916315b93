// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"seogen/internal/models"
)

// ContentStore handles rendered SEO text. Every write is an insert-or-replace
// on the (page_type, entity_id, language) key; concurrent writers to the
// same key resolve last-writer-wins.
type ContentStore struct {
	db *sql.DB
}

// NewContentStore creates a new ContentStore with the given database connection.
func NewContentStore(db *sql.DB) *ContentStore {
	return &ContentStore{db: db}
}

const contentColumns = `id, page_type, entity_id, language, seo_text, status, created_at, updated_at`

const upsertContentSQL = `
	INSERT INTO seo_content (page_type, entity_id, language, seo_text, status)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (page_type, entity_id, language) DO UPDATE SET
		seo_text = EXCLUDED.seo_text,
		status = EXCLUDED.status,
		updated_at = NOW()
	RETURNING ` + contentColumns

func scanContent(row scanner) (*models.Content, error) {
	c := &models.Content{}
	err := row.Scan(
		&c.ID, &c.PageType, &c.EntityID, &c.Language,
		&c.SEOText, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

// Find retrieves the content row for a key. Returns nil if not found.
func (s *ContentStore) Find(ctx context.Context, pageType models.PageType, entityID, language string) (*models.Content, error) {
	c, err := scanContent(s.db.QueryRowContext(ctx, `
		SELECT `+contentColumns+`
		FROM seo_content
		WHERE page_type = $1 AND entity_id = $2 AND language = $3
	`, pageType, entityID, language))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content: %w", err)
	}
	return c, nil
}

// ListByEntity returns every language rendering of one entity, ordered by language.
func (s *ContentStore) ListByEntity(ctx context.Context, pageType models.PageType, entityID string) ([]models.Content, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+contentColumns+`
		FROM seo_content
		WHERE page_type = $1 AND entity_id = $2
		ORDER BY language
	`, pageType, entityID)
	if err != nil {
		return nil, fmt.Errorf("list content by entity: %w", err)
	}
	defer rows.Close()

	var items []models.Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// Upsert writes one content row and returns the stored version.
func (s *ContentStore) Upsert(ctx context.Context, c *models.Content) (*models.Content, error) {
	stored, err := scanContent(s.db.QueryRowContext(ctx, upsertContentSQL,
		c.PageType, c.EntityID, c.Language, c.SEOText, statusOrOK(c.Status),
	))
	if err != nil {
		return nil, fmt.Errorf("upsert content: %w", err)
	}
	return stored, nil
}

// UpsertBatch writes all rows in a single transaction: either every row is
// stored or none is.
func (s *ContentStore) UpsertBatch(ctx context.Context, items []models.Content) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertContentSQL)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, c := range items {
		if _, err := stmt.ExecContext(ctx,
			c.PageType, c.EntityID, c.Language, c.SEOText, statusOrOK(c.Status),
		); err != nil {
			return fmt.Errorf("upsert content %s/%s/%s: %w", c.PageType, c.EntityID, c.Language, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit content batch: %w", err)
	}
	return nil
}

func statusOrOK(s models.ContentStatus) models.ContentStatus {
	if s == "" {
		return models.ContentStatusOK
	}
	return s
}
