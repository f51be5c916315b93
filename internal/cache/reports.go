// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"seogen/internal/models"
)

const (
	bulkKeyPrefix        = "seogen:bulk:"
	translationKeyPrefix = "seogen:translation:"

	// DefaultReportTTL is how long a report stays available.
	DefaultReportTTL = 7 * 24 * time.Hour
)

// ReportStore keeps the latest bulk report per (page type, language) and
// the latest translation report per (page type, entity) in Valkey. Newer
// reports replace older ones.
type ReportStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportStore creates a report store backed by client. A zero ttl uses
// DefaultReportTTL.
func NewReportStore(client *redis.Client, ttl time.Duration) *ReportStore {
	if ttl == 0 {
		ttl = DefaultReportTTL
	}
	return &ReportStore{client: client, ttl: ttl}
}

// BulkKey returns the key of the latest bulk report for a page type and language.
func BulkKey(pageType models.PageType, language string) string {
	return bulkKeyPrefix + string(pageType) + ":" + language
}

// TranslationKey returns the key of the latest translation report of an entity.
func TranslationKey(pageType models.PageType, entityID string) string {
	return translationKeyPrefix + string(pageType) + ":" + entityID
}

// SaveBulkReport stores r as the latest bulk report of its page type and language.
func (s *ReportStore) SaveBulkReport(ctx context.Context, r *models.BulkReport) error {
	return s.set(ctx, BulkKey(r.PageType, r.Language), r)
}

// LatestBulkReport returns the last stored bulk report, or nil if there is none.
func (s *ReportStore) LatestBulkReport(ctx context.Context, pageType models.PageType, language string) (*models.BulkReport, error) {
	var r models.BulkReport
	ok, err := s.get(ctx, BulkKey(pageType, language), &r)
	if err != nil || !ok {
		return nil, err
	}
	return &r, nil
}

// SaveTranslationReport stores r as the latest translation report of its entity.
func (s *ReportStore) SaveTranslationReport(ctx context.Context, r *models.TranslationReport) error {
	return s.set(ctx, TranslationKey(r.PageType, r.EntityID), r)
}

// LatestTranslationReport returns the last stored translation report, or nil.
func (s *ReportStore) LatestTranslationReport(ctx context.Context, pageType models.PageType, entityID string) (*models.TranslationReport, error) {
	var r models.TranslationReport
	ok, err := s.get(ctx, TranslationKey(pageType, entityID), &r)
	if err != nil || !ok {
		return nil, err
	}
	return &r, nil
}

func (s *ReportStore) set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store report %s: %w", key, err)
	}
	return nil
}

func (s *ReportStore) get(ctx context.Context, key string, v any) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load report %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode report %s: %w", key, err)
	}
	return true, nil
}
