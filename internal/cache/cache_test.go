// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"seogen/internal/models"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "seogen:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestConnectValkey(t *testing.T) {
	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client, err := ConnectValkey(host, port, os.Getenv("VALKEY_PASSWORD"))
	if err != nil {
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}
	defer client.Close()
}

func TestConnectValkeyUnreachable(t *testing.T) {
	if _, err := ConnectValkey("127.0.0.1", "1", ""); err == nil {
		t.Error("expected error for unreachable Valkey")
	}
}

func TestBulkReportRoundTrip(t *testing.T) {
	client := testValkeyClient(t)
	rs := NewReportStore(client, time.Minute)
	ctx := context.Background()

	missing, err := rs.LatestBulkReport(ctx, models.PageTypeLeagueStandings, "en")
	if err != nil || missing != nil {
		t.Fatalf("LatestBulkReport on empty store = %v, %v", missing, err)
	}

	report := &models.BulkReport{
		RunID:     uuid.New(),
		PageType:  models.PageTypeLeagueStandings,
		Language:  "en",
		Total:     2,
		Succeeded: 1,
		Failed:    1,
		Outcomes: []models.EntityOutcome{
			{EntityID: "39", Status: models.OutcomeSucceeded},
			{EntityID: "140", Status: models.OutcomeFailed, Error: "status 500"},
		},
	}
	if err := rs.SaveBulkReport(ctx, report); err != nil {
		t.Fatalf("SaveBulkReport: %v", err)
	}

	got, err := rs.LatestBulkReport(ctx, models.PageTypeLeagueStandings, "en")
	if err != nil {
		t.Fatalf("LatestBulkReport: %v", err)
	}
	if got.RunID != report.RunID || got.Failed != 1 || len(got.Outcomes) != 2 {
		t.Errorf("got %+v", got)
	}

	ttl := client.TTL(ctx, BulkKey(models.PageTypeLeagueStandings, "en")).Val()
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("TTL = %v, want (0, 1m]", ttl)
	}
}

func TestTranslationReportRoundTrip(t *testing.T) {
	client := testValkeyClient(t)
	rs := NewReportStore(client, 0)
	ctx := context.Background()

	report := &models.TranslationReport{
		PageType:     models.PageTypeTeamProfile,
		EntityID:     "39-42",
		BaseLanguage: "en",
		Processed:    2,
		Succeeded:    2,
	}
	if err := rs.SaveTranslationReport(ctx, report); err != nil {
		t.Fatalf("SaveTranslationReport: %v", err)
	}
	got, err := rs.LatestTranslationReport(ctx, models.PageTypeTeamProfile, "39-42")
	if err != nil {
		t.Fatalf("LatestTranslationReport: %v", err)
	}
	if got == nil || got.Processed != 2 {
		t.Errorf("got %+v", got)
	}
}

func TestKeys(t *testing.T) {
	if got := BulkKey(models.PageTypeLeagueStandings, "en"); got != "seogen:bulk:league-standings:en" {
		t.Errorf("BulkKey = %q", got)
	}
	if got := TranslationKey(models.PageTypeTeamProfile, "39-42"); got != "seogen:translation:team-profile:39-42" {
		t.Errorf("TranslationKey = %q", got)
	}
}

func TestNewReportStoreDefaultTTL(t *testing.T) {
	rs := NewReportStore(nil, 0)
	if rs.ttl != DefaultReportTTL {
		t.Errorf("ttl = %v, want %v", rs.ttl, DefaultReportTTL)
	}
}
