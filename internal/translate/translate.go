// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package translate fans a base-language SEO text out into every other
// active language. A failed language gets a marked copy of the base text,
// so after a run every target language has a row.
package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"seogen/internal/engine"
	"seogen/internal/metrics"
	"seogen/internal/models"
	"seogen/internal/provider"
)

// Backend translates HTML between two languages, named in English
// ("Spanish"). It must keep every tag and attribute and answer with HTML only.
type Backend interface {
	Translate(ctx context.Context, html, sourceLanguage, targetLanguage string) (string, error)
}

// ContentStore reads the base text and writes the translations.
type ContentStore interface {
	Find(ctx context.Context, pageType models.PageType, entityID, language string) (*models.Content, error)
	UpsertBatch(ctx context.Context, items []models.Content) error
}

// Languages lists the active languages in display order.
type Languages interface {
	ListActive(ctx context.Context) ([]models.Language, error)
}

// ReportSink keeps the report of the last fan-out per entity.
type ReportSink interface {
	SaveTranslationReport(ctx context.Context, r *models.TranslationReport) error
}

// FanOut translates stored base texts. Target languages are processed one
// after another, paced by a rate limiter.
type FanOut struct {
	languages Languages
	contents  ContentStore
	backend   Backend
	limiter   *rate.Limiter
	reports   ReportSink
	metrics   metrics.Recorder
}

// New creates a fan-out without pacing.
func New(languages Languages, contents ContentStore, backend Backend) *FanOut {
	return &FanOut{
		languages: languages,
		contents:  contents,
		backend:   backend,
		limiter:   rate.NewLimiter(rate.Inf, 1),
		metrics:   metrics.NoopRecorder{},
	}
}

// SetRate limits backend calls to rps per second. Zero or less removes
// the limit.
func (f *FanOut) SetRate(rps float64) {
	if rps <= 0 {
		f.limiter = rate.NewLimiter(rate.Inf, 1)
		return
	}
	f.limiter = rate.NewLimiter(rate.Limit(rps), 1)
}

// SetReportSink configures where reports are kept. Nil disables it.
func (f *FanOut) SetReportSink(s ReportSink) {
	f.reports = s
}

// SetMetrics configures the metrics recorder.
func (f *FanOut) SetMetrics(r metrics.Recorder) {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	f.metrics = r
}

// Run translates the base-language text of one entity into every other
// active language and upserts all target rows in one batch. A cancelled
// ctx aborts the run before anything is written.
func (f *FanOut) Run(ctx context.Context, pageType models.PageType, entityID string) (*models.TranslationReport, error) {
	if pageType == "" || strings.TrimSpace(entityID) == "" {
		return nil, fmt.Errorf("%w: pageType and entityId are required", engine.ErrValidation)
	}
	if !pageType.Valid() {
		return nil, fmt.Errorf("%w: %q", provider.ErrUnsupportedPageType, pageType)
	}

	active, err := f.languages.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active languages: %w", err)
	}
	baseLang, targets, ok := models.SplitBase(active)
	if !ok {
		return nil, fmt.Errorf("%w: no active default language", engine.ErrNotFound)
	}

	base, err := f.contents.Find(ctx, pageType, entityID, baseLang.Code)
	if err != nil {
		return nil, fmt.Errorf("load base content: %w", err)
	}
	if base == nil {
		return nil, fmt.Errorf("%w: no %s content for %s/%s, generate the base language first",
			engine.ErrNotFound, baseLang.Code, pageType, entityID)
	}
	if base.Status == models.ContentStatusFailed {
		slog.Warn("translating base content that carries errors",
			"page_type", pageType, "entity", entityID, "language", baseLang.Code)
	}

	report := &models.TranslationReport{
		PageType:     pageType,
		EntityID:     entityID,
		BaseLanguage: baseLang.Code,
	}
	rows := make([]models.Content, 0, len(targets))

	for _, target := range targets {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("translation fan-out interrupted: %w", err)
		}

		text, err := f.translate(ctx, base.SEOText, baseLang, target)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("translation fan-out interrupted: %w", ctxErr)
		}

		row := models.Content{
			PageType: pageType,
			EntityID: entityID,
			Language: target.Code,
			SEOText:  text,
			Status:   models.ContentStatusOK,
		}
		outcome := models.LanguageOutcome{Language: target.Code, Status: models.OutcomeSucceeded}

		if err != nil {
			slog.Warn("translation failed, storing base language copy",
				"page_type", pageType, "entity", entityID, "language", target.Code, "error", err)
			row.SEOText = Fallback(target.Name, base.SEOText)
			row.Status = models.ContentStatusFailed
			outcome.Status = models.OutcomeFailed
			outcome.Error = err.Error()
			report.Failed++
			f.metrics.IncTranslation(target.Code, metrics.OutcomeFailed)
		} else {
			report.Succeeded++
			f.metrics.IncTranslation(target.Code, metrics.OutcomeSucceeded)
		}

		rows = append(rows, row)
		report.Outcomes = append(report.Outcomes, outcome)
	}

	if len(rows) > 0 {
		if err := f.contents.UpsertBatch(ctx, rows); err != nil {
			return nil, fmt.Errorf("save translations: %w", err)
		}
	}
	report.Processed = len(rows)
	report.FinishedAt = time.Now().UTC()

	if f.reports != nil {
		if err := f.reports.SaveTranslationReport(context.WithoutCancel(ctx), report); err != nil {
			slog.Warn("failed to save translation report", "entity", entityID, "error", err)
		}
	}

	slog.Info("translation fan-out finished",
		"page_type", pageType,
		"entity", entityID,
		"base", baseLang.Code,
		"processed", report.Processed,
		"failed", report.Failed,
	)
	return report, nil
}

// translate calls the backend and cleans its answer. An empty answer is an
// error.
func (f *FanOut) translate(ctx context.Context, html string, source, target models.Language) (string, error) {
	out, err := f.backend.Translate(ctx, html, source.Name, target.Name)
	if err != nil {
		return "", err
	}
	out = StripFences(out)
	if out == "" {
		return "", fmt.Errorf("backend returned an empty translation")
	}
	if !MarkupPreserved(html, out) {
		slog.Warn("translation changed the markup", "source", source.Code, "target", target.Code)
	}
	return out, nil
}

// Fallback is the text stored for a language whose translation failed.
func Fallback(languageName, baseHTML string) string {
	return "<!-- translation to " + languageName + " failed; base language copy -->" + baseHTML
}

// StripFences removes a Markdown code fence wrapped around the answer.
func StripFences(response string) string {
	response = strings.TrimSpace(response)
	if strings.HasPrefix(response, "```") {
		if nl := strings.Index(response, "\n"); nl != -1 {
			response = response[nl+1:]
		} else {
			response = strings.TrimPrefix(response, "```")
		}
		if idx := strings.LastIndex(response, "```"); idx != -1 {
			response = response[:idx]
		}
	}
	return strings.TrimSpace(response)
}
