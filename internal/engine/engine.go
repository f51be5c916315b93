// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package engine generates SEO texts from master templates. For one entity
// it fetches live data through the page type's provider, evaluates every
// variable mapping against that data, substitutes the values into the
// template and stores the result keyed by (page type, entity, language).
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"seogen/internal/expr"
	"seogen/internal/markdown"
	"seogen/internal/metrics"
	"seogen/internal/models"
	"seogen/internal/provider"
)

// TemplateFinder loads persisted templates. Find returns (nil, nil) when
// no template exists.
type TemplateFinder interface {
	Find(ctx context.Context, pageType models.PageType, language string) (*models.Template, error)
}

// ContentWriter stores rendered texts.
type ContentWriter interface {
	Upsert(ctx context.Context, c *models.Content) (*models.Content, error)
}

// Providers resolves the provider of a page type.
type Providers interface {
	Lookup(pageType models.PageType) (provider.Provider, error)
}

// Evaluator evaluates one variable expression. It never fails; errors come
// back as sentinel strings recognized by expr.IsError.
type Evaluator interface {
	Evaluate(ctx context.Context, expression string, data []byte) string
}

// BulkReportSink keeps the report of the last bulk run.
type BulkReportSink interface {
	SaveBulkReport(ctx context.Context, r *models.BulkReport) error
}

// BulkOptions shapes the outbound request profile of a bulk run.
type BulkOptions struct {
	// BatchSize is the number of entities per batch.
	BatchSize int
	// BatchDelay is the pause between two batches.
	BatchDelay time.Duration
	// Concurrency bounds the entities generated at once inside a batch.
	// 1 processes entities sequentially.
	Concurrency int
}

// DefaultBulkOptions processes 10 entities per batch, one at a time, with a
// one second pause between batches.
var DefaultBulkOptions = BulkOptions{BatchSize: 10, BatchDelay: time.Second, Concurrency: 1}

// Engine runs the generation pipeline. It is safe for concurrent use once
// configured.
type Engine struct {
	templates TemplateFinder
	contents  ContentWriter
	providers Providers
	eval      Evaluator

	bulk    BulkOptions
	reports BulkReportSink
	metrics metrics.Recorder

	// sleep waits between bulk batches. Replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates an engine with default bulk options and no metrics.
func New(templates TemplateFinder, contents ContentWriter, providers Providers, eval Evaluator) *Engine {
	return &Engine{
		templates: templates,
		contents:  contents,
		providers: providers,
		eval:      eval,
		bulk:      DefaultBulkOptions,
		metrics:   metrics.NoopRecorder{},
		sleep:     sleepCtx,
	}
}

// SetBulkOptions overrides the bulk batching. Non-positive fields keep
// their defaults; a zero delay is allowed.
func (e *Engine) SetBulkOptions(o BulkOptions) {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBulkOptions.BatchSize
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultBulkOptions.Concurrency
	}
	if o.BatchDelay < 0 {
		o.BatchDelay = 0
	}
	e.bulk = o
}

// SetReportSink configures where bulk reports are kept. Nil disables it.
func (e *Engine) SetReportSink(s BulkReportSink) {
	e.reports = s
}

// SetMetrics configures the metrics recorder.
func (e *Engine) SetMetrics(r metrics.Recorder) {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	e.metrics = r
}

// TestInput is an ad hoc template run against the first entity of a page
// type. Nothing is persisted.
type TestInput struct {
	PageType   models.PageType          `json:"pageType"`
	Template   string                   `json:"template"`
	BodyFormat models.BodyFormat        `json:"bodyFormat,omitempty"`
	Mappings   []models.VariableMapping `json:"variableMappings"`
}

// TestResult is the outcome of a test run.
type TestResult struct {
	GeneratedHTML      string            `json:"generatedHtml"`
	ExtractedVariables map[string]string `json:"extractedVariables"`
	TestEntityName     string            `json:"testEntityName"`
	TestEntityID       string            `json:"testEntityId"`
}

// Test renders the supplied template for the first entity of the page type.
func (e *Engine) Test(ctx context.Context, in TestInput) (*TestResult, error) {
	if in.PageType == "" {
		return nil, fmt.Errorf("%w: pageType is required", ErrValidation)
	}
	if strings.TrimSpace(in.Template) == "" {
		return nil, fmt.Errorf("%w: template is required", ErrValidation)
	}
	format, err := normalizeFormat(in.BodyFormat)
	if err != nil {
		return nil, err
	}
	if err := ValidateMappings(in.Mappings); err != nil {
		return nil, err
	}

	p, err := e.providers.Lookup(in.PageType)
	if err != nil {
		return nil, err
	}

	entities, err := p.ListEntities(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s entities: %w", ErrUpstream, in.PageType, err)
	}
	if len(entities) == 0 {
		return nil, fmt.Errorf("%w: no %s entities to test against", ErrNotFound, in.PageType)
	}
	sample := entities[0]

	data, err := p.FetchContext(ctx, sample)
	if err != nil {
		e.metrics.IncGeneration(string(in.PageType), metrics.ModeTest, metrics.OutcomeFailed)
		return nil, providerError(sample, err)
	}

	out, err := e.render(ctx, in.PageType, in.Template, format, in.Mappings, data)
	if err != nil {
		return nil, err
	}
	e.metrics.IncGeneration(string(in.PageType), metrics.ModeTest, outcomeLabel(out.failures))

	return &TestResult{
		GeneratedHTML:      out.text,
		ExtractedVariables: out.vars,
		TestEntityName:     sample.Name,
		TestEntityID:       sample.ID,
	}, nil
}

// RegenerateInput identifies one stored text.
type RegenerateInput struct {
	PageType models.PageType `json:"pageType"`
	EntityID string          `json:"entityId"`
	Language string          `json:"language"`
}

// Regenerate renders the persisted template for one entity and upserts the
// result. Nothing is written when the template, the entity or its data is
// missing.
func (e *Engine) Regenerate(ctx context.Context, in RegenerateInput) (*models.Content, error) {
	if in.PageType == "" || strings.TrimSpace(in.EntityID) == "" || in.Language == "" {
		return nil, fmt.Errorf("%w: pageType, entityId and language are required", ErrValidation)
	}

	p, err := e.providers.Lookup(in.PageType)
	if err != nil {
		return nil, err
	}
	tmpl, err := e.loadTemplate(ctx, in.PageType, in.Language)
	if err != nil {
		return nil, err
	}

	c, err := e.generate(ctx, p, tmpl, provider.EntityFromID(in.EntityID))
	if err != nil {
		e.metrics.IncGeneration(string(in.PageType), metrics.ModeRegenerate, metrics.OutcomeFailed)
		return nil, err
	}
	e.metrics.IncGeneration(string(in.PageType), metrics.ModeRegenerate, statusLabel(c.Status))

	slog.Info("content regenerated",
		"page_type", in.PageType, "entity", in.EntityID, "language", in.Language, "status", c.Status)
	return c, nil
}

// BulkInput selects every entity of a page type in one language.
type BulkInput struct {
	PageType models.PageType `json:"pageType"`
	Language string          `json:"language"`
}

// Bulk regenerates every entity of the page type. Each entity is isolated:
// a failing entity is recorded in the report and the run continues. When
// ctx is cancelled no new entities are started and the partial report is
// returned together with the context error.
func (e *Engine) Bulk(ctx context.Context, in BulkInput) (*models.BulkReport, error) {
	if in.PageType == "" || in.Language == "" {
		return nil, fmt.Errorf("%w: pageType and language are required", ErrValidation)
	}

	p, err := e.providers.Lookup(in.PageType)
	if err != nil {
		return nil, err
	}
	tmpl, err := e.loadTemplate(ctx, in.PageType, in.Language)
	if err != nil {
		return nil, err
	}

	entities, err := p.ListEntities(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s entities: %w", ErrUpstream, in.PageType, err)
	}

	report := &models.BulkReport{
		RunID:     uuid.New(),
		PageType:  in.PageType,
		Language:  in.Language,
		Total:     len(entities),
		StartedAt: time.Now().UTC(),
	}
	slog.Info("bulk generation started",
		"run", report.RunID, "page_type", in.PageType, "language", in.Language, "entities", len(entities))

	outcomes := make([]*models.EntityOutcome, len(entities))
	runErr := e.runBatches(ctx, len(entities), func(i int) {
		o := e.generateOutcome(ctx, p, tmpl, entities[i])
		outcomes[i] = &o
	})

	for _, o := range outcomes {
		if o == nil {
			continue
		}
		report.Outcomes = append(report.Outcomes, *o)
		switch o.Status {
		case models.OutcomeFailed:
			report.Failed++
		case models.OutcomeDegraded:
			report.Degraded++
			report.Succeeded++
		default:
			report.Succeeded++
		}
	}
	report.FinishedAt = time.Now().UTC()
	e.metrics.ObserveBulkDuration(string(in.PageType), report.FinishedAt.Sub(report.StartedAt))

	if e.reports != nil {
		if err := e.reports.SaveBulkReport(context.WithoutCancel(ctx), report); err != nil {
			slog.Warn("failed to save bulk report", "run", report.RunID, "error", err)
		}
	}

	slog.Info("bulk generation finished",
		"run", report.RunID,
		"page_type", in.PageType,
		"language", in.Language,
		"succeeded", report.Succeeded,
		"degraded", report.Degraded,
		"failed", report.Failed,
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)

	if runErr != nil {
		return report, fmt.Errorf("bulk generation interrupted: %w", runErr)
	}
	return report, nil
}

// runBatches calls fn for indices [0, n) in batches, pausing between
// batches and bounding concurrency inside each. It returns the context
// error if the run was cut short.
func (e *Engine) runBatches(ctx context.Context, n int, fn func(i int)) error {
	for start := 0; start < n; start += e.bulk.BatchSize {
		if start > 0 && e.bulk.BatchDelay > 0 {
			if err := e.sleep(ctx, e.bulk.BatchDelay); err != nil {
				return err
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(start+e.bulk.BatchSize, n)
		var g errgroup.Group
		g.SetLimit(e.bulk.Concurrency)
		for i := start; i < end; i++ {
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				fn(i)
				return nil
			})
		}
		_ = g.Wait()
	}
	return ctx.Err()
}

// generateOutcome runs one bulk entity. A panicking provider or store is
// recorded as a failed entity.
func (e *Engine) generateOutcome(ctx context.Context, p provider.Provider, tmpl *models.Template, entity models.Entity) (out models.EntityOutcome) {
	out = models.EntityOutcome{EntityID: entity.ID, EntityName: entity.Name}
	defer func() {
		if rec := recover(); rec != nil {
			out.Status = models.OutcomeFailed
			out.Error = fmt.Sprintf("panic: %v", rec)
			e.metrics.IncGeneration(string(tmpl.PageType), metrics.ModeBulk, metrics.OutcomeFailed)
			slog.Error("bulk entity panicked",
				"page_type", tmpl.PageType, "entity", entity.ID, "panic", rec, "stack", string(debug.Stack()))
		}
	}()

	c, err := e.generate(ctx, p, tmpl, entity)
	if err != nil {
		out.Status = models.OutcomeFailed
		out.Error = err.Error()
		e.metrics.IncGeneration(string(tmpl.PageType), metrics.ModeBulk, metrics.OutcomeFailed)
		slog.Warn("bulk entity failed",
			"page_type", tmpl.PageType, "entity", entity.ID, "language", tmpl.Language, "error", err)
		return out
	}

	out.Status = models.OutcomeSucceeded
	if c.Status == models.ContentStatusFailed {
		out.Status = models.OutcomeDegraded
	}
	e.metrics.IncGeneration(string(tmpl.PageType), metrics.ModeBulk, statusLabel(c.Status))
	return out
}

// generate runs the pipeline for one entity and upserts the text.
func (e *Engine) generate(ctx context.Context, p provider.Provider, tmpl *models.Template, entity models.Entity) (*models.Content, error) {
	data, err := p.FetchContext(ctx, entity)
	if err != nil {
		return nil, providerError(entity, err)
	}

	format, err := normalizeFormat(tmpl.BodyFormat)
	if err != nil {
		return nil, err
	}
	out, err := e.render(ctx, tmpl.PageType, tmpl.Body, format, tmpl.Mappings, data)
	if err != nil {
		return nil, err
	}

	status := models.ContentStatusOK
	if out.failures > 0 {
		status = models.ContentStatusFailed
	}

	saved, err := e.contents.Upsert(ctx, &models.Content{
		PageType: tmpl.PageType,
		EntityID: entity.ID,
		Language: tmpl.Language,
		SEOText:  out.text,
		Status:   status,
	})
	if err != nil {
		return nil, fmt.Errorf("save content for %s: %w", entity.ID, err)
	}
	return saved, nil
}

type rendering struct {
	text     string
	vars     map[string]string
	failures int
}

// render evaluates the mappings against data and populates the body.
// Markdown bodies are converted to HTML after substitution.
func (e *Engine) render(ctx context.Context, pageType models.PageType, body string, format models.BodyFormat, mappings []models.VariableMapping, data provider.Context) (rendering, error) {
	out := rendering{vars: make(map[string]string, len(mappings))}
	for _, m := range mappings {
		v := e.eval.Evaluate(ctx, m.Expression, data)
		if expr.IsError(v) {
			out.failures++
			e.metrics.IncExpressionError(string(pageType))
		}
		out.vars[m.Variable] = v
	}

	out.text = Populate(body, out.vars)
	if format == models.BodyFormatMarkdown {
		html, err := markdown.ToHTML(out.text)
		if err != nil {
			return rendering{}, fmt.Errorf("convert markdown: %w", err)
		}
		out.text = html
	}
	return out, nil
}

func (e *Engine) loadTemplate(ctx context.Context, pageType models.PageType, language string) (*models.Template, error) {
	tmpl, err := e.templates.Find(ctx, pageType, language)
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}
	if tmpl == nil {
		return nil, fmt.Errorf("%w: no template for %s in %q, save one first", ErrNotFound, pageType, language)
	}
	return tmpl, nil
}

// providerError classifies a FetchContext failure.
func providerError(entity models.Entity, err error) error {
	if errors.Is(err, provider.ErrEntityNotFound) {
		return fmt.Errorf("%w: entity %s: %w", ErrNotFound, entity.ID, err)
	}
	return fmt.Errorf("%w: entity %s: %w", ErrUpstream, entity.ID, err)
}

func outcomeLabel(failures int) string {
	if failures > 0 {
		return metrics.OutcomeDegraded
	}
	return metrics.OutcomeSucceeded
}

func statusLabel(s models.ContentStatus) string {
	if s == models.ContentStatusFailed {
		return metrics.OutcomeDegraded
	}
	return metrics.OutcomeSucceeded
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
