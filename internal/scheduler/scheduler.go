// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package scheduler runs periodic bulk regeneration of every page type in
// the base language, optionally followed by a translation fan-out of each
// entity that was written.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"seogen/internal/engine"
	"seogen/internal/models"
)

// Bulker runs a bulk generation.
type Bulker interface {
	Bulk(ctx context.Context, in engine.BulkInput) (*models.BulkReport, error)
}

// Translator fans out one entity's base text to the other languages.
type Translator interface {
	Run(ctx context.Context, pageType models.PageType, entityID string) (*models.TranslationReport, error)
}

// Languages lists the active languages.
type Languages interface {
	ListActive(ctx context.Context) ([]models.Language, error)
}

// PageTypes lists the page types that have a provider.
type PageTypes interface {
	PageTypes() []models.PageType
}

// Scheduler owns the cron runner and the regeneration job.
type Scheduler struct {
	cron       *cron.Cron
	bulk       Bulker
	languages  Languages
	pageTypes  PageTypes
	translator Translator

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a scheduler. Overlapping runs are skipped, so a slow
// regeneration never stacks up behind itself.
func New(bulk Bulker, languages Languages, pageTypes PageTypes) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		bulk:      bulk,
		languages: languages,
		pageTypes: pageTypes,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// SetTranslator enables translation of every written entity after its
// page type's bulk run. nil disables it.
func (s *Scheduler) SetTranslator(t Translator) {
	s.translator = t
}

// Start registers the regeneration job on the cron spec and starts the
// runner.
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := s.RunOnce(s.ctx); err != nil {
			slog.Error("scheduled regeneration failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule regeneration %q: %w", spec, err)
	}

	s.cron.Start()
	slog.Info("scheduler started", "schedule", spec, "jobs", len(s.cron.Entries()))
	return nil
}

// Stop cancels a running job and waits for it to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	slog.Info("scheduler stopped")
}

// RunOnce regenerates every page type in the base language. A page type
// that fails is logged and skipped; only a cancelled ctx or a missing
// base language stops the run.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	active, err := s.languages.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active languages: %w", err)
	}
	base, _, ok := models.SplitBase(active)
	if !ok {
		return fmt.Errorf("%w: no active default language", engine.ErrNotFound)
	}

	for _, pt := range s.pageTypes.PageTypes() {
		report, err := s.bulk.Bulk(ctx, engine.BulkInput{PageType: pt, Language: base.Code})
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if err != nil {
			slog.Error("scheduled bulk generation failed", "page_type", pt, "language", base.Code, "error", err)
			continue
		}
		if s.translator == nil {
			continue
		}
		if err := s.translateAll(ctx, pt, report.SucceededIDs()); err != nil {
			return err
		}
	}
	return nil
}

// translateAll fans out each entity in turn. Per-entity failures are
// logged; a cancelled ctx is returned.
func (s *Scheduler) translateAll(ctx context.Context, pt models.PageType, ids []string) error {
	for _, id := range ids {
		if _, err := s.translator.Run(ctx, pt, id); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			slog.Error("scheduled translation failed", "page_type", pt, "entity", id, "error", err)
		}
	}
	return nil
}
