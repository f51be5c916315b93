// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the JSON HTTP handlers of the SEO generation
// API. Handlers receive their dependencies through the handler struct and
// map domain errors to status codes in one place.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"seogen/internal/engine"
	"seogen/internal/models"
	"seogen/internal/provider"
)

// maxRequestBytes caps every JSON request body.
const maxRequestBytes = 1 << 20

// Generator runs the three generation modes.
type Generator interface {
	Test(ctx context.Context, in engine.TestInput) (*engine.TestResult, error)
	Regenerate(ctx context.Context, in engine.RegenerateInput) (*models.Content, error)
	Bulk(ctx context.Context, in engine.BulkInput) (*models.BulkReport, error)
}

// Translator fans one entity out to every active language.
type Translator interface {
	Run(ctx context.Context, pageType models.PageType, entityID string) (*models.TranslationReport, error)
}

// Templates reads and saves master templates.
type Templates interface {
	Find(ctx context.Context, pageType models.PageType, language string) (*models.Template, error)
	List(ctx context.Context) ([]models.Template, error)
	Save(ctx context.Context, t *models.Template) (*models.Template, error)
}

// Contents reads generated texts.
type Contents interface {
	Find(ctx context.Context, pageType models.PageType, entityID, language string) (*models.Content, error)
	ListByEntity(ctx context.Context, pageType models.PageType, entityID string) ([]models.Content, error)
}

// PageTypes lists the page types that have a provider.
type PageTypes interface {
	PageTypes() []models.PageType
}

// Reports reads the latest run reports.
type Reports interface {
	LatestBulkReport(ctx context.Context, pageType models.PageType, language string) (*models.BulkReport, error)
	LatestTranslationReport(ctx context.Context, pageType models.PageType, entityID string) (*models.TranslationReport, error)
}

// SEO groups the generation API handlers and their dependencies.
type SEO struct {
	generator  Generator
	translator Translator
	templates  Templates
	contents   Contents
	pageTypes  PageTypes
	reports    Reports
	languages  LanguageLister
	providers  TranslationProviders
}

// NewSEO creates the handler group. Reports are optional; see SetReports.
func NewSEO(generator Generator, translator Translator, templates Templates, contents Contents, pageTypes PageTypes) *SEO {
	return &SEO{
		generator:  generator,
		translator: translator,
		templates:  templates,
		contents:   contents,
		pageTypes:  pageTypes,
	}
}

// SetReports enables the report endpoints. Without a report store they
// answer 404.
func (h *SEO) SetReports(r Reports) {
	h.reports = r
}

// --- Page types and templates ---

// ListPageTypes returns the page types that can be generated.
func (h *SEO) ListPageTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"pageTypes": h.pageTypes.PageTypes()})
}

// ListTemplates returns every stored template.
func (h *SEO) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templates.List(r.Context())
	if err != nil {
		writeError(w, r, fmt.Errorf("list templates: %w", err))
		return
	}
	if templates == nil {
		templates = []models.Template{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": templates})
}

// GetTemplate returns the template of one (page type, language) pair.
func (h *SEO) GetTemplate(w http.ResponseWriter, r *http.Request) {
	pt := models.PageType(chi.URLParam(r, "pageType"))
	lang := chi.URLParam(r, "language")

	tmpl, err := h.templates.Find(r.Context(), pt, lang)
	if err != nil {
		writeError(w, r, fmt.Errorf("find template: %w", err))
		return
	}
	if tmpl == nil {
		writeError(w, r, fmt.Errorf("%w: no template for %s/%s", engine.ErrNotFound, pt, lang))
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

// templateRequest is the body of a template save. Field names match the
// stored template so a fetched template can be saved back unchanged.
type templateRequest struct {
	Body       string                   `json:"template_body"`
	BodyFormat models.BodyFormat        `json:"body_format"`
	Mappings   []models.VariableMapping `json:"variable_mappings"`
}

// SaveTemplate creates or replaces the template of one (page type,
// language) pair.
func (h *SEO) SaveTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if msg := validateTemplateSize(req.Body, req.Mappings); msg != "" {
		writeError(w, r, fmt.Errorf("%w: %s", engine.ErrValidation, msg))
		return
	}

	tmpl := &models.Template{
		PageType:   models.PageType(chi.URLParam(r, "pageType")),
		Language:   chi.URLParam(r, "language"),
		Body:       req.Body,
		BodyFormat: req.BodyFormat,
		Mappings:   req.Mappings,
	}
	if msg := validateKey("", tmpl.Language); msg != "" {
		writeError(w, r, fmt.Errorf("%w: %s", engine.ErrValidation, msg))
		return
	}
	if err := engine.ValidateTemplate(tmpl); err != nil {
		writeError(w, r, err)
		return
	}

	saved, err := h.templates.Save(r.Context(), tmpl)
	if err != nil {
		writeError(w, r, fmt.Errorf("save template: %w", err))
		return
	}
	slog.Info("template saved",
		"page_type", saved.PageType, "language", saved.Language, "version", saved.Version)
	writeJSON(w, http.StatusOK, saved)
}

// --- Generation ---

// Test renders an ad hoc template for the first entity of a page type.
func (h *SEO) Test(w http.ResponseWriter, r *http.Request) {
	var in engine.TestInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if msg := validateTemplateSize(in.Template, in.Mappings); msg != "" {
		writeError(w, r, fmt.Errorf("%w: %s", engine.ErrValidation, msg))
		return
	}

	result, err := h.generator.Test(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Regenerate renders and stores the text of one entity in one language.
func (h *SEO) Regenerate(w http.ResponseWriter, r *http.Request) {
	var in engine.RegenerateInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if msg := validateKey(in.EntityID, in.Language); msg != "" {
		writeError(w, r, fmt.Errorf("%w: %s", engine.ErrValidation, msg))
		return
	}

	content, err := h.generator.Regenerate(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, content)
}

// Bulk regenerates every entity of a page type and returns the report. An
// interrupted run answers 503 with the partial report.
func (h *SEO) Bulk(w http.ResponseWriter, r *http.Request) {
	var in engine.BulkInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if msg := validateKey("", in.Language); msg != "" {
		writeError(w, r, fmt.Errorf("%w: %s", engine.ErrValidation, msg))
		return
	}

	report, err := h.generator.Bulk(r.Context(), in)
	if err != nil && report != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error":  err.Error(),
			"report": report,
		})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// LatestBulk returns the last bulk report of a page type and language.
func (h *SEO) LatestBulk(w http.ResponseWriter, r *http.Request) {
	pt := models.PageType(chi.URLParam(r, "pageType"))
	lang := chi.URLParam(r, "language")

	var report *models.BulkReport
	if h.reports != nil {
		var err error
		report, err = h.reports.LatestBulkReport(r.Context(), pt, lang)
		if err != nil {
			writeError(w, r, fmt.Errorf("load bulk report: %w", err))
			return
		}
	}
	if report == nil {
		writeError(w, r, fmt.Errorf("%w: no bulk report for %s/%s", engine.ErrNotFound, pt, lang))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// --- Translation ---

// translateRequest is the body of a translation fan-out.
type translateRequest struct {
	PageType models.PageType `json:"pageType"`
	EntityID string          `json:"entityId"`
}

// Translate fans the base-language text of one entity out to every other
// active language.
func (h *SEO) Translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if msg := validateKey(req.EntityID, ""); msg != "" {
		writeError(w, r, fmt.Errorf("%w: %s", engine.ErrValidation, msg))
		return
	}

	report, err := h.translator.Run(r.Context(), req.PageType, req.EntityID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// LatestTranslation returns the last fan-out report of one entity.
func (h *SEO) LatestTranslation(w http.ResponseWriter, r *http.Request) {
	pt := models.PageType(chi.URLParam(r, "pageType"))
	entityID := chi.URLParam(r, "entityID")

	var report *models.TranslationReport
	if h.reports != nil {
		var err error
		report, err = h.reports.LatestTranslationReport(r.Context(), pt, entityID)
		if err != nil {
			writeError(w, r, fmt.Errorf("load translation report: %w", err))
			return
		}
	}
	if report == nil {
		writeError(w, r, fmt.Errorf("%w: no translation report for %s/%s", engine.ErrNotFound, pt, entityID))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// --- Content ---

// GetContent returns the stored text of one entity in one language.
func (h *SEO) GetContent(w http.ResponseWriter, r *http.Request) {
	pt := models.PageType(chi.URLParam(r, "pageType"))
	entityID := chi.URLParam(r, "entityID")
	lang := chi.URLParam(r, "language")

	c, err := h.contents.Find(r.Context(), pt, entityID, lang)
	if err != nil {
		writeError(w, r, fmt.Errorf("find content: %w", err))
		return
	}
	if c == nil {
		writeError(w, r, fmt.Errorf("%w: no %s content for %s/%s", engine.ErrNotFound, lang, pt, entityID))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ListContent returns the stored texts of one entity in every language.
func (h *SEO) ListContent(w http.ResponseWriter, r *http.Request) {
	pt := models.PageType(chi.URLParam(r, "pageType"))
	entityID := chi.URLParam(r, "entityID")

	items, err := h.contents.ListByEntity(r.Context(), pt, entityID)
	if err != nil {
		writeError(w, r, fmt.Errorf("list content: %w", err))
		return
	}
	if items == nil {
		items = []models.Content{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"content": items})
}

// --- Helpers ---

// decodeJSON reads a size-limited JSON body into v. Malformed bodies are
// validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: request body exceeds %d bytes", engine.ErrValidation, tooLarge.Limit)
		}
		return fmt.Errorf("%w: invalid JSON body: %v", engine.ErrValidation, err)
	}
	return nil
}

// statusFor maps a domain error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrValidation), errors.Is(err, provider.ErrUnsupportedPageType):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrNotFound), errors.Is(err, provider.ErrEntityNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as a JSON error body. Internal errors are logged
// and replaced by a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal server error"
	} else if status >= 500 {
		slog.Warn("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": strings.TrimSpace(msg)})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
