// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the SEO
// generation service. Reads are open; generation endpoints sit behind the
// per-client rate limiter.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"seogen/internal/handlers"
	"seogen/internal/middleware"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// New creates and returns the configured Chi router. limiter and metrics
// may be nil.
func New(seo *handlers.SEO, limiter *middleware.RateLimiter, metrics http.Handler, db Pinger) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"error":"not found"}`)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, `{"error":"method not allowed"}`)
	})

	r.Get("/health", healthHandler(db))
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}

	r.Route("/api/seo", func(r chi.Router) {
		r.Get("/page-types", seo.ListPageTypes)
		r.Get("/languages", seo.ListLanguages)

		r.Get("/translation-providers", seo.TranslationProviderStatus)
		r.Put("/translation-providers/active", seo.SetTranslationProvider)

		r.Get("/templates", seo.ListTemplates)
		r.Get("/templates/{pageType}/{language}", seo.GetTemplate)
		r.Put("/templates/{pageType}/{language}", seo.SaveTemplate)

		r.Get("/bulk/{pageType}/{language}", seo.LatestBulk)
		r.Get("/translate/{pageType}/{entityID}", seo.LatestTranslation)

		r.Get("/content/{pageType}/{entityID}", seo.ListContent)
		r.Get("/content/{pageType}/{entityID}/{language}", seo.GetContent)

		// Generation calls out to the data and translation APIs.
		r.Group(func(r chi.Router) {
			if limiter != nil {
				r.Use(limiter.Middleware)
			}
			r.Post("/test", seo.Test)
			r.Post("/regenerate", seo.Regenerate)
			r.Post("/bulk", seo.Bulk)
			r.Post("/translate", seo.Translate)
		})
	})

	return r
}

// healthHandler returns a JSON health check response. When a database is
// given it must answer a ping within two seconds.
func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, `{"status":"unavailable","database":"down"}`)
				return
			}
		}
		writeJSON(w, http.StatusOK, `{"status":"ok"}`)
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}
