// Package main is the entry point for the SEO generation server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"seogen/internal/ai"
	"seogen/internal/cache"
	"seogen/internal/config"
	"seogen/internal/database"
	"seogen/internal/engine"
	"seogen/internal/expr"
	"seogen/internal/handlers"
	"seogen/internal/metrics"
	"seogen/internal/middleware"
	"seogen/internal/provider"
	"seogen/internal/router"
	"seogen/internal/scheduler"
	"seogen/internal/sportsdata"
	"seogen/internal/store"
	"seogen/internal/translate"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env", "error", err)
	}

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: JSON in production, text in development.
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"season", cfg.SportsSeason,
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed languages and starter templates (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Initialize data stores.
	templateStore := store.NewTemplateStore(db)
	contentStore := store.NewContentStore(db)
	languageStore := store.NewLanguageStore(db)

	// Connect to Valkey for run reports (optional, the app works without it).
	var reports *cache.ReportStore
	if cfg.ValkeyEnabled() {
		valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()
		reports = cache.NewReportStore(valkeyClient, cache.DefaultReportTTL)
		slog.Info("valkey connected", "host", cfg.ValkeyHost)
	} else {
		slog.Warn("valkey not configured, run reports are not kept")
	}

	// Prometheus registry with runtime collectors.
	promRegistry := prom.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewPrometheusRecorder(promRegistry)

	// Entity data providers over the sports data API.
	sports := sportsdata.New(sportsdata.Config{
		APIKey:  cfg.SportsAPIKey,
		BaseURL: cfg.SportsAPIURL,
		Timeout: cfg.SportsTimeout,
	})
	leagues := provider.LeaguesByID(cfg.SportsLeagues)
	providers, err := provider.NewRegistry(
		provider.NewLeagueStandings(sports, leagues, cfg.SportsSeason),
		provider.NewTeamProfile(sports, leagues, cfg.SportsSeason),
	)
	if err != nil {
		slog.Error("failed to register providers", "error", err)
		os.Exit(1)
	}

	// Generation engine.
	eng := engine.New(templateStore, contentStore, providers, expr.New(cfg.ExprTimeout))
	eng.SetBulkOptions(engine.BulkOptions{
		BatchSize:   cfg.BulkBatchSize,
		BatchDelay:  cfg.BulkBatchDelay,
		Concurrency: cfg.BulkConcurrency,
	})
	eng.SetMetrics(recorder)

	// Translation fan-out through the active AI provider.
	aiConfigs := make(map[string]ai.ProviderConfig, len(cfg.AIProviders))
	for name, p := range cfg.AIProviders {
		aiConfigs[name] = ai.ProviderConfig{
			APIKey:  p.APIKey,
			Model:   p.Model,
			BaseURL: p.BaseURL,
			Timeout: cfg.AITimeout,
		}
	}
	aiRegistry := ai.NewRegistry(cfg.AIProvider, aiConfigs)
	if !aiRegistry.HasProvider(cfg.AIProvider) {
		slog.Warn("active ai provider has no api key, translations will fail",
			"provider", cfg.AIProvider, "available", aiRegistry.Available())
	}
	slog.Info("ai providers initialized",
		"active", aiRegistry.ActiveName(),
		"available", aiRegistry.Available(),
	)

	fanOut := translate.New(languageStore, contentStore, translate.NewAIBackend(aiRegistry))
	fanOut.SetRate(cfg.TranslateRPS)
	fanOut.SetMetrics(recorder)

	seo := handlers.NewSEO(eng, fanOut, templateStore, contentStore, providers)
	seo.SetLanguages(languageStore)
	seo.SetTranslationProviders(aiRegistry)
	if reports != nil {
		eng.SetReportSink(reports)
		fanOut.SetReportSink(reports)
		seo.SetReports(reports)
	}

	// Scheduled regeneration.
	var sched *scheduler.Scheduler
	if cfg.RegenSchedule != "" {
		sched = scheduler.New(eng, languageStore, providers)
		if cfg.RegenTranslate {
			sched.SetTranslator(fanOut)
		}
		if err := sched.Start(cfg.RegenSchedule); err != nil {
			slog.Error("failed to start scheduler", "error", err)
			os.Exit(1)
		}
	}

	limiter := middleware.NewRateLimiter(cfg.APIRateLimit, cfg.APIRateWindow)
	defer limiter.Stop()

	// Set up the Chi router with all middleware and routes.
	r := router.New(seo, limiter, metrics.Handler(promRegistry), db)

	// Bulk runs and translation fan-outs answer only when they finish, so
	// the write timeout is generous.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	if sched != nil {
		sched.Stop()
	}

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
