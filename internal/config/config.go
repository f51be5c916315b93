// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// AIProviderConfig holds the credentials of one translation provider.
type AIProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Logging
	LogFormat string // "text" or "json"
	LogLevel  slog.Level

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible) for bulk and translation reports. Optional.
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// AI providers used as the translation backend
	AIProvider  string // active provider: "openai", "claude", "gemini", "mistral"
	AIProviders map[string]AIProviderConfig
	AITimeout   time.Duration

	// Sports data API
	SportsAPIKey  string
	SportsAPIURL  string
	SportsSeason  int
	SportsLeagues []int
	SportsTimeout time.Duration

	// Generation
	ExprTimeout     time.Duration
	BulkBatchSize   int
	BulkBatchDelay  time.Duration
	BulkConcurrency int
	TranslateRPS    float64

	// Scheduled regeneration; empty schedule disables it.
	RegenSchedule  string
	RegenTranslate bool

	// API rate limit per client IP on generation endpoints
	APIRateLimit  int
	APIRateWindow time.Duration
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if a value does not
// parse or if critical values are missing in production mode.
func Load() (*Config, error) {
	p := &parser{}

	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		LogFormat: envOrDefault("LOG_FORMAT", ""),
		LogLevel:  p.level("LOG_LEVEL", slog.LevelInfo),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "seogen"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "seogen"),

		ValkeyHost:     os.Getenv("VALKEY_HOST"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		AIProvider: envOrDefault("AI_PROVIDER", "openai"),
		AIProviders: map[string]AIProviderConfig{
			"openai":  aiProvider("OPENAI", "gpt-4o-mini"),
			"claude":  aiProvider("CLAUDE", "claude-sonnet-4-5"),
			"gemini":  aiProvider("GEMINI", "gemini-2.5-flash"),
			"mistral": aiProvider("MISTRAL", "mistral-small-latest"),
		},
		AITimeout: p.duration("AI_TIMEOUT", 60*time.Second),

		SportsAPIKey:  os.Getenv("SPORTS_API_KEY"),
		SportsAPIURL:  envOrDefault("SPORTS_API_URL", "https://v3.football.api-sports.io"),
		SportsSeason:  p.int("SPORTS_SEASON", defaultSeason(time.Now())),
		SportsLeagues: p.ints("SPORTS_LEAGUES"),
		SportsTimeout: p.duration("SPORTS_TIMEOUT", 15*time.Second),

		ExprTimeout:     p.duration("EXPR_TIMEOUT", time.Second),
		BulkBatchSize:   p.int("BULK_BATCH_SIZE", 10),
		BulkBatchDelay:  p.duration("BULK_BATCH_DELAY", time.Second),
		BulkConcurrency: p.int("BULK_CONCURRENCY", 1),
		TranslateRPS:    p.float("TRANSLATE_RPS", 1),

		RegenSchedule:  os.Getenv("SEO_REGEN_SCHEDULE"),
		RegenTranslate: p.bool("SEO_REGEN_TRANSLATE", false),

		APIRateLimit:  p.int("API_RATE_LIMIT", 30),
		APIRateWindow: p.duration("API_RATE_WINDOW", time.Minute),
	}
	if p.err != nil {
		return nil, p.err
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
		if cfg.IsDev() {
			cfg.LogFormat = "text"
		}
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}
	if cfg.BulkBatchSize < 1 {
		return nil, fmt.Errorf("BULK_BATCH_SIZE must be at least 1")
	}
	if cfg.BulkConcurrency < 1 {
		return nil, fmt.Errorf("BULK_CONCURRENCY must be at least 1")
	}
	if cfg.ExprTimeout <= 0 {
		return nil, fmt.Errorf("EXPR_TIMEOUT must be positive")
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.SportsAPIKey == "" {
			return nil, fmt.Errorf("SPORTS_API_KEY must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// ValkeyEnabled reports whether a Valkey host is configured.
func (c *Config) ValkeyEnabled() bool {
	return c.ValkeyHost != ""
}

// defaultSeason is the season year API-Football files the current games
// under: seasons start in August.
func defaultSeason(now time.Time) int {
	if now.Month() >= time.August {
		return now.Year()
	}
	return now.Year() - 1
}

func aiProvider(prefix, model string) AIProviderConfig {
	return AIProviderConfig{
		APIKey:  os.Getenv(prefix + "_API_KEY"),
		Model:   envOrDefault(prefix+"_MODEL", model),
		BaseURL: os.Getenv(prefix + "_BASE_URL"),
	}
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parser reads typed values and keeps the first error.
type parser struct {
	err error
}

func (p *parser) fail(key, v string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
}

func (p *parser) int(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return n
}

func (p *parser) ints(key string) []int {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []int
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			p.fail(key, v, err)
			return nil
		}
		out = append(out, n)
	}
	return out
}

func (p *parser) float(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return f
}

func (p *parser) bool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return b
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return d
}

func (p *parser) level(key string, fallback slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(v)); err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return l
}
