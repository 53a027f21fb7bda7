// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes settings for
// logging, the alias database, session lifetime, food resolution, the
// nutrition catalog client, the language-model interpreter, and
// observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// CatalogConfig defines the nutrition catalog HTTP client settings.
type CatalogConfig struct {
	BaseURL   string        // CATALOG_BASE_URL
	Timeout   time.Duration // CATALOG_TIMEOUT per-request timeout
	RateRPS   float64       // CATALOG_RATE_RPS outbound tokens per second
	RateBurst int           // CATALOG_RATE_BURST bucket size
}

// InterpreterConfig defines the language-model interpreter settings.
type InterpreterConfig struct {
	BaseURL     string        // INTERPRETER_BASE_URL (OpenAI-compatible)
	APIKey      string        // INTERPRETER_API_KEY
	Model       string        // INTERPRETER_MODEL
	Timeout     time.Duration // INTERPRETER_TIMEOUT per-request timeout
	Temperature float64       // INTERPRETER_TEMPERATURE in [0..2]
}

// PriorityConfig defines the per-partition weight applied to catalog search
// results during ranking.
type PriorityConfig struct {
	Custom      float64 // PRIORITY_CUSTOM
	Favorites   float64 // PRIORITY_FAVORITES
	Common      float64 // PRIORITY_COMMON
	Supplements float64 // PRIORITY_SUPPLEMENTS
	All         float64 // PRIORITY_ALL
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-meal-agent")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config holds all configuration values for the application.
type Config struct {
	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	// Memory
	DBPath string // SQLite path for aliases and preferences; empty disables memory

	// Dialog
	SessionTTL time.Duration // inactivity window before a conversation resets
	Language   string        // default reply language hint (en|es)

	// Resolution
	MatchThreshold    float64 // minimum composite score to accept a match
	PerPartitionLimit int     // results kept per catalog partition
	Priorities        PriorityConfig

	// Metrics
	MetricsAddr string // listen address for /metrics; empty disables the listener

	// Outbound clients
	Catalog     CatalogConfig
	Interpreter InterpreterConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
// A local .env file, when present, supplements (never overrides) the
// environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		// Logging
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		// Memory
		DBPath: getenv("DB_PATH", "meals.db"),

		// Dialog
		SessionTTL: getdur("SESSION_TTL", 10*time.Minute),
		Language:   strings.ToLower(getenv("LANGUAGE", "en")),

		// Resolution
		MatchThreshold:    getfloat("MATCH_THRESHOLD", 0.2),
		PerPartitionLimit: getint("PER_PARTITION_LIMIT", 5),
		Priorities: PriorityConfig{
			Custom:      getfloat("PRIORITY_CUSTOM", 3.0),
			Favorites:   getfloat("PRIORITY_FAVORITES", 2.5),
			Common:      getfloat("PRIORITY_COMMON", 1.0),
			Supplements: getfloat("PRIORITY_SUPPLEMENTS", 0.5),
			All:         getfloat("PRIORITY_ALL", 0.4),
		},

		// Metrics
		MetricsAddr: getenv("METRICS_ADDR", ""),

		// Outbound clients
		Catalog: CatalogConfig{
			BaseURL:   getenv("CATALOG_BASE_URL", ""),
			Timeout:   getdur("CATALOG_TIMEOUT", 15*time.Second),
			RateRPS:   getfloat("CATALOG_RATE_RPS", 5.0),
			RateBurst: getint("CATALOG_RATE_BURST", 10),
		},
		Interpreter: InterpreterConfig{
			BaseURL:     getenv("INTERPRETER_BASE_URL", ""),
			APIKey:      getenv("INTERPRETER_API_KEY", ""),
			Model:       getenv("INTERPRETER_MODEL", "gpt-4o-mini"),
			Timeout:     getdur("INTERPRETER_TIMEOUT", 30*time.Second),
			Temperature: getfloat("INTERPRETER_TEMPERATURE", 0.1),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-meal-agent"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.Language {
	case "en", "es":
	default:
		cfg.Language = "en"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if cfg.SessionTTL <= 0 {
		return cfg, errors.New("SESSION_TTL must be > 0")
	}
	if cfg.MatchThreshold < 0 || cfg.MatchThreshold > 1 {
		return cfg, errors.New("MATCH_THRESHOLD must be between 0 and 1")
	}
	if cfg.PerPartitionLimit < 1 {
		return cfg, errors.New("PER_PARTITION_LIMIT must be >= 1")
	}
	for _, p := range []float64{
		cfg.Priorities.Custom,
		cfg.Priorities.Favorites,
		cfg.Priorities.Common,
		cfg.Priorities.Supplements,
		cfg.Priorities.All,
	} {
		if p < 0 {
			return cfg, errors.New("partition priorities must be >= 0")
		}
	}
	if cfg.Catalog.Timeout <= 0 || cfg.Interpreter.Timeout <= 0 {
		return cfg, errors.New("client timeouts must be positive durations")
	}
	if cfg.Catalog.RateRPS < 0 {
		return cfg, errors.New("CATALOG_RATE_RPS must be >= 0")
	}
	if cfg.Catalog.RateBurst < 1 {
		return cfg, errors.New("CATALOG_RATE_BURST must be >= 1")
	}
	if cfg.Interpreter.Temperature < 0 || cfg.Interpreter.Temperature > 2 {
		return cfg, errors.New("INTERPRETER_TEMPERATURE must be in [0,2]")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
