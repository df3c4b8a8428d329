// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, database paths, rate limiting, LLM
// providers, mail delivery, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "leadgen-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// LLMConfig defines the chat-completion providers and their sampling
// parameters. The chat path and the extraction path deliberately use
// different temperatures: the visitor-facing assistant is conversational,
// the extractor needs the most deterministic output the model allows.
type LLMConfig struct {
	Provider string // CHAT_PROVIDER: openai|gemini

	OpenAIKey string // OPENAI_API_KEY
	GeminiKey string // GEMINI_API_KEY

	ChatModel       string  // CHAT_MODEL
	ChatTemperature float64 // CHAT_TEMPERATURE
	ChatMaxTokens   int     // CHAT_MAX_TOKENS

	ExtractModel       string        // EXTRACT_MODEL
	ExtractTemperature float64       // EXTRACT_TEMPERATURE
	ExtractMaxTokens   int           // EXTRACT_MAX_TOKENS
	ExtractTimeout     time.Duration // EXTRACT_TIMEOUT for the background task

	// Outbound call throttle (per process, cost protection).
	RPS   float64 // LLM_RPS
	Burst int     // LLM_BURST
}

// MailConfig defines Resend notification settings for the contact form.
type MailConfig struct {
	ResendAPIKey string // RESEND_API_KEY ("" disables mail delivery)
	FromEmail    string // FROM_EMAIL
	ToEmail      string // TO_EMAIL
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging
	LogLevel    string // debug|info|warn|error|fatal|panic
	LogPretty   bool   // pretty console logs in dev
	LogRedact   bool   // scrub emails/phones/IDs from access logs
	APIBasePath string // base path for API routes

	// App
	DBPath        string // SQLite path
	MaxInputChars int    // ceiling on chat input length

	// Chat quota (fixed window per client)
	RateLimit  int           // admitted requests per window
	RateWindow time.Duration // window length
	RedisURL   string        // "" keeps the in-memory window store

	// External services
	LLM  LLMConfig
	Mail MailConfig

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

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
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:    strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:   getbool("LOG_PRETTY", false),
		LogRedact:   getbool("LOG_REDACT", false),
		APIBasePath: normalizeBasePath(getenv("API_BASE_PATH", "/api")),

		// App
		DBPath:        getenv("DB_PATH", "app.db"),
		MaxInputChars: getint("MAX_INPUT_CHARS", 500),

		// Chat quota
		RateLimit:  getint("RATE_LIMIT", 10),
		RateWindow: getdur("RATE_WINDOW", time.Hour),
		RedisURL:   getenv("REDIS_URL", ""),

		// LLM providers
		LLM: LLMConfig{
			Provider:           strings.ToLower(getenv("CHAT_PROVIDER", "openai")),
			OpenAIKey:          getenv("OPENAI_API_KEY", ""),
			GeminiKey:          getenv("GEMINI_API_KEY", ""),
			ChatModel:          getenv("CHAT_MODEL", "gpt-3.5-turbo"),
			ChatTemperature:    getfloat("CHAT_TEMPERATURE", 0.7),
			ChatMaxTokens:      getint("CHAT_MAX_TOKENS", 300),
			ExtractModel:       getenv("EXTRACT_MODEL", "gpt-3.5-turbo"),
			ExtractTemperature: getfloat("EXTRACT_TEMPERATURE", 0.1),
			ExtractMaxTokens:   getint("EXTRACT_MAX_TOKENS", 500),
			ExtractTimeout:     getdur("EXTRACT_TIMEOUT", 30*time.Second),
			RPS:                getfloat("LLM_RPS", 2.0),
			Burst:              getint("LLM_BURST", 5),
		},

		// Mail
		Mail: MailConfig{
			ResendAPIKey: getenv("RESEND_API_KEY", ""),
			FromEmail:    getenv("FROM_EMAIL", "Contact Form <onboarding@resend.dev>"),
			ToEmail:      getenv("TO_EMAIL", ""),
		},

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "leadgen-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.MaxInputChars < 1 {
		return cfg, errors.New("MAX_INPUT_CHARS must be >= 1")
	}
	if cfg.RateLimit < 1 {
		return cfg, errors.New("RATE_LIMIT must be >= 1")
	}
	if cfg.RateWindow <= 0 {
		return cfg, errors.New("RATE_WINDOW must be > 0")
	}
	switch cfg.LLM.Provider {
	case "openai", "gemini":
	default:
		return cfg, errors.New("CHAT_PROVIDER must be one of: openai, gemini")
	}
	if cfg.LLM.ChatTemperature < 0 || cfg.LLM.ChatTemperature > 2 {
		return cfg, errors.New("CHAT_TEMPERATURE must be in [0,2]")
	}
	if cfg.LLM.ExtractTemperature < 0 || cfg.LLM.ExtractTemperature > 2 {
		return cfg, errors.New("EXTRACT_TEMPERATURE must be in [0,2]")
	}
	if cfg.LLM.ChatMaxTokens < 1 || cfg.LLM.ExtractMaxTokens < 1 {
		return cfg, errors.New("token budgets must be >= 1")
	}
	if cfg.LLM.ExtractTimeout <= 0 {
		return cfg, errors.New("EXTRACT_TIMEOUT must be > 0")
	}
	if cfg.LLM.RPS < 0 {
		return cfg, errors.New("LLM_RPS must be >= 0")
	}
	if cfg.LLM.Burst < 1 {
		return cfg, errors.New("LLM_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
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

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures a leading '/' and strips any trailing '/'
// (except for the bare root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
