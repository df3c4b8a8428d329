// Command server runs the lead-generation backend: the chat assistant, the
// contact and newsletter endpoints, the transport-optimizer demo, and the
// background lead-extraction pipeline behind them.
//
// Configuration is environment-driven (a local .env file is honored in
// development). The process traps SIGINT/SIGTERM and drains in-flight
// requests before exiting.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ruralweb/leadgen-backend/internal/config"
	httpapi "github.com/ruralweb/leadgen-backend/internal/http"
	"github.com/ruralweb/leadgen-backend/internal/llm"
	"github.com/ruralweb/leadgen-backend/internal/mail"
	"github.com/ruralweb/leadgen-backend/internal/observability"
	"github.com/ruralweb/leadgen-backend/internal/ratelimit"
	"github.com/ruralweb/leadgen-backend/internal/repo"
	"github.com/ruralweb/leadgen-backend/internal/sysutil"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	version := sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), "dev")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}

	quota, err := buildQuota(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("quota store setup failed")
	}

	llmClient, err := buildLLM(ctx, cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("llm client setup failed")
	}
	if llmClient == nil {
		log.Warn().Str("provider", cfg.LLM.Provider).Msg("no LLM API key configured; chat endpoint will report errors")
	}

	var mailer mail.Mailer
	if cfg.Mail.ResendAPIKey != "" {
		mailer = mail.NewResendMailer(cfg.Mail.ResendAPIKey)
	} else {
		log.Warn().Msg("RESEND_API_KEY not set; contact delivery disabled")
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Dependencies{
		DB:     db,
		LLM:    llmClient,
		Mailer: mailer,
		Quota:  quota,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received; draining")

	drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := shutdownOTel(drainCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("bye")
}

// buildQuota selects the chat quota store: Redis when REDIS_URL is set (a
// shared window across replicas), otherwise the in-memory per-process store.
func buildQuota(cfg config.Config) (ratelimit.Store, error) {
	if cfg.RedisURL == "" {
		return ratelimit.NewMemoryStore(cfg.RateLimit, cfg.RateWindow), nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	return ratelimit.NewRedisStore(redis.NewClient(opts), cfg.RateLimit, cfg.RateWindow), nil
}

// buildLLM constructs the configured completion client. A missing API key
// yields a nil client rather than an error so the rest of the API (contact,
// newsletter, optimizer) still serves.
func buildLLM(ctx context.Context, cfg config.LLMConfig) (llm.Client, error) {
	switch cfg.Provider {
	case "gemini":
		if cfg.GeminiKey == "" {
			return nil, nil
		}
		return llm.NewGeminiClient(ctx, cfg.GeminiKey, cfg.RPS, cfg.Burst)
	default:
		if cfg.OpenAIKey == "" {
			return nil, nil
		}
		return llm.NewOpenAIClient(cfg.OpenAIKey, cfg.RPS, cfg.Burst), nil
	}
}
