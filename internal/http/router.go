// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, and the chat quota.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/ruralweb/leadgen-backend/internal/config"
	"github.com/ruralweb/leadgen-backend/internal/http/handlers"
	"github.com/ruralweb/leadgen-backend/internal/http/middleware"
	"github.com/ruralweb/leadgen-backend/internal/llm"
	"github.com/ruralweb/leadgen-backend/internal/mail"
	"github.com/ruralweb/leadgen-backend/internal/ratelimit"
	"github.com/ruralweb/leadgen-backend/internal/services"
)

// Dependencies carries the external resources the routes need. All fields
// are injected so tests can swap fakes for the LLM provider, the mailer, and
// the quota store.
type Dependencies struct {
	DB     *gorm.DB
	LLM    llm.Client      // nil disables chat and extraction
	Mailer mail.Mailer     // nil disables contact delivery
	Quota  ratelimit.Store // chat endpoint admission counter
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), the chat quota,
// CORS and security headers, health and metrics endpoints, and then mounts
// the public API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Structured logging (redacting variant when configured)
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. CORS and Security headers
//
// The chat quota is applied per-route: only POST {base}/openai-chat consumes
// budget, so a preflight or a contact-form post never burns a chat request.
func RegisterRoutes(r *gin.Engine, deps Dependencies, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging: exactly one access logger per request. The
	// redacting variant keeps visitor emails and phone numbers out of access
	// logs; both attach the request-scoped logger handlers log through.
	if cfg.LogRedact {
		r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))
	} else {
		r.Use(middleware.Logger())
	}

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB) and response compression
	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests
		// and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.MsgNotFound)
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.MsgMethodNotAllowed)
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← llm/mail/db
	chatSvc := &services.ChatService{
		LLM:           deps.LLM,
		Model:         cfg.LLM.ChatModel,
		Temperature:   cfg.LLM.ChatTemperature,
		MaxTokens:     cfg.LLM.ChatMaxTokens,
		MaxInputRunes: cfg.MaxInputChars,
	}
	var leadSvc handlers.LeadService
	if deps.DB != nil && deps.LLM != nil {
		leadSvc = &services.LeadService{
			DB:          deps.DB,
			LLM:         deps.LLM,
			Model:       cfg.LLM.ExtractModel,
			Temperature: cfg.LLM.ExtractTemperature,
			MaxTokens:   cfg.LLM.ExtractMaxTokens,
			Timeout:     cfg.LLM.ExtractTimeout,
		}
	}
	newsSvc := &services.NewsletterService{DB: deps.DB}
	contactSvc := &services.ContactService{
		Mailer: deps.Mailer,
		From:   cfg.Mail.FromEmail,
		To:     cfg.Mail.ToEmail,
	}
	h := handlers.New(chatSvc, leadSvc, newsSvc, contactSvc, cfg.MaxInputChars)

	// Public API. gin-contrib/cors only intercepts preflights that carry an
	// Origin header; the explicit OPTIONS routes keep bare OPTIONS probes
	// answered with an empty 200 as well.
	preflight := func(c *gin.Context) { c.Status(http.StatusOK) }
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.POST("/openai-chat", middleware.ChatQuota(deps.Quota, cfg.RateLimit), h.Chat)
		api.OPTIONS("/openai-chat", preflight)

		api.POST("/contact", h.Contact)
		api.OPTIONS("/contact", preflight)

		api.POST("/newsletter-signup", h.NewsletterSignup)
		api.OPTIONS("/newsletter-signup", preflight)

		api.GET("/transport-optimizer", h.OptimizerInfo)
		api.POST("/transport-optimizer", h.Optimize)
		api.OPTIONS("/transport-optimizer", preflight)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
