package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ruralweb/leadgen-backend/internal/config"
	"github.com/ruralweb/leadgen-backend/internal/domain"
	"github.com/ruralweb/leadgen-backend/internal/llm"
	"github.com/ruralweb/leadgen-backend/internal/mail"
	"github.com/ruralweb/leadgen-backend/internal/ratelimit"
	"github.com/ruralweb/leadgen-backend/internal/repo"
)

// --- fakes ---

type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) Complete(_ context.Context, req llm.Request) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	return f.reply, req.Model, nil
}

type fakeMailer struct{ sent []mail.Email }

func (f *fakeMailer) Send(_ context.Context, e mail.Email) error {
	f.sent = append(f.sent, e)
	return nil
}

// --- helpers (pure-Go sqlite, no CGO) ---

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func testConfig() config.Config {
	return config.Config{
		APIBasePath:   "/api",
		MaxInputChars: 500,
		RateLimit:     10,
		LLM: config.LLMConfig{
			ChatModel:          "gpt-3.5-turbo",
			ChatTemperature:    0.7,
			ChatMaxTokens:      300,
			ExtractModel:       "gpt-3.5-turbo",
			ExtractTemperature: 0.1,
			ExtractMaxTokens:   500,
			ExtractTimeout:     5 * time.Second,
		},
		Mail: config.MailConfig{
			FromEmail: "Contact Form <onboarding@resend.dev>",
			ToEmail:   "owner@example.com",
		},
		OTEL: config.OTELConfig{ServiceName: "leadgen-test"},
	}
}

func newTestRouter(t *testing.T, deps Dependencies, cfg config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if deps.Quota == nil {
		deps.Quota = ratelimit.NewMemoryStore(cfg.RateLimit, time.Hour)
	}
	RegisterRoutes(r, deps, cfg)
	return r
}

func postJSON(r http.Handler, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

// --- tests ---

func TestRouter_HealthMetricsAndFallbacks(t *testing.T) {
	r := newTestRouter(t, Dependencies{DB: newTestDB(t), LLM: &fakeLLM{reply: "hi"}}, testConfig())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("health: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Fatalf("metrics: %d", w.Code)
	}

	// Unknown route: 404 with envelope.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), `"success":false`) {
		t.Fatalf("404: %d %s", w.Code, w.Body.String())
	}
}

func TestRouter_ChatMethodBoundaries(t *testing.T) {
	r := newTestRouter(t, Dependencies{DB: newTestDB(t), LLM: &fakeLLM{reply: "hi"}}, testConfig())

	// GET on the chat endpoint is not allowed.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/openai-chat", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET chat: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Method not allowed") {
		t.Fatalf("405 body: %s", w.Body.String())
	}

	// OPTIONS answers 200 with an empty body (preflight support).
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/openai-chat", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("OPTIONS chat: %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("OPTIONS body should be empty, got %q", w.Body.String())
	}
}

func TestRouter_ChatEndToEnd(t *testing.T) {
	cfg := testConfig()
	r := newTestRouter(t, Dependencies{DB: newTestDB(t), LLM: &fakeLLM{reply: "  We build rural-friendly sites.  "}}, cfg)

	w := postJSON(r, "/api/openai-chat", map[string]any{"input": "What do you build?"})
	if w.Code != http.StatusOK {
		t.Fatalf("chat: %d %s", w.Code, w.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body["success"] != true || body["text"] != "We build rural-friendly sites." || body["model"] != "gpt-3.5-turbo" {
		t.Fatalf("unexpected body: %v", body)
	}

	// First request consumed one unit of the quota.
	if w.Header().Get("X-RateLimit-Limit") != "10" || w.Header().Get("X-RateLimit-Remaining") != "9" {
		t.Fatalf("quota headers: limit=%q remaining=%q",
			w.Header().Get("X-RateLimit-Limit"), w.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestRouter_ChatValidation(t *testing.T) {
	r := newTestRouter(t, Dependencies{DB: newTestDB(t), LLM: &fakeLLM{reply: "hi"}}, testConfig())

	// Missing input.
	w := postJSON(r, "/api/openai-chat", map[string]any{})
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "Missing input") {
		t.Fatalf("missing input: %d %s", w.Code, w.Body.String())
	}

	// Malformed JSON.
	w2 := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/openai-chat", strings.NewReader("{nope"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w2, req)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("malformed json: %d", w2.Code)
	}

	// 500 characters pass, 501 are rejected.
	okInput := strings.Repeat("a", 500)
	if w := postJSON(r, "/api/openai-chat", map[string]any{"input": okInput}); w.Code != http.StatusOK {
		t.Fatalf("500-char input: %d %s", w.Code, w.Body.String())
	}
	longInput := strings.Repeat("a", 501)
	w3 := postJSON(r, "/api/openai-chat", map[string]any{"input": longInput})
	if w3.Code != http.StatusBadRequest || !strings.Contains(w3.Body.String(), "Input too long") {
		t.Fatalf("501-char input: %d %s", w3.Code, w3.Body.String())
	}
}

func TestRouter_ChatQuotaExhaustion(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = 2
	deps := Dependencies{
		DB:    newTestDB(t),
		LLM:   &fakeLLM{reply: "hi"},
		Quota: ratelimit.NewMemoryStore(2, time.Hour),
	}
	r := newTestRouter(t, deps, cfg)

	for i := 0; i < 2; i++ {
		if w := postJSON(r, "/api/openai-chat", map[string]any{"input": "hello"}); w.Code != http.StatusOK {
			t.Fatalf("request %d: %d", i+1, w.Code)
		}
	}
	w := postJSON(r, "/api/openai-chat", map[string]any{"input": "hello"})
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Rate limit exceeded") {
		t.Fatalf("429 body: %s", w.Body.String())
	}
	if w.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("remaining after exhaustion: %q", w.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestRouter_ChatUpstreamFailureIsGeneric(t *testing.T) {
	r := newTestRouter(t, Dependencies{
		DB:  newTestDB(t),
		LLM: &fakeLLM{err: fmt.Errorf("provider exploded: key sk-secret")},
	}, testConfig())

	w := postJSON(r, "/api/openai-chat", map[string]any{"input": "hello"})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("upstream failure: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Internal server error") {
		t.Fatalf("500 body: %s", w.Body.String())
	}
	// Upstream detail must never leak to the client.
	if strings.Contains(w.Body.String(), "sk-secret") || strings.Contains(w.Body.String(), "provider exploded") {
		t.Fatalf("leaked upstream detail: %s", w.Body.String())
	}
}

func TestRouter_NewsletterEndToEnd(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, Dependencies{DB: db, LLM: &fakeLLM{reply: "hi"}}, testConfig())

	w := postJSON(r, "/api/newsletter-signup", map[string]any{"email": "Ada@Example.com", "source": "footer"})
	if w.Code != http.StatusCreated || !strings.Contains(w.Body.String(), "Successfully subscribed") {
		t.Fatalf("signup: %d %s", w.Code, w.Body.String())
	}

	// Same address again: idempotent 200.
	w = postJSON(r, "/api/newsletter-signup", map[string]any{"email": "ada@example.com"})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Already subscribed") {
		t.Fatalf("repeat signup: %d %s", w.Code, w.Body.String())
	}

	// Bad email.
	w = postJSON(r, "/api/newsletter-signup", map[string]any{"email": "not-an-email"})
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "Invalid email format") {
		t.Fatalf("bad email: %d %s", w.Code, w.Body.String())
	}

	var count int64
	if err := db.Model(&domain.NewsletterSubscriber{}).Count(&count).Error; err != nil || count != 1 {
		t.Fatalf("subscriber rows = %d, err = %v", count, err)
	}
}

func TestRouter_ContactEndToEnd(t *testing.T) {
	mailer := &fakeMailer{}
	r := newTestRouter(t, Dependencies{DB: newTestDB(t), LLM: &fakeLLM{reply: "hi"}, Mailer: mailer}, testConfig())

	w := postJSON(r, "/api/contact", map[string]any{
		"name":    "Ada",
		"email":   "ada@example.com",
		"message": "Need a site.",
	})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"success":true`) {
		t.Fatalf("contact: %d %s", w.Code, w.Body.String())
	}
	if len(mailer.sent) != 1 || mailer.sent[0].Subject != "New lead: Ada" {
		t.Fatalf("mail not delivered as expected: %+v", mailer.sent)
	}

	// Required fields.
	w = postJSON(r, "/api/contact", map[string]any{"name": "Ada"})
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "Missing required fields") {
		t.Fatalf("missing fields: %d %s", w.Code, w.Body.String())
	}
}

func TestRouter_OptimizerEndToEnd(t *testing.T) {
	r := newTestRouter(t, Dependencies{DB: newTestDB(t), LLM: &fakeLLM{reply: "hi"}}, testConfig())

	// GET returns the service description.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/transport-optimizer", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Medical Transport Route Optimizer") {
		t.Fatalf("optimizer info: %d %s", w.Code, w.Body.String())
	}

	// POST without a trip.
	w2 := postJSON(r, "/api/transport-optimizer", map[string]any{})
	if w2.Code != http.StatusBadRequest || !strings.Contains(w2.Body.String(), "Missing trip data") {
		t.Fatalf("missing trip: %d %s", w2.Code, w2.Body.String())
	}

	// POST with a trip ranks the demo fleet.
	trip := map[string]any{
		"pickup": map[string]any{
			"location": map[string]any{"lat": 40.7128, "lng": -74.0060},
			"timeWindow": map[string]any{
				"earliest": time.Now().Add(10 * time.Minute).Format(time.RFC3339),
				"latest":   time.Now().Add(2 * time.Hour).Format(time.RFC3339),
			},
		},
		"requirements": map[string]any{"vehicleType": "wheelchair"},
	}
	w3 := postJSON(r, "/api/transport-optimizer", map[string]any{"trip": trip})
	if w3.Code != http.StatusOK {
		t.Fatalf("optimize: %d %s", w3.Code, w3.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(w3.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	matches, _ := body["matches"].([]any)
	if body["success"] != true || len(matches) == 0 || body["bestMatch"] == nil {
		t.Fatalf("unexpected optimize body: %v", body)
	}
}

func TestRouter_LeadCapturedAfterChat(t *testing.T) {
	db := newTestDB(t)
	reply := `Thanks! {"name":"Ada Lovelace","email":"ada@example.com","phone":null,"businessName":null,` +
		`"website":null,"projectType":"E-commerce","budgetRange":"$2k-5k","timeline":"ASAP",` +
		`"requirements":"Online store","confidence":0.9}`
	r := newTestRouter(t, Dependencies{DB: db, LLM: &fakeLLM{reply: reply}}, testConfig())

	w := postJSON(r, "/api/openai-chat", map[string]any{
		"input":     "I need an online store, budget $2k-5k, ASAP. I'm ada@example.com",
		"sessionId": "sess-1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("chat: %d %s", w.Code, w.Body.String())
	}

	// Extraction is fire-and-forget; poll briefly for the row.
	deadline := time.Now().Add(2 * time.Second)
	for {
		var count int64
		if err := db.Model(&domain.Lead{}).Count(&count).Error; err == nil && count == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("lead row never appeared")
		}
		time.Sleep(20 * time.Millisecond)
	}

	var lead domain.Lead
	if err := db.First(&lead).Error; err != nil {
		t.Fatalf("load lead: %v", err)
	}
	if lead.Email == nil || *lead.Email != "ada@example.com" {
		t.Fatalf("lead email = %v", lead.Email)
	}
	if lead.Priority != domain.PriorityHigh || lead.Status != domain.LeadStatusNew {
		t.Fatalf("priority=%q status=%q", lead.Priority, lead.Status)
	}
	if lead.SessionID != "sess-1" {
		t.Fatalf("session id = %q", lead.SessionID)
	}
}

func TestRedactedAccessLogging(t *testing.T) {
	cfg := testConfig()
	cfg.LogRedact = true

	var buf bytes.Buffer
	orig := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = orig })

	r := newTestRouter(t, Dependencies{}, cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health?email=jane.doe%40example.com", nil)
	req.Header.Set("Referer", "https://example.com/?contact=jane.doe@example.com")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}

	logs := buf.String()
	if strings.Contains(logs, "jane.doe@example.com") || strings.Contains(logs, "jane.doe%40example.com") {
		t.Fatalf("visitor email reached the access log: %s", logs)
	}
	if !strings.Contains(logs, "[REDACTED:email]") {
		t.Fatalf("expected scrubbed query in access log: %s", logs)
	}
	if n := strings.Count(logs, `"message":"request"`); n != 1 {
		t.Fatalf("access log lines per request = %d, want 1: %s", n, logs)
	}
}
