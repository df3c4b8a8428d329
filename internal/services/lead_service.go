// Package services – LeadService
//
// This file implements LeadService, the background lead-capture pipeline. It
// asks the extraction model to mine a conversation transcript for contact and
// project information, gates on the presence of contact info, computes a
// deterministic priority, and upserts the result into the chat_leads table
// keyed by email (preferred) or session id (fallback).
//
// The pipeline is strictly best-effort: it runs detached from the chat
// response path, and every failure is logged and swallowed. A failed
// extraction silently forfeits that turn's lead-capture opportunity.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/ruralweb/leadgen-backend/internal/domain"
	"github.com/ruralweb/leadgen-backend/internal/llm"
	"github.com/ruralweb/leadgen-backend/internal/repo"
)

var (
	leadsExtracted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leads_extracted_total",
		Help: "Leads persisted from chat conversations, by priority.",
	}, []string{"priority"})

	leadExtractionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lead_extraction_failures_total",
		Help: "Lead extraction attempts abandoned, by pipeline stage.",
	}, []string{"stage"})

	leadExtractionSkips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lead_extraction_skips_total",
		Help: "Extractions discarded because the conversation held no contact info.",
	})
)

// LeadMeta carries request metadata stored alongside a newly inserted lead.
type LeadMeta struct {
	IP        string
	UserAgent string
	Referrer  string
	SessionID string
}

// LeadService mines conversations for leads and persists them.
type LeadService struct {
	DB  *gorm.DB
	LLM llm.Client

	Model       string
	Temperature float64
	MaxTokens   int

	// Timeout bounds the detached extraction task (LLM call + DB write).
	Timeout time.Duration
}

// LeadPriority computes a lead's priority tier. Strict if/else-if chain:
// only the first matching tier applies.
func LeadPriority(l *llm.ExtractedLead) string {
	hasEmail := notEmpty(l.Email)
	hasBudget := notEmpty(l.BudgetRange)
	hasTimeline := notEmpty(l.Timeline)
	hasRequirements := notEmpty(l.Requirements)

	switch {
	case hasEmail && hasBudget && hasTimeline:
		return domain.PriorityHigh
	case hasEmail && (hasBudget || hasRequirements):
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

func notEmpty(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// ExtractAndSaveAsync launches ExtractAndSave on a detached goroutine with its
// own context and timeout. It never blocks the caller, and a panic inside the
// pipeline is confined to the task.
func (s *LeadService) ExtractAndSaveAsync(conv []domain.ChatMessage, meta LeadMeta) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("lead extraction panicked")
			}
		}()

		timeout := s.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := s.ExtractAndSave(ctx, conv, meta); err != nil {
			log.Warn().Err(err).Str("session_id", meta.SessionID).Msg("lead extraction failed")
		}
	}()
}

// ExtractAndSave runs the full pipeline synchronously: extract, gate,
// prioritize, upsert. The returned error exists for tests and logging; no
// caller surfaces it to an end user.
func (s *LeadService) ExtractAndSave(ctx context.Context, conv []domain.ChatMessage, meta LeadMeta) error {
	tr := otel.Tracer("services/LeadService")
	ctx, span := tr.Start(ctx, "ExtractAndSave",
		trace.WithAttributes(
			attribute.Int("chat.transcript_len", len(conv)),
			attribute.String("lead.session_id", meta.SessionID),
		),
	)
	defer span.End()

	lead, err := s.extract(ctx, conv)
	if err != nil {
		span.RecordError(err)
		leadExtractionFailures.WithLabelValues("extract").Inc()
		return err
	}

	if !lead.HasContactInfo() {
		leadExtractionSkips.Inc()
		return nil
	}

	priority := LeadPriority(lead)
	if err := s.upsert(ctx, lead, priority, conv, meta); err != nil {
		span.RecordError(err)
		leadExtractionFailures.WithLabelValues("persist").Inc()
		return err
	}

	leadsExtracted.WithLabelValues(priority).Inc()
	return nil
}

// extract asks the model for a structured lead and parses its reply.
func (s *LeadService) extract(ctx context.Context, conv []domain.ChatMessage) (*llm.ExtractedLead, error) {
	msgs := make([]llm.Message, 0, len(conv))
	for _, m := range conv {
		msgs = append(msgs, llm.Message{Role: m.Role, Content: m.Content})
	}

	text, _, err := s.LLM.Complete(ctx, llm.Request{
		Model:       s.Model,
		Messages:    llm.ExtractionMessages(msgs),
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
	})
	if err != nil {
		return nil, err
	}
	return llm.ParseLeadJSON(text)
}

// upsert finds the most recent matching lead by email, else by session id,
// and overwrites it with the non-null extracted fields; absent a match it
// inserts a fresh record carrying the request metadata.
//
// The read-then-write sequence is not transactional: two concurrent turns for
// the same identity can race. Accepted for best-effort lead capture.
func (s *LeadService) upsert(ctx context.Context, lead *llm.ExtractedLead, priority string, conv []domain.ChatMessage, meta LeadMeta) error {
	existing, err := s.findExisting(ctx, lead, meta)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}

	transcript := domain.Conversation(conv)

	if existing != nil {
		updates := map[string]any{
			"full_conversation":     transcript,
			"extraction_confidence": lead.Confidence,
			"priority":              priority,
		}
		putIfSet(updates, "name", lead.Name)
		putIfSet(updates, "email", lead.Email)
		putIfSet(updates, "phone", lead.Phone)
		putIfSet(updates, "business_name", lead.BusinessName)
		putIfSet(updates, "website", lead.Website)
		putIfSet(updates, "project_type", lead.ProjectType)
		putIfSet(updates, "budget_range", lead.BudgetRange)
		putIfSet(updates, "timeline", lead.Timeline)
		putIfSet(updates, "requirements", lead.Requirements)
		return repo.UpdateLead(ctx, s.DB, existing.ID, updates)
	}

	row := &domain.Lead{
		Name:                 lead.Name,
		Email:                lead.Email,
		Phone:                lead.Phone,
		BusinessName:         lead.BusinessName,
		Website:              lead.Website,
		ProjectType:          lead.ProjectType,
		BudgetRange:          lead.BudgetRange,
		Timeline:             lead.Timeline,
		Requirements:         lead.Requirements,
		Status:               domain.LeadStatusNew,
		Priority:             priority,
		ExtractionConfidence: lead.Confidence,
		FullConversation:     transcript,
		SessionID:            meta.SessionID,
		IPAddress:            meta.IP,
		UserAgent:            meta.UserAgent,
		Referrer:             meta.Referrer,
	}
	return repo.InsertLead(ctx, s.DB, row)
}

// findExisting resolves the lead's identity: email first, session id second.
// With neither present there is nothing to match and the caller inserts.
func (s *LeadService) findExisting(ctx context.Context, lead *llm.ExtractedLead, meta LeadMeta) (*domain.Lead, error) {
	if notEmpty(lead.Email) {
		return repo.FindLatestLeadByEmail(ctx, s.DB, strings.TrimSpace(*lead.Email))
	}
	if strings.TrimSpace(meta.SessionID) != "" {
		return repo.FindLatestLeadBySession(ctx, s.DB, meta.SessionID)
	}
	return nil, repo.ErrNotFound
}

func putIfSet(m map[string]any, col string, v *string) {
	if notEmpty(v) {
		m[col] = strings.TrimSpace(*v)
	}
}
