// Package services – ChatService
//
// This file implements ChatService, the application-level component that
// produces the visitor-facing assistant reply. It validates the input length,
// assembles the provider-neutral message list (system prompt + accumulated
// history + new turn), and delegates to the configured llm.Client.
//
// Observability: public methods are OpenTelemetry-instrumented.
package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ruralweb/leadgen-backend/internal/domain"
	"github.com/ruralweb/leadgen-backend/internal/llm"
)

// ChatService produces assistant replies for the marketing-site chat widget.
type ChatService struct {
	LLM         llm.Client
	Model       string
	Temperature float64
	MaxTokens   int

	// MaxInputRunes caps the visitor's message length (anti-abuse ceiling).
	MaxInputRunes int
}

// Reply validates input and returns the assistant's reply text along with the
// model that served it.
//
// Validation failures come back as ErrEmptyInput / ErrInputTooLong; provider
// failures are wrapped in ErrUpstream so handlers can report them generically
// without leaking upstream detail.
func (s *ChatService) Reply(ctx context.Context, input string, history []domain.ChatMessage) (string, string, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "Reply",
		trace.WithAttributes(
			attribute.String("llm.model", s.Model),
			attribute.Int("chat.history_len", len(history)),
		),
	)
	defer span.End()

	if strings.TrimSpace(input) == "" {
		return "", "", ErrEmptyInput
	}
	if s.MaxInputRunes > 0 && utf8.RuneCountInString(input) > s.MaxInputRunes {
		return "", "", ErrInputTooLong
	}
	if s.LLM == nil {
		return "", "", ErrNotConfigured
	}

	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: llm.AssistantSystemPrompt})
	for _, m := range history {
		role := llm.RoleUser
		if m.Role == domain.RoleAssistant {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: m.Content})
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: input})

	text, model, err := s.LLM.Complete(ctx, llm.Request{
		Model:       s.Model,
		Messages:    msgs,
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
	})
	if err != nil {
		span.RecordError(err)
		return "", "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return strings.TrimSpace(text), model, nil
}
