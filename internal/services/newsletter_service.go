package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/ruralweb/leadgen-backend/internal/domain"
	"github.com/ruralweb/leadgen-backend/internal/repo"
)

// SubscribeOutcome distinguishes the three newsletter signup results.
type SubscribeOutcome int

const (
	// Subscribed: a new subscriber row was created.
	Subscribed SubscribeOutcome = iota
	// AlreadySubscribed: the email is already active; nothing changed.
	AlreadySubscribed
	// Reactivated: a previously unsubscribed email was switched back to active.
	Reactivated
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address. Intentionally
// loose; deliverability is the mail provider's problem.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// NewsletterService owns newsletter signups.
type NewsletterService struct {
	DB *gorm.DB
}

// Subscribe registers email, reactivates it if it previously unsubscribed, or
// reports it as already active. Emails are stored lowercased.
func (s *NewsletterService) Subscribe(ctx context.Context, email, source string, meta LeadMeta) (SubscribeOutcome, error) {
	tr := otel.Tracer("services/NewsletterService")
	ctx, span := tr.Start(ctx, "Subscribe",
		trace.WithAttributes(attribute.String("newsletter.source", source)),
	)
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return 0, ErrMissingFields
	}
	if !ValidEmail(email) {
		return 0, ErrInvalidEmail
	}
	if source == "" {
		source = "unknown"
	}

	existing, err := repo.FindSubscriberByEmail(ctx, s.DB, email)
	switch {
	case err == nil:
		if existing.Status == domain.SubscriberActive {
			return AlreadySubscribed, nil
		}
		if err := repo.ReactivateSubscriber(ctx, s.DB, existing.ID); err != nil {
			span.RecordError(err)
			return 0, err
		}
		return Reactivated, nil
	case errors.Is(err, repo.ErrNotFound):
		// fall through to insert
	default:
		span.RecordError(err)
		return 0, err
	}

	sub := &domain.NewsletterSubscriber{
		Email:     email,
		Source:    source,
		Status:    domain.SubscriberActive,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
	}
	if err := repo.InsertSubscriber(ctx, s.DB, sub); err != nil {
		span.RecordError(err)
		return 0, err
	}
	return Subscribed, nil
}
