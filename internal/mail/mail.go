// Package mail sends transactional notification emails through Resend. The
// Mailer interface keeps the service layer testable without network calls.
package mail

import (
	"context"

	"github.com/resend/resend-go/v2"
)

// Email is a single outbound notification.
type Email struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
}

// Mailer delivers an email. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, e Email) error
}

// ResendMailer delivers through the Resend API.
type ResendMailer struct {
	client *resend.Client
}

// NewResendMailer builds a ResendMailer with the given API key.
func NewResendMailer(apiKey string) *ResendMailer {
	return &ResendMailer{client: resend.NewClient(apiKey)}
}

// Send delivers e through Resend.
func (m *ResendMailer) Send(ctx context.Context, e Email) error {
	_, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    e.From,
		To:      e.To,
		ReplyTo: e.ReplyTo,
		Subject: e.Subject,
		Html:    e.HTML,
	})
	return err
}
