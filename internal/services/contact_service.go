package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ruralweb/leadgen-backend/internal/mail"
)

// ContactSubmission is a contact-form post from the marketing site.
type ContactSubmission struct {
	Name         string
	Email        string
	Company      string
	Message      string
	InterestedIn string
}

// ContactService turns contact-form submissions into notification emails.
type ContactService struct {
	Mailer mail.Mailer
	From   string
	To     string
}

// Submit validates the submission and sends the notification email. The
// visitor's address goes into Reply-To so the notification can be answered
// directly; an address that fails validation is dropped rather than rejected.
func (s *ContactService) Submit(ctx context.Context, sub ContactSubmission) error {
	tr := otel.Tracer("services/ContactService")
	ctx, span := tr.Start(ctx, "Submit",
		trace.WithAttributes(attribute.Bool("contact.has_company", sub.Company != "")),
	)
	defer span.End()

	if strings.TrimSpace(sub.Name) == "" ||
		strings.TrimSpace(sub.Email) == "" ||
		strings.TrimSpace(sub.Message) == "" {
		return ErrMissingFields
	}
	if s.Mailer == nil || s.To == "" {
		return ErrNotConfigured
	}

	replyTo := strings.TrimSpace(sub.Email)
	if !ValidEmail(replyTo) {
		replyTo = ""
	}

	err := s.Mailer.Send(ctx, mail.Email{
		From:    s.From,
		To:      []string{s.To},
		ReplyTo: replyTo,
		Subject: "New lead: " + sub.Name,
		HTML:    renderContactEmail(sub),
	})
	if err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// renderContactEmail builds the notification body. All visitor-supplied text
// is HTML-escaped before interpolation.
func renderContactEmail(sub ContactSubmission) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; line-height:1.6; color:#333;">`)
	b.WriteString(`<h2 style="margin:0 0 10px 0;">New Contact Submission</h2>`)
	fmt.Fprintf(&b, `<p><strong>Name:</strong> %s</p>`, html.EscapeString(sub.Name))
	fmt.Fprintf(&b, `<p><strong>Email:</strong> <a href="mailto:%s">%s</a></p>`,
		html.EscapeString(sub.Email), html.EscapeString(sub.Email))
	if sub.Company != "" {
		fmt.Fprintf(&b, `<p><strong>Company:</strong> %s</p>`, html.EscapeString(sub.Company))
	}
	if sub.InterestedIn != "" {
		fmt.Fprintf(&b, `<p><strong>Interested In:</strong> %s</p>`, html.EscapeString(sub.InterestedIn))
	}
	b.WriteString(`<div style="margin-top:16px; padding:12px; background:#f8f9fa; border-left:4px solid #667eea; border-radius:6px;">`)
	b.WriteString(`<div style="font-weight:600; margin-bottom:6px;">Message</div><div>`)
	b.WriteString(strings.ReplaceAll(html.EscapeString(sub.Message), "\n", "<br>"))
	b.WriteString(`</div></div></body></html>`)
	return b.String()
}
