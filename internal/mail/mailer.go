// Package mail provides the outbound mail capability. The Mailer interface is
// constructed once at startup and injected into the services that dispatch
// mail, so tests can substitute a double and production can swap providers
// without touching callers.
package mail

import (
	"context"

	"github.com/resend/resend-go/v2"
)

// Result reports the outcome of a dispatch. Preview is a human-viewable link
// to inspect the message and is only populated by the dev outbox.
type Result struct {
	Preview string
}

// Mailer dispatches a single email. Implementations must honor ctx
// cancellation so a slow provider cannot hang the request.
type Mailer interface {
	Send(ctx context.Context, to, subject, text, html string) (Result, error)
}

// ResendMailer sends mail through the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
}

// NewResendMailer creates a Mailer backed by Resend.
func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// Send dispatches the message via Resend. No preview link is ever produced.
func (m *ResendMailer) Send(ctx context.Context, to, subject, text, html string) (Result, error) {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Text:    text,
		Html:    html,
	}
	if _, err := m.client.Emails.SendWithContext(ctx, params); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}
