// Package notify sends best-effort transactional email.
package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Notifier delivers billing notices to subscribers.
type Notifier interface {
	PaymentFailed(ctx context.Context, toEmail, toName string) error
}

// Nop discards every notice. Used when no mail provider is configured.
type Nop struct{}

func (Nop) PaymentFailed(context.Context, string, string) error { return nil }

// SendGrid delivers notices through the SendGrid v3 API.
type SendGrid struct {
	client  *sendgrid.Client
	from    *mail.Email
	billing string
}

// NewSendGrid creates a SendGrid notifier. billingURL is linked in the message body.
func NewSendGrid(apiKey, fromEmail, billingURL string) *SendGrid {
	return &SendGrid{
		client:  sendgrid.NewSendClient(apiKey),
		from:    mail.NewEmail("CapitalStack", fromEmail),
		billing: billingURL,
	}
}

// PaymentFailed tells the subscriber their latest invoice could not be charged.
func (s *SendGrid) PaymentFailed(ctx context.Context, toEmail, toName string) error {
	to := mail.NewEmail(toName, toEmail)
	subject := "Your CapitalStack payment failed"
	plain := fmt.Sprintf("We could not process your latest payment. Update your payment method at %s to keep your access.", s.billing)
	html := fmt.Sprintf(`<p>We could not process your latest payment.</p><p><a href="%s">Update your payment method</a> to keep your access.</p>`, s.billing)

	resp, err := s.client.SendWithContext(ctx, mail.NewSingleEmail(s.from, subject, to, plain, html))
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d", resp.StatusCode)
	}
	return nil
}
