package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/douggil74/busy-preacher-mvp-sub000/pkg/logging"
)

// Sender delivers one rendered escalation alert. Implementations can be
// swapped (SendGrid, SMTP, a log-only sender for local runs) without touching
// the dispatcher.
type Sender interface {
	Send(ctx context.Context, alert AlertEmail) error
}

// AlertEmail is an escalation notification rendered and ready for delivery.
// Text is the plain-text body; HTML is optional and falls back to Text.
type AlertEmail struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// SendGridSender delivers alerts through the SendGrid API.
type SendGridSender struct {
	client *sendgrid.Client
	from   *mail.Email
	logger *logging.Logger
}

// NewSendGridSender returns nil when no API key is configured; callers treat a
// nil sender as email disabled.
func NewSendGridSender(apiKey, fromEmail, fromName string, logger *logging.Logger) *SendGridSender {
	if strings.TrimSpace(apiKey) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if fromName == "" {
		fromName = "The Busy Preacher"
	}
	return &SendGridSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromEmail),
		logger: logger,
	}
}

func (s *SendGridSender) Send(ctx context.Context, alert AlertEmail) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("notify: sendgrid sender not configured")
	}

	htmlBody := alert.HTML
	if htmlBody == "" {
		htmlBody = alert.Text
	}
	msg := mail.NewSingleEmail(s.from, alert.Subject, mail.NewEmail("", alert.To), alert.Text, htmlBody)

	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		s.logger.Error("alert email send failed", "to", alert.To, "error", err)
		return fmt.Errorf("notify: sendgrid send failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		s.logger.Error("sendgrid rejected alert email",
			"to", alert.To,
			"status", resp.StatusCode,
			"body", resp.Body,
		)
		return fmt.Errorf("notify: sendgrid returned status %d", resp.StatusCode)
	}

	s.logger.Info("alert email delivered", "to", alert.To, "subject", alert.Subject)
	return nil
}

// LogSender writes the alert to the application log instead of sending it.
// Used when SendGrid is not configured so escalations still leave a trace.
type LogSender struct {
	logger *logging.Logger
}

func NewLogSender(logger *logging.Logger) *LogSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, alert AlertEmail) error {
	s.logger.Info("alert email suppressed, email disabled",
		"to", alert.To,
		"subject", alert.Subject,
	)
	return nil
}

var _ Sender = (*SendGridSender)(nil)
var _ Sender = (*LogSender)(nil)
