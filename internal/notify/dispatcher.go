// Package notify delivers escalation alerts to a human operator and records
// moderation log entries. Everything here is best-effort: failures are logged
// and swallowed so the user-facing reply is never delayed or broken by the
// alerting path.
package notify

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/douggil74/busy-preacher-mvp-sub000/internal/guidance"
	"github.com/douggil74/busy-preacher-mvp-sub000/internal/moderation"
	"github.com/douggil74/busy-preacher-mvp-sub000/pkg/logging"
)

// fallbackRecipient receives escalation emails when no address is configured.
const fallbackRecipient = "pastor@busypreacher.app"

const dispatchTimeout = 30 * time.Second

// Dispatcher implements guidance.Alerter. Dispatch and Log return immediately;
// the actual send and insert run in the background against a fresh context so
// they survive the request that triggered them.
type Dispatcher struct {
	sender    Sender
	store     moderation.Store
	recipient string
	baseURL   string
	logger    *logging.Logger

	wg sync.WaitGroup
}

// DispatcherConfig holds delivery targets for escalation notifications.
type DispatcherConfig struct {
	// Recipient is the pastor's alert address. Empty falls back to
	// fallbackRecipient.
	Recipient string
	// BaseURL is the public site URL used for links inside the email.
	BaseURL string
}

// NewDispatcher creates a dispatcher. A nil sender disables email, a nil store
// disables moderation logging; both remain safe to call.
func NewDispatcher(sender Sender, store moderation.Store, cfg DispatcherConfig, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	recipient := strings.TrimSpace(cfg.Recipient)
	if recipient == "" {
		recipient = fallbackRecipient
	}
	return &Dispatcher{
		sender:    sender,
		store:     store,
		recipient: recipient,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		logger:    logger,
	}
}

// Dispatch sends the escalation email in the background. It never blocks on or
// reports delivery failure.
func (d *Dispatcher) Dispatch(event guidance.EscalationEvent) {
	if d.sender == nil {
		d.logger.Warn("escalation event dropped, no email sender configured",
			"type", event.Type,
			"session_id", event.SessionID,
		)
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		alert := AlertEmail{
			To:      d.recipient,
			Subject: event.Subject,
			Text:    renderEventText(event),
			HTML:    d.renderEventHTML(event),
		}
		if err := d.sender.Send(ctx, alert); err != nil {
			d.logger.Error("escalation email failed",
				"type", event.Type,
				"session_id", event.SessionID,
				"error", err,
			)
			return
		}
		d.logger.Info("escalation email dispatched",
			"type", event.Type,
			"session_id", event.SessionID,
		)
	}()
}

// Log appends a moderation entry in the background. Failures are logged and
// swallowed.
func (d *Dispatcher) Log(entry moderation.Entry) {
	if d.store == nil {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		if err := d.store.Insert(ctx, entry); err != nil {
			d.logger.Error("moderation log insert failed",
				"type", entry.Type,
				"error", err,
			)
		}
	}()
}

// Wait blocks until all in-flight dispatches finish. Called on shutdown and in
// tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

var _ guidance.Alerter = (*Dispatcher)(nil)

func renderEventText(event guidance.EscalationEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", event.Subject)
	if event.FirstName != "" {
		fmt.Fprintf(&b, "Name: %s\n", event.FirstName)
	}
	if event.MentionedAge != nil {
		fmt.Fprintf(&b, "Mentioned age: %d\n", *event.MentionedAge)
	}
	fmt.Fprintf(&b, "Session: %s\nIP: %s\nTime: %s\n\n",
		event.SessionID, event.ClientIP, event.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "Question:\n%s\n\n", event.Question)
	if event.Answer != "" {
		fmt.Fprintf(&b, "Assistant reply:\n%s\n\n", event.Answer)
	}
	if len(event.History) > 0 {
		b.WriteString("Full conversation:\n")
		for _, turn := range event.History {
			fmt.Fprintf(&b, "[%s] %s\n", turn.Role, turn.Content)
		}
	}
	return b.String()
}

func (d *Dispatcher) renderEventHTML(event guidance.EscalationEvent) string {
	var b strings.Builder

	fmt.Fprintf(&b, `<div style="font-family:Georgia,serif;max-width:640px;margin:0 auto;">`)
	fmt.Fprintf(&b, `<div style="background:%s;color:#ffffff;padding:16px 20px;border-radius:6px 6px 0 0;">`, event.Urgency)
	fmt.Fprintf(&b, `<h2 style="margin:0;font-size:18px;">%s</h2>`, html.EscapeString(event.Subject))
	fmt.Fprintf(&b, `<p style="margin:4px 0 0;font-size:13px;opacity:0.9;">%s</p>`, html.EscapeString(string(event.Type)))
	b.WriteString(`</div>`)

	b.WriteString(`<div style="border:1px solid #e5e7eb;border-top:none;padding:20px;border-radius:0 0 6px 6px;">`)

	b.WriteString(`<table style="font-size:14px;border-collapse:collapse;" cellpadding="4">`)
	if event.FirstName != "" {
		writeDetailRow(&b, "Name", event.FirstName)
	}
	if event.MentionedAge != nil {
		writeDetailRow(&b, "Mentioned age", fmt.Sprintf("%d", *event.MentionedAge))
	}
	writeDetailRow(&b, "Session", event.SessionID)
	writeDetailRow(&b, "IP address", event.ClientIP)
	writeDetailRow(&b, "User agent", event.UserAgent)
	writeDetailRow(&b, "Time", event.Timestamp.Format(time.RFC1123))
	b.WriteString(`</table>`)

	fmt.Fprintf(&b, `<h3 style="font-size:15px;margin:16px 0 6px;">Question</h3><p style="background:#f9fafb;padding:12px;border-radius:4px;">%s</p>`,
		html.EscapeString(event.Question))

	if event.Answer != "" {
		fmt.Fprintf(&b, `<h3 style="font-size:15px;margin:16px 0 6px;">Assistant reply</h3><p style="background:#f9fafb;padding:12px;border-radius:4px;">%s</p>`,
			html.EscapeString(event.Answer))
	}

	if len(event.History) > 0 {
		b.WriteString(`<h3 style="font-size:15px;margin:16px 0 6px;">Full conversation</h3>`)
		b.WriteString(`<table style="width:100%;font-size:13px;border-collapse:collapse;">`)
		for _, turn := range event.History {
			bg := "#ffffff"
			if turn.Role == guidance.RoleAssistant {
				bg = "#f3f4f6"
			}
			fmt.Fprintf(&b, `<tr style="background:%s;"><td style="padding:6px 8px;vertical-align:top;width:80px;font-weight:bold;">%s</td><td style="padding:6px 8px;">%s</td></tr>`,
				bg, html.EscapeString(turn.Role), html.EscapeString(turn.Content))
		}
		b.WriteString(`</table>`)
	}

	if d.baseURL != "" {
		fmt.Fprintf(&b, `<p style="margin-top:20px;font-size:13px;"><a href="%s/admin/moderation" style="color:#2563eb;">Open the moderation dashboard</a></p>`,
			d.baseURL)
	}

	b.WriteString(`</div></div>`)
	return b.String()
}

func writeDetailRow(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, `<tr><td style="font-weight:bold;padding-right:12px;">%s</td><td>%s</td></tr>`,
		html.EscapeString(label), html.EscapeString(value))
}
