package guidance

import (
	"time"

	"github.com/douggil74/busy-preacher-mvp-sub000/internal/moderation"
)

// Alerter receives escalation events and moderation log entries. Both calls
// are best-effort for implementations: failures are logged and swallowed,
// never returned to the pipeline.
type Alerter interface {
	Dispatch(event EscalationEvent)
	Log(entry moderation.Entry)
}

// NoopAlerter discards everything. Used in tests and when alerting is not
// configured.
type NoopAlerter struct{}

func (NoopAlerter) Dispatch(EscalationEvent) {}
func (NoopAlerter) Log(moderation.Entry)     {}

// EscalationInput carries everything the decision table consumes.
type EscalationInput struct {
	Classification Classification
	Ending         bool
	Question       string
	Answer         string
	SessionID      string
	ClientIP       string
	UserAgent      string
	FirstName      string
	History        []ConversationTurn
}

// DecideEscalation evaluates the notification decision table top to bottom and
// returns at most one event. Returns nil when nothing warrants an alert.
//
// Abusive-labeled inputs are handled separately by the orchestrator, which
// fires ABUSIVE_CHAT_ENDED immediately at classification time; they never
// reach this function.
func DecideEscalation(in EscalationInput) *EscalationEvent {
	combined := in.Question + "\n" + in.Answer

	var notifType NotificationType
	switch {
	case in.Classification.MandatoryReport:
		notifType = NotifyMinorAbuse
	case in.Classification.Crisis && IsSuicideSpecific(in.Question):
		notifType = NotifySuicideThreat
	case IsHomicideThreat(in.Question):
		notifType = NotifyHomicideThreat
	case in.Classification.Crisis:
		notifType = NotifyCrisis
	case in.Ending:
		notifType = NotifyConversationEnded
	case IsSerious(combined):
		notifType = NotifySerious
	default:
		return nil
	}

	return newEscalationEvent(notifType, in)
}

// NewAbuseEvent builds the immediate abuse-report event fired at
// classification time, before any generation runs.
func NewAbuseEvent(in EscalationInput) *EscalationEvent {
	return newEscalationEvent(NotifyAbusiveChatEnded, in)
}

func newEscalationEvent(t NotificationType, in EscalationInput) *EscalationEvent {
	return &EscalationEvent{
		Type:         t,
		Urgency:      UrgencyFor(t),
		Subject:      SubjectFor(t),
		Question:     in.Question,
		Answer:       in.Answer,
		SessionID:    in.SessionID,
		ClientIP:     in.ClientIP,
		UserAgent:    in.UserAgent,
		FirstName:    in.FirstName,
		MentionedAge: in.Classification.MentionedAge,
		History:      in.History,
		Timestamp:    time.Now().UTC(),
	}
}

// SubjectFor returns the notification email subject line for a type.
func SubjectFor(t NotificationType) string {
	switch t {
	case NotifyMinorAbuse:
		return "URGENT: Possible minor abuse disclosure (mandatory report)"
	case NotifySuicideThreat:
		return "URGENT: Suicide threat in pastoral guidance chat"
	case NotifyHomicideThreat:
		return "URGENT: Threat of harm to another person"
	case NotifyCrisis:
		return "Crisis language detected in pastoral guidance chat"
	case NotifyAbusiveChatEnded:
		return "Abusive chat ended automatically"
	case NotifyConversationEnded:
		return "Pastoral guidance conversation ended by assistant"
	case NotifySerious:
		return "Serious situation shared in pastoral guidance chat"
	default:
		return "Pastoral guidance notification"
	}
}

// UrgencyFor returns the header color tag for a type.
func UrgencyFor(t NotificationType) string {
	switch t {
	case NotifyMinorAbuse, NotifySuicideThreat, NotifyHomicideThreat:
		return "#dc2626" // red
	case NotifyCrisis:
		return "#ea580c" // orange
	case NotifyAbusiveChatEnded, NotifyConversationEnded:
		return "#ca8a04" // amber
	default:
		return "#2563eb" // blue
	}
}
