// Package guidance implements the pastoral-guidance pipeline: input
// classification, sermon context retrieval, prompt assembly, reply generation,
// output scanning, and escalation decisions.
package guidance

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is one message in the running exchange. The caller supplies
// prior turns; the new question is appended last before generation.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Label is the single, mutually-exclusive input classification category.
type Label string

const (
	LabelAbusive  Label = "abusive"
	LabelSpam     Label = "spam"
	LabelOffTopic Label = "off-topic"
	LabelGreeting Label = "trivial-greeting"
	LabelFollowUp Label = "brief-follow-up"
	LabelNormal   Label = "normal"
)

// Classification is the full result of one input pass. Crisis and
// MandatoryReport are independent signals, never folded into the label: a
// message can be labeled normal and still carry Crisis=true.
type Classification struct {
	Label           Label
	Crisis          bool
	MandatoryReport bool
	// MentionedAge is the age parsed from phrasing like "I'm 15"; nil when no
	// acceptable age (0-99) was found.
	MentionedAge *int
}

// NotificationType identifies why a human is being alerted. At most one is
// selected per request.
type NotificationType string

const (
	NotifyMinorAbuse        NotificationType = "MINOR_ABUSE"
	NotifySuicideThreat     NotificationType = "SUICIDE_THREAT"
	NotifyHomicideThreat    NotificationType = "HOMICIDE_THREAT"
	NotifyCrisis            NotificationType = "CRISIS"
	NotifyAbusiveChatEnded  NotificationType = "ABUSIVE_CHAT_ENDED"
	NotifyConversationEnded NotificationType = "CONVERSATION_ENDED"
	NotifySerious           NotificationType = "SERIOUS"
)

// EscalationEvent is a transient, per-request alert for a human operator. It is
// never persisted beyond the outbound notification.
type EscalationEvent struct {
	Type         NotificationType
	Urgency      string // color tag for the notification header
	Subject      string
	Question     string
	Answer       string // empty when no reply was generated
	SessionID    string
	ClientIP     string
	UserAgent    string
	FirstName    string
	MentionedAge *int
	History      []ConversationTurn
	Timestamp    time.Time
}

// GuidanceRequest is the inbound payload for one pastoral-guidance exchange.
type GuidanceRequest struct {
	Question            string             `json:"question"`
	ConversationHistory []ConversationTurn `json:"conversationHistory,omitempty"`
	UserName            string             `json:"userName,omitempty"`
	UserEmail           string             `json:"userEmail,omitempty"`
	SessionID           string             `json:"sessionId,omitempty"`

	// Populated server-side from the request transport.
	ClientIP  string `json:"-"`
	UserAgent string `json:"-"`
}

// GuidanceResponse is the outbound payload for a successful exchange.
type GuidanceResponse struct {
	Answer            string `json:"answer"`
	IsCrisis          bool   `json:"isCrisis"`
	IsSerious         bool   `json:"isSerious"`
	IsMandatoryReport bool   `json:"isMandatoryReport"`
}
