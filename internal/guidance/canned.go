package guidance

import "math/rand"

// Chooser picks an index in [0, n). Production uses RandomChooser; tests
// inject a fixed chooser so canned-reply selection is deterministic.
type Chooser func(n int) int

// RandomChooser selects uniformly at random.
func RandomChooser(n int) int {
	if n <= 1 {
		return 0
	}
	return rand.Intn(n)
}

// FixedChooser always returns idx (clamped to range). Intended for tests.
func FixedChooser(idx int) Chooser {
	return func(n int) int {
		if n <= 0 {
			return 0
		}
		if idx >= n {
			return n - 1
		}
		return idx
	}
}

var abusiveReplies = []string{
	"I hear that you're frustrated, and I want this to be a respectful space for everyone. I'm here to walk alongside people seeking spiritual guidance, but I can't continue a conversation in this tone. If you'd like to talk about faith, doubt, or anything weighing on you, I'm glad to start fresh.",
	"It sounds like there's some real anger here, and anger is worth taking seriously. That said, this needs to stay a respectful conversation, so I'm going to pause it now. Whenever you're ready to talk honestly about what's underneath that anger, I'll be here.",
}

var spamReplies = []string{
	"This space is set aside for questions about faith, scripture, and life's struggles. I can't help with promotions or offers, but if something spiritual is on your heart, I'd love to hear it.",
	"I'm not able to engage with that kind of message here. If you have a question about scripture or something you're walking through, I'm glad to help.",
}

var offTopicReplies = []string{
	"That's outside what I can help with here. My place is questions of faith, scripture, prayer, and the struggles of daily life seen through that lens. Is there something along those lines on your mind?",
	"I'm afraid that's not something I can speak to. If there's a spiritual question behind it, or anything else weighing on you, I'm here for that.",
}

var greetingReplies = []string{
	"Hello, and welcome. I'm here to help with questions about scripture, faith, and whatever you're walking through. What's on your heart today?",
	"Good to see you. Whether it's a passage you're wrestling with or something heavier, I'm glad to listen. What would you like to talk about?",
	"Welcome, friend. Feel free to share a question about the Bible, prayer, or anything you're carrying right now.",
}

var signOffs = []string{
	"Grace and peace to you.",
	"You're in my prayers.",
	"May God's peace go with you.",
	"Walking with you in faith.",
}

// CannedReply returns the short-circuit reply for a label, or "" when the
// label carries no canned reply and the request should proceed to generation.
func CannedReply(label Label, choose Chooser) string {
	if choose == nil {
		choose = RandomChooser
	}
	switch label {
	case LabelAbusive:
		return abusiveReplies[choose(len(abusiveReplies))]
	case LabelSpam:
		return spamReplies[choose(len(spamReplies))]
	case LabelOffTopic:
		return offTopicReplies[choose(len(offTopicReplies))]
	case LabelGreeting:
		return greetingReplies[choose(len(greetingReplies))]
	default:
		return ""
	}
}

// SignOff returns a closing phrase for generated replies.
func SignOff(choose Chooser) string {
	if choose == nil {
		choose = RandomChooser
	}
	return signOffs[choose(len(signOffs))]
}
