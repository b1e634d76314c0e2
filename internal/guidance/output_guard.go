package guidance

import "regexp"

// endingPatterns match a generated reply that closes the conversation,
// regardless of how the input was labeled. The model sometimes decides on its
// own to set a boundary after a pattern of hostile turns.
var endingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bi\s+don'?t\s+think\s+this\s+is\s+the\s+right\s+space\b`),
	regexp.MustCompile(`(?i)\bthis\s+isn'?t\s+the\s+right\s+(space|place)\s+for\b`),
	regexp.MustCompile(`(?i)\bi\s+(can'?t|won'?t|am\s+not\s+able\s+to)\s+continue\s+(this|our)\s+conversation\b`),
	regexp.MustCompile(`(?i)\bi'?m\s+going\s+to\s+(end|close|pause)\s+(this|our)\s+conversation\b`),
	regexp.MustCompile(`(?i)\bi\s+need\s+to\s+end\s+(this|our)\s+(conversation|exchange)\b`),
	regexp.MustCompile(`(?i)\bthis\s+conversation\s+(has\s+come|is\s+coming)\s+to\s+an?\s+(end|close)\b`),
	regexp.MustCompile(`(?i)\bi\s+wish\s+you\s+well,?\s+but\s+i\s+(can'?t|must)\b`),
}

// IsConversationEnding scans the generated reply for conversation-terminating
// phrasing. It looks at the model's output only, never the user's input.
func IsConversationEnding(generated string) bool {
	for _, p := range endingPatterns {
		if p.MatchString(generated) {
			return true
		}
	}
	return false
}
