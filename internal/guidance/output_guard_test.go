package guidance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsConversationEnding(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			"right space phrasing",
			"I've tried to meet you where you are, but I don't think this is the right space for this conversation.",
			true,
		},
		{
			"cannot continue",
			"I care about you, but I can't continue this conversation in this tone.",
			true,
		},
		{
			"ending the exchange",
			"For both our sakes I need to end this conversation here.",
			true,
		},
		{
			"ordinary pastoral reply",
			"Psalm 34:18 reminds us that the Lord is near to the brokenhearted. Keep bringing this to Him in prayer.",
			false,
		},
		{
			"mentions conversation without ending it",
			"I'm glad we're having this conversation, and I hope it continues.",
			false,
		},
		{
			"empty",
			"",
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsConversationEnding(tt.text))
		})
	}
}
