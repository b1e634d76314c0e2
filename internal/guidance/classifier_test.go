package guidance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyLabelPriority(t *testing.T) {
	c := NewPatternClassifier(nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		input string
		want  Label
	}{
		{"abusive insult", "I hate god and this is stupid religion", LabelAbusive},
		{"abusive profanity", "shut up you brainwashed sheep", LabelAbusive},
		{"spam crypto", "Amazing crypto investment opportunity, earn $500 per day", LabelSpam},
		{"spam link bait", "click here to claim your free money", LabelSpam},
		{"off topic repair", "can you help me fix my car transmission", LabelOffTopic},
		{"off topic homework", "write my essay about the French Revolution", LabelOffTopic},
		{"greeting", "Hello there!", LabelGreeting},
		{"greeting trimmed", "  good morning  ", LabelGreeting},
		{"follow up thanks", "thanks", LabelFollowUp},
		{"follow up amen", "Amen.", LabelFollowUp},
		{"normal question", "How should I pray when I feel distant from God?", LabelNormal},
		{"empty", "", LabelNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(ctx, tt.input)
			assert.Equal(t, tt.want, got.Label)
		})
	}
}

func TestClassifyAbusiveWinsOverLowerLabels(t *testing.T) {
	c := NewPatternClassifier(nil)

	// Matches both the abusive and spam rules; abusive is higher priority.
	got := c.Classify(context.Background(), "religion is a scam, click here to see why, stupid religion")
	assert.Equal(t, LabelAbusive, got.Label)
}

func TestCrisisSignal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"explicit self harm", "I want to kill myself", true},
		{"wants to die", "some days I just want to die", true},
		{"cannot go on", "I can't take it anymore", true},
		{"biblical blood allowlisted", "I've been meditating on the woman with an issue of blood and her faith", false},
		{"blood of the lamb", "what does the blood of the lamb mean in Revelation?", false},
		{"died for sins", "Jesus died for our sins, how do I explain that to my kids?", false},
		{"plain question", "what does Paul say about patience?", false},
		{"bare blood outside scripture", "I woke up covered in blood and I'm scared", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCrisis(tt.input))
		})
	}
}

func TestCrisisSignalIndependentOfLabel(t *testing.T) {
	c := NewPatternClassifier(nil)

	got := c.Classify(context.Background(), "I feel so alone and I want to die")
	assert.Equal(t, LabelNormal, got.Label)
	assert.True(t, got.Crisis)
}

func TestSuicideSpecific(t *testing.T) {
	assert.True(t, IsSuicideSpecific("I am thinking about killing myself"))
	assert.True(t, IsSuicideSpecific("I have been feeling suicidal lately"))
	assert.False(t, IsSuicideSpecific("I can't take it anymore"))
	assert.False(t, IsSuicideSpecific("to die is gain, what did Paul mean?"))
}

func TestHomicideThreat(t *testing.T) {
	assert.True(t, IsHomicideThreat("I want to kill him for what he did"))
	assert.True(t, IsHomicideThreat("sometimes I want to hurt them badly"))
	assert.False(t, IsHomicideThreat("I'm angry at my brother"))
}

func TestSeriousSituation(t *testing.T) {
	assert.True(t, IsSerious("my wife and I are getting a divorce"))
	assert.True(t, IsSerious("I'm struggling with addiction again"))
	assert.True(t, IsSerious("I lost my mother last month and the grief is heavy"))
	assert.False(t, IsSerious("what is the meaning of the parable of the sower?"))
}

func TestExtractAge(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *int
	}{
		{"contraction", "I'm 15 and my stepdad hits me", intPtr(15)},
		{"no apostrophe", "im 16 btw", intPtr(16)},
		{"full phrase", "I am 14 years old", intPtr(14)},
		{"no age", "I'm struggling with prayer", nil},
		{"out of range", "I'm 150 years old", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractAge(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestMandatoryReportSignal(t *testing.T) {
	c := NewPatternClassifier(nil)
	ctx := context.Background()

	got := c.Classify(ctx, "I'm 15 and my stepdad hits me")
	assert.True(t, got.MandatoryReport)
	require.NotNil(t, got.MentionedAge)
	assert.Equal(t, 15, *got.MentionedAge)

	// Minor language without an explicit age still qualifies.
	got = c.Classify(ctx, "my dad beats me and I'm afraid to go home, I'm in high school")
	assert.True(t, got.MandatoryReport)

	// Abuse language from an adult with no minor indicators does not.
	got = c.Classify(ctx, "I'm 34 and my husband hits me")
	assert.False(t, got.MandatoryReport)

	// Minor language without abuse language does not.
	got = c.Classify(ctx, "I'm 15 and I have questions about baptism")
	assert.False(t, got.MandatoryReport)
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := NewPatternClassifier(nil)
	ctx := context.Background()
	input := "I'm 15 and my stepdad hits me and I want to die"

	first := c.Classify(ctx, input)
	for i := 0; i < 5; i++ {
		again := c.Classify(ctx, input)
		assert.Equal(t, first.Label, again.Label)
		assert.Equal(t, first.Crisis, again.Crisis)
		assert.Equal(t, first.MandatoryReport, again.MandatoryReport)
	}
}

func intPtr(v int) *int { return &v }
