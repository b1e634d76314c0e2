package guidance

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyGenerationParamsLeavesZeroValuesUnset(t *testing.T) {
	model := &genai.GenerativeModel{}
	applyGenerationParams(model, LLMRequest{})

	assert.Nil(t, model.Temperature, "unset temperature must fall through to the provider default")
	assert.Nil(t, model.TopP)
	assert.Nil(t, model.MaxOutputTokens)
	assert.Nil(t, model.SystemInstruction)
}

func TestApplyGenerationParamsSetsRequestedValues(t *testing.T) {
	model := &genai.GenerativeModel{}
	applyGenerationParams(model, LLMRequest{
		Temperature: 0.7,
		TopP:        0.9,
		MaxTokens:   512,
		System:      []string{"You are a pastoral guide."},
	})

	require.NotNil(t, model.Temperature)
	assert.InDelta(t, 0.7, *model.Temperature, 0.0001)
	require.NotNil(t, model.TopP)
	assert.InDelta(t, 0.9, *model.TopP, 0.0001)
	require.NotNil(t, model.MaxOutputTokens)
	assert.Equal(t, int32(512), *model.MaxOutputTokens)
	require.NotNil(t, model.SystemInstruction)
}
