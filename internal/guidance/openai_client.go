package guidance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// chatCompleter is the slice of the OpenAI client the pipeline needs.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAILLMClient implements LLMClient against the OpenAI chat completions
// API.
type OpenAILLMClient struct {
	client  chatCompleter
	modelID string
}

// NewOpenAILLMClient creates an OpenAI-backed client.
func NewOpenAILLMClient(apiKey, modelID string) (*OpenAILLMClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("guidance: openai api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gpt-4o-mini"
	}
	return &OpenAILLMClient{
		client:  openai.NewClient(apiKey),
		modelID: modelID,
	}, nil
}

// Complete sends a chat completion request and returns the first choice.
func (c *OpenAILLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	model := req.Model
	if model == "" {
		model = c.modelID
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.System)+len(req.Messages))
	for _, sys := range req.System {
		if strings.TrimSpace(sys) == "" {
			continue
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: sys,
		})
	}
	for _, msg := range req.Messages {
		role := openai.ChatMessageRoleUser
		switch msg.Role {
		case ChatRoleAssistant:
			role = openai.ChatMessageRoleAssistant
		case ChatRoleSystem:
			role = openai.ChatMessageRoleSystem
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	chatReq := openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = int(req.MaxTokens)
	}
	if req.Temperature > 0 {
		chatReq.Temperature = req.Temperature
	}
	if req.TopP > 0 {
		chatReq.TopP = req.TopP
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return LLMResponse{}, fmt.Errorf("guidance: openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return LLMResponse{}, errors.New("guidance: openai returned no choices")
	}

	choice := resp.Choices[0]
	return LLMResponse{
		Text:       strings.TrimSpace(choice.Message.Content),
		StopReason: string(choice.FinishReason),
		Usage: TokenUsage{
			InputTokens:  int32(resp.Usage.PromptTokens),
			OutputTokens: int32(resp.Usage.CompletionTokens),
			TotalTokens:  int32(resp.Usage.TotalTokens),
		},
	}, nil
}
