package advice

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"
)

const defaultOpenAIModel = "gpt-4o-mini"

type chatCompletionAPI interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIStrategy sends a system instruction plus the prompt to a chat-completion endpoint.
type OpenAIStrategy struct {
	client chatCompletionAPI
	model  string
}

// NewOpenAIStrategy wraps a chat-completion client.
func NewOpenAIStrategy(client chatCompletionAPI, model string) *OpenAIStrategy {
	if client == nil {
		panic("advice: chat client cannot be nil")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIStrategy{client: client, model: model}
}

func (s *OpenAIStrategy) Provider() Provider { return ProviderHostedChat }

func (s *OpenAIStrategy) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "advice.openai")
	defer span.End()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("advice: openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		span.RecordError(ErrEmptyResponse)
		return "", fmt.Errorf("advice: openai returned no choices: %w", ErrEmptyResponse)
	}
	if span.IsRecording() {
		span.SetAttributes(attribute.Int("aika.openai.choices", len(resp.Choices)))
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
