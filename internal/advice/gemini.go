package advice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiStrategy generates advice with Google's Gemini API.
type GeminiStrategy struct {
	client  *genai.Client
	modelID string
}

// NewGeminiStrategy creates the shared Gemini client.
func NewGeminiStrategy(ctx context.Context, apiKey, modelID string) (*GeminiStrategy, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("advice: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("advice: failed to create gemini client: %w", err)
	}
	return &GeminiStrategy{client: client, modelID: modelID}, nil
}

func (s *GeminiStrategy) Provider() Provider { return ProviderGemini }

func (s *GeminiStrategy) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "advice.gemini")
	defer span.End()

	model := s.client.GenerativeModel(s.modelID)
	model.SystemInstruction = genai.NewUserContent(genai.Text(SystemInstruction))

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("advice: gemini completion failed: %w", err)
	}
	return geminiText(resp)
}

// Close releases resources held by the Gemini client.
func (s *GeminiStrategy) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("advice: gemini returned no candidates: %w", ErrEmptyResponse)
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("advice: gemini returned empty content: %w", ErrEmptyResponse)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return strings.TrimSpace(text.String()), nil
}
