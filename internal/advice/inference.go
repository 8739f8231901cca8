package advice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultInferenceBaseURL = "https://api-inference.huggingface.co"
	defaultMaxNewTokens     = 180
	maxResponseBytes        = 1 << 20
)

// InferenceConfig configures the hosted-inference strategy.
type InferenceConfig struct {
	BaseURL      string
	APIKey       string
	Model        string
	MaxNewTokens int
}

// InferenceStrategy calls a single-endpoint text-generation API.
type InferenceStrategy struct {
	cfg        InferenceConfig
	httpClient *http.Client
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	MaxNewTokens int `json:"max_new_tokens"`
}

// NewInferenceStrategy validates cfg and returns a strategy sharing httpClient.
func NewInferenceStrategy(cfg InferenceConfig, httpClient *http.Client) (*InferenceStrategy, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("advice: huggingface api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("advice: huggingface model is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultInferenceBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.MaxNewTokens <= 0 {
		cfg.MaxNewTokens = defaultMaxNewTokens
	}
	if httpClient == nil {
		httpClient = NewHTTPClient(0)
	}
	return &InferenceStrategy{cfg: cfg, httpClient: httpClient}, nil
}

func (s *InferenceStrategy) Provider() Provider { return ProviderHostedInference }

func (s *InferenceStrategy) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "advice.huggingface")
	defer span.End()
	span.SetAttributes(attribute.String("aika.advice.model", s.cfg.Model))

	payload, err := json.Marshal(inferenceRequest{
		Inputs:     EnglishOnlyPrefix + prompt,
		Parameters: inferenceParameters{MaxNewTokens: s.cfg.MaxNewTokens},
	})
	if err != nil {
		return "", fmt.Errorf("advice: encode huggingface request: %w", err)
	}

	endpoint := s.cfg.BaseURL + "/models/" + s.cfg.Model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("advice: build huggingface request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("advice: huggingface request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("advice: read huggingface response: %w", err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{
			Provider:   ProviderHostedInference,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	return normalizeInference(body)
}

// normalizeInference extracts generated_text from the list or object shapes
// returned by different models. Any other JSON shape is returned as compact text.
func normalizeInference(body []byte) (string, error) {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	switch v := decoded.(type) {
	case []any:
		if len(v) > 0 {
			if first, ok := v[0].(map[string]any); ok {
				if text, ok := first["generated_text"].(string); ok {
					return text, nil
				}
			}
		}
	case map[string]any:
		if text, ok := v["generated_text"].(string); ok {
			return text, nil
		}
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err != nil {
		return strings.TrimSpace(string(body)), nil
	}
	return compact.String(), nil
}
