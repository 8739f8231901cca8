package advice

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/wolfman30/aika-health/pkg/logging"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("aika.internal.advice")

// Strategy generates advice text through a single provider.
type Strategy interface {
	Provider() Provider
	Generate(ctx context.Context, prompt string) (string, error)
}

// NoneStrategy is selected when no provider is usable.
type NoneStrategy struct{}

func (NoneStrategy) Provider() Provider { return ProviderNone }

func (NoneStrategy) Generate(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}

// Settings carries per-provider configuration read at startup.
type Settings struct {
	Provider Provider
	Timeout  time.Duration

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	HFAPIKey       string
	HFModel        string
	HFBaseURL      string
	HFMaxNewTokens int

	OllamaURL   string
	OllamaModel string

	GeminiAPIKey string
	GeminiModel  string

	BedrockModelID string
}

// Deps are the shared clients injected into strategies.
type Deps struct {
	HTTPClient *http.Client
	Bedrock    ConverseAPI
	Logger     *logging.Logger
}

// NewHTTPClient returns the client shared by every HTTP-based strategy.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// Resolve selects the strategy for s.Provider once at startup. A provider
// missing its credentials resolves to NoneStrategy. When a client cannot be
// constructed the returned error is non-nil and the strategy is NoneStrategy.
func Resolve(ctx context.Context, s Settings, deps Deps) (Strategy, error) {
	if deps.HTTPClient == nil {
		deps.HTTPClient = NewHTTPClient(s.Timeout)
	}
	if deps.Logger == nil {
		deps.Logger = logging.Default()
	}

	switch s.Provider {
	case ProviderHostedChat:
		if strings.TrimSpace(s.OpenAIAPIKey) == "" {
			return NoneStrategy{}, nil
		}
		cfg := openai.DefaultConfig(s.OpenAIAPIKey)
		if s.OpenAIBaseURL != "" {
			cfg.BaseURL = s.OpenAIBaseURL
		}
		cfg.HTTPClient = deps.HTTPClient
		return NewOpenAIStrategy(openai.NewClientWithConfig(cfg), s.OpenAIModel), nil
	case ProviderHostedInference:
		if strings.TrimSpace(s.HFAPIKey) == "" {
			return NoneStrategy{}, nil
		}
		strategy, err := NewInferenceStrategy(InferenceConfig{
			BaseURL:      s.HFBaseURL,
			APIKey:       s.HFAPIKey,
			Model:        s.HFModel,
			MaxNewTokens: s.HFMaxNewTokens,
		}, deps.HTTPClient)
		if err != nil {
			return NoneStrategy{}, err
		}
		return strategy, nil
	case ProviderLocalGeneration:
		strategy, err := NewLocalStrategy(LocalConfig{
			URL:   s.OllamaURL,
			Model: s.OllamaModel,
		}, deps.HTTPClient, deps.Logger)
		if err != nil {
			return NoneStrategy{}, err
		}
		return strategy, nil
	case ProviderGemini:
		if strings.TrimSpace(s.GeminiAPIKey) == "" {
			return NoneStrategy{}, nil
		}
		strategy, err := NewGeminiStrategy(ctx, s.GeminiAPIKey, s.GeminiModel)
		if err != nil {
			return NoneStrategy{}, err
		}
		return strategy, nil
	case ProviderBedrock:
		if strings.TrimSpace(s.BedrockModelID) == "" || deps.Bedrock == nil {
			return NoneStrategy{}, nil
		}
		return NewBedrockStrategy(deps.Bedrock, s.BedrockModelID), nil
	case ProviderNone:
		return NoneStrategy{}, nil
	default:
		return NoneStrategy{}, fmt.Errorf("advice: unknown provider %q", s.Provider)
	}
}
