package advice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/aika-health/pkg/logging"
)

func TestParseProvider(t *testing.T) {
	tests := map[string]Provider{
		"openai":           ProviderHostedChat,
		" OpenAI ":         ProviderHostedChat,
		"hosted-chat":      ProviderHostedChat,
		"huggingface":      ProviderHostedInference,
		"hf":               ProviderHostedInference,
		"ollama":           ProviderLocalGeneration,
		"local-generation": ProviderLocalGeneration,
		"gemini":           ProviderGemini,
		"bedrock":          ProviderBedrock,
		"none":             ProviderNone,
		"":                 ProviderNone,
		"claude":           ProviderNone,
	}
	for input, want := range tests {
		assert.Equalf(t, want, ParseProvider(input), "input %q", input)
	}
}

func TestResolve(t *testing.T) {
	deps := Deps{Logger: logging.New("error")}
	tests := []struct {
		name     string
		settings Settings
		want     Provider
	}{
		{"openai without key", Settings{Provider: ProviderHostedChat}, ProviderNone},
		{"openai with key", Settings{Provider: ProviderHostedChat, OpenAIAPIKey: "sk"}, ProviderHostedChat},
		{"huggingface without key", Settings{Provider: ProviderHostedInference, HFModel: "m"}, ProviderNone},
		{"huggingface with key", Settings{Provider: ProviderHostedInference, HFAPIKey: "hf", HFModel: "m"}, ProviderHostedInference},
		{"ollama needs no key", Settings{Provider: ProviderLocalGeneration, OllamaModel: "mistral"}, ProviderLocalGeneration},
		{"gemini without key", Settings{Provider: ProviderGemini}, ProviderNone},
		{"bedrock without client", Settings{Provider: ProviderBedrock, BedrockModelID: "anthropic.claude"}, ProviderNone},
		{"bedrock without model", Settings{Provider: ProviderBedrock}, ProviderNone},
		{"none", Settings{Provider: ProviderNone}, ProviderNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy, err := Resolve(context.Background(), tt.settings, deps)
			require.NoError(t, err)
			assert.Equal(t, tt.want, strategy.Provider())
		})
	}
}

func TestResolveBedrockWithClient(t *testing.T) {
	strategy, err := Resolve(context.Background(), Settings{
		Provider:       ProviderBedrock,
		BedrockModelID: "anthropic.claude-3-haiku",
	}, Deps{Bedrock: &fakeConverse{}})
	require.NoError(t, err)
	assert.IsType(t, &BedrockStrategy{}, strategy)
}

func TestResolveUnknownProvider(t *testing.T) {
	strategy, err := Resolve(context.Background(), Settings{Provider: Provider("mystery")}, Deps{})
	assert.Error(t, err)
	assert.Equal(t, ProviderNone, strategy.Provider())
}

func TestDiagnosticPolicy(t *testing.T) {
	def := DefaultDiagnosticPolicy()
	assert.True(t, def.Verbose(ProviderHostedInference))
	assert.True(t, def.Verbose(ProviderLocalGeneration))
	assert.False(t, def.Verbose(ProviderHostedChat))

	custom := NewDiagnosticPolicy([]string{"openai", "bogus", "none"})
	assert.True(t, custom.Verbose(ProviderHostedChat))
	assert.False(t, custom.Verbose(ProviderHostedInference))
	assert.Len(t, custom, 1)
}
