package advice

import "strings"

// Provider identifies the backend that generates advice text.
type Provider string

const (
	ProviderNone            Provider = "none"
	ProviderHostedChat      Provider = "openai"
	ProviderHostedInference Provider = "huggingface"
	ProviderLocalGeneration Provider = "ollama"
	ProviderGemini          Provider = "gemini"
	ProviderBedrock         Provider = "bedrock"
)

// ParseProvider maps a configuration value to a Provider. Unknown values map to ProviderNone.
func ParseProvider(value string) Provider {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "openai", "hosted-chat":
		return ProviderHostedChat
	case "huggingface", "hf", "hosted-inference":
		return ProviderHostedInference
	case "ollama", "local", "local-generation":
		return ProviderLocalGeneration
	case "gemini":
		return ProviderGemini
	case "bedrock":
		return ProviderBedrock
	default:
		return ProviderNone
	}
}

func (p Provider) String() string {
	return string(p)
}

// DisplayName is the product name used in user-facing diagnostics.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderHostedChat:
		return "OpenAI"
	case ProviderHostedInference:
		return "HuggingFace"
	case ProviderLocalGeneration:
		return "Ollama"
	case ProviderGemini:
		return "Gemini"
	case ProviderBedrock:
		return "Bedrock"
	default:
		return "None"
	}
}
