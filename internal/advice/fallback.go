package advice

// FallbackPool is used when no provider is configured or a provider call fails.
var FallbackPool = []string{
	"Try to rest and drink some water 💧 (This is not a diagnosis.)",
	"If you feel worse, contact a doctor ⚕️ (This is not a diagnosis.)",
	"Monitor your symptoms 🙏 (This is not a diagnosis.)",
}

const (
	emptyLocalResponse     = "⚠️ Empty response from Ollama. This is not a diagnosis."
	malformedInferenceBody = "⚠️ Error parsing HuggingFace response. This is not a diagnosis."
)

// IsFallback reports whether text is one of the canned fallback sentences.
func IsFallback(text string) bool {
	for _, candidate := range FallbackPool {
		if candidate == text {
			return true
		}
	}
	return false
}

func pickFallback(intn func(int) int) string {
	return FallbackPool[intn(len(FallbackPool))]
}
