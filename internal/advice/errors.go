package advice

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned by the no-provider strategy.
	ErrNotConfigured = errors.New("advice: no provider configured")
	// ErrEmptyResponse indicates the provider answered without any text.
	ErrEmptyResponse = errors.New("advice: empty response")
	// ErrMalformedResponse indicates a body that could not be decoded.
	ErrMalformedResponse = errors.New("advice: malformed response")
)

// StatusError is returned when an upstream provider answers with a non-success status.
type StatusError struct {
	Provider   Provider
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("advice: %s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Diagnostic renders the user-facing inline error for verbose providers.
func (e *StatusError) Diagnostic() string {
	var msg string
	switch e.Provider {
	case ProviderHostedInference:
		msg = fmt.Sprintf("⚠️ HuggingFace API error %d: %s", e.StatusCode, e.Body)
	case ProviderLocalGeneration:
		msg = fmt.Sprintf("⚠️ Ollama error %d: %s", e.StatusCode, e.Body)
	default:
		msg = fmt.Sprintf("⚠️ %s error %d: %s", e.Provider.DisplayName(), e.StatusCode, e.Body)
	}
	return WithDisclaimer(msg)
}
