package advice

import (
	"fmt"
	"strings"
)

const (
	// Disclaimer must appear in every advice string returned to callers.
	Disclaimer = "This is not a diagnosis."

	// SystemInstruction fixes persona, tone and language for chat providers.
	SystemInstruction = "You are Aika — a friendly health assistant. Always reply ONLY in English, never in any other language. Be concise and kind. End every response with: 'This is not a diagnosis.'"

	// EnglishOnlyPrefix is prepended to prompts for providers without a system role.
	EnglishOnlyPrefix = "Reply only in English. "
)

// WithDisclaimer appends the disclaimer when text does not already carry it.
func WithDisclaimer(text string) string {
	text = strings.TrimSpace(text)
	if strings.Contains(text, Disclaimer) {
		return text
	}
	if text == "" {
		return Disclaimer
	}
	return text + " " + Disclaimer
}

// ProfileAdvicePrompt asks for one motivational tip tailored to a profile summary.
func ProfileAdvicePrompt(profileSummary string) string {
	return strings.TrimSpace(profileSummary) +
		" Based on this health profile, give one short, friendly, personalized health advice. " +
		"Keep it under 50 words and make it motivational. " + Disclaimer
}

// SymptomPrompt asks for a short caring reply to a logged symptom.
func SymptomPrompt(symptom string) string {
	return fmt.Sprintf("The user says: '%s'. Give a short English response (1–2 sentences) with care and clarity. %s",
		strings.TrimSpace(symptom), Disclaimer)
}

// PhotoPrompt asks for a gentle suggestion after a skin photo upload.
func PhotoPrompt() string {
	return "The user uploaded a skin photo. Give a gentle English health suggestion (not a diagnosis)."
}

// TipPrompt asks for a general wellness tip.
func TipPrompt() string {
	return "Give one short English tip about nutrition, sleep, or physical activity. " + Disclaimer
}
