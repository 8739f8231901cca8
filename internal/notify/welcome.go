package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/wolfman30/aika-health/pkg/logging"
)

// WelcomeEmail builds the message sent after registration.
func WelcomeEmail(username, email string) EmailMessage {
	name := strings.TrimSpace(username)
	if name == "" {
		name = "there"
	}
	body := fmt.Sprintf("Hi %s,\n\n"+
		"Welcome to Aika Health! You can now log symptoms, upload skin photos, and get daily wellness tips.\n\n"+
		"Aika gives general wellness suggestions only. This is not a diagnosis. "+
		"Please see a medical professional for any health concern.\n\n"+
		"Take care,\nAika", name)
	escaped := html.EscapeString(name)
	htmlBody := "<p>Hi " + escaped + ",</p>" +
		"<p>Welcome to <strong>Aika Health</strong>! You can now log symptoms, upload skin photos, and get daily wellness tips.</p>" +
		"<p>Aika gives general wellness suggestions only. This is not a diagnosis. " +
		"Please see a medical professional for any health concern.</p>" +
		"<p>Take care,<br>Aika</p>"
	return EmailMessage{
		To:      email,
		ToName:  name,
		Subject: "Welcome to Aika Health",
		Body:    body,
		HTML:    htmlBody,
	}
}

// Welcomer sends welcome emails through an EmailSender.
type Welcomer struct {
	sender EmailSender
	logger *logging.Logger
}

// NewWelcomer wraps sender. A nil sender falls back to the stub.
func NewWelcomer(sender EmailSender, logger *logging.Logger) *Welcomer {
	if logger == nil {
		logger = logging.Default()
	}
	if sender == nil {
		sender = NewStubEmailSender(logger)
	}
	return &Welcomer{sender: sender, logger: logger}
}

// SendWelcome greets a newly registered user.
func (w *Welcomer) SendWelcome(ctx context.Context, username, email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("notify: recipient email required")
	}
	if err := w.sender.Send(ctx, WelcomeEmail(username, email)); err != nil {
		return fmt.Errorf("notify: send welcome: %w", err)
	}
	return nil
}
