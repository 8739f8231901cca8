package notify

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/wolfman30/aika-health/pkg/logging"
)

// ErrInvalidMessage is returned before any provider call when a message
// cannot be delivered as written.
var ErrInvalidMessage = errors.New("notify: invalid message")

// EmailSender delivers a single message.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage is a transactional email. HTML is optional.
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Body    string
	HTML    string
}

func (m EmailMessage) validate() error {
	if _, err := mail.ParseAddress(strings.TrimSpace(m.To)); err != nil {
		return fmt.Errorf("%w: recipient %q", ErrInvalidMessage, m.To)
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("%w: empty subject", ErrInvalidMessage)
	}
	if m.Body == "" && m.HTML == "" {
		return fmt.Errorf("%w: empty body", ErrInvalidMessage)
	}
	return nil
}

const defaultFromName = "Aika Health"

// From identifies the sending mailbox shared by every provider.
type From struct {
	Email string
	Name  string
}

func (f From) withDefaults() From {
	f.Email = strings.TrimSpace(f.Email)
	if strings.TrimSpace(f.Name) == "" {
		f.Name = defaultFromName
	}
	return f
}

// String renders the RFC 5322 mailbox, e.g. "Aika Health <hi@aika.health>".
func (f From) String() string {
	return (&mail.Address{Name: f.Name, Address: f.Email}).String()
}

// StubEmailSender logs messages instead of sending them.
type StubEmailSender struct {
	logger *logging.Logger
}

// NewStubEmailSender is used when no provider is configured.
func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

func (s *StubEmailSender) Send(_ context.Context, msg EmailMessage) error {
	if err := msg.validate(); err != nil {
		return err
	}
	s.logger.Info("email disabled, skipping send", "to", msg.To, "subject", msg.Subject)
	return nil
}
