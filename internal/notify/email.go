package notify

import (
	"context"
	"errors"
	"strings"

	"github.com/wolfman30/agency-chat/pkg/logging"
)

// DefaultFromName is the sender name used when none is configured.
const DefaultFromName = "Agency Assistant"

var (
	ErrNoRecipients = errors.New("notify: message has no recipients")
	ErrNoSubject    = errors.New("notify: message has no subject")
)

// EmailSender delivers one message to all of its recipients.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage is a single outbound notification. ReplyTo lets the sales
// inbox answer the visitor directly.
type EmailMessage struct {
	To          []string
	Subject     string
	Text        string
	HTML        string
	ReplyTo     string
	ReplyToName string
	Category    string
}

func (m EmailMessage) validate() error {
	if len(m.recipients()) == 0 {
		return ErrNoRecipients
	}
	if strings.TrimSpace(m.Subject) == "" {
		return ErrNoSubject
	}
	return nil
}

func (m EmailMessage) recipients() []string {
	var out []string
	for _, r := range m.To {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

// Sender identifies the From address shared by every provider.
type Sender struct {
	Email string
	Name  string
}

func (s Sender) withDefaults() Sender {
	s.Email = strings.TrimSpace(s.Email)
	if strings.TrimSpace(s.Name) == "" {
		s.Name = DefaultFromName
	}
	return s
}

// StubEmailSender logs notifications instead of sending them.
type StubEmailSender struct {
	logger *logging.Logger
}

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
	s.logger.Info("stub email sender: would send email",
		"recipients", len(msg.recipients()),
		"subject", msg.Subject,
		"reply_to", msg.ReplyTo,
		"category", msg.Category,
	)
	return nil
}
