package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/wolfman30/agency-chat/pkg/logging"
)

// sendgridSendFunc posts a v3 mail and reports the HTTP status and body.
type sendgridSendFunc func(ctx context.Context, m *mail.SGMailV3) (int, string, error)

// SendGridSender delivers notifications through the SendGrid v3 API.
type SendGridSender struct {
	send   sendgridSendFunc
	from   Sender
	logger *logging.Logger
}

func NewSendGridSender(apiKey string, from Sender, logger *logging.Logger) (*SendGridSender, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("notify: sendgrid api key is required")
	}
	client := sendgrid.NewSendClient(apiKey)
	return newSendGridSender(func(ctx context.Context, m *mail.SGMailV3) (int, string, error) {
		resp, err := client.SendWithContext(ctx, m)
		if err != nil {
			return 0, "", err
		}
		return resp.StatusCode, resp.Body, nil
	}, from, logger), nil
}

func newSendGridSender(send sendgridSendFunc, from Sender, logger *logging.Logger) *SendGridSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &SendGridSender{send: send, from: from.withDefaults(), logger: logger}
}

func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if err := msg.validate(); err != nil {
		return err
	}
	status, body, err := s.send(ctx, s.buildMail(msg))
	if err != nil {
		return fmt.Errorf("notify: sendgrid send: %w", err)
	}
	if status >= 400 {
		s.logger.Error("sendgrid rejected email", "status", status, "body", body, "subject", msg.Subject)
		return fmt.Errorf("notify: sendgrid returned status %d", status)
	}
	s.logger.Info("email sent via sendgrid", "recipients", len(msg.recipients()), "subject", msg.Subject, "status", status)
	return nil
}

// buildMail puts every recipient on one personalization so the sales inbox
// sees a single thread.
func (s *SendGridSender) buildMail(msg EmailMessage) *mail.SGMailV3 {
	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(s.from.Name, s.from.Email))
	m.Subject = msg.Subject

	p := mail.NewPersonalization()
	for _, r := range msg.recipients() {
		p.AddTos(mail.NewEmail("", r))
	}
	m.AddPersonalizations(p)

	text := msg.Text
	if text == "" {
		text = msg.Subject
	}
	m.AddContent(mail.NewContent("text/plain", text))
	if msg.HTML != "" {
		m.AddContent(mail.NewContent("text/html", msg.HTML))
	}
	if msg.ReplyTo != "" {
		m.SetReplyTo(mail.NewEmail(msg.ReplyToName, msg.ReplyTo))
	}
	if msg.Category != "" {
		m.AddCategories(msg.Category)
	}
	return m
}

var _ EmailSender = (*SendGridSender)(nil)
