package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/wolfman30/agency-chat/internal/leads"
	"github.com/wolfman30/agency-chat/pkg/logging"
)

const (
	leadCategory   = "lead-notification"
	maxMessageText = 500
)

var leadHTML = template.Must(template.New("lead").Parse(`<h2>New {{.Source}} lead</h2>
<table cellpadding="4">
{{- range .Fields}}
<tr><th align="left">{{.Label}}</th><td>{{.Value}}</td></tr>
{{- end}}
</table>
{{- if .ReplyTo}}
<p>Reply to this email to reach {{.Name}} directly.</p>
{{- end}}`))

// LeadNotifier emails the sales inbox about new leads.
type LeadNotifier struct {
	email      EmailSender
	recipients []string
	logger     *logging.Logger
}

// NewLeadNotifier returns a notifier that sends to every recipient.
func NewLeadNotifier(email EmailSender, recipients []string, logger *logging.Logger) *LeadNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	var to []string
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			to = append(to, r)
		}
	}
	return &LeadNotifier{email: email, recipients: to, logger: logger}
}

// NotifyNewLead sends one message addressed to every recipient, with the
// visitor's address as Reply-To when it looks like an email. It is a no-op
// without a sender or recipients.
func (n *LeadNotifier) NotifyNewLead(ctx context.Context, lead *leads.Lead) error {
	if n.email == nil || len(n.recipients) == 0 || lead == nil {
		n.logger.Debug("notify: lead notifications not configured, skipping")
		return nil
	}
	msg, err := leadMessage(lead)
	if err != nil {
		return err
	}
	msg.To = n.recipients
	if err := n.email.Send(ctx, msg); err != nil {
		n.logger.Error("notify: lead email failed", "error", err, "lead_id", lead.ID, "recipients", len(n.recipients))
		return fmt.Errorf("notify: lead %s: %w", lead.ID, err)
	}
	return nil
}

type leadField struct{ Label, Value string }

func leadFields(lead *leads.Lead) []leadField {
	var out []leadField
	for _, f := range []leadField{
		{"Name", lead.Name},
		{"Email", lead.Email},
		{"Phone", lead.Phone},
		{"Location", lead.Location},
		{"Interest", lead.Interest},
		{"Source", lead.Source},
		{"Session", lead.SessionID},
		{"Message", truncate(lead.Message, maxMessageText)},
	} {
		if strings.TrimSpace(f.Value) != "" {
			out = append(out, f)
		}
	}
	return out
}

func leadMessage(lead *leads.Lead) (EmailMessage, error) {
	name := strings.TrimSpace(lead.Name)
	if name == "" {
		name = "Unknown visitor"
	}
	fields := leadFields(lead)

	var text strings.Builder
	text.WriteString("A new lead has come in!\n\n")
	for _, f := range fields {
		fmt.Fprintf(&text, "%s: %s\n", f.Label, f.Value)
	}

	replyTo := ""
	if email := strings.TrimSpace(lead.Email); strings.Contains(email, "@") {
		replyTo = email
	}

	var html bytes.Buffer
	err := leadHTML.Execute(&html, struct {
		Source, Name, ReplyTo string
		Fields                []leadField
	}{lead.Source, name, replyTo, fields})
	if err != nil {
		return EmailMessage{}, fmt.Errorf("notify: render lead email: %w", err)
	}

	msg := EmailMessage{
		Subject:  fmt.Sprintf("New %s lead - %s", lead.Source, name),
		Text:     text.String(),
		HTML:     html.String(),
		ReplyTo:  replyTo,
		Category: leadCategory,
	}
	if replyTo != "" {
		msg.ReplyToName = strings.TrimSpace(lead.Name)
	}
	return msg, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

var _ leads.Notifier = (*LeadNotifier)(nil)
