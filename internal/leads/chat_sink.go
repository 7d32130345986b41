package leads

import (
	"context"
	"errors"
	"fmt"

	"github.com/wolfman30/agency-chat/internal/chatbot"
	"github.com/wolfman30/agency-chat/pkg/logging"
)

// ChatSink stores leads captured by the chat widget. The notifier fires once,
// when a session's lead first gains an email address.
type ChatSink struct {
	repo     Repository
	notifier Notifier
	logger   *logging.Logger
}

func NewChatSink(repo Repository, notifier Notifier, logger *logging.Logger) *ChatSink {
	if repo == nil {
		panic("leads: repository cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ChatSink{repo: repo, notifier: notifier, logger: logger}
}

func (s *ChatSink) CaptureChatLead(ctx context.Context, sessionID string, info chatbot.LeadInfo) error {
	prev, err := s.repo.GetBySession(ctx, sessionID)
	if err != nil && !errors.Is(err, ErrLeadNotFound) {
		return fmt.Errorf("leads: load chat lead: %w", err)
	}

	lead, err := s.repo.UpsertBySession(ctx, ChatLead{
		SessionID: sessionID,
		Name:      info.Name,
		Email:     info.Email,
		Location:  info.Location,
		Interest:  info.Interest,
	})
	if err != nil {
		return err
	}

	emailAdded := lead.Email != "" && (prev == nil || prev.Email == "")
	if emailAdded && s.notifier != nil {
		if err := s.notifier.NotifyNewLead(ctx, lead); err != nil {
			s.logger.Warn("chat lead notification failed", "session_id", sessionID, "error", err)
		}
	}
	return nil
}

// ChatLead restores the lead captured for a session so a reconnecting widget
// resumes where it left off. Unknown sessions yield an empty lead.
func (s *ChatSink) ChatLead(ctx context.Context, sessionID string) (chatbot.LeadInfo, error) {
	lead, err := s.repo.GetBySession(ctx, sessionID)
	if errors.Is(err, ErrLeadNotFound) {
		return chatbot.LeadInfo{}, nil
	}
	if err != nil {
		return chatbot.LeadInfo{}, fmt.Errorf("leads: load chat lead: %w", err)
	}
	return chatbot.LeadInfo{
		Name:     lead.Name,
		Email:    lead.Email,
		Location: lead.Location,
		Interest: lead.Interest,
	}, nil
}

var (
	_ chatbot.LeadSink   = (*ChatSink)(nil)
	_ chatbot.LeadLookup = (*ChatSink)(nil)
)
