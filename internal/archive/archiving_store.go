package archive

import (
	"context"
	"time"

	"github.com/wolfman30/agency-chat/internal/chatbot"
	"github.com/wolfman30/agency-chat/pkg/logging"
)

const archiveTimeout = 5 * time.Second

// ArchivingStore decorates a transcript store: after every append the full,
// PII-scrubbed transcript is copied to S3. Archive failures are logged and
// never fail the append.
type ArchivingStore struct {
	next   chatbot.TranscriptStore
	store  *Store
	logger *logging.Logger
	now    func() time.Time
}

func NewArchivingStore(next chatbot.TranscriptStore, store *Store, logger *logging.Logger) *ArchivingStore {
	if next == nil {
		panic("archive: transcript store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ArchivingStore{next: next, store: store, logger: logger, now: time.Now}
}

func (a *ArchivingStore) Append(ctx context.Context, sessionID string, messages ...chatbot.ChatMessage) error {
	if err := a.next.Append(ctx, sessionID, messages...); err != nil {
		return err
	}
	if !a.store.Enabled() || len(messages) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()

	history, err := a.next.History(ctx, sessionID, 0)
	if err != nil {
		a.logger.Warn("archive: load transcript failed", "session_id", sessionID, "error", err)
		return nil
	}
	record := buildRecord(sessionID, history, a.now().UTC())
	newSession := len(history) == len(messages)
	if err := a.store.ArchiveSession(ctx, record, newSession); err != nil {
		a.logger.Warn("archive: session upload failed", "session_id", sessionID, "error", err)
	}
	return nil
}

func (a *ArchivingStore) History(ctx context.Context, sessionID string, limit int) ([]chatbot.ChatMessage, error) {
	return a.next.History(ctx, sessionID, limit)
}

// buildRecord converts a transcript into its scrubbed archive form.
func buildRecord(sessionID string, history []chatbot.ChatMessage, now time.Time) *SessionRecord {
	msgs := make([]Message, 0, len(history))
	for _, m := range history {
		role := "user"
		if m.Role.IsBot() {
			role = "assistant"
		}
		msgs = append(msgs, Message{Role: role, Content: m.Content, Timestamp: m.Timestamp})
	}
	ScrubMessages(msgs)

	started := now
	if len(history) > 0 && !history[0].Timestamp.IsZero() {
		started = history[0].Timestamp
	}
	return &SessionRecord{
		Version:      RecordVersion,
		SessionID:    sessionID,
		StartedAt:    started,
		ArchivedAt:   now,
		MessageCount: len(msgs),
		Messages:     msgs,
	}
}

var _ chatbot.TranscriptStore = (*ArchivingStore)(nil)
