// Package session keeps chat transcripts per widget session.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/wolfman30/agency-chat/internal/chatbot"
)

const (
	// DefaultTTL is how long an idle transcript is kept.
	DefaultTTL = 24 * time.Hour

	// MaxMessages caps a stored transcript; older messages are dropped first.
	MaxMessages = 200
)

// Store is the transcript store used by the chat service.
type Store interface {
	Append(ctx context.Context, sessionID string, messages ...chatbot.ChatMessage) error
	History(ctx context.Context, sessionID string, limit int) ([]chatbot.ChatMessage, error)
}

// MemoryStore keeps transcripts in process memory. Used when Redis is not configured.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]chatbot.ChatMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]chatbot.ChatMessage)}
}

func (s *MemoryStore) Append(_ context.Context, sessionID string, messages ...chatbot.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	all := append(s.sessions[sessionID], messages...)
	if len(all) > MaxMessages {
		all = all[len(all)-MaxMessages:]
	}
	s.sessions[sessionID] = all
	return nil
}

// History returns up to limit of the newest messages, oldest first. limit <= 0 returns all.
func (s *MemoryStore) History(_ context.Context, sessionID string, limit int) ([]chatbot.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.sessions[sessionID]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return append([]chatbot.ChatMessage(nil), all...), nil
}
