package knowledge

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps entries and settings in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	config  *BotConfig
}

// NewMemoryStore creates a store seeded with the given entries.
func NewMemoryStore(seed ...Entry) *MemoryStore {
	s := &MemoryStore{}
	now := time.Now().UTC()
	for _, e := range seed {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		if e.UpdatedAt.IsZero() {
			e.UpdatedAt = e.CreatedAt
		}
		s.entries = append(s.entries, e)
	}
	return s
}

// KnowledgeBase returns active entries, highest priority first, ties in insertion order.
func (s *MemoryStore) KnowledgeBase(ctx context.Context) ([]Entry, error) {
	return s.List(ctx, ListFilter{ActiveOnly: true})
}

func (s *MemoryStore) List(_ context.Context, filter ListFilter) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if filter.ActiveOnly && !e.Active() {
			continue
		}
		if filter.Category != "" && !strings.EqualFold(e.Category, filter.Category) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []Entry{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.ID == id {
			found := e
			return &found, nil
		}
	}
	return nil, ErrEntryNotFound
}

func (s *MemoryStore) Create(_ context.Context, entry *Entry) (*Entry, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	created := *entry
	created.ID = uuid.NewString()
	created.CreatedAt = time.Now().UTC()
	created.UpdatedAt = created.CreatedAt
	if created.IsActive == nil {
		created.IsActive = Bool(true)
	}

	s.mu.Lock()
	s.entries = append(s.entries, created)
	s.mu.Unlock()
	return &created, nil
}

func (s *MemoryStore) Update(_ context.Context, entry *Entry) (*Entry, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ID != entry.ID {
			continue
		}
		updated := *entry
		updated.CreatedAt = e.CreatedAt
		updated.UpdatedAt = time.Now().UTC()
		if updated.IsActive == nil {
			updated.IsActive = e.IsActive
		}
		s.entries[i] = updated
		return &updated, nil
	}
	return nil, ErrEntryNotFound
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return ErrEntryNotFound
}

// BotConfig returns the saved settings, or the defaults when none were saved.
func (s *MemoryStore) BotConfig(context.Context) (BotConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.config == nil {
		return DefaultBotConfig(), nil
	}
	return *s.config, nil
}

func (s *MemoryStore) SaveBotConfig(_ context.Context, cfg BotConfig) error {
	cfg = cfg.WithDefaults()
	s.mu.Lock()
	s.config = &cfg
	s.mu.Unlock()
	return nil
}
