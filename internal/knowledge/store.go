package knowledge

import (
	"context"
	"errors"
)

var (
	// ErrEntryNotFound is returned when a knowledge entry does not exist.
	ErrEntryNotFound = errors.New("knowledge: entry not found")

	// ErrInvalidEntry is returned when an admin submission fails validation.
	ErrInvalidEntry = errors.New("knowledge: invalid entry")
)

// ListFilter narrows admin listings.
type ListFilter struct {
	Category   string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// Source supplies the knowledge base consulted on each chat turn.
type Source interface {
	KnowledgeBase(ctx context.Context) ([]Entry, error)
}

// ConfigSource supplies the chatbot settings.
type ConfigSource interface {
	BotConfig(ctx context.Context) (BotConfig, error)
}

// Store is the admin-facing CRUD surface for knowledge entries.
type Store interface {
	Source
	List(ctx context.Context, filter ListFilter) ([]Entry, error)
	Get(ctx context.Context, id string) (*Entry, error)
	Create(ctx context.Context, entry *Entry) (*Entry, error)
	Update(ctx context.Context, entry *Entry) (*Entry, error)
	Delete(ctx context.Context, id string) error
}

// ConfigStore persists chatbot settings.
type ConfigStore interface {
	ConfigSource
	SaveBotConfig(ctx context.Context, cfg BotConfig) error
}

// Repository is a Store that also owns the chatbot settings.
type Repository interface {
	Store
	ConfigStore
}
