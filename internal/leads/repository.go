package leads

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for lead storage
type Repository interface {
	Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error)
	GetByID(ctx context.Context, id string) (*Lead, error)
	GetBySession(ctx context.Context, sessionID string) (*Lead, error)
	// UpsertBySession fills the empty fields of the session's lead, creating it if needed.
	UpsertBySession(ctx context.Context, lead ChatLead) (*Lead, error)
	List(ctx context.Context, filter ListLeadsFilter) ([]*Lead, error)
}

// InMemoryRepository is a stub implementation of Repository using in-memory storage
type InMemoryRepository struct {
	mu        sync.RWMutex
	leads     map[string]*Lead
	bySession map[string]string
	now       func() time.Time
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads:     make(map[string]*Lead),
		bySession: make(map[string]string),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create creates a new lead in memory
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := r.now()
	lead := &Lead{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Location:  req.Location,
		Interest:  req.Interest,
		Message:   req.Message,
		Source:    req.Source,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	r.leads[lead.ID] = lead
	r.mu.Unlock()

	copied := *lead
	return &copied, nil
}

// GetByID retrieves a lead by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	copied := *lead
	return &copied, nil
}

func (r *InMemoryRepository) GetBySession(ctx context.Context, sessionID string) (*Lead, error) {
	r.mu.RLock()
	id, ok := r.bySession[sessionID]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrLeadNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *InMemoryRepository) UpsertBySession(ctx context.Context, in ChatLead) (*Lead, error) {
	if strings.TrimSpace(in.SessionID) == "" {
		return nil, ErrMissingSession
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	lead, ok := r.leads[r.bySession[in.SessionID]]
	if !ok {
		lead = &Lead{
			ID:        uuid.New().String(),
			SessionID: in.SessionID,
			Source:    SourceChat,
			CreatedAt: now,
		}
		r.leads[lead.ID] = lead
		r.bySession[in.SessionID] = lead.ID
	}
	fillEmpty(&lead.Name, in.Name)
	fillEmpty(&lead.Email, in.Email)
	fillEmpty(&lead.Location, in.Location)
	fillEmpty(&lead.Interest, in.Interest)
	lead.UpdatedAt = now

	copied := *lead
	return &copied, nil
}

// List returns leads newest first.
func (r *InMemoryRepository) List(ctx context.Context, filter ListLeadsFilter) ([]*Lead, error) {
	r.mu.RLock()
	out := make([]*Lead, 0, len(r.leads))
	for _, l := range r.leads {
		if filter.Source != "" && l.Source != filter.Source {
			continue
		}
		copied := *l
		out = append(out, &copied)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*Lead{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func fillEmpty(dst *string, value string) {
	if *dst == "" {
		*dst = strings.TrimSpace(value)
	}
}
