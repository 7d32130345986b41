package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const entryColumns = "id::text, category, question, keywords, answer, priority, is_active, created_at, updated_at"

// PostgresStore persists knowledge entries and chatbot settings.
type PostgresStore struct {
	pool pgxPool
}

// NewPostgresStore wraps a pgx pool (or anything that queries like one).
func NewPostgresStore(pool pgxPool) *PostgresStore {
	if pool == nil {
		panic("knowledge: pgx pool required")
	}
	return &PostgresStore{pool: pool}
}

// KnowledgeBase returns active entries ordered for matching.
func (s *PostgresStore) KnowledgeBase(ctx context.Context) ([]Entry, error) {
	return s.List(ctx, ListFilter{ActiveOnly: true})
}

func (s *PostgresStore) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	if filter.ActiveOnly {
		where = append(where, "is_active = TRUE")
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("LOWER(category) = LOWER($%d)", len(args)))
	}

	query := "SELECT " + entryColumns + " FROM knowledge_entries"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY priority DESC, created_at ASC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("knowledge: list entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("knowledge: scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("knowledge: list entries: %w", err)
	}
	return entries, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Entry, error) {
	if !validID(id) {
		return nil, ErrEntryNotFound
	}
	row := s.pool.QueryRow(ctx, "SELECT "+entryColumns+" FROM knowledge_entries WHERE id = $1", id)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("knowledge: get entry: %w", err)
	}
	return &e, nil
}

func (s *PostgresStore) Create(ctx context.Context, entry *Entry) (*Entry, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	active := entry.Active()
	row := s.pool.QueryRow(ctx, `
		INSERT INTO knowledge_entries (category, question, keywords, answer, priority, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+entryColumns,
		entry.Category, entry.Question, entry.Keywords, entry.Answer, entry.Priority, active,
	)
	created, err := scanEntry(row)
	if err != nil {
		return nil, fmt.Errorf("knowledge: insert entry: %w", err)
	}
	return &created, nil
}

func (s *PostgresStore) Update(ctx context.Context, entry *Entry) (*Entry, error) {
	if !validID(entry.ID) {
		return nil, ErrEntryNotFound
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE knowledge_entries
		SET category = $2, question = $3, keywords = $4, answer = $5, priority = $6,
		    is_active = COALESCE($7, is_active), updated_at = NOW()
		WHERE id = $1
		RETURNING `+entryColumns,
		entry.ID, entry.Category, entry.Question, entry.Keywords, entry.Answer, entry.Priority, entry.IsActive,
	)
	updated, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("knowledge: update entry: %w", err)
	}
	return &updated, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrEntryNotFound
	}
	tag, err := s.pool.Exec(ctx, "DELETE FROM knowledge_entries WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("knowledge: delete entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// BotConfig loads the single settings row. No row yet means defaults.
func (s *PostgresStore) BotConfig(ctx context.Context) (BotConfig, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, "SELECT settings FROM chatbot_config WHERE id = 1").Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DefaultBotConfig(), nil
		}
		return BotConfig{}, fmt.Errorf("knowledge: load bot config: %w", err)
	}
	cfg := DefaultBotConfig()
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return BotConfig{}, fmt.Errorf("knowledge: decode bot config: %w", err)
	}
	return cfg.WithDefaults(), nil
}

func (s *PostgresStore) SaveBotConfig(ctx context.Context, cfg BotConfig) error {
	raw, err := json.Marshal(cfg.WithDefaults())
	if err != nil {
		return fmt.Errorf("knowledge: encode bot config: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO chatbot_config (id, settings, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET settings = EXCLUDED.settings, updated_at = NOW()`,
		raw,
	)
	if err != nil {
		return fmt.Errorf("knowledge: save bot config: %w", err)
	}
	return nil
}

func scanEntry(row pgx.Row) (Entry, error) {
	var (
		e      Entry
		active bool
	)
	if err := row.Scan(&e.ID, &e.Category, &e.Question, &e.Keywords, &e.Answer, &e.Priority, &active, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return Entry{}, err
	}
	e.IsActive = Bool(active)
	return e, nil
}

// validID rejects ids that would make Postgres fail the uuid cast.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
