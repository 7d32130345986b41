package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type pgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const leadColumns = "id::text, COALESCE(session_id, ''), name, email, phone, location, interest, message, source, created_at, updated_at"

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	pool pgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool pgxPool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO leads (id, name, email, phone, location, interest, message, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + leadColumns
	row := r.pool.QueryRow(ctx, query,
		uuid.New(),
		req.Name,
		req.Email,
		req.Phone,
		req.Location,
		req.Interest,
		req.Message,
		req.Source,
	)
	lead, err := scanLead(row)
	if err != nil {
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}
	return lead, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrLeadNotFound
	}
	return r.getOne(ctx, "SELECT "+leadColumns+" FROM leads WHERE id = $1", id)
}

func (r *PostgresRepository) GetBySession(ctx context.Context, sessionID string) (*Lead, error) {
	return r.getOne(ctx, "SELECT "+leadColumns+" FROM leads WHERE session_id = $1", sessionID)
}

// UpsertBySession only ever fills blank columns; captured values are never replaced.
func (r *PostgresRepository) UpsertBySession(ctx context.Context, in ChatLead) (*Lead, error) {
	if strings.TrimSpace(in.SessionID) == "" {
		return nil, ErrMissingSession
	}
	query := `
		INSERT INTO leads (id, session_id, name, email, location, interest, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id) DO UPDATE SET
			name = CASE WHEN leads.name = '' THEN EXCLUDED.name ELSE leads.name END,
			email = CASE WHEN leads.email = '' THEN EXCLUDED.email ELSE leads.email END,
			location = CASE WHEN leads.location = '' THEN EXCLUDED.location ELSE leads.location END,
			interest = CASE WHEN leads.interest = '' THEN EXCLUDED.interest ELSE leads.interest END,
			updated_at = NOW()
		RETURNING ` + leadColumns
	row := r.pool.QueryRow(ctx, query,
		uuid.New(),
		in.SessionID,
		strings.TrimSpace(in.Name),
		strings.TrimSpace(in.Email),
		strings.TrimSpace(in.Location),
		strings.TrimSpace(in.Interest),
		SourceChat,
	)
	lead, err := scanLead(row)
	if err != nil {
		return nil, fmt.Errorf("leads: upsert failed: %w", err)
	}
	return lead, nil
}

// List returns leads newest first.
func (r *PostgresRepository) List(ctx context.Context, filter ListLeadsFilter) ([]*Lead, error) {
	var args []any
	query := "SELECT " + leadColumns + " FROM leads"
	if filter.Source != "" {
		args = append(args, filter.Source)
		query += fmt.Sprintf(" WHERE source = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	out := []*Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		out = append(out, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return lead, nil
}

func scanLead(row pgx.Row) (*Lead, error) {
	var lead Lead
	if err := row.Scan(
		&lead.ID,
		&lead.SessionID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.Location,
		&lead.Interest,
		&lead.Message,
		&lead.Source,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &lead, nil
}
