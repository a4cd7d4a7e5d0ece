package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChangeLogEntry is one mutation recorded in the change_log table.
type ChangeLogEntry struct {
	EventID    string
	EventType  string
	Resource   string
	ResourceID string
	ActorID    *string
	Payload    []byte
	OccurredAt time.Time
	RecordedAt time.Time
}

// ChangeLogRepository appends mutation records to Postgres.
type ChangeLogRepository interface {
	Append(ctx context.Context, entry *ChangeLogEntry) error
}

type changeLogRepository struct {
	pool *pgxpool.Pool
}

// NewChangeLogRepository returns a Postgres-backed implementation.
func NewChangeLogRepository(pool *pgxpool.Pool) ChangeLogRepository {
	return &changeLogRepository{pool: pool}
}

func (r *changeLogRepository) Append(ctx context.Context, entry *ChangeLogEntry) error {
	const query = `
        INSERT INTO change_log (event_id, event_type, resource, resource_id, actor_id, payload, occurred_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (event_id) DO NOTHING
        RETURNING recorded_at`
	err := r.pool.QueryRow(ctx, query,
		entry.EventID,
		entry.EventType,
		entry.Resource,
		entry.ResourceID,
		entry.ActorID,
		entry.Payload,
		entry.OccurredAt,
	).Scan(&entry.RecordedAt)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	return nil
}
