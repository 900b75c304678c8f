package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InsertEvent appends one event to the outbox. Callers pass an already
// marshalled payload.
func (r *Repository) InsertEvent(ctx context.Context, sessionID uuid.UUID, eventType string, payload []byte, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO auction_outbox (id, session_id, event_type, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), sessionID, eventType, payload, now)
	if err != nil {
		return fmt.Errorf("failed to insert %s outbox event: %w", eventType, err)
	}
	return nil
}

// FetchUnsentTx locks a batch of unsent events inside the given
// transaction so concurrent workers never double-publish.
func (r *Repository) FetchUnsentTx(ctx context.Context, tx *sql.Tx, limit int) ([]OutboxEvent, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, session_id, event_type, payload, created_at
		 FROM auction_outbox
		 WHERE sent_at IS NULL
		 ORDER BY created_at
		 LIMIT $1
		 FOR UPDATE SKIP LOCKED`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	defer rows.Close()

	var events []OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		if err := rows.Scan(&e.ID, &e.SessionID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outbox events: %w", err)
	}
	return events, nil
}

// MarkSentTx flags one event as published inside the worker transaction.
func (r *Repository) MarkSentTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, now time.Time) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE auction_outbox SET sent_at = $2 WHERE id = $1`, id, now); err != nil {
		return fmt.Errorf("failed to mark outbox event sent: %w", err)
	}
	return nil
}
