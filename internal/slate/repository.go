package slate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fantabuilder/fantasta/internal/models"
	"github.com/fantabuilder/fantasta/internal/sqlutil"
	"github.com/google/uuid"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetSlate(ctx context.Context, sessionID uuid.UUID) ([]models.SlateEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT session_id, player_id, order_index, generation
		 FROM player_order WHERE session_id = $1 ORDER BY order_index`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get slate: %w", err)
	}
	defer rows.Close()

	var entries []models.SlateEntry
	for rows.Next() {
		var e models.SlateEntry
		if err := rows.Scan(&e.SessionID, &e.PlayerID, &e.OrderIndex, &e.Generation); err != nil {
			return nil, fmt.Errorf("failed to scan slate entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate slate: %w", err)
	}
	return entries, nil
}

func (r *Repository) GetCursor(ctx context.Context, sessionID uuid.UUID) (*models.Cursor, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT session_id, player_id, generation, updated_at
		 FROM current_player WHERE session_id = $1`, sessionID)

	var c models.Cursor
	var playerID sql.NullInt64
	if err := row.Scan(&c.SessionID, &playerID, &c.Generation, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cursor: %w", err)
	}
	if playerID.Valid {
		id := int(playerID.Int64)
		c.PlayerID = &id
	}
	return &c, nil
}

// ReplaceSlate swaps the whole slate in one transaction: previous entries
// go away, the new order comes in under the next generation, and the
// cursor lands on the head of the new slate.
func (r *Repository) ReplaceSlate(ctx context.Context, sessionID uuid.UUID, playerIDs []int, now time.Time) (int, error) {
	var generation int
	err := sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(generation), 0) + 1 FROM player_order WHERE session_id = $1`,
			sessionID).Scan(&generation); err != nil {
			return fmt.Errorf("failed to compute slate generation: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM player_order WHERE session_id = $1`, sessionID); err != nil {
			return fmt.Errorf("failed to clear slate: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO player_order (session_id, player_id, order_index, generation)
			 VALUES ($1, $2, $3, $4)`)
		if err != nil {
			return fmt.Errorf("failed to prepare slate insert: %w", err)
		}
		defer stmt.Close()

		for i, playerID := range playerIDs {
			if _, err := stmt.ExecContext(ctx, sessionID, playerID, i, generation); err != nil {
				return fmt.Errorf("failed to insert slate entry %d: %w", i, err)
			}
		}

		var head any
		if len(playerIDs) > 0 {
			head = playerIDs[0]
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO current_player (session_id, player_id, generation, updated_at)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (session_id) DO UPDATE SET player_id = $2, generation = $3, updated_at = $4`,
			sessionID, head, generation, now); err != nil {
			return fmt.Errorf("failed to reset cursor: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return generation, nil
}

func (r *Repository) SetCurrentPlayer(ctx context.Context, sessionID uuid.UUID, playerID int, now time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE current_player SET player_id = $2, updated_at = $3 WHERE session_id = $1`,
		sessionID, playerID, now)
	if err != nil {
		return fmt.Errorf("failed to set current player: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrEmptySlate
	}
	return nil
}

// AdvanceCursorTx moves the cursor to the next slate position inside an
// existing transaction. The ledger uses this so an assignment and its
// cursor advance commit or roll back together.
func AdvanceCursorTx(ctx context.Context, tx *sql.Tx, sessionID uuid.UUID, now time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE current_player cp
		 SET player_id = (
		     SELECT nxt.player_id
		     FROM player_order cur
		     JOIN player_order nxt
		       ON nxt.session_id = cur.session_id
		      AND nxt.order_index = (cur.order_index + 1) %
		          (SELECT COUNT(*) FROM player_order WHERE session_id = cur.session_id)
		     WHERE cur.session_id = cp.session_id AND cur.player_id = cp.player_id
		 ),
		     updated_at = $2
		 WHERE cp.session_id = $1 AND cp.player_id IS NOT NULL`,
		sessionID, now)
	if err != nil {
		return fmt.Errorf("failed to advance cursor: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrEmptySlate
	}
	return nil
}
