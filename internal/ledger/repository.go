package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fantabuilder/fantasta/internal/models"
	"github.com/fantabuilder/fantasta/internal/slate"
	"github.com/fantabuilder/fantasta/internal/sqlutil"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateAssignment commits one auction result as a single transaction:
// the assignment row, the credit debit, and the cursor advance either all
// land or none do. The conditional debit and the unique
// (session_id, player_id) constraint re-enforce the app-layer checks
// against concurrent writers.
func (r *Repository) CreateAssignment(ctx context.Context, req CreateAssignmentRequest, now time.Time) (*models.Assignment, error) {
	assignment := &models.Assignment{
		ID:            uuid.New(),
		SessionID:     req.SessionID,
		ParticipantID: req.ParticipantID,
		PlayerID:      req.PlayerID,
		Price:         req.Price,
		AssignedAt:    now,
	}

	err := sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(assignment_order), 0) + 1 FROM assigned_players WHERE session_id = $1`,
			req.SessionID).Scan(&assignment.Order); err != nil {
			return fmt.Errorf("failed to compute assignment order: %w", err)
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO assigned_players (id, session_id, participant_id, player_id, price, assignment_order, assigned_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			assignment.ID, assignment.SessionID, assignment.ParticipantID,
			assignment.PlayerID, assignment.Price, assignment.Order, assignment.AssignedAt)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
				return ErrAlreadyAssigned
			}
			return fmt.Errorf("failed to insert assignment: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE participants SET credits_remaining = credits_remaining - $2
			 WHERE id = $1 AND credits_remaining >= $2`,
			req.ParticipantID, req.Price)
		if err != nil {
			return fmt.Errorf("failed to debit credits: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return ErrInsufficientCredits
		}

		// Sessions without a slate (all assignments via direct calls)
		// simply have no cursor to advance.
		if err := slate.AdvanceCursorTx(ctx, tx, req.SessionID, now); err != nil && !errors.Is(err, slate.ErrEmptySlate) {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return assignment, nil
}

// DeleteAssignmentWithRefund reverses one assignment: the row goes away
// and the price returns to the owning participant, atomically. The cursor
// does not move.
func (r *Repository) DeleteAssignmentWithRefund(ctx context.Context, assignmentID uuid.UUID) error {
	return sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		var participantID uuid.UUID
		var price int
		err := tx.QueryRowContext(ctx,
			`DELETE FROM assigned_players WHERE id = $1 RETURNING participant_id, price`,
			assignmentID).Scan(&participantID, &price)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrAssignmentNotFound
			}
			return fmt.Errorf("failed to delete assignment: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE participants SET credits_remaining = credits_remaining + $2 WHERE id = $1`,
			participantID, price); err != nil {
			return fmt.Errorf("failed to refund credits: %w", err)
		}
		return nil
	})
}

func (r *Repository) GetAssignment(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	return r.queryOne(ctx,
		`SELECT id, session_id, participant_id, player_id, price, assignment_order, assigned_at
		 FROM assigned_players WHERE id = $1`, id)
}

// GetAssignmentByPlayer returns the active assignment for a player in a
// session, or nil when the player is still free.
func (r *Repository) GetAssignmentByPlayer(ctx context.Context, sessionID uuid.UUID, playerID int) (*models.Assignment, error) {
	a, err := r.queryOne(ctx,
		`SELECT id, session_id, participant_id, player_id, price, assignment_order, assigned_at
		 FROM assigned_players WHERE session_id = $1 AND player_id = $2`, sessionID, playerID)
	if errors.Is(err, ErrAssignmentNotFound) {
		return nil, nil
	}
	return a, err
}

// GetLatestAssignment returns the most recent active assignment in the
// session by sequence number, or nil when the ledger is empty.
func (r *Repository) GetLatestAssignment(ctx context.Context, sessionID uuid.UUID) (*models.Assignment, error) {
	a, err := r.queryOne(ctx,
		`SELECT id, session_id, participant_id, player_id, price, assignment_order, assigned_at
		 FROM assigned_players WHERE session_id = $1
		 ORDER BY assignment_order DESC LIMIT 1`, sessionID)
	if errors.Is(err, ErrAssignmentNotFound) {
		return nil, nil
	}
	return a, err
}

// GetAssignmentByParticipantAndPlayer locates an assignment for targeted
// removal, or nil when none exists.
func (r *Repository) GetAssignmentByParticipantAndPlayer(ctx context.Context, participantID uuid.UUID, playerID int) (*models.Assignment, error) {
	a, err := r.queryOne(ctx,
		`SELECT id, session_id, participant_id, player_id, price, assignment_order, assigned_at
		 FROM assigned_players WHERE participant_id = $1 AND player_id = $2`, participantID, playerID)
	if errors.Is(err, ErrAssignmentNotFound) {
		return nil, nil
	}
	return a, err
}

func (r *Repository) ListAssignments(ctx context.Context, sessionID uuid.UUID) ([]models.Assignment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, participant_id, player_id, price, assignment_order, assigned_at
		 FROM assigned_players WHERE session_id = $1 ORDER BY assignment_order`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()
	return scanAssignments(rows)
}

// CountAssignmentsByRole counts a participant's active assignments whose
// player has the given role. Drives the role-quota check.
func (r *Repository) CountAssignmentsByRole(ctx context.Context, participantID uuid.UUID, role models.Role) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM assigned_players ap
		 JOIN players p ON p.id = ap.player_id
		 WHERE ap.participant_id = $1 AND p.role = $2`,
		participantID, role).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count assignments by role: %w", err)
	}
	return count, nil
}

// ListRoster returns a participant's won players joined with catalog
// data, in assignment order.
func (r *Repository) ListRoster(ctx context.Context, participantID uuid.UUID) ([]RosterSlot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.name, p.team, p.role, p.valuation, ap.price, ap.assignment_order
		 FROM assigned_players ap
		 JOIN players p ON p.id = ap.player_id
		 WHERE ap.participant_id = $1
		 ORDER BY ap.assignment_order`, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster: %w", err)
	}
	defer rows.Close()

	var slots []RosterSlot
	for rows.Next() {
		var s RosterSlot
		if err := rows.Scan(&s.Player.ID, &s.Player.Name, &s.Player.Team, &s.Player.Role,
			&s.Player.Valuation, &s.Price, &s.Order); err != nil {
			return nil, fmt.Errorf("failed to scan roster slot: %w", err)
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roster: %w", err)
	}
	return slots, nil
}

func (r *Repository) queryOne(ctx context.Context, query string, args ...any) (*models.Assignment, error) {
	var a models.Assignment
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&a.ID, &a.SessionID, &a.ParticipantID, &a.PlayerID, &a.Price, &a.Order, &a.AssignedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return &a, nil
}

func scanAssignments(rows *sql.Rows) ([]models.Assignment, error) {
	var assignments []models.Assignment
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(&a.ID, &a.SessionID, &a.ParticipantID, &a.PlayerID,
			&a.Price, &a.Order, &a.AssignedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}
	return assignments, nil
}
