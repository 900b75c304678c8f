package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

// CreateSessionWithParticipants inserts the session and all of its
// participant slots in one transaction. Slot 0 is the admin and is already
// claimed; the rest wait for users to join.
func (r *Repository) CreateSessionWithParticipants(ctx context.Context, sess *models.Session, participants []models.Participant) error {
	return sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO sessions (id, code, admin_user_id, num_participants, budget_per_participant,
			                       order_policy, starting_letter, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
			sess.ID, sess.Code, sess.AdminUserID, sess.NumParticipants, sess.BudgetPerParticipant,
			sess.OrderPolicy, sess.StartingLetter, sess.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO participants (id, session_id, user_id, nickname, credits_remaining,
			                           position, is_admin, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
		if err != nil {
			return fmt.Errorf("failed to prepare participant insert: %w", err)
		}
		defer stmt.Close()

		for _, p := range participants {
			if _, err := stmt.ExecContext(ctx, p.ID, p.SessionID, p.UserID, p.Nickname,
				p.CreditsRemaining, p.Position, p.IsAdmin, p.CreatedAt); err != nil {
				return fmt.Errorf("failed to insert participant %d: %w", p.Position, err)
			}
		}
		return nil
	})
}

func (r *Repository) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	return r.scanSession(r.db.QueryRowContext(ctx,
		`SELECT id, code, admin_user_id, num_participants, budget_per_participant,
		        order_policy, starting_letter, created_at, updated_at
		 FROM sessions WHERE id = $1`, id))
}

func (r *Repository) GetSessionByCode(ctx context.Context, code string) (*models.Session, error) {
	return r.scanSession(r.db.QueryRowContext(ctx,
		`SELECT id, code, admin_user_id, num_participants, budget_per_participant,
		        order_policy, starting_letter, created_at, updated_at
		 FROM sessions WHERE code = $1`, code))
}

func (r *Repository) scanSession(row *sql.Row) (*models.Session, error) {
	var s models.Session
	if err := row.Scan(&s.ID, &s.Code, &s.AdminUserID, &s.NumParticipants,
		&s.BudgetPerParticipant, &s.OrderPolicy, &s.StartingLetter,
		&s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

func (r *Repository) GetParticipant(ctx context.Context, id uuid.UUID) (*models.Participant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, session_id, user_id, nickname, credits_remaining, position, is_admin, created_at
		 FROM participants WHERE id = $1`, id)
	return scanParticipantRow(row)
}

func (r *Repository) GetParticipantByUser(ctx context.Context, sessionID uuid.UUID, userID string) (*models.Participant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, session_id, user_id, nickname, credits_remaining, position, is_admin, created_at
		 FROM participants WHERE session_id = $1 AND user_id = $2`, sessionID, userID)
	return scanParticipantRow(row)
}

func (r *Repository) ListParticipants(ctx context.Context, sessionID uuid.UUID) ([]models.Participant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, user_id, nickname, credits_remaining, position, is_admin, created_at
		 FROM participants WHERE session_id = $1 ORDER BY position`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return participants, nil
}

// ClaimParticipant assigns a user to an unclaimed slot. The conditional
// UPDATE makes the claim exclusive even under concurrent joins.
func (r *Repository) ClaimParticipant(ctx context.Context, participantID uuid.UUID, userID, nickname string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE participants SET user_id = $2, nickname = $3
		 WHERE id = $1 AND user_id IS NULL`,
		participantID, userID, nickname)
	if err != nil {
		return fmt.Errorf("failed to claim participant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrSlotTaken
	}
	return nil
}

func scanParticipantRow(row *sql.Row) (*models.Participant, error) {
	var p models.Participant
	if err := row.Scan(&p.ID, &p.SessionID, &p.UserID, &p.Nickname,
		&p.CreditsRemaining, &p.Position, &p.IsAdmin, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return &p, nil
}

func scanParticipant(rows *sql.Rows) (*models.Participant, error) {
	var p models.Participant
	if err := rows.Scan(&p.ID, &p.SessionID, &p.UserID, &p.Nickname,
		&p.CreditsRemaining, &p.Position, &p.IsAdmin, &p.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan participant: %w", err)
	}
	return &p, nil
}
