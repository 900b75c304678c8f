package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fantabuilder/fantasta/internal/catalog"
	"github.com/fantabuilder/fantasta/internal/models"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// LedgerRepository defines what the ledger app layer needs from storage.
type LedgerRepository interface {
	CreateAssignment(ctx context.Context, req CreateAssignmentRequest, now time.Time) (*models.Assignment, error)
	DeleteAssignmentWithRefund(ctx context.Context, assignmentID uuid.UUID) error
	GetAssignment(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
	GetAssignmentByPlayer(ctx context.Context, sessionID uuid.UUID, playerID int) (*models.Assignment, error)
	GetLatestAssignment(ctx context.Context, sessionID uuid.UUID) (*models.Assignment, error)
	GetAssignmentByParticipantAndPlayer(ctx context.Context, participantID uuid.UUID, playerID int) (*models.Assignment, error)
	ListAssignments(ctx context.Context, sessionID uuid.UUID) ([]models.Assignment, error)
	CountAssignmentsByRole(ctx context.Context, participantID uuid.UUID, role models.Role) (int, error)
	ListRoster(ctx context.Context, participantID uuid.UUID) ([]RosterSlot, error)
}

// ParticipantSource supplies participant state for precondition checks.
type ParticipantSource interface {
	Participants(ctx context.Context, sessionID uuid.UUID) ([]models.Participant, error)
	ParticipantByID(ctx context.Context, id uuid.UUID) (*models.Participant, error)
}

// PlayerCatalog supplies player reference data.
type PlayerCatalog interface {
	PlayerByID(ctx context.Context, id int) (*models.Player, error)
}

// App enforces the auction's money and quota rules. Preconditions run in a
// fixed order and the first failure wins; a failed operation leaves no
// observable change.
type App struct {
	repo         LedgerRepository
	participants ParticipantSource
	catalog      PlayerCatalog
	clock        clockwork.Clock
}

func NewApp(repo LedgerRepository, participants ParticipantSource, catalog PlayerCatalog, clock clockwork.Clock) *App {
	return &App{
		repo:         repo,
		participants: participants,
		catalog:      catalog,
		clock:        clock,
	}
}

// Assign sells the player to a participant for the given price. On success
// the assignment, the credit debit, and the cursor advance commit as one
// transaction.
func (a *App) Assign(ctx context.Context, sessionID, participantID uuid.UUID, playerID, price int) (*models.Assignment, error) {
	if price < 1 {
		return nil, fmt.Errorf("price %d: %w", price, ErrInvalidPrice)
	}

	participant, err := a.participants.ParticipantByID(ctx, participantID)
	if err != nil || participant.SessionID != sessionID {
		return nil, fmt.Errorf("participant %s: %w", participantID, ErrParticipantNotFound)
	}

	player, err := a.catalog.PlayerByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, catalog.ErrPlayerNotFound) {
			return nil, fmt.Errorf("player %d: %w", playerID, ErrPlayerNotFound)
		}
		return nil, fmt.Errorf("failed to look up player %d: %w", playerID, err)
	}

	existing, err := a.repo.GetAssignmentByPlayer(ctx, sessionID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing assignment: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("player %d: %w", playerID, ErrAlreadyAssigned)
	}

	if participant.CreditsRemaining < price {
		return nil, fmt.Errorf("%d credits remaining, price %d: %w",
			participant.CreditsRemaining, price, ErrInsufficientCredits)
	}

	count, err := a.repo.CountAssignmentsByRole(ctx, participantID, player.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to count role assignments: %w", err)
	}
	if count >= models.RoleLimits[player.Role] {
		return nil, fmt.Errorf("%s at %d/%d: %w",
			player.Role.Label(), count, models.RoleLimits[player.Role], ErrRoleLimitReached)
	}

	assignment, err := a.repo.CreateAssignment(ctx, CreateAssignmentRequest{
		SessionID:     sessionID,
		ParticipantID: participantID,
		PlayerID:      playerID,
		Price:         price,
	}, a.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	log.Info().
		Str("session_id", sessionID.String()).
		Str("participant_id", participantID.String()).
		Int("player_id", playerID).
		Int("price", price).
		Int("order", assignment.Order).
		Msg("player assigned")

	return assignment, nil
}

// Undo reverses the most recent active assignment, or the specific one
// when assignmentID is set. Credits return to the owner; the cursor stays
// where it is.
func (a *App) Undo(ctx context.Context, sessionID uuid.UUID, assignmentID *uuid.UUID) (*models.Assignment, error) {
	var target *models.Assignment
	var err error

	if assignmentID != nil {
		target, err = a.repo.GetAssignment(ctx, *assignmentID)
		if err != nil {
			if errors.Is(err, ErrAssignmentNotFound) {
				return nil, ErrNothingToUndo
			}
			return nil, fmt.Errorf("failed to get assignment: %w", err)
		}
		if target.SessionID != sessionID {
			return nil, ErrNothingToUndo
		}
	} else {
		target, err = a.repo.GetLatestAssignment(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to get latest assignment: %w", err)
		}
		if target == nil {
			return nil, ErrNothingToUndo
		}
	}

	if err := a.repo.DeleteAssignmentWithRefund(ctx, target.ID); err != nil {
		if errors.Is(err, ErrAssignmentNotFound) {
			return nil, ErrNothingToUndo
		}
		return nil, fmt.Errorf("failed to undo assignment: %w", err)
	}

	log.Info().
		Str("session_id", sessionID.String()).
		Str("assignment_id", target.ID.String()).
		Int("player_id", target.PlayerID).
		Int("refund", target.Price).
		Msg("assignment undone")

	return target, nil
}

// Remove is the admin's roster correction: it reverses an arbitrary
// assignment identified by participant and player, regardless of recency.
func (a *App) Remove(ctx context.Context, sessionID, participantID uuid.UUID, playerID int) (*models.Assignment, error) {
	target, err := a.repo.GetAssignmentByParticipantAndPlayer(ctx, participantID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}
	if target == nil || target.SessionID != sessionID {
		return nil, fmt.Errorf("participant %s player %d: %w", participantID, playerID, ErrAssignmentNotFound)
	}

	if err := a.repo.DeleteAssignmentWithRefund(ctx, target.ID); err != nil {
		return nil, fmt.Errorf("failed to remove assignment: %w", err)
	}

	log.Info().
		Str("session_id", sessionID.String()).
		Str("participant_id", participantID.String()).
		Int("player_id", playerID).
		Int("refund", target.Price).
		Msg("assignment removed")

	return target, nil
}

// Assignments lists the session ledger in sequence order.
func (a *App) Assignments(ctx context.Context, sessionID uuid.UUID) ([]models.Assignment, error) {
	assignments, err := a.repo.ListAssignments(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

// RosterOf returns a participant's roster grouped by role in fixed role
// precedence, each group in assignment order.
func (a *App) RosterOf(ctx context.Context, participantID uuid.UUID) (Roster, error) {
	slots, err := a.repo.ListRoster(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}

	roster := make(Roster, len(models.RoleOrder))
	for _, role := range models.RoleOrder {
		roster[role] = nil
	}
	for _, slot := range slots {
		roster[slot.Player.Role] = append(roster[slot.Player.Role], slot)
	}
	return roster, nil
}

// Summary computes the per-participant progress view: spent credits and
// open roster slots per role.
func (a *App) Summary(ctx context.Context, sessionID uuid.UUID) ([]ParticipantSummary, error) {
	participants, err := a.participants.Participants(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	summaries := make([]ParticipantSummary, 0, len(participants))
	for _, p := range participants {
		slots, err := a.repo.ListRoster(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load roster for %s: %w", p.ID, err)
		}

		spent := 0
		counts := make(map[models.Role]int, len(models.RoleOrder))
		for _, slot := range slots {
			spent += slot.Price
			counts[slot.Player.Role]++
		}

		remaining := make(map[models.Role]int, len(models.RoleOrder))
		for _, role := range models.RoleOrder {
			remaining[role] = models.RoleLimits[role] - counts[role]
		}

		summaries = append(summaries, ParticipantSummary{
			Participant:    p,
			Spent:          spent,
			SlotsRemaining: remaining,
		})
	}
	return summaries, nil
}
