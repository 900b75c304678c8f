package coordinator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fantabuilder/fantasta/internal/catalog"
	"github.com/fantabuilder/fantasta/internal/ledger"
	"github.com/fantabuilder/fantasta/internal/models"
	"github.com/fantabuilder/fantasta/internal/outbox/events"
	"github.com/fantabuilder/fantasta/internal/session"
	"github.com/fantabuilder/fantasta/internal/slate"
)

// SessionService defines what the coordinator needs from session management.
type SessionService interface {
	CreateSession(ctx context.Context, req session.CreateSessionRequest) (*models.Session, error)
	JoinSession(ctx context.Context, code string, participantID uuid.UUID, userID, nickname string) (*models.Participant, error)
	SessionByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	SessionByCode(ctx context.Context, code string) (*models.Session, error)
	Participants(ctx context.Context, sessionID uuid.UUID) ([]models.Participant, error)
	ParticipantByID(ctx context.Context, id uuid.UUID) (*models.Participant, error)
	ParticipantByUser(ctx context.Context, sessionID uuid.UUID, userID string) (*models.Participant, error)
}

// SlateService defines what the coordinator needs from slate navigation.
type SlateService interface {
	Initialize(ctx context.Context, sess *models.Session) (int, error)
	ReinitializeForRole(ctx context.Context, sess *models.Session, role models.Role) (int, error)
	Current(ctx context.Context, sessionID uuid.UUID) (*models.Cursor, error)
	Slate(ctx context.Context, sessionID uuid.UUID) ([]models.SlateEntry, error)
	Advance(ctx context.Context, sessionID uuid.UUID) (int, error)
	Retreat(ctx context.Context, sessionID uuid.UUID) (int, error)
	JumpTo(ctx context.Context, sessionID uuid.UUID, playerID int) error
}

// LedgerService defines what the coordinator needs from assignment bookkeeping.
type LedgerService interface {
	Assign(ctx context.Context, sessionID, participantID uuid.UUID, playerID, price int) (*models.Assignment, error)
	Undo(ctx context.Context, sessionID uuid.UUID, assignmentID *uuid.UUID) (*models.Assignment, error)
	Remove(ctx context.Context, sessionID, participantID uuid.UUID, playerID int) (*models.Assignment, error)
	Assignments(ctx context.Context, sessionID uuid.UUID) ([]models.Assignment, error)
	RosterOf(ctx context.Context, participantID uuid.UUID) (ledger.Roster, error)
	Summary(ctx context.Context, sessionID uuid.UUID) ([]ledger.ParticipantSummary, error)
}

// PlayerCatalog defines what the coordinator needs from the player catalog.
type PlayerCatalog interface {
	PlayerByID(ctx context.Context, id int) (*models.Player, error)
}

// EventRecorder defines what the coordinator needs from the outbox.
type EventRecorder interface {
	InsertSessionCreated(ctx context.Context, sessionID uuid.UUID, payload events.SessionCreatedPayload) error
	InsertParticipantJoined(ctx context.Context, sessionID uuid.UUID, payload events.ParticipantJoinedPayload) error
	InsertAssignmentMade(ctx context.Context, sessionID uuid.UUID, payload events.AssignmentMadePayload) error
	InsertAssignmentUndone(ctx context.Context, sessionID uuid.UUID, payload events.AssignmentUndonePayload) error
	InsertAssignmentRemoved(ctx context.Context, sessionID uuid.UUID, payload events.AssignmentUndonePayload) error
	InsertCursorMoved(ctx context.Context, sessionID uuid.UUID, payload events.CursorMovedPayload) error
	InsertSlateInitialized(ctx context.Context, sessionID uuid.UUID, payload events.SlateInitializedPayload) error
}

// App orchestrates a live auction: sessions, the player slate, the
// assignment ledger and event recording. All mutating operations are
// restricted to the session admin; reads are open to any participant.
type App struct {
	sessions SessionService
	slates   SlateService
	ledgers  LedgerService
	catalog  PlayerCatalog
	events   EventRecorder
}

func NewApp(sessions SessionService, slates SlateService, ledgers LedgerService, players PlayerCatalog, recorder EventRecorder) *App {
	return &App{
		sessions: sessions,
		slates:   slates,
		ledgers:  ledgers,
		catalog:  players,
		events:   recorder,
	}
}

// CreateSession opens a new auction and builds its initial slate over
// the full catalog.
func (a *App) CreateSession(ctx context.Context, req session.CreateSessionRequest) (*models.Session, error) {
	sess, err := a.sessions.CreateSession(ctx, req)
	if err != nil {
		return nil, err
	}

	generation, err := a.slates.Initialize(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize slate for session %s: %w", sess.ID, err)
	}

	a.emit(ctx, events.TypeSessionCreated, a.events.InsertSessionCreated(ctx, sess.ID, events.SessionCreatedPayload{
		SessionID:       sess.ID.String(),
		Code:            sess.Code,
		NumParticipants: sess.NumParticipants,
		Budget:          sess.BudgetPerParticipant,
		CreatedAt:       sess.CreatedAt,
	}))
	a.emitSlateInitialized(ctx, sess.ID, generation, nil)
	a.emitCursorMoved(ctx, sess.ID)

	return sess, nil
}

// JoinSession claims a free slot in the session identified by code.
func (a *App) JoinSession(ctx context.Context, code string, participantID uuid.UUID, userID, nickname string) (*models.Participant, error) {
	participant, err := a.sessions.JoinSession(ctx, code, participantID, userID, nickname)
	if err != nil {
		return nil, err
	}

	a.emit(ctx, events.TypeParticipantJoined, a.events.InsertParticipantJoined(ctx, participant.SessionID, events.ParticipantJoinedPayload{
		SessionID:     participant.SessionID.String(),
		ParticipantID: participant.ID.String(),
		Nickname:      participant.Nickname,
		Position:      participant.Position,
	}))

	return participant, nil
}

// Assign records a sale of the given player to a participant. Admin only.
// The session cursor advances as part of the same transaction.
func (a *App) Assign(ctx context.Context, sessionID uuid.UUID, userID string, participantID uuid.UUID, playerID, price int) (*models.Assignment, error) {
	if _, err := a.requireAdmin(ctx, sessionID, userID); err != nil {
		return nil, err
	}

	assignment, err := a.ledgers.Assign(ctx, sessionID, participantID, playerID, price)
	if err != nil {
		return nil, err
	}

	creditsRemaining := 0
	if p, err := a.sessions.ParticipantByID(ctx, participantID); err == nil {
		creditsRemaining = p.CreditsRemaining
	}

	a.emit(ctx, events.TypeAssignmentMade, a.events.InsertAssignmentMade(ctx, sessionID, events.AssignmentMadePayload{
		SessionID:        sessionID.String(),
		AssignmentID:     assignment.ID.String(),
		ParticipantID:    participantID.String(),
		PlayerID:         playerID,
		Price:            price,
		Order:            assignment.Order,
		CreditsRemaining: creditsRemaining,
		AssignedAt:       assignment.AssignedAt,
	}))
	a.emitCursorMoved(ctx, sessionID)

	return assignment, nil
}

// Discard skips the live player without a sale and moves to the next
// one. Admin only.
func (a *App) Discard(ctx context.Context, sessionID uuid.UUID, userID string) error {
	if _, err := a.requireAdmin(ctx, sessionID, userID); err != nil {
		return err
	}
	if _, err := a.slates.Advance(ctx, sessionID); err != nil {
		return err
	}
	a.emitCursorMoved(ctx, sessionID)
	return nil
}

// Retreat steps the cursor back to the previous player. Admin only.
func (a *App) Retreat(ctx context.Context, sessionID uuid.UUID, userID string) error {
	if _, err := a.requireAdmin(ctx, sessionID, userID); err != nil {
		return err
	}
	if _, err := a.slates.Retreat(ctx, sessionID); err != nil {
		return err
	}
	a.emitCursorMoved(ctx, sessionID)
	return nil
}

// JumpTo points the cursor at an arbitrary slate player. Admin only.
func (a *App) JumpTo(ctx context.Context, sessionID uuid.UUID, userID string, playerID int) error {
	if _, err := a.requireAdmin(ctx, sessionID, userID); err != nil {
		return err
	}
	if err := a.slates.JumpTo(ctx, sessionID, playerID); err != nil {
		return err
	}
	a.emitCursorMoved(ctx, sessionID)
	return nil
}

// SwitchRole rebuilds the slate restricted to a single role, bumping the
// generation so stale clients reload. Admin only.
func (a *App) SwitchRole(ctx context.Context, sessionID uuid.UUID, userID string, role models.Role) error {
	if _, err := a.requireAdmin(ctx, sessionID, userID); err != nil {
		return err
	}
	sess, err := a.sessions.SessionByID(ctx, sessionID)
	if err != nil {
		return err
	}
	generation, err := a.slates.ReinitializeForRole(ctx, sess, role)
	if err != nil {
		return err
	}

	scope := string(role)
	a.emitSlateInitialized(ctx, sessionID, generation, &scope)
	a.emitCursorMoved(ctx, sessionID)
	return nil
}

// Undo reverses an assignment and refunds the buyer. With a nil
// assignmentID the most recent assignment in the session is reversed.
// The cursor stays where it is. Admin only.
func (a *App) Undo(ctx context.Context, sessionID uuid.UUID, userID string, assignmentID *uuid.UUID) (*models.Assignment, error) {
	if _, err := a.requireAdmin(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	assignment, err := a.ledgers.Undo(ctx, sessionID, assignmentID)
	if err != nil {
		return nil, err
	}

	a.emit(ctx, events.TypeAssignmentUndone, a.events.InsertAssignmentUndone(ctx, sessionID, events.AssignmentUndonePayload{
		SessionID:     sessionID.String(),
		AssignmentID:  assignment.ID.String(),
		ParticipantID: assignment.ParticipantID.String(),
		PlayerID:      assignment.PlayerID,
		Refund:        assignment.Price,
	}))

	return assignment, nil
}

// Remove drops a specific player from a participant roster with a
// refund, independent of assignment order. Admin only.
func (a *App) Remove(ctx context.Context, sessionID uuid.UUID, userID string, participantID uuid.UUID, playerID int) (*models.Assignment, error) {
	if _, err := a.requireAdmin(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	assignment, err := a.ledgers.Remove(ctx, sessionID, participantID, playerID)
	if err != nil {
		return nil, err
	}

	a.emit(ctx, events.TypeAssignmentRemoved, a.events.InsertAssignmentRemoved(ctx, sessionID, events.AssignmentUndonePayload{
		SessionID:     sessionID.String(),
		AssignmentID:  assignment.ID.String(),
		ParticipantID: assignment.ParticipantID.String(),
		PlayerID:      assignment.PlayerID,
		Refund:        assignment.Price,
	}))

	return assignment, nil
}

// Live returns the player currently on the block. A session whose slate
// is exhausted yields an empty LivePlayer rather than an error.
func (a *App) Live(ctx context.Context, sessionID uuid.UUID) (*LivePlayer, error) {
	cursor, err := a.slates.Current(ctx, sessionID)
	if err != nil {
		if errors.Is(err, slate.ErrEmptySlate) {
			return &LivePlayer{}, nil
		}
		return nil, err
	}
	if cursor == nil {
		return &LivePlayer{}, nil
	}

	live := &LivePlayer{Generation: cursor.Generation}
	if cursor.PlayerID != nil {
		player, err := a.catalog.PlayerByID(ctx, *cursor.PlayerID)
		if err != nil && !errors.Is(err, catalog.ErrPlayerNotFound) {
			return nil, err
		}
		live.Player = player
	}
	return live, nil
}

// Snapshot assembles the whole session state for a (re)connecting client.
func (a *App) Snapshot(ctx context.Context, sessionID uuid.UUID) (*Snapshot, error) {
	sess, err := a.sessions.SessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	summaries, err := a.ledgers.Summary(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	live, err := a.Live(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	assignments, err := a.ledgers.Assignments(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Session:      sess,
		Participants: summaries,
		Live:         *live,
		Assignments:  assignments,
	}, nil
}

// Session resolves a session by ID.
func (a *App) Session(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	return a.sessions.SessionByID(ctx, sessionID)
}

// SessionByCode resolves a session by its join code.
func (a *App) SessionByCode(ctx context.Context, code string) (*models.Session, error) {
	return a.sessions.SessionByCode(ctx, code)
}

// Participants lists the session slots in position order.
func (a *App) Participants(ctx context.Context, sessionID uuid.UUID) ([]models.Participant, error) {
	return a.sessions.Participants(ctx, sessionID)
}

// ParticipantByUser resolves the participant a user claimed in a session.
func (a *App) ParticipantByUser(ctx context.Context, sessionID uuid.UUID, userID string) (*models.Participant, error) {
	return a.sessions.ParticipantByUser(ctx, sessionID, userID)
}

// RosterOf returns a participant roster grouped by role.
func (a *App) RosterOf(ctx context.Context, participantID uuid.UUID) (ledger.Roster, error) {
	return a.ledgers.RosterOf(ctx, participantID)
}

// Summary returns per-participant spend and remaining role slots.
func (a *App) Summary(ctx context.Context, sessionID uuid.UUID) ([]ledger.ParticipantSummary, error) {
	return a.ledgers.Summary(ctx, sessionID)
}

func (a *App) requireAdmin(ctx context.Context, sessionID uuid.UUID, userID string) (*models.Participant, error) {
	participant, err := a.sessions.ParticipantByUser(ctx, sessionID, userID)
	if err != nil {
		if errors.Is(err, session.ErrParticipantNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !participant.IsAdmin {
		return nil, ErrUnauthorized
	}
	return participant, nil
}

// emit logs outbox insert failures without failing the operation the
// event describes. The mutation already committed; clients fall back to
// snapshot reloads when an event is lost.
func (a *App) emit(ctx context.Context, eventType string, err error) {
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to record event")
	}
}

func (a *App) emitSlateInitialized(ctx context.Context, sessionID uuid.UUID, generation int, roleScope *string) {
	entries, err := a.slates.Slate(ctx, sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("failed to load slate for event")
		return
	}
	a.emit(ctx, events.TypeSlateInitialized, a.events.InsertSlateInitialized(ctx, sessionID, events.SlateInitializedPayload{
		SessionID:  sessionID.String(),
		Generation: generation,
		Size:       len(entries),
		RoleScope:  roleScope,
	}))
}

func (a *App) emitCursorMoved(ctx context.Context, sessionID uuid.UUID) {
	cursor, err := a.slates.Current(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, slate.ErrEmptySlate) {
			log.Error().Err(err).Str("session_id", sessionID.String()).Msg("failed to load cursor for event")
		}
		return
	}
	if cursor == nil {
		return
	}
	a.emit(ctx, events.TypeCursorMoved, a.events.InsertCursorMoved(ctx, sessionID, events.CursorMovedPayload{
		SessionID:  sessionID.String(),
		PlayerID:   cursor.PlayerID,
		Generation: cursor.Generation,
	}))
}
