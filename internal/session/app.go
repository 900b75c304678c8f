package session

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/fantabuilder/fantasta/internal/models"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// SessionRepository defines what the session app layer needs from storage.
type SessionRepository interface {
	CreateSessionWithParticipants(ctx context.Context, sess *models.Session, participants []models.Participant) error
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	GetSessionByCode(ctx context.Context, code string) (*models.Session, error)
	GetParticipant(ctx context.Context, id uuid.UUID) (*models.Participant, error)
	GetParticipantByUser(ctx context.Context, sessionID uuid.UUID, userID string) (*models.Participant, error)
	ListParticipants(ctx context.Context, sessionID uuid.UUID) ([]models.Participant, error)
	ClaimParticipant(ctx context.Context, participantID uuid.UUID, userID, nickname string) error
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const codeLength = 6

// CreateSessionRequest carries everything needed to open an auction.
type CreateSessionRequest struct {
	NumParticipants      int                `json:"num_participants"`
	BudgetPerParticipant int                `json:"budget_per_participant"`
	OrderPolicy          models.OrderPolicy `json:"order_policy"`
	StartingLetter       *string            `json:"starting_letter,omitempty"`
	AdminUserID          string             `json:"admin_user_id"`
	AdminNickname        string             `json:"admin_nickname"`
}

// App handles session and participant lifecycle.
type App struct {
	repo  SessionRepository
	clock clockwork.Clock
	rng   *rand.Rand
}

func NewApp(repo SessionRepository, clock clockwork.Clock, rng *rand.Rand) *App {
	return &App{
		repo:  repo,
		clock: clock,
		rng:   rng,
	}
}

// CreateSession opens a new auction: one session row plus every
// participant slot up front. Slot 0 belongs to the creating admin; the
// remaining slots get placeholder nicknames until someone joins.
func (a *App) CreateSession(ctx context.Context, req CreateSessionRequest) (*models.Session, error) {
	if err := a.validateCreateSessionRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}

	now := a.clock.Now()
	sess := &models.Session{
		ID:                   uuid.New(),
		Code:                 a.generateCode(),
		AdminUserID:          req.AdminUserID,
		NumParticipants:      req.NumParticipants,
		BudgetPerParticipant: req.BudgetPerParticipant,
		OrderPolicy:          req.OrderPolicy,
		StartingLetter:       req.StartingLetter,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if sess.OrderPolicy != models.OrderPolicyAlphabetical {
		sess.StartingLetter = nil
	}

	participants := make([]models.Participant, 0, req.NumParticipants)
	for i := 0; i < req.NumParticipants; i++ {
		p := models.Participant{
			ID:               uuid.New(),
			SessionID:        sess.ID,
			Nickname:         fmt.Sprintf("Squadra %d", i+1),
			CreditsRemaining: req.BudgetPerParticipant,
			Position:         i,
			IsAdmin:          i == 0,
			CreatedAt:        now,
		}
		if i == 0 {
			adminID := req.AdminUserID
			p.UserID = &adminID
			p.Nickname = req.AdminNickname
		}
		participants = append(participants, p)
	}

	if err := a.repo.CreateSessionWithParticipants(ctx, sess, participants); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return sess, nil
}

// JoinSession claims an unclaimed slot in the session identified by code.
func (a *App) JoinSession(ctx context.Context, code string, participantID uuid.UUID, userID, nickname string) (*models.Participant, error) {
	sess, err := a.repo.GetSessionByCode(ctx, strings.ToUpper(code))
	if err != nil {
		return nil, fmt.Errorf("failed to find session %q: %w", code, err)
	}

	participant, err := a.repo.GetParticipant(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}
	if participant.SessionID != sess.ID {
		return nil, fmt.Errorf("participant %s: %w", participantID, ErrParticipantNotFound)
	}

	if err := a.repo.ClaimParticipant(ctx, participantID, userID, nickname); err != nil {
		return nil, fmt.Errorf("failed to claim slot: %w", err)
	}
	return a.repo.GetParticipant(ctx, participantID)
}

// SessionByID returns a session by ID.
func (a *App) SessionByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	sess, err := a.repo.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return sess, nil
}

// SessionByCode returns a session by its join code.
func (a *App) SessionByCode(ctx context.Context, code string) (*models.Session, error) {
	sess, err := a.repo.GetSessionByCode(ctx, strings.ToUpper(code))
	if err != nil {
		return nil, fmt.Errorf("failed to get session by code: %w", err)
	}
	return sess, nil
}

// Participants lists a session's participants ordered by position.
func (a *App) Participants(ctx context.Context, sessionID uuid.UUID) ([]models.Participant, error) {
	participants, err := a.repo.ListParticipants(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return participants, nil
}

// ParticipantByID returns a single participant.
func (a *App) ParticipantByID(ctx context.Context, id uuid.UUID) (*models.Participant, error) {
	participant, err := a.repo.GetParticipant(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return participant, nil
}

// ParticipantByUser resolves the participant a user controls in a session.
func (a *App) ParticipantByUser(ctx context.Context, sessionID uuid.UUID, userID string) (*models.Participant, error) {
	participant, err := a.repo.GetParticipantByUser(ctx, sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant for user: %w", err)
	}
	return participant, nil
}

func (a *App) generateCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[a.rng.Intn(len(codeAlphabet))]
	}
	return string(b)
}

func (a *App) validateCreateSessionRequest(req CreateSessionRequest) error {
	if req.NumParticipants < 6 || req.NumParticipants > 12 {
		return fmt.Errorf("num_participants must be between 6 and 12, got %d", req.NumParticipants)
	}
	if req.BudgetPerParticipant <= 0 {
		return fmt.Errorf("budget_per_participant must be positive, got %d", req.BudgetPerParticipant)
	}
	switch req.OrderPolicy {
	case models.OrderPolicyAlphabetical, models.OrderPolicyRandom:
	default:
		return fmt.Errorf("unknown order policy %q", req.OrderPolicy)
	}
	if req.AdminUserID == "" {
		return fmt.Errorf("admin_user_id is required")
	}
	if strings.TrimSpace(req.AdminNickname) == "" {
		return fmt.Errorf("admin_nickname is required")
	}
	return nil
}
