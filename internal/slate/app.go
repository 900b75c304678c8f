package slate

import (
	"context"
	"fmt"
	"time"

	"github.com/fantabuilder/fantasta/internal/models"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// SlateRepository defines what the slate app layer needs from storage.
type SlateRepository interface {
	GetSlate(ctx context.Context, sessionID uuid.UUID) ([]models.SlateEntry, error)
	GetCursor(ctx context.Context, sessionID uuid.UUID) (*models.Cursor, error)
	ReplaceSlate(ctx context.Context, sessionID uuid.UUID, playerIDs []int, now time.Time) (int, error)
	SetCurrentPlayer(ctx context.Context, sessionID uuid.UUID, playerID int, now time.Time) error
}

// PlayerSource supplies the eligible players for slate generation.
type PlayerSource interface {
	AllPlayers(ctx context.Context) ([]models.Player, error)
	PlayersByRole(ctx context.Context, role models.Role) ([]models.Player, error)
}

// OrderGenerator produces the ordered sequence of player IDs.
type OrderGenerator interface {
	Generate(players []models.Player, policy models.OrderPolicy, startingLetter *string, roleFilter *models.Role) ([]int, error)
}

// App owns the auction cursor: which player is live and in what order the
// rest will follow. Advance and retreat wrap circularly; the auction
// revisits players rather than terminating.
type App struct {
	repo    SlateRepository
	players PlayerSource
	gen     OrderGenerator
	clock   clockwork.Clock
}

func NewApp(repo SlateRepository, players PlayerSource, gen OrderGenerator, clock clockwork.Clock) *App {
	return &App{
		repo:    repo,
		players: players,
		gen:     gen,
		clock:   clock,
	}
}

// Initialize builds the full-catalog slate for a session and points the
// cursor at its head. Returns the new slate generation.
func (a *App) Initialize(ctx context.Context, session *models.Session) (int, error) {
	players, err := a.players.AllPlayers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load catalog: %w", err)
	}

	ids, err := a.gen.Generate(players, session.OrderPolicy, session.StartingLetter, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to generate order: %w", err)
	}

	generation, err := a.repo.ReplaceSlate(ctx, session.ID, ids, a.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to store slate: %w", err)
	}
	return generation, nil
}

// ReinitializeForRole throws away the current slate and rebuilds it scoped
// to one role. Assignment history is untouched; progress through the
// previous scope is abandoned, which is why the coordinator only lets the
// admin call this.
func (a *App) ReinitializeForRole(ctx context.Context, session *models.Session, role models.Role) (int, error) {
	players, err := a.players.PlayersByRole(ctx, role)
	if err != nil {
		return 0, fmt.Errorf("failed to load players for role %s: %w", role, err)
	}

	ids, err := a.gen.Generate(players, session.OrderPolicy, session.StartingLetter, &role)
	if err != nil {
		return 0, fmt.Errorf("failed to generate order for role %s: %w", role, err)
	}

	generation, err := a.repo.ReplaceSlate(ctx, session.ID, ids, a.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to store slate for role %s: %w", role, err)
	}
	return generation, nil
}

// Current returns the cursor for a session, or nil when no slate exists.
func (a *App) Current(ctx context.Context, sessionID uuid.UUID) (*models.Cursor, error) {
	cursor, err := a.repo.GetCursor(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cursor: %w", err)
	}
	return cursor, nil
}

// Slate returns the full ordered slate for a session.
func (a *App) Slate(ctx context.Context, sessionID uuid.UUID) ([]models.SlateEntry, error) {
	entries, err := a.repo.GetSlate(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get slate: %w", err)
	}
	return entries, nil
}

// Advance moves the cursor to the next slate position, wrapping at the
// end. Returns the player now live.
func (a *App) Advance(ctx context.Context, sessionID uuid.UUID) (int, error) {
	return a.step(ctx, sessionID, +1)
}

// Retreat moves the cursor to the previous slate position, wrapping at the
// start. Returns the player now live.
func (a *App) Retreat(ctx context.Context, sessionID uuid.UUID) (int, error) {
	return a.step(ctx, sessionID, -1)
}

func (a *App) step(ctx context.Context, sessionID uuid.UUID, delta int) (int, error) {
	entries, cursor, err := a.load(ctx, sessionID)
	if err != nil {
		return 0, err
	}

	idx := indexOf(entries, *cursor.PlayerID)
	if idx < 0 {
		// Cursor points outside the slate, e.g. right after a role switch
		// raced with a move. Snap back to the head.
		idx = 0
	}

	n := len(entries)
	next := entries[((idx+delta)%n+n)%n].PlayerID
	if err := a.repo.SetCurrentPlayer(ctx, sessionID, next, a.clock.Now()); err != nil {
		return 0, fmt.Errorf("failed to move cursor: %w", err)
	}
	return next, nil
}

// JumpTo points the cursor at a specific player in the slate.
func (a *App) JumpTo(ctx context.Context, sessionID uuid.UUID, playerID int) error {
	entries, _, err := a.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if indexOf(entries, playerID) < 0 {
		return fmt.Errorf("player %d: %w", playerID, ErrPlayerNotInSlate)
	}
	if err := a.repo.SetCurrentPlayer(ctx, sessionID, playerID, a.clock.Now()); err != nil {
		return fmt.Errorf("failed to jump cursor: %w", err)
	}
	return nil
}

func (a *App) load(ctx context.Context, sessionID uuid.UUID) ([]models.SlateEntry, *models.Cursor, error) {
	entries, err := a.repo.GetSlate(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get slate: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil, ErrEmptySlate
	}

	cursor, err := a.repo.GetCursor(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get cursor: %w", err)
	}
	if cursor == nil || cursor.PlayerID == nil {
		return nil, nil, ErrEmptySlate
	}
	return entries, cursor, nil
}

func indexOf(entries []models.SlateEntry, playerID int) int {
	for i, e := range entries {
		if e.PlayerID == playerID {
			return i
		}
	}
	return -1
}
