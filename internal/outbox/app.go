package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fantabuilder/fantasta/internal/outbox/events"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// OutboxRepository defines what the outbox app layer needs from storage.
type OutboxRepository interface {
	InsertEvent(ctx context.Context, sessionID uuid.UUID, eventType string, payload []byte, now time.Time) error
}

// App records auction domain events for later delivery to the bus.
type App struct {
	repo  OutboxRepository
	clock clockwork.Clock
}

func NewApp(repo OutboxRepository, clock clockwork.Clock) *App {
	return &App{repo: repo, clock: clock}
}

func (a *App) InsertSessionCreated(ctx context.Context, sessionID uuid.UUID, payload events.SessionCreatedPayload) error {
	return a.insert(ctx, sessionID, events.TypeSessionCreated, payload)
}

func (a *App) InsertParticipantJoined(ctx context.Context, sessionID uuid.UUID, payload events.ParticipantJoinedPayload) error {
	return a.insert(ctx, sessionID, events.TypeParticipantJoined, payload)
}

func (a *App) InsertAssignmentMade(ctx context.Context, sessionID uuid.UUID, payload events.AssignmentMadePayload) error {
	return a.insert(ctx, sessionID, events.TypeAssignmentMade, payload)
}

func (a *App) InsertAssignmentUndone(ctx context.Context, sessionID uuid.UUID, payload events.AssignmentUndonePayload) error {
	return a.insert(ctx, sessionID, events.TypeAssignmentUndone, payload)
}

func (a *App) InsertAssignmentRemoved(ctx context.Context, sessionID uuid.UUID, payload events.AssignmentUndonePayload) error {
	return a.insert(ctx, sessionID, events.TypeAssignmentRemoved, payload)
}

func (a *App) InsertCursorMoved(ctx context.Context, sessionID uuid.UUID, payload events.CursorMovedPayload) error {
	return a.insert(ctx, sessionID, events.TypeCursorMoved, payload)
}

func (a *App) InsertSlateInitialized(ctx context.Context, sessionID uuid.UUID, payload events.SlateInitializedPayload) error {
	return a.insert(ctx, sessionID, events.TypeSlateInitialized, payload)
}

func (a *App) insert(ctx context.Context, sessionID uuid.UUID, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return a.repo.InsertEvent(ctx, sessionID, eventType, data, a.clock.Now())
}
