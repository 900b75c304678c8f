package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fantabuilder/fantasta/internal/outbox/events"
)

type recordedInsert struct {
	sessionID uuid.UUID
	eventType string
	payload   []byte
	now       time.Time
}

type fakeOutboxRepo struct {
	inserts []recordedInsert
}

func (r *fakeOutboxRepo) InsertEvent(ctx context.Context, sessionID uuid.UUID, eventType string, payload []byte, now time.Time) error {
	r.inserts = append(r.inserts, recordedInsert{sessionID, eventType, payload, now})
	return nil
}

func TestInsertAssignmentMade(t *testing.T) {
	repo := &fakeOutboxRepo{}
	clock := clockwork.NewFakeClock()
	app := NewApp(repo, clock)
	sessionID := uuid.New()

	err := app.InsertAssignmentMade(context.Background(), sessionID, events.AssignmentMadePayload{
		SessionID:        sessionID.String(),
		PlayerID:         7,
		Price:            50,
		Order:            1,
		CreditsRemaining: 450,
	})
	require.NoError(t, err)

	require.Len(t, repo.inserts, 1)
	rec := repo.inserts[0]
	assert.Equal(t, sessionID, rec.sessionID)
	assert.Equal(t, events.TypeAssignmentMade, rec.eventType)
	assert.Equal(t, clock.Now(), rec.now)

	var payload events.AssignmentMadePayload
	require.NoError(t, json.Unmarshal(rec.payload, &payload))
	assert.Equal(t, 7, payload.PlayerID)
	assert.Equal(t, 450, payload.CreditsRemaining)
}

func TestInsertEventTypes(t *testing.T) {
	repo := &fakeOutboxRepo{}
	app := NewApp(repo, clockwork.NewFakeClock())
	ctx := context.Background()
	sessionID := uuid.New()

	require.NoError(t, app.InsertSessionCreated(ctx, sessionID, events.SessionCreatedPayload{}))
	require.NoError(t, app.InsertParticipantJoined(ctx, sessionID, events.ParticipantJoinedPayload{}))
	require.NoError(t, app.InsertAssignmentUndone(ctx, sessionID, events.AssignmentUndonePayload{}))
	require.NoError(t, app.InsertAssignmentRemoved(ctx, sessionID, events.AssignmentUndonePayload{}))
	require.NoError(t, app.InsertCursorMoved(ctx, sessionID, events.CursorMovedPayload{}))
	require.NoError(t, app.InsertSlateInitialized(ctx, sessionID, events.SlateInitializedPayload{}))

	var got []string
	for _, rec := range repo.inserts {
		got = append(got, rec.eventType)
	}
	assert.Equal(t, []string{
		events.TypeSessionCreated,
		events.TypeParticipantJoined,
		events.TypeAssignmentUndone,
		events.TypeAssignmentRemoved,
		events.TypeCursorMoved,
		events.TypeSlateInitialized,
	}, got)
}
