package slate

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fantabuilder/fantasta/internal/models"
)

type fakeSlateRepo struct {
	entries map[uuid.UUID][]models.SlateEntry
	cursors map[uuid.UUID]*models.Cursor
}

func newFakeSlateRepo() *fakeSlateRepo {
	return &fakeSlateRepo{
		entries: make(map[uuid.UUID][]models.SlateEntry),
		cursors: make(map[uuid.UUID]*models.Cursor),
	}
}

func (r *fakeSlateRepo) GetSlate(ctx context.Context, sessionID uuid.UUID) ([]models.SlateEntry, error) {
	return r.entries[sessionID], nil
}

func (r *fakeSlateRepo) GetCursor(ctx context.Context, sessionID uuid.UUID) (*models.Cursor, error) {
	return r.cursors[sessionID], nil
}

func (r *fakeSlateRepo) ReplaceSlate(ctx context.Context, sessionID uuid.UUID, playerIDs []int, now time.Time) (int, error) {
	generation := 1
	if existing := r.entries[sessionID]; len(existing) > 0 {
		generation = existing[0].Generation + 1
	} else if c := r.cursors[sessionID]; c != nil {
		generation = c.Generation + 1
	}

	entries := make([]models.SlateEntry, 0, len(playerIDs))
	for i, id := range playerIDs {
		entries = append(entries, models.SlateEntry{
			SessionID:  sessionID,
			PlayerID:   id,
			OrderIndex: i,
			Generation: generation,
		})
	}
	r.entries[sessionID] = entries

	cursor := &models.Cursor{SessionID: sessionID, Generation: generation, UpdatedAt: now}
	if len(playerIDs) > 0 {
		head := playerIDs[0]
		cursor.PlayerID = &head
	}
	r.cursors[sessionID] = cursor
	return generation, nil
}

func (r *fakeSlateRepo) SetCurrentPlayer(ctx context.Context, sessionID uuid.UUID, playerID int, now time.Time) error {
	cursor := r.cursors[sessionID]
	if cursor == nil {
		return ErrEmptySlate
	}
	cursor.PlayerID = &playerID
	cursor.UpdatedAt = now
	return nil
}

type fakePlayerSource struct {
	players []models.Player
}

func (s *fakePlayerSource) AllPlayers(ctx context.Context) ([]models.Player, error) {
	return s.players, nil
}

func (s *fakePlayerSource) PlayersByRole(ctx context.Context, role models.Role) ([]models.Player, error) {
	var out []models.Player
	for _, p := range s.players {
		if p.Role == role {
			out = append(out, p)
		}
	}
	return out, nil
}

// identityGenerator emits players in input order, ignoring policy.
type identityGenerator struct{}

func (identityGenerator) Generate(players []models.Player, policy models.OrderPolicy, startingLetter *string, roleFilter *models.Role) ([]int, error) {
	var ids []int
	for _, p := range players {
		if roleFilter != nil && p.Role != *roleFilter {
			continue
		}
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func newTestSlateApp(players []models.Player) (*App, *fakeSlateRepo) {
	repo := newFakeSlateRepo()
	app := NewApp(repo, &fakePlayerSource{players: players}, identityGenerator{}, clockwork.NewFakeClock())
	return app, repo
}

func testSession() *models.Session {
	return &models.Session{
		ID:          uuid.New(),
		OrderPolicy: models.OrderPolicyAlphabetical,
	}
}

func testPlayers() []models.Player {
	return []models.Player{
		{ID: 1, Name: "Maignan", Role: models.RoleGoalkeeper},
		{ID: 2, Name: "Bastoni", Role: models.RoleDefender},
		{ID: 3, Name: "Barella", Role: models.RoleMidfielder},
		{ID: 4, Name: "Vlahovic", Role: models.RoleForward},
	}
}

func TestInitializeSetsCursorToHead(t *testing.T) {
	app, _ := newTestSlateApp(testPlayers())
	sess := testSession()

	generation, err := app.Initialize(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, 1, generation)

	cursor, err := app.Current(context.Background(), sess.ID)
	require.NoError(t, err)
	require.NotNil(t, cursor)
	require.NotNil(t, cursor.PlayerID)
	assert.Equal(t, 1, *cursor.PlayerID)
}

func TestAdvanceWrapsAround(t *testing.T) {
	app, _ := newTestSlateApp(testPlayers())
	sess := testSession()
	ctx := context.Background()

	_, err := app.Initialize(ctx, sess)
	require.NoError(t, err)

	want := []int{2, 3, 4, 1, 2}
	for _, expected := range want {
		got, err := app.Advance(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, expected, got)
	}
}

func TestRetreatWrapsToTail(t *testing.T) {
	app, _ := newTestSlateApp(testPlayers())
	sess := testSession()
	ctx := context.Background()

	_, err := app.Initialize(ctx, sess)
	require.NoError(t, err)

	got, err := app.Retreat(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got)
}

func TestJumpTo(t *testing.T) {
	app, _ := newTestSlateApp(testPlayers())
	sess := testSession()
	ctx := context.Background()

	_, err := app.Initialize(ctx, sess)
	require.NoError(t, err)

	require.NoError(t, app.JumpTo(ctx, sess.ID, 3))

	cursor, err := app.Current(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, *cursor.PlayerID)

	err = app.JumpTo(ctx, sess.ID, 99)
	assert.ErrorIs(t, err, ErrPlayerNotInSlate)
}

func TestStepSnapsToHeadWhenCursorOutsideSlate(t *testing.T) {
	app, repo := newTestSlateApp(testPlayers())
	sess := testSession()
	ctx := context.Background()

	_, err := app.Initialize(ctx, sess)
	require.NoError(t, err)

	// Simulate a cursor left behind by a slate rebuild.
	stale := 99
	repo.cursors[sess.ID].PlayerID = &stale

	got, err := app.Advance(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestAdvanceOnEmptySlate(t *testing.T) {
	app, _ := newTestSlateApp(nil)
	sess := testSession()

	_, err := app.Advance(context.Background(), sess.ID)
	assert.ErrorIs(t, err, ErrEmptySlate)
}

func TestReinitializeForRoleBumpsGeneration(t *testing.T) {
	app, _ := newTestSlateApp(testPlayers())
	sess := testSession()
	ctx := context.Background()

	_, err := app.Initialize(ctx, sess)
	require.NoError(t, err)

	generation, err := app.ReinitializeForRole(ctx, sess, models.RoleDefender)
	require.NoError(t, err)
	assert.Equal(t, 2, generation)

	entries, err := app.Slate(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].PlayerID)

	cursor, err := app.Current(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, cursor.Generation)
	assert.Equal(t, 2, *cursor.PlayerID)
}
