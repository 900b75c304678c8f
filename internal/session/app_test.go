package session

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fantabuilder/fantasta/internal/models"
)

type fakeSessionRepo struct {
	sessions     map[uuid.UUID]*models.Session
	byCode       map[string]uuid.UUID
	participants map[uuid.UUID]*models.Participant
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions:     make(map[uuid.UUID]*models.Session),
		byCode:       make(map[string]uuid.UUID),
		participants: make(map[uuid.UUID]*models.Participant),
	}
}

func (r *fakeSessionRepo) CreateSessionWithParticipants(ctx context.Context, sess *models.Session, participants []models.Participant) error {
	r.sessions[sess.ID] = sess
	r.byCode[sess.Code] = sess.ID
	for i := range participants {
		p := participants[i]
		r.participants[p.ID] = &p
	}
	return nil
}

func (r *fakeSessionRepo) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	sess, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (r *fakeSessionRepo) GetSessionByCode(ctx context.Context, code string) (*models.Session, error) {
	id, ok := r.byCode[code]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return r.sessions[id], nil
}

func (r *fakeSessionRepo) GetParticipant(ctx context.Context, id uuid.UUID) (*models.Participant, error) {
	p, ok := r.participants[id]
	if !ok {
		return nil, ErrParticipantNotFound
	}
	return p, nil
}

func (r *fakeSessionRepo) GetParticipantByUser(ctx context.Context, sessionID uuid.UUID, userID string) (*models.Participant, error) {
	for _, p := range r.participants {
		if p.SessionID == sessionID && p.UserID != nil && *p.UserID == userID {
			return p, nil
		}
	}
	return nil, ErrParticipantNotFound
}

func (r *fakeSessionRepo) ListParticipants(ctx context.Context, sessionID uuid.UUID) ([]models.Participant, error) {
	var out []models.Participant
	for _, p := range r.participants {
		if p.SessionID == sessionID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeSessionRepo) ClaimParticipant(ctx context.Context, participantID uuid.UUID, userID, nickname string) error {
	p, ok := r.participants[participantID]
	if !ok {
		return ErrParticipantNotFound
	}
	if p.UserID != nil {
		return ErrSlotTaken
	}
	p.UserID = &userID
	p.Nickname = nickname
	return nil
}

func newTestSessionApp() (*App, *fakeSessionRepo) {
	repo := newFakeSessionRepo()
	app := NewApp(repo, clockwork.NewFakeClock(), rand.New(rand.NewSource(1)))
	return app, repo
}

func validRequest() CreateSessionRequest {
	letter := "M"
	return CreateSessionRequest{
		NumParticipants:      8,
		BudgetPerParticipant: 500,
		OrderPolicy:          models.OrderPolicyAlphabetical,
		StartingLetter:       &letter,
		AdminUserID:          "user-admin",
		AdminNickname:        "Lega Arsenale",
	}
}

func TestCreateSession(t *testing.T) {
	app, _ := newTestSessionApp()
	ctx := context.Background()

	sess, err := app.CreateSession(ctx, validRequest())
	require.NoError(t, err)

	assert.Len(t, sess.Code, 6)
	assert.Equal(t, 8, sess.NumParticipants)
	require.NotNil(t, sess.StartingLetter)
	assert.Equal(t, "M", *sess.StartingLetter)

	participants, err := app.Participants(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, participants, 8)

	admin := participants[0]
	assert.True(t, admin.IsAdmin)
	assert.Equal(t, "Lega Arsenale", admin.Nickname)
	require.NotNil(t, admin.UserID)
	assert.Equal(t, "user-admin", *admin.UserID)
	assert.Equal(t, 500, admin.CreditsRemaining)

	for i, p := range participants[1:] {
		assert.False(t, p.IsAdmin)
		assert.Nil(t, p.UserID)
		assert.Equal(t, i+1, p.Position)
		assert.Equal(t, 500, p.CreditsRemaining)
	}
}

func TestCreateSessionClearsLetterForRandomPolicy(t *testing.T) {
	app, _ := newTestSessionApp()

	req := validRequest()
	req.OrderPolicy = models.OrderPolicyRandom

	sess, err := app.CreateSession(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, sess.StartingLetter)
}

func TestCreateSessionValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *CreateSessionRequest)
	}{
		{"too few participants", func(r *CreateSessionRequest) { r.NumParticipants = 5 }},
		{"too many participants", func(r *CreateSessionRequest) { r.NumParticipants = 13 }},
		{"non-positive budget", func(r *CreateSessionRequest) { r.BudgetPerParticipant = 0 }},
		{"unknown policy", func(r *CreateSessionRequest) { r.OrderPolicy = "reverse" }},
		{"missing admin user", func(r *CreateSessionRequest) { r.AdminUserID = "" }},
		{"blank admin nickname", func(r *CreateSessionRequest) { r.AdminNickname = "   " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestSessionApp()
			req := validRequest()
			tt.mutate(&req)

			_, err := app.CreateSession(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestJoinSessionClaimsSlot(t *testing.T) {
	app, _ := newTestSessionApp()
	ctx := context.Background()

	sess, err := app.CreateSession(ctx, validRequest())
	require.NoError(t, err)

	participants, err := app.Participants(ctx, sess.ID)
	require.NoError(t, err)
	free := participants[1]

	claimed, err := app.JoinSession(ctx, sess.Code, free.ID, "user-2", "I Bomber")
	require.NoError(t, err)

	assert.Equal(t, "I Bomber", claimed.Nickname)
	require.NotNil(t, claimed.UserID)
	assert.Equal(t, "user-2", *claimed.UserID)
}

func TestJoinSessionCodeIsCaseInsensitive(t *testing.T) {
	app, _ := newTestSessionApp()
	ctx := context.Background()

	sess, err := app.CreateSession(ctx, validRequest())
	require.NoError(t, err)

	participants, err := app.Participants(ctx, sess.ID)
	require.NoError(t, err)

	_, err = app.JoinSession(ctx, strings.ToLower(sess.Code), participants[1].ID, "user-2", "I Bomber")
	assert.NoError(t, err)
}

func TestJoinSessionSlotTaken(t *testing.T) {
	app, _ := newTestSessionApp()
	ctx := context.Background()

	sess, err := app.CreateSession(ctx, validRequest())
	require.NoError(t, err)

	participants, err := app.Participants(ctx, sess.ID)
	require.NoError(t, err)
	free := participants[1]

	_, err = app.JoinSession(ctx, sess.Code, free.ID, "user-2", "I Bomber")
	require.NoError(t, err)

	// The admin slot and the freshly claimed slot both refuse a second
	// claim.
	_, err = app.JoinSession(ctx, sess.Code, free.ID, "user-3", "Ritardatari")
	assert.ErrorIs(t, err, ErrSlotTaken)

	_, err = app.JoinSession(ctx, sess.Code, participants[0].ID, "user-3", "Ritardatari")
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestJoinSessionParticipantFromOtherSession(t *testing.T) {
	app, _ := newTestSessionApp()
	ctx := context.Background()

	first, err := app.CreateSession(ctx, validRequest())
	require.NoError(t, err)
	second, err := app.CreateSession(ctx, validRequest())
	require.NoError(t, err)

	otherParticipants, err := app.Participants(ctx, second.ID)
	require.NoError(t, err)

	_, err = app.JoinSession(ctx, first.Code, otherParticipants[1].ID, "user-2", "I Bomber")
	assert.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestJoinSessionUnknownCode(t *testing.T) {
	app, _ := newTestSessionApp()

	_, err := app.JoinSession(context.Background(), "NOPE99", uuid.New(), "user-2", "I Bomber")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
