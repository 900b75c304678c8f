package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fantabuilder/fantasta/internal/coordinator"
	"github.com/fantabuilder/fantasta/internal/ledger"
	"github.com/fantabuilder/fantasta/internal/models"
	"github.com/fantabuilder/fantasta/internal/session"
)

// stubAuction returns canned values, or err from every method when set.
type stubAuction struct {
	err        error
	sess       *models.Session
	assignment *models.Assignment
}

func (s *stubAuction) CreateSession(ctx context.Context, req session.CreateSessionRequest) (*models.Session, error) {
	return s.sess, s.err
}

func (s *stubAuction) JoinSession(ctx context.Context, code string, participantID uuid.UUID, userID, nickname string) (*models.Participant, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Participant{ID: participantID, Nickname: nickname}, nil
}

func (s *stubAuction) Assign(ctx context.Context, sessionID uuid.UUID, userID string, participantID uuid.UUID, playerID, price int) (*models.Assignment, error) {
	return s.assignment, s.err
}

func (s *stubAuction) Discard(ctx context.Context, sessionID uuid.UUID, userID string) error {
	return s.err
}

func (s *stubAuction) Retreat(ctx context.Context, sessionID uuid.UUID, userID string) error {
	return s.err
}

func (s *stubAuction) JumpTo(ctx context.Context, sessionID uuid.UUID, userID string, playerID int) error {
	return s.err
}

func (s *stubAuction) SwitchRole(ctx context.Context, sessionID uuid.UUID, userID string, role models.Role) error {
	return s.err
}

func (s *stubAuction) Undo(ctx context.Context, sessionID uuid.UUID, userID string, assignmentID *uuid.UUID) (*models.Assignment, error) {
	return s.assignment, s.err
}

func (s *stubAuction) Remove(ctx context.Context, sessionID uuid.UUID, userID string, participantID uuid.UUID, playerID int) (*models.Assignment, error) {
	return s.assignment, s.err
}

func (s *stubAuction) Live(ctx context.Context, sessionID uuid.UUID) (*coordinator.LivePlayer, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &coordinator.LivePlayer{}, nil
}

func (s *stubAuction) Snapshot(ctx context.Context, sessionID uuid.UUID) (*coordinator.Snapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &coordinator.Snapshot{Session: s.sess}, nil
}

func (s *stubAuction) Session(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	return s.sess, s.err
}

func (s *stubAuction) SessionByCode(ctx context.Context, code string) (*models.Session, error) {
	return s.sess, s.err
}

func (s *stubAuction) Participants(ctx context.Context, sessionID uuid.UUID) ([]models.Participant, error) {
	return nil, s.err
}

func (s *stubAuction) RosterOf(ctx context.Context, participantID uuid.UUID) (ledger.Roster, error) {
	return ledger.Roster{}, s.err
}

func (s *stubAuction) Summary(ctx context.Context, sessionID uuid.UUID) ([]ledger.ParticipantSummary, error) {
	return nil, s.err
}

func newTestServer(stub *stubAuction) *httptest.Server {
	mux := http.NewServeMux()
	NewHTTPHandler(stub).RegisterRoutes(mux)
	return httptest.NewServer(mux)
}

func TestCreateSessionEndpoint(t *testing.T) {
	stub := &stubAuction{sess: &models.Session{ID: uuid.New(), Code: "ABC123"}}
	server := newTestServer(stub)
	defer server.Close()

	body := `{"admin_user_id":"u1","admin_nickname":"Lega","participants":8,"budget":500,"order_policy":"alphabetical"}`
	resp, err := http.Post(server.URL+"/api/sessions", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var got models.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "ABC123", got.Code)
}

func TestAssignEndpoint(t *testing.T) {
	stub := &stubAuction{assignment: &models.Assignment{ID: uuid.New(), PlayerID: 7, Price: 50}}
	server := newTestServer(stub)
	defer server.Close()

	body := `{"token":"u1","participant_id":"` + uuid.NewString() + `","player_id":7,"price":50}`
	resp, err := http.Post(server.URL+"/api/sessions/"+uuid.NewString()+"/assign", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unauthorized", coordinator.ErrUnauthorized, http.StatusForbidden},
		{"session not found", session.ErrSessionNotFound, http.StatusNotFound},
		{"slot taken", session.ErrSlotTaken, http.StatusConflict},
		{"already assigned", ledger.ErrAlreadyAssigned, http.StatusConflict},
		{"insufficient credits", ledger.ErrInsufficientCredits, http.StatusUnprocessableEntity},
		{"role limit", ledger.ErrRoleLimitReached, http.StatusUnprocessableEntity},
		{"invalid request", session.ErrInvalidRequest, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(&stubAuction{err: tt.err})
			defer server.Close()

			body := `{"token":"u1","participant_id":"` + uuid.NewString() + `","player_id":7,"price":50}`
			resp, err := http.Post(server.URL+"/api/sessions/"+uuid.NewString()+"/assign", "application/json", strings.NewReader(body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.want, resp.StatusCode)

			var payload map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
			assert.NotEmpty(t, payload["error"])
		})
	}
}

func TestAssignRejectsMalformedIDs(t *testing.T) {
	server := newTestServer(&stubAuction{})
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/sessions/not-a-uuid/assign", "application/json",
		strings.NewReader(`{"token":"u1","participant_id":"also-bad","player_id":7,"price":50}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(server.URL+"/api/sessions/"+uuid.NewString()+"/assign", "application/json",
		strings.NewReader(`{"token":"u1","participant_id":"also-bad","player_id":7,"price":50}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDiscardEndpoint(t *testing.T) {
	server := newTestServer(&stubAuction{})
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/sessions/"+uuid.NewString()+"/discard", "application/json",
		strings.NewReader(`{"token":"u1"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
