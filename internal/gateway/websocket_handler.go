package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fantabuilder/fantasta/internal/models"
	"github.com/fantabuilder/fantasta/internal/session"
)

// ParticipantResolver checks that a token holder has a seat in a session.
type ParticipantResolver interface {
	ParticipantByUser(ctx context.Context, sessionID uuid.UUID, userID string) (*models.Participant, error)
}

// WebSocketHandler upgrades auction clients to push connections.
type WebSocketHandler struct {
	connectionManager *ConnectionManager
	participants      ParticipantResolver
}

func NewWebSocketHandler(cm *ConnectionManager, participants ParticipantResolver) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
		participants:      participants,
	}
}

// HandleAuctionConnection serves GET /ws/auction?session_id=...&token=...
// The token is the opaque user ID handed out at join time; only users
// holding a seat in the session may subscribe.
func (h *WebSocketHandler) HandleAuctionConnection(w http.ResponseWriter, r *http.Request) {
	sessionIDStr := r.URL.Query().Get("session_id")
	if sessionIDStr == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	sessionID, err := uuid.Parse(sessionIDStr)
	if err != nil {
		http.Error(w, "invalid session_id format", http.StatusBadRequest)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "token is required", http.StatusUnauthorized)
		return
	}

	participant, err := h.participants.ParticipantByUser(r.Context(), sessionID, token)
	if err != nil {
		if errors.Is(err, session.ErrParticipantNotFound) {
			http.Error(w, "not a participant of this session", http.StatusForbidden)
			return
		}
		log.Error().Err(err).Str("session_id", sessionIDStr).Msg("failed to resolve participant")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := h.connectionManager.UpgradeConnection(w, r, *participant.UserID, sessionID); err != nil {
		log.Error().
			Err(err).
			Str("session_id", sessionID.String()).
			Str("participant_id", participant.ID.String()).
			Msg("failed to upgrade WebSocket connection")
		return
	}
}

// HandleConnectionStats serves GET /ws/stats.
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.connectionManager.Stats()); err != nil {
		log.Error().Err(err).Msg("failed to encode connection stats")
	}
}

// RegisterRoutes mounts the WebSocket endpoints on mux.
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/auction", h.HandleAuctionConnection)
	mux.HandleFunc("/ws/stats", h.HandleConnectionStats)
}
