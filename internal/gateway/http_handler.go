package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fantabuilder/fantasta/internal/catalog"
	"github.com/fantabuilder/fantasta/internal/coordinator"
	"github.com/fantabuilder/fantasta/internal/ledger"
	"github.com/fantabuilder/fantasta/internal/models"
	"github.com/fantabuilder/fantasta/internal/session"
	"github.com/fantabuilder/fantasta/internal/slate"
)

// AuctionService defines what the HTTP layer needs from the coordinator.
type AuctionService interface {
	CreateSession(ctx context.Context, req session.CreateSessionRequest) (*models.Session, error)
	JoinSession(ctx context.Context, code string, participantID uuid.UUID, userID, nickname string) (*models.Participant, error)
	Assign(ctx context.Context, sessionID uuid.UUID, userID string, participantID uuid.UUID, playerID, price int) (*models.Assignment, error)
	Discard(ctx context.Context, sessionID uuid.UUID, userID string) error
	Retreat(ctx context.Context, sessionID uuid.UUID, userID string) error
	JumpTo(ctx context.Context, sessionID uuid.UUID, userID string, playerID int) error
	SwitchRole(ctx context.Context, sessionID uuid.UUID, userID string, role models.Role) error
	Undo(ctx context.Context, sessionID uuid.UUID, userID string, assignmentID *uuid.UUID) (*models.Assignment, error)
	Remove(ctx context.Context, sessionID uuid.UUID, userID string, participantID uuid.UUID, playerID int) (*models.Assignment, error)
	Live(ctx context.Context, sessionID uuid.UUID) (*coordinator.LivePlayer, error)
	Snapshot(ctx context.Context, sessionID uuid.UUID) (*coordinator.Snapshot, error)
	Session(ctx context.Context, sessionID uuid.UUID) (*models.Session, error)
	SessionByCode(ctx context.Context, code string) (*models.Session, error)
	Participants(ctx context.Context, sessionID uuid.UUID) ([]models.Participant, error)
	RosterOf(ctx context.Context, participantID uuid.UUID) (ledger.Roster, error)
	Summary(ctx context.Context, sessionID uuid.UUID) ([]ledger.ParticipantSummary, error)
}

// HTTPHandler exposes the auction operations as a JSON API. Mutations
// carry the caller's token in the request body; the coordinator decides
// whether the holder is allowed to perform them.
type HTTPHandler struct {
	auction AuctionService
}

func NewHTTPHandler(auction AuctionService) *HTTPHandler {
	return &HTTPHandler{auction: auction}
}

// RegisterRoutes mounts the API endpoints on mux.
func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", h.handleCreateSession)
	mux.HandleFunc("POST /api/sessions/join", h.handleJoinSession)
	mux.HandleFunc("GET /api/sessions/by-code/{code}", h.handleSessionByCode)
	mux.HandleFunc("GET /api/sessions/{id}", h.handleSession)
	mux.HandleFunc("GET /api/sessions/{id}/snapshot", h.handleSnapshot)
	mux.HandleFunc("GET /api/sessions/{id}/live", h.handleLive)
	mux.HandleFunc("GET /api/sessions/{id}/participants", h.handleParticipants)
	mux.HandleFunc("GET /api/sessions/{id}/summary", h.handleSummary)
	mux.HandleFunc("GET /api/participants/{id}/roster", h.handleRoster)
	mux.HandleFunc("POST /api/sessions/{id}/assign", h.handleAssign)
	mux.HandleFunc("POST /api/sessions/{id}/discard", h.handleDiscard)
	mux.HandleFunc("POST /api/sessions/{id}/retreat", h.handleRetreat)
	mux.HandleFunc("POST /api/sessions/{id}/jump", h.handleJump)
	mux.HandleFunc("POST /api/sessions/{id}/switch-role", h.handleSwitchRole)
	mux.HandleFunc("POST /api/sessions/{id}/undo", h.handleUndo)
	mux.HandleFunc("POST /api/sessions/{id}/remove", h.handleRemove)
}

type createSessionRequest struct {
	AdminUserID    string  `json:"admin_user_id"`
	AdminNickname  string  `json:"admin_nickname"`
	Participants   int     `json:"participants"`
	Budget         int     `json:"budget"`
	OrderPolicy    string  `json:"order_policy"`
	StartingLetter *string `json:"starting_letter,omitempty"`
}

func (h *HTTPHandler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := h.auction.CreateSession(r.Context(), session.CreateSessionRequest{
		AdminUserID:          req.AdminUserID,
		AdminNickname:        req.AdminNickname,
		NumParticipants:      req.Participants,
		BudgetPerParticipant: req.Budget,
		OrderPolicy:          models.OrderPolicy(req.OrderPolicy),
		StartingLetter:       req.StartingLetter,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

type joinSessionRequest struct {
	Code          string `json:"code"`
	ParticipantID string `json:"participant_id"`
	Token         string `json:"token"`
	Nickname      string `json:"nickname"`
}

func (h *HTTPHandler) handleJoinSession(w http.ResponseWriter, r *http.Request) {
	var req joinSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	participantID, err := uuid.Parse(req.ParticipantID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid participant_id")
		return
	}

	participant, err := h.auction.JoinSession(r.Context(), req.Code, participantID, req.Token, req.Nickname)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, participant)
}

func (h *HTTPHandler) handleSessionByCode(w http.ResponseWriter, r *http.Request) {
	sess, err := h.auction.SessionByCode(r.Context(), r.PathValue("code"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *HTTPHandler) handleSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	sess, err := h.auction.Session(r.Context(), sessionID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *HTTPHandler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	snapshot, err := h.auction.Snapshot(r.Context(), sessionID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *HTTPHandler) handleLive(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	live, err := h.auction.Live(r.Context(), sessionID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, live)
}

func (h *HTTPHandler) handleParticipants(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	participants, err := h.auction.Participants(r.Context(), sessionID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, participants)
}

func (h *HTTPHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	summaries, err := h.auction.Summary(r.Context(), sessionID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *HTTPHandler) handleRoster(w http.ResponseWriter, r *http.Request) {
	participantID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	roster, err := h.auction.RosterOf(r.Context(), participantID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

type assignRequest struct {
	Token         string `json:"token"`
	ParticipantID string `json:"participant_id"`
	PlayerID      int    `json:"player_id"`
	Price         int    `json:"price"`
}

func (h *HTTPHandler) handleAssign(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	participantID, err := uuid.Parse(req.ParticipantID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid participant_id")
		return
	}

	assignment, err := h.auction.Assign(r.Context(), sessionID, req.Token, participantID, req.PlayerID, req.Price)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, assignment)
}

type tokenRequest struct {
	Token string `json:"token"`
}

func (h *HTTPHandler) handleDiscard(w http.ResponseWriter, r *http.Request) {
	h.handleCursorOp(w, r, h.auction.Discard)
}

func (h *HTTPHandler) handleRetreat(w http.ResponseWriter, r *http.Request) {
	h.handleCursorOp(w, r, h.auction.Retreat)
}

func (h *HTTPHandler) handleCursorOp(w http.ResponseWriter, r *http.Request, op func(context.Context, uuid.UUID, string) error) {
	sessionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := op(r.Context(), sessionID, req.Token); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type jumpRequest struct {
	Token    string `json:"token"`
	PlayerID int    `json:"player_id"`
}

func (h *HTTPHandler) handleJump(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req jumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.auction.JumpTo(r.Context(), sessionID, req.Token, req.PlayerID); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type switchRoleRequest struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

func (h *HTTPHandler) handleSwitchRole(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req switchRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	role := models.Role(req.Role)
	if !role.Valid() {
		writeError(w, http.StatusBadRequest, "invalid role")
		return
	}
	if err := h.auction.SwitchRole(r.Context(), sessionID, req.Token, role); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type undoRequest struct {
	Token        string  `json:"token"`
	AssignmentID *string `json:"assignment_id,omitempty"`
}

func (h *HTTPHandler) handleUndo(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req undoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var assignmentID *uuid.UUID
	if req.AssignmentID != nil {
		id, err := uuid.Parse(*req.AssignmentID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid assignment_id")
			return
		}
		assignmentID = &id
	}

	assignment, err := h.auction.Undo(r.Context(), sessionID, req.Token, assignmentID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assignment)
}

type removeRequest struct {
	Token         string `json:"token"`
	ParticipantID string `json:"participant_id"`
	PlayerID      int    `json:"player_id"`
}

func (h *HTTPHandler) handleRemove(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req removeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	participantID, err := uuid.Parse(req.ParticipantID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid participant_id")
		return
	}

	assignment, err := h.auction.Remove(r.Context(), sessionID, req.Token, participantID, req.PlayerID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assignment)
}

func (h *HTTPHandler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, coordinator.ErrUnauthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, session.ErrParticipantNotFound),
		errors.Is(err, ledger.ErrParticipantNotFound),
		errors.Is(err, ledger.ErrPlayerNotFound),
		errors.Is(err, ledger.ErrAssignmentNotFound),
		errors.Is(err, catalog.ErrPlayerNotFound),
		errors.Is(err, slate.ErrPlayerNotInSlate):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrSlotTaken),
		errors.Is(err, ledger.ErrAlreadyAssigned):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrInvalidPrice),
		errors.Is(err, ledger.ErrInsufficientCredits),
		errors.Is(err, ledger.ErrRoleLimitReached),
		errors.Is(err, ledger.ErrNothingToUndo),
		errors.Is(err, slate.ErrEmptySlate):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Error().Err(err).Msg("unhandled API error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		log.Error().Err(err).Msg("failed to encode error response")
	}
}
