package events

import "time"

// Event type names as they appear in the outbox table and on the wire.
const (
	TypeSessionCreated    = "SessionCreated"
	TypeParticipantJoined = "ParticipantJoined"
	TypeAssignmentMade    = "AssignmentMade"
	TypeAssignmentUndone  = "AssignmentUndone"
	TypeAssignmentRemoved = "AssignmentRemoved"
	TypeCursorMoved       = "CursorMoved"
	TypeSlateInitialized  = "SlateInitialized"
)

// SessionCreatedPayload announces a freshly opened auction.
type SessionCreatedPayload struct {
	SessionID       string    `json:"session_id"`
	Code            string    `json:"code"`
	NumParticipants int       `json:"num_participants"`
	Budget          int       `json:"budget"`
	CreatedAt       time.Time `json:"created_at"`
}

// ParticipantJoinedPayload announces a claimed slot.
type ParticipantJoinedPayload struct {
	SessionID     string `json:"session_id"`
	ParticipantID string `json:"participant_id"`
	Nickname      string `json:"nickname"`
	Position      int    `json:"position"`
}

// AssignmentMadePayload announces a sold player.
type AssignmentMadePayload struct {
	SessionID        string    `json:"session_id"`
	AssignmentID     string    `json:"assignment_id"`
	ParticipantID    string    `json:"participant_id"`
	PlayerID         int       `json:"player_id"`
	Price            int       `json:"price"`
	Order            int       `json:"order"`
	CreditsRemaining int       `json:"credits_remaining"`
	AssignedAt       time.Time `json:"assigned_at"`
}

// AssignmentUndonePayload announces a reversed assignment.
type AssignmentUndonePayload struct {
	SessionID     string `json:"session_id"`
	AssignmentID  string `json:"assignment_id"`
	ParticipantID string `json:"participant_id"`
	PlayerID      int    `json:"player_id"`
	Refund        int    `json:"refund"`
}

// CursorMovedPayload announces a new live player.
type CursorMovedPayload struct {
	SessionID  string `json:"session_id"`
	PlayerID   *int   `json:"player_id,omitempty"`
	Generation int    `json:"generation"`
}

// SlateInitializedPayload announces a rebuilt slate. Clients holding an
// older generation must reload.
type SlateInitializedPayload struct {
	SessionID  string  `json:"session_id"`
	Generation int     `json:"generation"`
	Size       int     `json:"size"`
	RoleScope  *string `json:"role_scope,omitempty"`
}
