package models

import (
	"time"

	"github.com/google/uuid"
)

// Assignment is a committed (participant, player, price) auction result.
// Order is a per-session monotonic sequence number; undo targets the
// highest active Order, never a positional index.
type Assignment struct {
	ID            uuid.UUID `json:"id"`
	SessionID     uuid.UUID `json:"session_id"`
	ParticipantID uuid.UUID `json:"participant_id"`
	PlayerID      int       `json:"player_id"`
	Price         int       `json:"price"`
	Order         int       `json:"order"`
	AssignedAt    time.Time `json:"assigned_at"`
}
