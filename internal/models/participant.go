package models

import (
	"time"

	"github.com/google/uuid"
)

// Participant represents one roster slot in a session. Slots are created
// up front at session creation; UserID stays nil until someone claims the
// slot by joining with the session code. Exactly one participant per
// session has IsAdmin set.
type Participant struct {
	ID               uuid.UUID `json:"id"`
	SessionID        uuid.UUID `json:"session_id"`
	UserID           *string   `json:"user_id,omitempty"`
	Nickname         string    `json:"nickname"`
	CreditsRemaining int       `json:"credits_remaining"`
	Position         int       `json:"position"`
	IsAdmin          bool      `json:"is_admin"`
	CreatedAt        time.Time `json:"created_at"`
}

// Claimed reports whether a user owns this slot.
func (p *Participant) Claimed() bool {
	return p.UserID != nil
}
