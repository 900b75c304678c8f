package models

import (
	"time"

	"github.com/google/uuid"
)

// SlateEntry is one position of the ordered player slate for a session.
type SlateEntry struct {
	SessionID  uuid.UUID `json:"session_id"`
	PlayerID   int       `json:"player_id"`
	OrderIndex int       `json:"order_index"`
	Generation int       `json:"generation"`
}

// Cursor points at the slate position currently live in the auction.
// Generation is bumped whenever the slate is regenerated so stale clients
// can detect a slate replacement.
type Cursor struct {
	SessionID  uuid.UUID `json:"session_id"`
	PlayerID   *int      `json:"player_id,omitempty"`
	Generation int       `json:"generation"`
	UpdatedAt  time.Time `json:"updated_at"`
}
