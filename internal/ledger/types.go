package ledger

import (
	"github.com/fantabuilder/fantasta/internal/models"
	"github.com/google/uuid"
)

// CreateAssignmentRequest is what the repository needs to commit an
// assignment atomically.
type CreateAssignmentRequest struct {
	SessionID     uuid.UUID
	ParticipantID uuid.UUID
	PlayerID      int
	Price         int
}

// RosterSlot is one won player on a participant's roster.
type RosterSlot struct {
	Player models.Player `json:"player"`
	Price  int           `json:"price"`
	Order  int           `json:"order"`
}

// Roster groups a participant's slots by role in fixed role precedence.
type Roster map[models.Role][]RosterSlot

// ParticipantSummary is the per-participant view of the auction's
// progress: money spent and roster slots still open per role.
type ParticipantSummary struct {
	Participant    models.Participant  `json:"participant"`
	Spent          int                 `json:"spent"`
	SlotsRemaining map[models.Role]int `json:"slots_remaining"`
}
