package coordinator

import (
	"github.com/fantabuilder/fantasta/internal/ledger"
	"github.com/fantabuilder/fantasta/internal/models"
)

// LivePlayer is the player currently on the block.
type LivePlayer struct {
	Player     *models.Player `json:"player,omitempty"`
	Generation int            `json:"generation"`
}

// Snapshot is the full session state a client needs to render the
// auction after (re)connecting.
type Snapshot struct {
	Session      *models.Session             `json:"session"`
	Participants []ledger.ParticipantSummary `json:"participants"`
	Live         LivePlayer                  `json:"live"`
	Assignments  []models.Assignment         `json:"assignments"`
}
