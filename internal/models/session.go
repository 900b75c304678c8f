package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderPolicy defines how the auction slate is ordered.
type OrderPolicy string

const (
	OrderPolicyAlphabetical OrderPolicy = "alphabetical"
	OrderPolicyRandom       OrderPolicy = "random"
)

// Session represents one auction session. Immutable after creation except
// for the slate, which the admin may regenerate per role.
type Session struct {
	ID                   uuid.UUID   `json:"id"`
	Code                 string      `json:"code"`
	AdminUserID          string      `json:"admin_user_id"`
	NumParticipants      int         `json:"num_participants"`
	BudgetPerParticipant int         `json:"budget_per_participant"`
	OrderPolicy          OrderPolicy `json:"order_policy"`
	StartingLetter       *string     `json:"starting_letter,omitempty"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}
