package models

// Player represents one entry of the auction player list. Players are
// reference data: loaded once, never mutated by the auction core.
type Player struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Team      string `json:"team"`
	Role      Role   `json:"role"`
	Valuation int    `json:"valuation"`
}
