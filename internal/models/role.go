package models

// Role defines a player's position on the pitch.
type Role string

const (
	RoleGoalkeeper Role = "P"
	RoleDefender   Role = "D"
	RoleMidfielder Role = "C"
	RoleForward    Role = "A"
)

// RoleOrder is the fixed precedence used everywhere roles are grouped or
// displayed. Never iterate RoleLimits directly; map order is not stable.
var RoleOrder = []Role{RoleGoalkeeper, RoleDefender, RoleMidfielder, RoleForward}

// RoleLimits is the maximum number of players of each role a participant
// may hold on their roster.
var RoleLimits = map[Role]int{
	RoleGoalkeeper: 3,
	RoleDefender:   8,
	RoleMidfielder: 8,
	RoleForward:    6,
}

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleGoalkeeper, RoleDefender, RoleMidfielder, RoleForward:
		return true
	default:
		return false
	}
}

// Label returns the Italian display name for the role.
func (r Role) Label() string {
	switch r {
	case RoleGoalkeeper:
		return "Portiere"
	case RoleDefender:
		return "Difensore"
	case RoleMidfielder:
		return "Centrocampista"
	case RoleForward:
		return "Attaccante"
	default:
		return string(r)
	}
}
