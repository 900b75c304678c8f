package ledger

import "errors"

var (
	// ErrInvalidPrice is returned for prices below the one-credit floor.
	ErrInvalidPrice = errors.New("price must be at least 1 credit")

	// ErrParticipantNotFound is returned when the target participant is
	// not part of the session.
	ErrParticipantNotFound = errors.New("participant not found in session")

	// ErrPlayerNotFound is returned when the player is not in the catalog.
	ErrPlayerNotFound = errors.New("player not found")

	// ErrAlreadyAssigned is returned when the player already has an active
	// assignment in the session. A player is sold at most once.
	ErrAlreadyAssigned = errors.New("player already assigned")

	// ErrInsufficientCredits is returned when the participant cannot
	// afford the price.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrRoleLimitReached is returned when the participant's roster is
	// full for the player's role.
	ErrRoleLimitReached = errors.New("role limit reached")

	// ErrNothingToUndo is returned when no active assignment exists to
	// reverse.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrAssignmentNotFound is returned when a targeted reversal names an
	// assignment that does not exist.
	ErrAssignmentNotFound = errors.New("assignment not found")
)
