package session

import "errors"

var (
	// ErrInvalidRequest is returned when session creation input fails
	// validation.
	ErrInvalidRequest = errors.New("invalid session request")

	// ErrSessionNotFound is returned when no session matches the given ID
	// or code.
	ErrSessionNotFound = errors.New("session not found")

	// ErrParticipantNotFound is returned when a participant is not part of
	// the session.
	ErrParticipantNotFound = errors.New("participant not found")

	// ErrSlotTaken is returned when claiming a participant slot that is
	// already owned by another user. Claims are one-time and exclusive.
	ErrSlotTaken = errors.New("participant slot already claimed")
)
