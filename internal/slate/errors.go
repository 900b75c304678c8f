package slate

import "errors"

var (
	// ErrEmptySlate is returned when the cursor is moved but no slate
	// exists for the session.
	ErrEmptySlate = errors.New("slate is empty")

	// ErrPlayerNotInSlate is returned by JumpTo for a player outside the
	// current slate scope.
	ErrPlayerNotInSlate = errors.New("player not in slate")
)
