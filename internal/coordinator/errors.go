package coordinator

import "errors"

var (
	// ErrUnauthorized is returned when a mutating operation is attempted
	// by anyone other than the session admin.
	ErrUnauthorized = errors.New("operation restricted to session admin")
)
