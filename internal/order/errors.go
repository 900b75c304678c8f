package order

import "errors"

// ErrGenerationEmpty is returned when a slate is requested for zero
// eligible players.
var ErrGenerationEmpty = errors.New("no eligible players to order")
