package catalog

import "errors"

// ErrPlayerNotFound is returned when a player ID is not in the catalog.
var ErrPlayerNotFound = errors.New("player not found")
