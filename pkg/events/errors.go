package events

import "errors"

// ErrInvalidEvent is returned by ValidateEvent for malformed catalog records.
var ErrInvalidEvent = errors.New("invalid event")
