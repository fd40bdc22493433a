package intent

import "errors"

// Sentinel errors for intent table lookups and value validation.
// These allow callers to use errors.Is() for error checking.
var (
	// ErrUnsupportedAction indicates the action has no mapping for the
	// device's domain (or is not a known action at all).
	ErrUnsupportedAction = errors.New("intent: action not supported for domain")

	// ErrInvalidValue indicates a numeric argument was missing, unexpected,
	// or outside the action's accepted range.
	ErrInvalidValue = errors.New("intent: invalid value for action")
)
