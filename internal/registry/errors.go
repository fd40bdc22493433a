package registry

import "errors"

// Sentinel errors for registry operations.
// These allow callers to use errors.Is() for error checking.
var (
	// ErrEmptySnapshot indicates the registry has never been populated.
	ErrEmptySnapshot = errors.New("registry: snapshot is empty")

	// ErrDeviceNotFound indicates the requested device ID is not present
	// in the current snapshot.
	ErrDeviceNotFound = errors.New("registry: device not found")
)
