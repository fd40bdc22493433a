package transport

import (
	"context"
	"errors"
)

// Sentinel errors for backend transport operations.
//
// Implementations wrap their protocol-specific failures in one of these so
// the dispatcher can classify them with errors.Is():
//
//	if errors.Is(err, transport.ErrTimeout) {
//	    // retry once
//	}
var (
	// ErrTimeout indicates the backend did not respond within the deadline.
	ErrTimeout = errors.New("transport: operation timed out")

	// ErrConnectionReset indicates the connection dropped mid-operation.
	ErrConnectionReset = errors.New("transport: connection reset")

	// ErrUnavailable indicates the backend could not be reached at all.
	ErrUnavailable = errors.New("transport: backend unavailable")

	// ErrRejected indicates the backend explicitly refused the operation.
	ErrRejected = errors.New("transport: rejected by backend")

	// ErrUnknownDevice indicates the backend does not know the device ID.
	// The dispatcher treats this as a stale-registry signal.
	ErrUnknownDevice = errors.New("transport: unknown device")

	// ErrUnknownPrimitive indicates the backend does not expose the primitive.
	ErrUnknownPrimitive = errors.New("transport: unknown primitive")
)

// IsTransient reports whether an invocation error is worth a single retry.
//
// Timeouts, resets, and unreachable backends are transient; explicit
// rejections and unknown device/primitive errors reflect state, not luck,
// and retrying them unchanged cannot succeed.
func IsTransient(err error) bool {
	switch {
	case errors.Is(err, ErrTimeout),
		errors.Is(err, ErrConnectionReset),
		errors.Is(err, ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return true
	default:
		return false
	}
}
