package transport

import "context"

// Device is one entry from the backend's device listing.
//
// The backend reports an opaque identifier and a human-readable name. Domain
// information is carried structurally inside the ID (the token before the
// first "." separator) and is derived by the registry, not by the transport.
type Device struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Outcome is the normalised result of a successful primitive invocation.
type Outcome struct {
	// State is the backend-reported state after the call, if any (e.g. "on").
	State string `json:"state,omitempty"`
	// Detail carries any backend-provided result payload.
	Detail map[string]any `json:"detail,omitempty"`
}

// Transport is the minimal contract this core requires from a smart-home
// backend. Implementations own all protocol framing; callers see only these
// three operations.
//
// All methods honour context cancellation and deadlines. Implementations must
// map their failure modes onto the sentinel errors in this package so the
// dispatcher can classify them (see IsTransient).
type Transport interface {
	// ListDevices returns every controllable device the backend knows about.
	ListDevices(ctx context.Context) ([]Device, error)

	// Invoke calls a named backend primitive against a device.
	// The primitive name is the fully composed name including any prefix.
	Invoke(ctx context.Context, primitive, deviceID string, params map[string]any) (Outcome, error)

	// Probe reports whether the backend recognises the given primitive name.
	// Used by capability discovery to detect the naming convention; must be
	// side-effect free on the backend.
	Probe(ctx context.Context, primitive string) (bool, error)
}

// Reconnectable is implemented by transports whose underlying connection can
// drop and re-establish. The capability profile is invalidated when a
// reconnect is observed.
type Reconnectable interface {
	// OnReconnect registers a callback invoked after the transport
	// re-establishes its connection. May be called multiple times.
	OnReconnect(func())
}
