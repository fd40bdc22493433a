package dispatch

import "fmt"

// Kind classifies a dispatch failure for callers that need to branch on it
// (the REST API maps kinds onto status codes; the advisory text is already
// human-readable).
type Kind string

const (
	// KindDeviceNotFound means no device matched the spoken target, even
	// after a registry self-heal refresh.
	KindDeviceNotFound Kind = "device_not_found"

	// KindUnsupportedAction means the action has no mapping for the
	// resolved device's domain.
	KindUnsupportedAction Kind = "unsupported_action"

	// KindInvalidValue means the numeric argument was missing, surplus,
	// or out of range.
	KindInvalidValue Kind = "invalid_value"

	// KindDispatchFailed means the command was valid but the backend
	// invocation failed after the retry budget was spent.
	KindDispatchFailed Kind = "dispatch_failed"
)

// Error is a classified dispatch failure. Advisory carries the sentence to
// show or speak back to the user; Err retains the underlying cause.
type Error struct {
	Kind     Kind
	Advisory string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dispatch: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("dispatch: %s: %s", e.Kind, e.Advisory)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// newError builds a classified Error with a formatted advisory.
func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{
		Kind:     kind,
		Advisory: fmt.Sprintf(format, args...),
		Err:      err,
	}
}
