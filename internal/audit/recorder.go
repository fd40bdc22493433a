package audit

import (
	"context"
	"time"

	"github.com/voxhaus/voxhaus-core/internal/dispatch"
)

// Logger defines the logging interface used by the Recorder.
type Logger interface {
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}

// Recorder adapts the repository to the dispatcher's history sink. Write
// failures are logged, never propagated — history must not break dispatch.
type Recorder struct {
	repo   Repository
	logger Logger
}

// NewRecorder creates a dispatch history recorder.
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo, logger: noopLogger{}}
}

// SetLogger sets the logger for the recorder.
func (r *Recorder) SetLogger(logger Logger) {
	r.logger = logger
}

// Record persists one dispatch outcome.
func (r *Recorder) Record(ctx context.Context, req dispatch.Request, result *dispatch.Result, dispatchErr *dispatch.Error) {
	entry := &Entry{
		DispatchedAt: time.Now().UTC(),
		Target:       req.Target,
		Action:       string(req.Action),
	}

	if dispatchErr != nil {
		entry.Status = StatusFailed
		entry.ErrorKind = string(dispatchErr.Kind)
		entry.Advisory = dispatchErr.Advisory
	} else {
		entry.ID = result.DispatchID
		entry.Status = StatusCompleted
		entry.DeviceID = result.DeviceID
		entry.DeviceName = result.DeviceName
		entry.Domain = string(result.Domain)
		entry.Primitive = result.Primitive
		entry.Score = result.Score
		entry.Attempts = result.Attempts
		entry.Healed = result.Healed
		entry.DurationMS = result.Duration.Milliseconds()
	}

	if err := r.repo.Create(ctx, entry); err != nil {
		r.logger.Warn("recording dispatch history failed", "error", err)
	}
}
