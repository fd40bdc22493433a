package registry

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/voxhaus/voxhaus-core/internal/transport"
)

// Logger defines the logging interface used by the Store.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Store holds the current registry snapshot and manages its refresh cycle.
//
// Snapshots are published with a single atomic pointer swap: readers take a
// reference once via Current() and use it for the whole of one resolution,
// never observing a partially built registry and never blocking a refresh.
//
// Refreshes are serialised through singleflight — when several dispatches
// trigger a self-heal at once, exactly one listing call runs and all callers
// share its result.
//
// All public methods are thread-safe.
type Store struct {
	backend transport.Transport
	timeout time.Duration

	current    atomic.Pointer[Snapshot]
	generation atomic.Uint64
	group      singleflight.Group

	logger Logger
}

// NewStore creates a registry store backed by the given transport.
// The store starts empty; call Refresh (or Run) to populate it.
//
// refreshTimeout bounds the backend listing call of a single refresh.
func NewStore(backend transport.Transport, refreshTimeout time.Duration) *Store {
	s := &Store{
		backend: backend,
		timeout: refreshTimeout,
		logger:  noopLogger{},
	}
	s.current.Store(&Snapshot{}) // empty snapshot, generation 0
	return s
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// Current returns the latest published snapshot. Never nil; before the first
// successful refresh it is an empty generation-0 snapshot.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Refresh rebuilds the snapshot from a fresh backend listing and publishes it.
//
// Concurrent callers are coalesced: at most one refresh builds at a time and
// every caller that joined it receives the same resulting snapshot. The
// previous snapshot stays published — and readable — until the new one is
// complete.
//
// Returns:
//   - *Snapshot: the newly published snapshot
//   - error: if the backend listing call fails; the old snapshot remains current
func (s *Store) Refresh(ctx context.Context) (*Snapshot, error) {
	v, err, shared := s.group.Do("refresh", func() (any, error) {
		return s.doRefresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	snap := v.(*Snapshot)
	if shared {
		s.logger.Debug("registry refresh shared with concurrent caller", "generation", snap.Generation)
	}
	return snap, nil
}

// doRefresh performs the actual listing call and snapshot swap.
func (s *Store) doRefresh(ctx context.Context) (*Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	listed, err := s.backend.ListDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}

	snap := BuildSnapshot(listed, s.generation.Add(1), time.Now().UTC())
	s.current.Store(snap)

	s.logger.Info("registry snapshot published",
		"generation", snap.Generation,
		"devices", snap.Len(),
	)
	return snap, nil
}

// Run refreshes the registry on a fixed interval until ctx is cancelled.
//
// The initial population is expected to have happened already (startup calls
// Refresh directly so failures surface); Run only keeps the snapshot from
// going stale. Interval refresh failures are logged and retried on the next
// tick — a stale snapshot is still a consistent one.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil {
				s.logger.Warn("interval registry refresh failed", "error", err)
			}
		}
	}
}
