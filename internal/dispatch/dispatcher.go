package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/voxhaus/voxhaus-core/internal/discovery"
	"github.com/voxhaus/voxhaus-core/internal/infrastructure/config"
	"github.com/voxhaus/voxhaus-core/internal/intent"
	"github.com/voxhaus/voxhaus-core/internal/registry"
	"github.com/voxhaus/voxhaus-core/internal/resolve"
	"github.com/voxhaus/voxhaus-core/internal/transport"
)

// Request is one spoken command after transcription: a free-form device
// target, a backend-agnostic action, and an optional numeric value.
type Request struct {
	Target string        `json:"target"`
	Action intent.Action `json:"action"`
	Value  *float64      `json:"value,omitempty"`
}

// Result describes a successfully dispatched command.
type Result struct {
	DispatchID string            `json:"dispatch_id"`
	DeviceID   string            `json:"device_id"`
	DeviceName string            `json:"device_name"`
	Domain     registry.Domain   `json:"domain"`
	Action     intent.Action     `json:"action"`
	Primitive  string            `json:"primitive"`
	Params     map[string]any    `json:"params,omitempty"`
	Outcome    transport.Outcome `json:"outcome"`
	Score      float64           `json:"score"`
	Attempts   int               `json:"attempts"`
	Healed     bool              `json:"healed"`
	Duration   time.Duration     `json:"-"`
}

// Recorder persists dispatch history. Failed dispatches carry a nil Result,
// so the original request travels alongside. Implementations must be safe
// for concurrent use.
type Recorder interface {
	Record(ctx context.Context, req Request, result *Result, dispatchErr *Error)
}

// Metrics receives dispatch telemetry.
type Metrics interface {
	ObserveDispatch(req Request, result *Result, dispatchErr *Error, latency time.Duration)
}

// Notifier broadcasts dispatch lifecycle events to connected clients.
type Notifier interface {
	Broadcast(event string, payload any)
}

// Notifiers fans a broadcast out to every notifier in the slice, in order.
// Use it to feed the same event stream to multiple transports, e.g. the
// WebSocket hub and an MQTT event topic.
type Notifiers []Notifier

// Broadcast implements Notifier.
func (ns Notifiers) Broadcast(event string, payload any) {
	for _, n := range ns {
		n.Broadcast(event, payload)
	}
}

// Logger defines the logging interface used by the Dispatcher.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Events broadcast through the Notifier.
const (
	EventDispatchCompleted = "dispatch.completed"
	EventDispatchFailed    = "dispatch.failed"
)

// Dispatcher executes spoken commands end to end: resolve the target
// against the current registry snapshot, map the action through the intent
// table, compose the primitive with the discovered capability prefix, and
// invoke the backend with bounded retry.
//
// Two recovery mechanisms and no more:
//   - one retry after a fixed backoff when the transport failure is
//     transient (timeout, reset, unavailable)
//   - one registry self-heal when the device cannot be found — either at
//     resolution time or when the backend rejects the ID — the snapshot is
//     refreshed once and the whole pipeline re-run
//
// All public methods are thread-safe.
type Dispatcher struct {
	store      *registry.Store
	resolver   *resolve.Resolver
	table      *intent.Table
	discoverer *discovery.Discoverer
	backend    transport.Transport
	cfg        config.DispatchConfig

	recorder Recorder
	metrics  Metrics
	notifier Notifier
	logger   Logger
}

// New creates a dispatcher wired to the given collaborators.
func New(
	store *registry.Store,
	resolver *resolve.Resolver,
	table *intent.Table,
	discoverer *discovery.Discoverer,
	backend transport.Transport,
	cfg config.DispatchConfig,
) *Dispatcher {
	return &Dispatcher{
		store:      store,
		resolver:   resolver,
		table:      table,
		discoverer: discoverer,
		backend:    backend,
		cfg:        cfg,
		logger:     noopLogger{},
	}
}

// SetLogger sets the logger for the dispatcher.
func (d *Dispatcher) SetLogger(logger Logger) {
	d.logger = logger
}

// SetRecorder sets the dispatch history recorder.
func (d *Dispatcher) SetRecorder(r Recorder) {
	d.recorder = r
}

// SetMetrics sets the telemetry sink.
func (d *Dispatcher) SetMetrics(m Metrics) {
	d.metrics = m
}

// SetNotifier sets the event broadcaster.
func (d *Dispatcher) SetNotifier(n Notifier) {
	d.notifier = n
}

// Dispatch executes one spoken command.
//
// Returns:
//   - *Result: the executed command with its outcome and attempt count
//   - *Error: a classified failure carrying a user-facing advisory
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Result, *Error) {
	start := time.Now()
	id := "dsp-" + uuid.NewString()[:8]

	log := d.logger
	log.Debug("dispatch started", "dispatch_id", id, "target", req.Target, "action", req.Action)

	result, dispatchErr := d.run(ctx, id, req)
	latency := time.Since(start)

	if dispatchErr != nil {
		log.Warn("dispatch failed",
			"dispatch_id", id,
			"target", req.Target,
			"action", req.Action,
			"kind", dispatchErr.Kind,
			"error", dispatchErr.Err,
		)
	} else {
		result.Duration = latency
		log.Info("dispatch completed",
			"dispatch_id", id,
			"device", result.DeviceID,
			"primitive", result.Primitive,
			"attempts", result.Attempts,
			"healed", result.Healed,
			"duration_ms", latency.Milliseconds(),
		)
	}

	d.report(ctx, req, result, dispatchErr, latency)
	return result, dispatchErr
}

// run is the dispatch pipeline, re-entered at most once for the self-heal.
func (d *Dispatcher) run(ctx context.Context, id string, req Request) (*Result, *Error) {
	attempts := 0
	healed := false

	for {
		res := d.resolver.Resolve(d.store.Current(), req.Target)
		if !res.Resolved {
			if !healed {
				healed = true
				d.heal(ctx, req.Target, "resolution miss")
				continue
			}
			return nil, &Error{
				Kind:     KindDeviceNotFound,
				Advisory: resolve.Advisory(req.Target, res),
				Err:      registry.ErrDeviceNotFound,
			}
		}
		rec := res.Best.Record

		spec, err := d.table.Lookup(req.Action, rec.Domain)
		if err != nil {
			return nil, newError(KindUnsupportedAction, err,
				"%q cannot %s.", rec.DisplayName, req.Action)
		}

		params, err := d.table.BuildParams(spec, req.Value)
		if err != nil {
			return nil, newError(KindInvalidValue, err,
				"That value does not work for %s.", req.Action)
		}

		primitive := d.discoverer.Profile(ctx).Compose(spec.Primitive)

		outcome, invoked, invokeErr := d.invoke(ctx, primitive, rec.ID, params)
		attempts += invoked

		switch {
		case invokeErr == nil:
			return &Result{
				DispatchID: id,
				DeviceID:   rec.ID,
				DeviceName: rec.DisplayName,
				Domain:     rec.Domain,
				Action:     req.Action,
				Primitive:  primitive,
				Params:     params,
				Outcome:    outcome,
				Score:      res.Best.Score,
				Attempts:   attempts,
				Healed:     healed,
			}, nil

		case errors.Is(invokeErr, transport.ErrUnknownDevice) && !healed:
			// The snapshot is stale: the backend no longer knows this ID.
			// Refresh and re-run the pipeline once.
			healed = true
			d.heal(ctx, req.Target, "backend rejected device ID")
			continue

		default:
			return nil, newError(KindDispatchFailed, invokeErr,
				"Could not reach %q. Please try again.", rec.DisplayName)
		}
	}
}

// invoke calls the backend with the per-call timeout, retrying exactly once
// after a fixed backoff when the failure is transient. Returns the outcome,
// the number of calls made, and the final error.
func (d *Dispatcher) invoke(ctx context.Context, primitive, deviceID string, params map[string]any) (transport.Outcome, int, error) {
	outcome, err := d.invokeOnce(ctx, primitive, deviceID, params)
	if err == nil || !transport.IsTransient(err) {
		return outcome, 1, err
	}

	d.logger.Debug("transient invoke failure, retrying once",
		"primitive", primitive,
		"device", deviceID,
		"error", err,
	)

	select {
	case <-ctx.Done():
		return transport.Outcome{}, 1, ctx.Err()
	case <-time.After(d.cfg.GetRetryBackoff()):
	}

	outcome, err = d.invokeOnce(ctx, primitive, deviceID, params)
	return outcome, 2, err
}

func (d *Dispatcher) invokeOnce(ctx context.Context, primitive, deviceID string, params map[string]any) (transport.Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.GetInvokeTimeout())
	defer cancel()
	return d.backend.Invoke(ctx, primitive, deviceID, params)
}

// heal refreshes the registry snapshot once. Refresh failures are logged
// and the stale snapshot stays in use; concurrent heals share one listing
// call through the store's singleflight.
func (d *Dispatcher) heal(ctx context.Context, target, reason string) {
	d.logger.Info("registry self-heal triggered", "target", target, "reason", reason)
	if _, err := d.store.Refresh(ctx); err != nil {
		d.logger.Warn("self-heal refresh failed", "error", err)
	}
}

// report fans the dispatch out to history, telemetry, and event streams.
// All sinks are optional and none may slow down or fail a dispatch.
func (d *Dispatcher) report(ctx context.Context, req Request, result *Result, dispatchErr *Error, latency time.Duration) {
	if d.recorder != nil {
		d.recorder.Record(ctx, req, result, dispatchErr)
	}
	if d.metrics != nil {
		d.metrics.ObserveDispatch(req, result, dispatchErr, latency)
	}
	if d.notifier != nil {
		if dispatchErr != nil {
			d.notifier.Broadcast(EventDispatchFailed, map[string]any{
				"target":   req.Target,
				"action":   req.Action,
				"kind":     dispatchErr.Kind,
				"advisory": dispatchErr.Advisory,
			})
		} else {
			d.notifier.Broadcast(EventDispatchCompleted, result)
		}
	}
}
