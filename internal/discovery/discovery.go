package discovery

import (
	"context"
	"sync"
	"time"

	"github.com/voxhaus/voxhaus-core/internal/infrastructure/config"
	"github.com/voxhaus/voxhaus-core/internal/transport"
)

// Confidence records how a capability profile was established.
type Confidence string

const (
	// ConfidenceProbed means the backend confirmed the prefix convention.
	ConfidenceProbed Confidence = "probed"

	// ConfidenceAssumed means probing failed or timed out and the default
	// convention was assumed. Dispatch still works, but unsupported
	// primitives surface at invoke time instead of up front.
	ConfidenceAssumed Confidence = "assumed"
)

// CapabilityProfile captures the backend's primitive naming convention.
type CapabilityProfile struct {
	PrimitivePrefix string     `json:"primitive_prefix"`
	Confidence      Confidence `json:"confidence"`
	DiscoveredAt    time.Time  `json:"discovered_at"`
}

// Compose prepends the discovered prefix to a bare primitive name.
func (p CapabilityProfile) Compose(primitive string) string {
	return p.PrimitivePrefix + primitive
}

// Logger defines the logging interface used by the Discoverer.
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

// Discoverer establishes and caches the backend's capability profile.
//
// Discovery runs once and the profile is reused until Invalidate is called
// (wired to transport reconnects, since a reconnect may mean a different
// backend build with a different convention).
//
// All public methods are thread-safe.
type Discoverer struct {
	backend transport.Transport
	cfg     config.DiscoveryConfig

	mu     sync.Mutex
	cached *CapabilityProfile

	logger Logger
}

// New creates a discoverer for the given backend.
func New(backend transport.Transport, cfg config.DiscoveryConfig) *Discoverer {
	return &Discoverer{
		backend: backend,
		cfg:     cfg,
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the discoverer.
func (d *Discoverer) SetLogger(logger Logger) {
	d.logger = logger
}

// Profile returns the current capability profile, probing the backend on
// first use or after invalidation.
//
// Profile never fails: when every probe misses or the budget expires it
// degrades to the default prefix with assumed confidence rather than
// blocking dispatch. The degradation is logged once per discovery pass.
func (d *Discoverer) Profile(ctx context.Context) CapabilityProfile {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cached != nil {
		return *d.cached
	}

	profile := d.probe(ctx)
	d.cached = &profile
	return profile
}

// Invalidate discards the cached profile so the next Profile call re-probes.
// Call on transport reconnect.
func (d *Discoverer) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cached != nil {
		d.logger.Info("capability profile invalidated", "prefix", d.cached.PrimitivePrefix)
		d.cached = nil
	}
}

// probe tries each candidate prefix against the probe primitive inside the
// discovery budget. The first prefix the backend acknowledges wins.
func (d *Discoverer) probe(ctx context.Context) CapabilityProfile {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.GetProbeTimeout())
	defer cancel()

	for _, prefix := range d.cfg.Prefixes {
		supported, err := d.backend.Probe(ctx, prefix+d.cfg.ProbePrimitive)
		if err != nil {
			d.logger.Warn("capability probe failed",
				"prefix", prefix,
				"primitive", d.cfg.ProbePrimitive,
				"error", err,
			)
			if ctx.Err() != nil {
				break // budget spent, stop probing
			}
			continue
		}
		if supported {
			d.logger.Info("capability profile probed", "prefix", prefix)
			return CapabilityProfile{
				PrimitivePrefix: prefix,
				Confidence:      ConfidenceProbed,
				DiscoveredAt:    time.Now().UTC(),
			}
		}
	}

	d.logger.Warn("capability discovery degraded, assuming default convention",
		"prefixes_tried", len(d.cfg.Prefixes),
	)
	return CapabilityProfile{
		PrimitivePrefix: "",
		Confidence:      ConfidenceAssumed,
		DiscoveredAt:    time.Now().UTC(),
	}
}
