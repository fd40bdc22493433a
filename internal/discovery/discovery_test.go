package discovery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/voxhaus/voxhaus-core/internal/infrastructure/config"
	"github.com/voxhaus/voxhaus-core/internal/transport"
)

// mockTransport implements transport.Transport with scripted probe answers.
type mockTransport struct {
	mu        sync.Mutex
	supported map[string]bool
	probeErr  error
	probed    []string
}

func (m *mockTransport) ListDevices(ctx context.Context) ([]transport.Device, error) {
	return nil, nil
}

func (m *mockTransport) Invoke(ctx context.Context, primitive, deviceID string, params map[string]any) (transport.Outcome, error) {
	return transport.Outcome{}, nil
}

func (m *mockTransport) Probe(ctx context.Context, primitive string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probed = append(m.probed, primitive)
	if m.probeErr != nil {
		return false, m.probeErr
	}
	return m.supported[primitive], nil
}

func (m *mockTransport) probeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.probed)
}

func testConfig() config.DiscoveryConfig {
	return config.DiscoveryConfig{
		Prefixes:       []string{"", "hass."},
		ProbePrimitive: "turn_on",
		Timeout:        5,
	}
}

func TestDiscoverer_Profile(t *testing.T) {
	t.Run("first supported prefix wins", func(t *testing.T) {
		mock := &mockTransport{supported: map[string]bool{"turn_on": true}}
		d := New(mock, testConfig())

		profile := d.Profile(context.Background())
		if profile.PrimitivePrefix != "" {
			t.Errorf("PrimitivePrefix = %q, want empty", profile.PrimitivePrefix)
		}
		if profile.Confidence != ConfidenceProbed {
			t.Errorf("Confidence = %q, want %q", profile.Confidence, ConfidenceProbed)
		}
	})

	t.Run("falls through to later prefix", func(t *testing.T) {
		mock := &mockTransport{supported: map[string]bool{"hass.turn_on": true}}
		d := New(mock, testConfig())

		profile := d.Profile(context.Background())
		if profile.PrimitivePrefix != "hass." {
			t.Errorf("PrimitivePrefix = %q, want %q", profile.PrimitivePrefix, "hass.")
		}
		if profile.Confidence != ConfidenceProbed {
			t.Errorf("Confidence = %q, want %q", profile.Confidence, ConfidenceProbed)
		}
	})

	t.Run("degrades when nothing answers", func(t *testing.T) {
		mock := &mockTransport{}
		d := New(mock, testConfig())

		profile := d.Profile(context.Background())
		if profile.Confidence != ConfidenceAssumed {
			t.Errorf("Confidence = %q, want %q", profile.Confidence, ConfidenceAssumed)
		}
		if profile.PrimitivePrefix != "" {
			t.Errorf("PrimitivePrefix = %q, want default", profile.PrimitivePrefix)
		}
	})

	t.Run("degrades on probe errors", func(t *testing.T) {
		mock := &mockTransport{probeErr: errors.New("backend down")}
		d := New(mock, testConfig())

		profile := d.Profile(context.Background())
		if profile.Confidence != ConfidenceAssumed {
			t.Errorf("Confidence = %q, want %q", profile.Confidence, ConfidenceAssumed)
		}
	})

	t.Run("cached after first discovery", func(t *testing.T) {
		mock := &mockTransport{supported: map[string]bool{"turn_on": true}}
		d := New(mock, testConfig())

		first := d.Profile(context.Background())
		second := d.Profile(context.Background())
		if mock.probeCount() != 1 {
			t.Errorf("probe count = %d, want 1", mock.probeCount())
		}
		if !first.DiscoveredAt.Equal(second.DiscoveredAt) {
			t.Error("cached profile differs from first discovery")
		}
	})
}

func TestDiscoverer_Invalidate(t *testing.T) {
	mock := &mockTransport{supported: map[string]bool{"turn_on": true}}
	d := New(mock, testConfig())

	d.Profile(context.Background())
	d.Invalidate()
	d.Profile(context.Background())

	if got := mock.probeCount(); got != 2 {
		t.Errorf("probe count after invalidation = %d, want 2", got)
	}
}

func TestCapabilityProfile_Compose(t *testing.T) {
	p := CapabilityProfile{PrimitivePrefix: "hass."}
	if got := p.Compose("turn_on"); got != "hass.turn_on" {
		t.Errorf("Compose() = %q, want %q", got, "hass.turn_on")
	}

	p = CapabilityProfile{DiscoveredAt: time.Now()}
	if got := p.Compose("turn_on"); got != "turn_on" {
		t.Errorf("Compose() with empty prefix = %q, want %q", got, "turn_on")
	}
}
