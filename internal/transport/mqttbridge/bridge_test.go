package mqttbridge

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/voxhaus/voxhaus-core/internal/infrastructure/mqtt"
	"github.com/voxhaus/voxhaus-core/internal/transport"
)

// fakeBroker simulates the backend bridge: a scripted responder answers
// each request topic with a canned payload.
type fakeBroker struct {
	mu        sync.Mutex
	handler   mqtt.MessageHandler
	onConnect func()

	// respond maps request kind to a responder; nil means stay silent.
	respond map[string]func(requestID string, payload []byte) []byte

	published []string
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{respond: make(map[string]func(string, []byte) []byte)}
}

func (f *fakeBroker) Publish(topic string, payload []byte, qos byte, retained bool) error {
	f.mu.Lock()
	f.published = append(f.published, topic)
	handler := f.handler
	f.mu.Unlock()

	// voxhaus/request/{kind}/{id}
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[1] != "request" {
		return nil
	}
	kind, requestID := parts[2], parts[3]

	f.mu.Lock()
	responder := f.respond[kind]
	f.mu.Unlock()
	if responder == nil || handler == nil {
		return nil
	}

	// Answer asynchronously, as a real broker would.
	go handler(mqtt.Topics{}.Response(kind, requestID), responder(requestID, payload))
	return nil
}

func (f *fakeBroker) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = handler
	return nil
}

func (f *fakeBroker) SetOnConnect(callback func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onConnect = callback
}

func (f *fakeBroker) fireConnect() {
	f.mu.Lock()
	cb := f.onConnect
	f.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func testBridge(t *testing.T) (*Bridge, *fakeBroker) {
	t.Helper()
	broker := newFakeBroker()
	bridge, err := New(broker, 1)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return bridge, broker
}

func TestBridge_ListDevices(t *testing.T) {
	bridge, broker := testBridge(t)
	broker.respond[kindList] = func(string, []byte) []byte {
		return []byte(`{"devices": [
			{"id": "light.office_lamp", "name": "Office Lamp"},
			{"id": "switch.kettle", "name": "Kettle"}
		]}`)
	}

	devices, err := bridge.ListDevices(context.Background())
	if err != nil {
		t.Fatalf("ListDevices() error = %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("devices = %d, want 2", len(devices))
	}
	if devices[0].ID != "light.office_lamp" || devices[0].Name != "Office Lamp" {
		t.Errorf("device[0] = %+v", devices[0])
	}
}

func TestBridge_Invoke(t *testing.T) {
	t.Run("success carries request payload", func(t *testing.T) {
		bridge, broker := testBridge(t)

		var gotRequest map[string]any
		broker.respond[kindInvoke] = func(_ string, payload []byte) []byte {
			json.Unmarshal(payload, &gotRequest)
			return []byte(`{"state": "on", "detail": {"brightness": 80}}`)
		}

		outcome, err := bridge.Invoke(context.Background(), "turn_on", "light.office_lamp",
			map[string]any{"brightness": 80.0})
		if err != nil {
			t.Fatalf("Invoke() error = %v", err)
		}
		if outcome.State != "on" {
			t.Errorf("State = %q, want on", outcome.State)
		}
		if gotRequest["primitive"] != "turn_on" || gotRequest["device_id"] != "light.office_lamp" {
			t.Errorf("request = %v", gotRequest)
		}
	})

	t.Run("unknown device error code", func(t *testing.T) {
		bridge, broker := testBridge(t)
		broker.respond[kindInvoke] = func(string, []byte) []byte {
			return []byte(`{"error": {"code": "unknown_device", "message": "entity gone"}}`)
		}

		_, err := bridge.Invoke(context.Background(), "turn_on", "light.gone", nil)
		if !errors.Is(err, transport.ErrUnknownDevice) {
			t.Errorf("error = %v, want ErrUnknownDevice", err)
		}
	})

	t.Run("unavailable error code is transient", func(t *testing.T) {
		bridge, broker := testBridge(t)
		broker.respond[kindInvoke] = func(string, []byte) []byte {
			return []byte(`{"error": {"code": "unavailable", "message": "backend restarting"}}`)
		}

		_, err := bridge.Invoke(context.Background(), "turn_on", "light.office_lamp", nil)
		if !errors.Is(err, transport.ErrUnavailable) {
			t.Errorf("error = %v, want ErrUnavailable", err)
		}
		if !transport.IsTransient(err) {
			t.Error("unavailable not classified transient")
		}
	})

	t.Run("no response times out", func(t *testing.T) {
		bridge, _ := testBridge(t) // no responder registered

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := bridge.Invoke(ctx, "turn_on", "light.office_lamp", nil)
		if !errors.Is(err, transport.ErrTimeout) {
			t.Errorf("error = %v, want ErrTimeout", err)
		}
	})
}

func TestBridge_Probe(t *testing.T) {
	bridge, broker := testBridge(t)
	broker.respond[kindProbe] = func(_ string, payload []byte) []byte {
		var req map[string]any
		json.Unmarshal(payload, &req)
		if req["primitive"] == "turn_on" {
			return []byte(`{"supported": true}`)
		}
		return []byte(`{"supported": false}`)
	}

	supported, err := bridge.Probe(context.Background(), "turn_on")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if !supported {
		t.Error("Probe(turn_on) = false, want true")
	}

	supported, err = bridge.Probe(context.Background(), "hass.turn_on")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if supported {
		t.Error("Probe(hass.turn_on) = true, want false")
	}
}

func TestBridge_OnReconnect(t *testing.T) {
	bridge, broker := testBridge(t)

	var fired int
	var mu sync.Mutex
	bridge.OnReconnect(func() {
		mu.Lock()
		fired++
		mu.Unlock()
	})

	// The broker was already connected when the bridge was created, so the
	// first connect the bridge observes is a genuine reconnect and must
	// fire immediately — not be swallowed as link establishment.
	broker.fireConnect()
	mu.Lock()
	if fired != 1 {
		t.Errorf("fired = %d after first observed connect, want 1", fired)
	}
	mu.Unlock()

	broker.fireConnect()
	broker.fireConnect()
	mu.Lock()
	if fired != 3 {
		t.Errorf("fired = %d, want 3", fired)
	}
	mu.Unlock()
}
