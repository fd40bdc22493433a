package resthome

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/voxhaus/voxhaus-core/internal/infrastructure/config"
	"github.com/voxhaus/voxhaus-core/internal/transport"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.RESTBackendConfig{
		BaseURL: srv.URL,
		Token:   "test-token",
		Timeout: 5,
	})
}

func TestClient_ListDevices(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/states" {
			t.Errorf("path = %q, want /api/states", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"entity_id": "light.office_lamp", "attributes": {"friendly_name": "Office Lamp"}},
			{"entity_id": "switch.kettle", "attributes": {"friendly_name": "Kettle"}}
		]`))
	}))

	devices, err := client.ListDevices(context.Background())
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

func TestClient_Invoke(t *testing.T) {
	t.Run("bare primitive uses device domain", func(t *testing.T) {
		var gotPath string
		var gotBody map[string]any
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			json.NewDecoder(r.Body).Decode(&gotBody)
			w.WriteHeader(http.StatusOK)
		}))

		_, err := client.Invoke(context.Background(), "turn_on", "light.office_lamp",
			map[string]any{"brightness": 80.0})
		if err != nil {
			t.Fatalf("Invoke() error = %v", err)
		}
		if gotPath != "/api/services/light/turn_on" {
			t.Errorf("path = %q, want /api/services/light/turn_on", gotPath)
		}
		if gotBody["entity_id"] != "light.office_lamp" {
			t.Errorf("entity_id = %v", gotBody["entity_id"])
		}
		if gotBody["brightness"] != 80.0 {
			t.Errorf("brightness = %v, want 80", gotBody["brightness"])
		}
	})

	t.Run("prefixed primitive uses its own domain", func(t *testing.T) {
		var gotPath string
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.WriteHeader(http.StatusOK)
		}))

		_, err := client.Invoke(context.Background(), "hass.turn_on", "light.office_lamp", nil)
		if err != nil {
			t.Fatalf("Invoke() error = %v", err)
		}
		if gotPath != "/api/services/hass/turn_on" {
			t.Errorf("path = %q, want /api/services/hass/turn_on", gotPath)
		}
	})

	t.Run("404 maps to unknown device", func(t *testing.T) {
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "entity not found", http.StatusNotFound)
		}))

		_, err := client.Invoke(context.Background(), "turn_on", "light.gone", nil)
		if !errors.Is(err, transport.ErrUnknownDevice) {
			t.Errorf("error = %v, want ErrUnknownDevice", err)
		}
	})

	t.Run("400 maps to rejected", func(t *testing.T) {
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad service data", http.StatusBadRequest)
		}))

		_, err := client.Invoke(context.Background(), "turn_on", "light.office_lamp", nil)
		if !errors.Is(err, transport.ErrRejected) {
			t.Errorf("error = %v, want ErrRejected", err)
		}
		if transport.IsTransient(err) {
			t.Error("rejection classified transient")
		}
	})

	t.Run("503 maps to unavailable and transient", func(t *testing.T) {
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))

		_, err := client.Invoke(context.Background(), "turn_on", "light.office_lamp", nil)
		if !errors.Is(err, transport.ErrUnavailable) {
			t.Errorf("error = %v, want ErrUnavailable", err)
		}
		if !transport.IsTransient(err) {
			t.Error("unavailability not classified transient")
		}
	})
}

func TestClient_Probe(t *testing.T) {
	catalogue := `[
		{"domain": "light", "services": {"turn_on": {}, "turn_off": {}}},
		{"domain": "hass", "services": {"turn_on": {}}}
	]`
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/services" {
			t.Errorf("path = %q, want /api/services", r.URL.Path)
		}
		w.Write([]byte(catalogue))
	}))

	tests := []struct {
		primitive string
		want      bool
	}{
		{"turn_on", true},
		{"hass.turn_on", true},
		{"hass.toggle", false},
		{"vacuum_everything", false},
	}
	for _, tt := range tests {
		got, err := client.Probe(context.Background(), tt.primitive)
		if err != nil {
			t.Fatalf("Probe(%q) error = %v", tt.primitive, err)
		}
		if got != tt.want {
			t.Errorf("Probe(%q) = %v, want %v", tt.primitive, got, tt.want)
		}
	}
}
