package influxdb

import (
	"context"
	"errors"
	"testing"

	"github.com/voxhaus/voxhaus-core/internal/infrastructure/config"
)

func TestConnect_Disabled(t *testing.T) {
	_, err := Connect(config.InfluxDBConfig{Enabled: false})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestClient_NotConnected(t *testing.T) {
	c := &Client{}

	if c.IsConnected() {
		t.Error("zero client reports connected")
	}
	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
	// Writes on a disconnected client are silent no-ops.
	c.WriteRegistryMetric(1, 10)
	c.WritePoint("test", nil, map[string]interface{}{"v": 1})
	c.Flush()
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
