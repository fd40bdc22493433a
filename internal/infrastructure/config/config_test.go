package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
service:
  id: "test-voxhaus"
backend:
  kind: "rest"
  rest:
    base_url: "http://hub.local:8123"
    timeout: 5
registry:
  refresh_interval: 120
resolver:
  accept_threshold: 0.75
  suggest_threshold: 0.40
database:
  path: "/tmp/test.db"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.ID != "test-voxhaus" {
		t.Errorf("Service.ID = %q, want %q", cfg.Service.ID, "test-voxhaus")
	}

	if cfg.Backend.REST.BaseURL != "http://hub.local:8123" {
		t.Errorf("Backend.REST.BaseURL = %q, want %q", cfg.Backend.REST.BaseURL, "http://hub.local:8123")
	}

	if cfg.Resolver.AcceptThreshold != 0.75 {
		t.Errorf("Resolver.AcceptThreshold = %v, want 0.75", cfg.Resolver.AcceptThreshold)
	}

	if cfg.GetRefreshInterval() != 120*time.Second {
		t.Errorf("GetRefreshInterval() = %v, want 120s", cfg.GetRefreshInterval())
	}
}

func TestLoad_Defaults(t *testing.T) {
	content := `
service:
  id: "test-voxhaus"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Backend.Kind != "rest" {
		t.Errorf("Backend.Kind = %q, want %q", cfg.Backend.Kind, "rest")
	}
	if cfg.Resolver.AcceptThreshold != 0.80 {
		t.Errorf("Resolver.AcceptThreshold = %v, want 0.80", cfg.Resolver.AcceptThreshold)
	}
	if cfg.GetInvokeTimeout() != 10*time.Second {
		t.Errorf("GetInvokeTimeout() = %v, want 10s", cfg.GetInvokeTimeout())
	}
	if len(cfg.Discovery.Prefixes) == 0 || cfg.Discovery.Prefixes[0] != "" {
		t.Errorf("Discovery.Prefixes = %v, want bare convention first", cfg.Discovery.Prefixes)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	content := `
service:
  id: "test-voxhaus"
backend:
  kind: "rest"
  rest:
    base_url: "http://file-value:8123"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("VOXHAUS_BACKEND_URL", "http://env-value:8123")
	t.Setenv("VOXHAUS_BACKEND_TOKEN", "env-token")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Backend.REST.BaseURL != "http://env-value:8123" {
		t.Errorf("Backend.REST.BaseURL = %q, want env override", cfg.Backend.REST.BaseURL)
	}
	if cfg.Backend.REST.Token != "env-token" {
		t.Errorf("Backend.REST.Token = %q, want %q", cfg.Backend.REST.Token, "env-token")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "default config is valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "empty service id",
			mutate:  func(c *Config) { c.Service.ID = "" },
			wantErr: true,
		},
		{
			name:    "unknown backend kind",
			mutate:  func(c *Config) { c.Backend.Kind = "grpc" },
			wantErr: true,
		},
		{
			name:    "rest backend without base url",
			mutate:  func(c *Config) { c.Backend.REST.BaseURL = "" },
			wantErr: true,
		},
		{
			name:    "invalid qos",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "zero refresh interval",
			mutate:  func(c *Config) { c.Registry.RefreshInterval = 0 },
			wantErr: true,
		},
		{
			name:    "accept threshold above one",
			mutate:  func(c *Config) { c.Resolver.AcceptThreshold = 1.5 },
			wantErr: true,
		},
		{
			name: "suggest threshold above accept threshold",
			mutate: func(c *Config) {
				c.Resolver.AcceptThreshold = 0.6
				c.Resolver.SuggestThreshold = 0.7
			},
			wantErr: true,
		},
		{
			name: "inverted temperature bounds",
			mutate: func(c *Config) {
				c.Intent.TemperatureMin = 30
				c.Intent.TemperatureMax = 10
			},
			wantErr: true,
		},
		{
			name:    "invalid api port",
			mutate:  func(c *Config) { c.API.Port = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
