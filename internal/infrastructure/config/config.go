package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Voxhaus Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Backend   BackendConfig   `yaml:"backend"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Registry  RegistryConfig  `yaml:"registry"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Resolver  ResolverConfig  `yaml:"resolver"`
	Dispatch  DispatchConfig  `yaml:"dispatch"`
	Intent    IntentConfig    `yaml:"intent"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Database  DatabaseConfig  `yaml:"database"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServiceConfig contains instance identification.
type ServiceConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// BackendConfig selects and configures the smart-home backend transport.
type BackendConfig struct {
	// Kind selects the transport implementation: "rest" or "mqtt".
	Kind string            `yaml:"kind"`
	REST RESTBackendConfig `yaml:"rest"`
}

// RESTBackendConfig contains settings for the HTTP REST backend transport.
type RESTBackendConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
	// Timeout is the per-request HTTP timeout in seconds.
	Timeout int `yaml:"timeout"`
}

// GetTimeout returns the per-request HTTP timeout as a Duration.
func (c RESTBackendConfig) GetTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// MQTTConfig contains MQTT broker connection settings.
// Used when backend.kind is "mqtt".
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// RegistryConfig contains device registry refresh settings.
type RegistryConfig struct {
	// RefreshInterval is how often the registry snapshot is rebuilt, in seconds.
	RefreshInterval int `yaml:"refresh_interval"`
	// RefreshTimeout bounds a single refresh (backend listing call), in seconds.
	RefreshTimeout int `yaml:"refresh_timeout"`
}

// DiscoveryConfig contains capability discovery settings.
type DiscoveryConfig struct {
	// Prefixes are the primitive-name prefix conventions to probe, in order.
	// Each entry is prepended verbatim to primitive names, so a non-empty
	// prefix must carry its own separator ("hass."). The empty string (bare
	// convention) should normally come first.
	Prefixes []string `yaml:"prefixes"`
	// ProbePrimitive is the low-risk primitive name used for probing.
	ProbePrimitive string `yaml:"probe_primitive"`
	// Timeout is the total probe budget in seconds.
	Timeout int `yaml:"timeout"`
}

// GetProbeTimeout returns the total probe budget as a Duration.
func (c DiscoveryConfig) GetProbeTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// ResolverConfig contains fuzzy name resolution thresholds.
//
// Scores are in [0,1]. A top candidate at or above AcceptThreshold is a
// confident match; between SuggestThreshold and AcceptThreshold it is offered
// back to the caller as a suggestion only.
type ResolverConfig struct {
	AcceptThreshold  float64 `yaml:"accept_threshold"`
	SuggestThreshold float64 `yaml:"suggest_threshold"`
}

// DispatchConfig contains dispatcher timeout and retry settings.
type DispatchConfig struct {
	// InvokeTimeout bounds a single transport invocation, in seconds.
	InvokeTimeout int `yaml:"invoke_timeout"`
	// RetryBackoff is the fixed delay before the single transient retry, in milliseconds.
	RetryBackoff int `yaml:"retry_backoff_ms"`
}

// GetInvokeTimeout returns the per-call transport timeout as a Duration.
func (c DispatchConfig) GetInvokeTimeout() time.Duration {
	return time.Duration(c.InvokeTimeout) * time.Second
}

// GetRetryBackoff returns the fixed retry backoff as a Duration.
func (c DispatchConfig) GetRetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoff) * time.Millisecond
}

// IntentConfig contains per-deployment value bounds that are not part of the
// static action table.
type IntentConfig struct {
	// TemperatureMin/Max bound set_temperature values in the unit the backend
	// expects. Both zero disables the check.
	TemperatureMin float64 `yaml:"temperature_min"`
	TemperatureMax float64 `yaml:"temperature_max"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// DatabaseConfig contains SQLite database settings for dispatch history.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings for dispatch telemetry.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: VOXHAUS_SECTION_KEY
// For example: VOXHAUS_BACKEND_URL, VOXHAUS_DATABASE_PATH
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			ID:   "voxhaus-001",
			Name: "Voxhaus",
		},
		Backend: BackendConfig{
			Kind: "rest",
			REST: RESTBackendConfig{
				BaseURL: "http://localhost:8123",
				Timeout: 10,
			},
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "voxhaus-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Registry: RegistryConfig{
			RefreshInterval: 300,
			RefreshTimeout:  15,
		},
		Discovery: DiscoveryConfig{
			Prefixes:       []string{"", "hass."},
			ProbePrimitive: "turn_on",
			Timeout:        5,
		},
		Resolver: ResolverConfig{
			AcceptThreshold:  0.80,
			SuggestThreshold: 0.50,
		},
		Dispatch: DispatchConfig{
			InvokeTimeout: 10,
			RetryBackoff:  500,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8090,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Database: DatabaseConfig{
			Path:        "./data/voxhaus.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: VOXHAUS_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Backend
	if v := os.Getenv("VOXHAUS_BACKEND_URL"); v != "" {
		cfg.Backend.REST.BaseURL = v
	}
	if v := os.Getenv("VOXHAUS_BACKEND_TOKEN"); v != "" {
		cfg.Backend.REST.Token = v
	}

	// MQTT
	if v := os.Getenv("VOXHAUS_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("VOXHAUS_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("VOXHAUS_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Database
	if v := os.Getenv("VOXHAUS_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// API
	if v := os.Getenv("VOXHAUS_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	// InfluxDB
	if v := os.Getenv("VOXHAUS_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Service.ID == "" {
		errs = append(errs, "service.id is required")
	}

	switch c.Backend.Kind {
	case "rest":
		if c.Backend.REST.BaseURL == "" {
			errs = append(errs, "backend.rest.base_url is required")
		}
	case "mqtt":
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required when backend.kind is mqtt")
		}
	default:
		errs = append(errs, "backend.kind must be \"rest\" or \"mqtt\"")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.Registry.RefreshInterval <= 0 {
		errs = append(errs, "registry.refresh_interval must be positive")
	}

	// Suggest must not exceed accept or the suggestion band is empty at best,
	// inverted at worst.
	if c.Resolver.AcceptThreshold <= 0 || c.Resolver.AcceptThreshold > 1 {
		errs = append(errs, "resolver.accept_threshold must be in (0,1]")
	}
	if c.Resolver.SuggestThreshold < 0 || c.Resolver.SuggestThreshold > c.Resolver.AcceptThreshold {
		errs = append(errs, "resolver.suggest_threshold must be in [0, accept_threshold]")
	}

	if c.Dispatch.InvokeTimeout <= 0 {
		errs = append(errs, "dispatch.invoke_timeout must be positive")
	}

	if c.Intent.TemperatureMin != 0 || c.Intent.TemperatureMax != 0 {
		if c.Intent.TemperatureMin >= c.Intent.TemperatureMax {
			errs = append(errs, "intent.temperature_min must be below intent.temperature_max")
		}
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetRefreshInterval returns the registry refresh interval as a Duration.
func (c *Config) GetRefreshInterval() time.Duration {
	return time.Duration(c.Registry.RefreshInterval) * time.Second
}

// GetRefreshTimeout returns the registry refresh timeout as a Duration.
func (c *Config) GetRefreshTimeout() time.Duration {
	return time.Duration(c.Registry.RefreshTimeout) * time.Second
}

// GetProbeTimeout returns the discovery probe budget as a Duration.
func (c *Config) GetProbeTimeout() time.Duration {
	return c.Discovery.GetProbeTimeout()
}

// GetInvokeTimeout returns the per-call transport timeout as a Duration.
func (c *Config) GetInvokeTimeout() time.Duration {
	return c.Dispatch.GetInvokeTimeout()
}

// GetRetryBackoff returns the fixed retry backoff as a Duration.
func (c *Config) GetRetryBackoff() time.Duration {
	return c.Dispatch.GetRetryBackoff()
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
