// Voxhaus Core - Voice Command Resolution for Smart Homes
//
// This is the main entry point for the Voxhaus Core service. Voxhaus sits
// between a speech front-end and a smart-home backend, turning transcribed
// commands ("turn on the office lamp") into concrete backend invocations:
//   - Fuzzy device name resolution against a live registry snapshot
//   - Domain-aware intent mapping with value validation
//   - Capability discovery of the backend's primitive naming convention
//   - Bounded retry with registry self-heal on stale device IDs
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/voxhaus/voxhaus-core/internal/api"
	"github.com/voxhaus/voxhaus-core/internal/audit"
	"github.com/voxhaus/voxhaus-core/internal/discovery"
	"github.com/voxhaus/voxhaus-core/internal/dispatch"
	"github.com/voxhaus/voxhaus-core/internal/infrastructure/config"
	"github.com/voxhaus/voxhaus-core/internal/infrastructure/database"
	"github.com/voxhaus/voxhaus-core/internal/infrastructure/influxdb"
	"github.com/voxhaus/voxhaus-core/internal/infrastructure/logging"
	"github.com/voxhaus/voxhaus-core/internal/infrastructure/mqtt"
	"github.com/voxhaus/voxhaus-core/internal/intent"
	"github.com/voxhaus/voxhaus-core/internal/registry"
	"github.com/voxhaus/voxhaus-core/internal/resolve"
	"github.com/voxhaus/voxhaus-core/internal/transport"
	"github.com/voxhaus/voxhaus-core/internal/transport/mqttbridge"
	"github.com/voxhaus/voxhaus-core/internal/transport/resthome"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Voxhaus Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Build the backend transport
	backend, mqttClient, err := buildBackend(cfg, log)
	if err != nil {
		return fmt.Errorf("building backend transport: %w", err)
	}
	if mqttClient != nil {
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
	}
	log.Info("backend transport ready", "kind", cfg.Backend.Kind)

	// Capability discovery: probe the backend's primitive naming convention.
	// On a reconnecting transport, a reconnect invalidates the cached profile.
	discoverer := discovery.New(backend, cfg.Discovery)
	discoverer.SetLogger(log)
	if reconnectable, ok := backend.(transport.Reconnectable); ok {
		reconnectable.OnReconnect(func() {
			log.Info("backend reconnected, invalidating capability profile")
			discoverer.Invalidate()
		})
	}
	profile := discoverer.Profile(ctx)
	log.Info("capability profile established",
		"prefix", profile.PrimitivePrefix,
		"confidence", profile.Confidence,
	)

	// Device registry: initial snapshot, then periodic background refresh
	store := registry.NewStore(backend, cfg.GetRefreshTimeout())
	store.SetLogger(log)
	snap, err := store.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("initial registry refresh: %w", err)
	}
	log.Info("device registry initialised", "devices", snap.Len(), "generation", snap.Generation)
	go store.Run(ctx, cfg.GetRefreshInterval())

	// Resolution and intent mapping
	resolver := resolve.New(cfg.Resolver.AcceptThreshold, cfg.Resolver.SuggestThreshold)
	table := intent.NewTable(cfg.Intent)

	// Dispatcher
	dispatcher := dispatch.New(store, resolver, table, discoverer, backend, cfg.Dispatch)
	dispatcher.SetLogger(log)

	// Dispatch history recorder
	historyRepo := audit.NewSQLiteRepository(db.DB)
	recorder := audit.NewRecorder(historyRepo)
	recorder.SetLogger(log)
	dispatcher.SetRecorder(recorder)

	// Dispatch telemetry (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		dispatcher.SetMetrics(influxClient)
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// API server with WebSocket hub; the hub doubles as the dispatcher's
	// notifier so clients see dispatch lifecycle events in real time.
	server, err := api.New(api.Deps{
		Config:     cfg.API,
		WS:         cfg.WebSocket,
		Logger:     log,
		Store:      store,
		Dispatcher: dispatcher,
		Discoverer: discoverer,
		History:    historyRepo,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	// Dispatch lifecycle events go to WebSocket clients, and over the broker
	// too when the MQTT backend is active.
	var notifier dispatch.Notifier = server.Hub()
	if mqttClient != nil {
		events := mqtt.NewEventPublisher(mqttClient, byte(cfg.MQTT.QoS))
		events.SetLogger(log)
		notifier = dispatch.Notifiers{server.Hub(), events}
	}
	dispatcher.SetNotifier(notifier)

	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient, server); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT (if used)
	// 4. Database

	log.Info("Voxhaus Core stopped")
	return nil
}

// buildBackend constructs the configured backend transport. For the MQTT
// backend the broker client is returned as well so run() can close it.
func buildBackend(cfg *config.Config, log *logging.Logger) (transport.Transport, *mqtt.Client, error) {
	switch cfg.Backend.Kind {
	case "rest":
		return resthome.New(cfg.Backend.REST), nil, nil

	case "mqtt":
		client, err := mqtt.Connect(cfg.MQTT)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to MQTT: %w", err)
		}
		client.SetLogger(log)
		client.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		bridge, err := mqttbridge.New(client, byte(cfg.MQTT.QoS))
		if err != nil {
			closeErr := client.Close()
			if closeErr != nil {
				log.Error("error closing MQTT after bridge failure", "error", closeErr)
			}
			return nil, nil, fmt.Errorf("creating MQTT bridge: %w", err)
		}
		return bridge, client, nil

	default:
		return nil, nil, fmt.Errorf("unknown backend kind %q", cfg.Backend.Kind)
	}
}

// getConfigPath returns the configuration file path.
// Uses VOXHAUS_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("VOXHAUS_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// Optional components (MQTT, InfluxDB) are skipped when nil.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client, server *api.Server) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	if err := server.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	return nil
}
