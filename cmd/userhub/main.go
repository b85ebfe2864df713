// UserHub - user directory and authentication service
//
// This is the main entry point for the UserHub application. It wires
// together the SQLite user directory, the Redis token blacklist, the MQTT
// event publisher, and the HTTP API, then waits for a shutdown signal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nvoloshin/userhub/migrations"

	"github.com/nvoloshin/userhub/internal/api"
	"github.com/nvoloshin/userhub/internal/audit"
	"github.com/nvoloshin/userhub/internal/auth"
	"github.com/nvoloshin/userhub/internal/infrastructure/config"
	"github.com/nvoloshin/userhub/internal/infrastructure/database"
	"github.com/nvoloshin/userhub/internal/infrastructure/logging"
	"github.com/nvoloshin/userhub/internal/infrastructure/mqtt"
	"github.com/nvoloshin/userhub/internal/user"
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
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting UserHub",
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

	// Open database
	db, err := database.Open(database.Config{
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

	// Directory services
	userRepo := user.NewRepository(db.DB)
	roleRepo := user.NewRoleRepository(db.DB)
	users := user.NewService(userRepo, roleRepo, log)

	// First-boot admin seed
	if _, seedErr := auth.SeedAdmin(ctx, userRepo, roleRepo, log); seedErr != nil {
		return fmt.Errorf("seeding admin account: %w", seedErr)
	}

	// Token codec and Redis-backed revocation store
	codec, err := auth.NewCodec(cfg.Security.JWT)
	if err != nil {
		return fmt.Errorf("building token codec: %w", err)
	}

	blacklist := auth.NewBlacklist(cfg.Redis)
	defer func() {
		if closeErr := blacklist.Close(); closeErr != nil {
			log.Error("error closing redis connection", "error", closeErr)
		}
	}()
	if pingErr := blacklist.Ping(ctx); pingErr != nil {
		return fmt.Errorf("connecting to redis: %w", pingErr)
	}
	log.Info("redis connected", "addr", cfg.Redis.Addr())

	authSvc := auth.NewService(codec, blacklist, users, log)

	// Connect to MQTT broker (optional: registration events are dropped
	// when the broker is unreachable at startup)
	var mqttClient *mqtt.Client
	mqttClient, err = mqtt.Connect(cfg.MQTT)
	if err != nil {
		log.Warn("MQTT unavailable, registration events disabled", "error", err)
		mqttClient = nil
	} else {
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
		mqttClient.SetOnConnect(func() { log.Info("MQTT reconnected") })
		mqttClient.SetOnDisconnect(func(err error) { log.Warn("MQTT disconnected", "error", err) })
	}

	events := api.NewEventPublisher(mqttClient, byte(cfg.MQTT.QoS), log)

	// HTTP API
	server, err := api.New(api.Deps{
		Config:   cfg.API,
		Logger:   log,
		Auth:     authSvc,
		Users:    users,
		Audit:    audit.NewSQLiteRepository(db.DB),
		Events:   events,
		Database: db,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error shutting down API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses USERHUB_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("USERHUB_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
