// Gray Logic Toolkit - settings, remapping and service plumbing for
// building automation.
//
// The serve command runs the toolkit daemon: it loads the settings schema,
// restores persisted values, wires MQTT and InfluxDB when enabled, and
// exposes the HTTP/WebSocket API. The remaining commands are offline
// helpers that need no running services.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-toolkit/internal/api"
	"github.com/nerrad567/gray-logic-toolkit/internal/auth"
	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/tracing"
	"github.com/nerrad567/gray-logic-toolkit/internal/registry"
	"github.com/nerrad567/gray-logic-toolkit/internal/settings"
	"github.com/nerrad567/gray-logic-toolkit/migrations"
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
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Running the root command without a
// subcommand starts the daemon.
func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "gltoolkit",
		Short:         "Gray Logic settings and remapping toolkit",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), resolveConfigPath(cfgPath))
		},
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "",
		"config file (default: $GRAYLOGIC_CONFIG or "+defaultConfigPath+")")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the toolkit daemon",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return run(cmd.Context(), resolveConfigPath(cfgPath))
			},
		},
		newRemapCmd(),
		newSettingsCmd(&cfgPath),
		newVersionCmd(),
	)
	return root
}

// run is the daemon, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - configPath: YAML configuration file to load
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, configPath string) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Gray Logic Toolkit",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	tp, err := tracing.NewProvider(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("starting tracing: %w", err)
	}
	defer func() {
		// ctx is already cancelled at shutdown
		if shutdownErr := tp.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
			log.Error("error flushing traces", "error", shutdownErr)
		}
	}()
	log.Info("tracing configured", "enabled", tp.Enabled(), "exporter", cfg.Tracing.Exporter)

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

	if migrateErr := db.Migrate(ctx, migrations.Source()); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	users := auth.NewUserRepository(db.DB)
	if _, seedErr := auth.SeedAdmin(ctx, users, cfg.Security.Bootstrap.Username,
		cfg.Security.Bootstrap.Password, log.Logger); seedErr != nil {
		return fmt.Errorf("seeding admin user: %w", seedErr)
	}

	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log.Component("mqtt"))
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB)
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
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	svc, err := startSettings(ctx, cfg, db, mqttClient, influxClient, tp, log)
	if err != nil {
		return err
	}

	services, err := buildRegistry(svc, users, db, mqttClient, influxClient, log)
	if err != nil {
		return err
	}

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	server, err := api.New(api.Deps{
		Config:     cfg.API,
		WS:         cfg.WebSocket,
		Security:   cfg.Security,
		Logger:     log.Component("api"),
		Services:   services,
		Tracer:     tp.Tracer(),
		Version:    version,
		SchemaPath: cfg.Settings.SchemaPath,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal",
		"api", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
		"settings", len(svc.List()),
	)

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order: API server, schema
	// watcher, InfluxDB, MQTT, database, tracing.

	log.Info("Gray Logic Toolkit stopped")
	return nil
}

// startSettings loads the schema, restores persisted values and attaches
// the optional MQTT, InfluxDB and file-watch integrations.
//
// The schema watcher is stopped when ctx is cancelled.
func startSettings(
	ctx context.Context,
	cfg *config.Config,
	db *database.DB,
	mqttClient *mqtt.Client,
	influxClient *influxdb.Client,
	tp *tracing.Provider,
	log *logging.Logger,
) (*settings.Service, error) {
	schema, err := settings.LoadSchemaFile(cfg.Settings.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("loading settings schema: %w", err)
	}

	opts := settings.Options{
		Tracer: tp.Tracer(),
		Logger: log.Component("settings"),
		QoS:    byte(cfg.MQTT.QoS), //nolint:gosec // validated to 0-2 by config
	}
	// Assigned only when non-nil so the interfaces stay nil otherwise.
	if mqttClient != nil && cfg.Settings.Publish {
		opts.Publisher = mqttClient
	}
	if influxClient != nil && cfg.Settings.Record {
		opts.Recorder = influxClient
	}

	svc, err := settings.NewService(schema, settings.NewSQLiteRepository(db.DB), opts)
	if err != nil {
		return nil, fmt.Errorf("creating settings service: %w", err)
	}
	if err := svc.Load(ctx); err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	log.Info("settings loaded",
		"path", cfg.Settings.SchemaPath,
		"schema_version", schema.Version,
		"count", len(schema.Settings),
	)

	if mqttClient != nil {
		if err := svc.Subscribe(mqttClient); err != nil {
			return nil, err
		}
		log.Info("listening for setting commands", "topic", mqtt.Topics{}.AllSettingCommands())
	}

	if cfg.Settings.Watch {
		watcher, err := svc.WatchSchema(ctx, cfg.Settings.SchemaPath, cfg.GetWatchDebounce())
		if err != nil {
			return nil, fmt.Errorf("watching settings schema: %w", err)
		}
		go func() {
			<-ctx.Done()
			if stopErr := watcher.Stop(); stopErr != nil {
				log.Error("error stopping schema watcher", "error", stopErr)
			}
		}()
		log.Info("watching settings schema", "debounce", cfg.GetWatchDebounce())
	}

	return svc, nil
}

// buildRegistry collects the running services for the API server and
// installs the result as the process-wide registry.
func buildRegistry(
	svc *settings.Service,
	users auth.UserRepository,
	db *database.DB,
	mqttClient *mqtt.Client,
	influxClient *influxdb.Client,
	log *logging.Logger,
) (*registry.Registry, error) {
	reg := registry.New()
	reg.SetLogger(log.Component("registry"))

	if err := reg.Add(svc); err != nil {
		return nil, fmt.Errorf("registering settings service: %w", err)
	}
	if err := registry.AddAs[auth.UserRepository](reg, "", users); err != nil {
		return nil, fmt.Errorf("registering user repository: %w", err)
	}
	if err := reg.Add(db); err != nil {
		return nil, fmt.Errorf("registering database: %w", err)
	}
	if mqttClient != nil {
		if err := reg.Add(mqttClient); err != nil {
			return nil, fmt.Errorf("registering MQTT client: %w", err)
		}
	}
	if influxClient != nil {
		if err := reg.Add(influxClient); err != nil {
			return nil, fmt.Errorf("registering InfluxDB client: %w", err)
		}
	}

	if !registry.SetDefault(reg) {
		log.Warn("process-wide registry already initialised")
	}
	log.Info("service registry built", "services", reg.Len())
	return reg, nil
}

// resolveConfigPath returns flagValue when set, otherwise getConfigPath.
func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return getConfigPath()
}

// getConfigPath returns the configuration file path.
// Uses GRAYLOGIC_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYLOGIC_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
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

	return nil
}
