package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/nerrad567/gray-logic-toolkit/internal/auth"
	"github.com/nerrad567/gray-logic-toolkit/internal/eventargs"
	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-toolkit/internal/registry"
	"github.com/nerrad567/gray-logic-toolkit/internal/settings"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
//
// Services must contain a *settings.Service and an auth.UserRepository.
// A *mqtt.Client, *influxdb.Client and *database.DB are used for health
// and metrics when present.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Security config.SecurityConfig
	Logger   *logging.Logger
	Services *registry.Registry
	Tracer   trace.Tracer
	Version  string

	// SchemaPath is the settings schema file reloaded by POST
	// /settings/reload. Reload is unavailable when empty.
	SchemaPath string
}

// Server is the HTTP API server for the toolkit.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg        config.APIConfig
	wsCfg      config.WebSocketConfig
	secCfg     config.SecurityConfig
	logger     *logging.Logger
	services   *registry.Registry
	settings   *settings.Service
	users      auth.UserRepository
	mqtt       *mqtt.Client
	influx     *influxdb.Client
	db         *database.DB
	tracer     trace.Tracer
	version    string
	schemaPath string
	startTime  time.Time

	server      *http.Server
	hub         *Hub
	tickets     *ticketStore
	cancel      context.CancelFunc
	unsubscribe []func()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called, but Handler() is
// usable immediately.
//
// Parameters:
//   - deps: Required dependencies (config, logger, service registry)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Services == nil {
		return nil, fmt.Errorf("service registry is required")
	}

	settingsSvc, err := registry.Get[*settings.Service](deps.Services)
	if err != nil {
		return nil, fmt.Errorf("settings service: %w", err)
	}
	users, err := registry.Get[auth.UserRepository](deps.Services)
	if err != nil {
		return nil, fmt.Errorf("user repository: %w", err)
	}

	s := &Server{
		cfg:        deps.Config,
		wsCfg:      deps.WS,
		secCfg:     deps.Security,
		logger:     deps.Logger.Component("api"),
		services:   deps.Services,
		settings:   settingsSvc,
		users:      users,
		tracer:     deps.Tracer,
		version:    deps.Version,
		schemaPath: deps.SchemaPath,
		startTime:  time.Now(),
	}
	// Optional collaborators.
	s.mqtt, _ = registry.TryGet[*mqtt.Client](deps.Services)
	s.influx, _ = registry.TryGet[*influxdb.Client](deps.Services)
	s.db, _ = registry.TryGet[*database.DB](deps.Services)

	if s.tracer == nil {
		s.tracer = noop.NewTracerProvider().Tracer("")
	}

	s.wsCfg = withWSDefaults(s.wsCfg)
	s.tickets = newTicketStore(s.ticketTTL())
	s.hub = NewHub(s.wsCfg, s.logger, s.settings.List)
	s.unsubscribe = []func(){
		s.settings.Changed().Subscribe(s.hub.BroadcastChange),
		s.settings.Reloaded().Subscribe(func(e eventargs.Args[*settings.Schema]) {
			s.hub.BroadcastReload(e.Data)
		}),
	}

	return s, nil
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub and launches the HTTP listener in a
// background goroutine. The server can be stopped with Close().
//
// Parameters:
//   - ctx: Context for cancellation (not used for listener lifetime)
//
// Returns:
//   - error: If the server fails to start (port in use, etc.)
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.hub.Run(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	for _, unsubscribe := range s.unsubscribe {
		unsubscribe()
	}
	s.unsubscribe = nil
	if s.server == nil {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}

func (s *Server) ticketTTL() time.Duration {
	if s.wsCfg.TicketTTL <= 0 {
		return defaultTicketTTL
	}
	return time.Duration(s.wsCfg.TicketTTL) * time.Second
}

// withWSDefaults fills unset WebSocket timings so the pumps never run with
// a zero ticker interval.
func withWSDefaults(cfg config.WebSocketConfig) config.WebSocketConfig {
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 8192
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = 10
	}
	return cfg
}

func (s *Server) accessTokenTTL() time.Duration {
	return time.Duration(s.secCfg.JWT.AccessTokenTTL) * time.Minute
}
