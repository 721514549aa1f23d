package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nerrad567/gray-logic-toolkit/internal/auth"
	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-toolkit/internal/registry"
	"github.com/nerrad567/gray-logic-toolkit/internal/settings"
	"github.com/nerrad567/gray-logic-toolkit/migrations"
)

const (
	testSecret   = "test-secret-key-at-least-32-characters-long"
	testPassword = "correct-horse-battery"
)

const testSchemaYAML = `
version: 3
settings:
  - id: dimmer.level
    name: Dimmer level
    unit: "%"
    min: 0
    max: 100
    wire: uint8
    default: 50
  - id: zone10.setpoint
    name: Zone 10 setpoint
    min: 5
    max: 35
    wire: int16
    default: 21
  - id: zone2.setpoint
    name: Zone 2 setpoint
    min: 5
    max: 35
    wire: int16
`

// testEnv bundles a server with the collaborators tests poke at directly.
type testEnv struct {
	srv      *Server
	handler  http.Handler
	settings *settings.Service
	users    auth.UserRepository
	registry *registry.Registry

	admin, operator, viewer *auth.User
}

func testLogger() *logging.Logger {
	return logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
}

// testServer creates a Server backed by an in-memory SQLite database with
// one user per role.
func testServer(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open(database.Config{Path: database.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(context.Background(), migrations.Source()))

	schema, err := settings.LoadSchemaYAML(strings.NewReader(testSchemaYAML))
	require.NoError(t, err)
	svc, err := settings.NewService(schema, settings.NewSQLiteRepository(db.DB), settings.Options{})
	require.NoError(t, err)

	users := auth.NewUserRepository(db.DB)

	reg := registry.New()
	require.NoError(t, reg.Add(svc))
	require.NoError(t, registry.AddAs[auth.UserRepository](reg, "", users))
	require.NoError(t, reg.Add(db))

	srv, err := New(Deps{
		Config: config.APIConfig{
			Host: "127.0.0.1",
			Port: 0,
			Timeouts: config.APITimeoutConfig{
				Read:  5,
				Write: 5,
				Idle:  5,
			},
		},
		WS: config.WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
			TicketTTL:      60,
		},
		Security: config.SecurityConfig{
			JWT: config.JWTConfig{
				Secret:         testSecret,
				AccessTokenTTL: 15,
			},
		},
		Logger:   testLogger(),
		Services: reg,
		Version:  "test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go srv.hub.Run(ctx)

	env := &testEnv{
		srv:      srv,
		handler:  srv.Handler(),
		settings: svc,
		users:    users,
		registry: reg,
	}
	env.admin = createUser(t, users, "admin", auth.RoleAdmin)
	env.operator = createUser(t, users, "operator", auth.RoleOperator)
	env.viewer = createUser(t, users, "viewer", auth.RoleViewer)
	return env
}

func createUser(t *testing.T, repo auth.UserRepository, username string, role auth.Role) *auth.User {
	t.Helper()

	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)
	u := &auth.User{
		Username:     username,
		DisplayName:  username,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func tokenFor(t *testing.T, u *auth.User) string {
	t.Helper()
	token, _, err := auth.GenerateAccessToken(u, []byte(testSecret), 15*time.Minute)
	require.NoError(t, err)
	return token
}

// do sends a request through the router. A nil user sends no token.
func (e *testEnv) do(t *testing.T, method, path string, user *auth.User, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, user))
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}
