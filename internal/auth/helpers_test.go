package auth

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-toolkit/migrations"
)

// testDB opens an in-memory database with the toolkit schema applied.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(database.Config{Path: database.MemoryPath})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Migrate(context.Background(), migrations.Source()); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	return db.DB
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createUser inserts a user with the given password and role.
func createUser(t *testing.T, repo UserRepository, username, password string, role Role) *User {
	t.Helper()

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	u := &User{Username: username, DisplayName: username, PasswordHash: hash, Role: role, IsActive: true}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("Create(%s) error = %v", username, err)
	}
	return u
}
