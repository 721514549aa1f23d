package database

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

func testSource() Source {
	return Source{
		Dir: "sql",
		FS: fstest.MapFS{
			"sql/20260118_120000_create_widgets.up.sql": {Data: []byte(
				"CREATE TABLE widgets (id TEXT PRIMARY KEY, level REAL NOT NULL);")},
			"sql/20260118_120000_create_widgets.down.sql": {Data: []byte("DROP TABLE widgets;")},
			"sql/20260119_090000_add_label.up.sql": {Data: []byte(
				"ALTER TABLE widgets ADD COLUMN label TEXT;")},
			"sql/20260119_090000_add_label.down.sql": {Data: []byte(
				"CREATE TABLE widgets_tmp (id TEXT PRIMARY KEY, level REAL NOT NULL);" +
					"INSERT INTO widgets_tmp SELECT id, level FROM widgets;" +
					"DROP TABLE widgets;" +
					"ALTER TABLE widgets_tmp RENAME TO widgets;")},
			"sql/README.md": {Data: []byte("not a migration")},
		},
	}
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name,
	).Scan(&n)
	if err != nil {
		t.Fatalf("querying sqlite_master: %v", err)
	}
	return n == 1
}

// TestMigrate verifies migration application.
func TestMigrate(t *testing.T) {
	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // Test cleanup

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Migrate(ctx, testSource()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	if !tableExists(t, db, "widgets") {
		t.Fatal("table widgets not created")
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO widgets (id, level, label) VALUES ('a', 1, 'x')"); err != nil {
		t.Fatalf("second migration not applied: %v", err)
	}

	applied, pending, err := db.MigrationStatus(ctx, testSource())
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 2 || len(pending) != 0 {
		t.Errorf("applied=%d pending=%d, want 2/0", len(applied), len(pending))
	}
	if applied[0].Version != "20260118_120000" || applied[0].AppliedAt.IsZero() {
		t.Errorf("applied[0] = %+v", applied[0])
	}

	// Running again should be idempotent
	if err := db.Migrate(ctx, testSource()); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}

// TestMigrateDown verifies migration rollback.
func TestMigrateDown(t *testing.T) {
	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // Test cleanup

	ctx := context.Background()
	if err := db.Migrate(ctx, testSource()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	if err := db.MigrateDown(ctx, testSource()); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}
	_, pending, err := db.MigrationStatus(ctx, testSource())
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(pending) != 1 || pending[0].Name != "add_label" {
		t.Errorf("pending = %+v, want add_label", pending)
	}

	if err := db.MigrateDown(ctx, testSource()); err != nil {
		t.Fatalf("second MigrateDown() error = %v", err)
	}
	if tableExists(t, db, "widgets") {
		t.Error("widgets still exists after full rollback")
	}

	// Nothing left to roll back.
	if err := db.MigrateDown(ctx, testSource()); err != nil {
		t.Errorf("MigrateDown() on empty history error = %v", err)
	}
}

// TestMigrateFailureKeepsEarlierMigrations verifies per-migration atomicity.
func TestMigrateFailureKeepsEarlierMigrations(t *testing.T) {
	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // Test cleanup

	src := Source{FS: fstest.MapFS{
		"20260101_000000_good.up.sql": {Data: []byte("CREATE TABLE good (id INTEGER);")},
		"20260102_000000_bad.up.sql":  {Data: []byte("CREATE TABLE broken (;")},
	}}

	err := db.Migrate(context.Background(), src)
	if err == nil || !strings.Contains(err.Error(), "20260102_000000") {
		t.Fatalf("Migrate() error = %v, want failure naming the bad migration", err)
	}
	if !tableExists(t, db, "good") {
		t.Error("earlier migration was rolled back")
	}
}

// TestMigrateNoMigrations verifies an empty source is a no-op.
func TestMigrateNoMigrations(t *testing.T) {
	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // Test cleanup

	if err := db.Migrate(context.Background(), Source{}); err != nil {
		t.Fatalf("Migrate() with nil FS error = %v", err)
	}
}

// TestParseMigrationFilename verifies filename parsing.
func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		wantVersion string
		wantIsUp    bool
		wantOk      bool
	}{
		{
			name:        "valid up migration",
			filename:    "20260118_120000_create_users.up.sql",
			wantVersion: "20260118_120000",
			wantIsUp:    true,
			wantOk:      true,
		},
		{
			name:        "valid down migration",
			filename:    "20260118_120000_create_users.down.sql",
			wantVersion: "20260118_120000",
			wantIsUp:    false,
			wantOk:      true,
		},
		{
			name:     "not sql file",
			filename: "readme.txt",
			wantOk:   false,
		},
		{
			name:     "missing direction",
			filename: "20260118_120000_create_users.sql",
			wantOk:   false,
		},
		{
			name:     "invalid format",
			filename: "invalid.up.sql",
			wantOk:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, isUp, ok := parseMigrationFilename(tt.filename)
			if ok != tt.wantOk {
				t.Errorf("ok = %v, want %v", ok, tt.wantOk)
			}
			if ok {
				if version != tt.wantVersion {
					t.Errorf("version = %v, want %v", version, tt.wantVersion)
				}
				if isUp != tt.wantIsUp {
					t.Errorf("isUp = %v, want %v", isUp, tt.wantIsUp)
				}
			}
		})
	}
}

// TestExtractMigrationName verifies name extraction.
func TestExtractMigrationName(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"20260118_120000_create_users.up.sql", "create_users"},
		{"20260118_120000_initial_schema.down.sql", "initial_schema"},
		{"20260118_120000_add_email_to_users.up.sql", "add_email_to_users"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got := extractMigrationName(tt.filename)
			if got != tt.want {
				t.Errorf("extractMigrationName(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}
