// Package database provides SQLite connectivity for the Gray Logic toolkit.
//
// It opens the database in WAL mode with a busy timeout and foreign keys
// enabled, and applies versioned SQL migrations read from any fs.FS. The
// settings value store and the user table live here.
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.Source()); err != nil {
//	    log.Fatal(err)
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with an
// optional .down.sql. Each migration runs in its own transaction.
package database
