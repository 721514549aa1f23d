package settings

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-toolkit/internal/remap"
)

// Repository persists the current value of each setting.
type Repository interface {
	// Get returns the record for id, or ErrSettingNotFound.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns every stored record.
	List(ctx context.Context) ([]Record, error)

	// Save inserts or replaces the record for rec.ID.
	Save(ctx context.Context, rec Record) error

	// Delete removes the record for id, or returns ErrSettingNotFound.
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository on the setting_values table.
//
// Wire values are stored as the hex of their big-endian frame together
// with the kind name, so 64-bit extremes round-trip exactly.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a SQLite-backed settings repository.
//
// Parameters:
//   - db: Open SQLite connection with the setting_values migration applied
//
// Returns:
//   - *SQLiteRepository: Repository instance ready for use
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const recordColumns = "id, value, wire_kind, wire_value, source, updated_at"

// Get returns the stored record for id.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Record, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM setting_values WHERE id = ?", id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrSettingNotFound, id)
		}
		return nil, err
	}
	return rec, nil
}

// List returns every stored record ordered by ID.
func (r *SQLiteRepository) List(ctx context.Context) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+recordColumns+" FROM setting_values ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing setting values: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating setting values: %w", err)
	}
	return records, nil
}

// Save upserts rec.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - rec: Record to store; Wire must be a valid value
//
// Returns:
//   - error: nil on success, otherwise the underlying database error
func (r *SQLiteRepository) Save(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidValue)
	}
	if !rec.Wire.IsValid() {
		return fmt.Errorf("%w: %s: no wire value", ErrInvalidValue, rec.ID)
	}
	if rec.Source == "" {
		rec.Source = SourceAPI
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO setting_values (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   value = excluded.value,
		   wire_kind = excluded.wire_kind,
		   wire_value = excluded.wire_value,
		   source = excluded.source,
		   updated_at = excluded.updated_at`,
		rec.ID,
		rec.Value,
		rec.Wire.Kind().String(),
		hex.EncodeToString(rec.Wire.Bytes()),
		rec.Source,
		rec.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving setting %s: %w", rec.ID, err)
	}
	return nil
}

// Delete removes the record for id.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM setting_values WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting setting %s: %w", id, err)
	}
	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrSettingNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*Record, error) {
	var rec Record
	var kindName, wireHex, updatedAt string

	if err := s.Scan(&rec.ID, &rec.Value, &kindName, &wireHex, &rec.Source, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning setting value: %w", err)
	}

	kind, err := remap.ParseKind(kindName)
	if err != nil {
		return nil, fmt.Errorf("setting %s: stored kind: %w", rec.ID, err)
	}
	frame, err := hex.DecodeString(wireHex)
	if err != nil {
		return nil, fmt.Errorf("setting %s: stored wire value: %w", rec.ID, err)
	}
	if rec.Wire, err = remap.DecodeValue(kind, frame); err != nil {
		return nil, fmt.Errorf("setting %s: stored wire value: %w", rec.ID, err)
	}

	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt) //nolint:errcheck // format is controlled
	return &rec, nil
}
