// Package catalog records encode and decode runs in a local SQLite
// database so past operations can be listed and audited. The catalog is
// advisory history only; losing it never affects the ability to decode.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Op identifies the recorded operation.
type Op string

const (
	OpEncrypt Op = "encrypt"
	OpDecrypt Op = "decrypt"
)

// Run is one recorded encode or decode operation.
type Run struct {
	ID           string
	Op           Op
	OriginalName string
	OriginalSize int64
	Fragments    int
	Slicer       string
	BlockSize    int64
	KeyfilePath  string
	CreatedAt    string
}

// Store wraps the SQLite catalog database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the catalog database at the given path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("catalog: db path required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.applyPragmas(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) applyPragmas(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA synchronous=FULL"); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		return err
	}
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	applied_at TEXT NOT NULL
)`); err != nil {
		return err
	}

	var version int
	if err = tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version); err != nil {
		return err
	}
	if version < 1 {
		if err = applyV1(ctx, tx); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, "INSERT INTO schema_migrations(version, applied_at) VALUES(1, ?)", time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func applyV1(ctx context.Context, tx *sql.Tx) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			op TEXT NOT NULL,
			original_name TEXT NOT NULL,
			original_size INTEGER NOT NULL,
			fragment_count INTEGER NOT NULL,
			slicer TEXT NOT NULL,
			block_size INTEGER NOT NULL,
			keyfile_path TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS runs_created_at_idx ON runs(created_at)`,
	}
	for _, stmt := range ddl {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// RecordRun inserts one run. A missing ID or timestamp is filled in.
func (s *Store) RecordRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt == "" {
		run.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO runs(run_id, op, original_name, original_size, fragment_count, slicer, block_size, keyfile_path, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Op), run.OriginalName, run.OriginalSize, run.Fragments,
		run.Slicer, run.BlockSize, run.KeyfilePath, run.CreatedAt)
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

// Runs returns recorded runs, newest first, up to limit (0 = all).
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `
SELECT run_id, op, original_name, original_size, fragment_count, slicer, block_size, keyfile_path, created_at
FROM runs ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var runs []Run
	for rows.Next() {
		var r Run
		var op string
		if err := rows.Scan(&r.ID, &op, &r.OriginalName, &r.OriginalSize, &r.Fragments,
			&r.Slicer, &r.BlockSize, &r.KeyfilePath, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Op = Op(op)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
