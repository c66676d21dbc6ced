// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Snapfind Contributors

package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"log/slog"
	"math"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/snapfind-dev/snapfind/internal/catalog"
	snaperr "github.com/snapfind-dev/snapfind/pkg/errors"
)

func init() {
	sqlite_vec.Auto()
}

// Compile-time interface check.
var _ catalog.Store = (*Store)(nil)

// Store implements catalog.Store backed by SQLite. Embeddings are stored as
// little-endian float32 blobs, the same layout sqlite-vec's SQL functions
// operate on.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New opens (or creates) a SQLite database at dbPath and initialises the
// images table.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, snaperr.Errorf(snaperr.CodeCatalogOpenFailure, "opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, snaperr.Errorf(snaperr.CodeCatalogOpenFailure, "pinging sqlite db: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, snaperr.Errorf(snaperr.CodeCatalogOpenFailure, "migrating images table: %w", err)
	}

	return &Store{db: db, logger: slog.Default()}, nil
}

func migrate(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS images (
	path       TEXT PRIMARY KEY,
	caption    TEXT NOT NULL,
	created_at TEXT NOT NULL,
	embedding  BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_images_created ON images(created_at);
`
	_, err := db.Exec(ddl)
	return err
}

// Exists reports whether an entry for path is already cataloged.
func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	const q = `SELECT 1 FROM images WHERE path = ? LIMIT 1`

	var one int
	err := s.db.QueryRowContext(ctx, q, path).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, snaperr.Wrap(err, snaperr.CodeCatalogDatabaseFailure, "checking entry", snaperr.FieldPath(path))
	}
	return true, nil
}

// Insert adds an entry; a path that is already present is left untouched.
// Path uniqueness is enforced here, in one statement, so concurrent inserts
// of the same path cannot both land.
func (s *Store) Insert(ctx context.Context, entry catalog.Entry) error {
	blob, err := sqlite_vec.SerializeFloat32(entry.Embedding)
	if err != nil {
		return snaperr.Wrap(err, snaperr.CodeCatalogDatabaseFailure, "serializing embedding", snaperr.FieldPath(entry.Path))
	}

	const q = `INSERT INTO images (path, caption, created_at, embedding)
VALUES (?, ?, ?, ?)
ON CONFLICT(path) DO NOTHING`

	_, err = s.db.ExecContext(ctx, q, entry.Path, entry.Caption, formatTime(entry.CreatedAt), blob)
	if err != nil {
		return snaperr.Wrap(err, snaperr.CodeCatalogDatabaseFailure, "inserting entry", snaperr.FieldPath(entry.Path))
	}
	return nil
}

// Query returns entries whose created_at falls within [from, to] inclusive.
// Zero bounds leave that side open. Rows with corrupt timestamps or
// embeddings are logged and skipped rather than failing the scan.
func (s *Store) Query(ctx context.Context, from, to time.Time) ([]catalog.Entry, error) {
	q := `SELECT path, caption, created_at, embedding FROM images`
	var args []any

	switch {
	case !from.IsZero() && !to.IsZero():
		q += ` WHERE created_at >= ? AND created_at <= ?`
		args = append(args, formatTime(from), formatTime(to))
	case !from.IsZero():
		q += ` WHERE created_at >= ?`
		args = append(args, formatTime(from))
	case !to.IsZero():
		q += ` WHERE created_at <= ?`
		args = append(args, formatTime(to))
	}
	q += ` ORDER BY path`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, snaperr.Errorf(snaperr.CodeCatalogDatabaseFailure, "querying entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []catalog.Entry
	for rows.Next() {
		var (
			entry   catalog.Entry
			created string
			blob    []byte
		)
		if err := rows.Scan(&entry.Path, &entry.Caption, &created, &blob); err != nil {
			return nil, snaperr.Errorf(snaperr.CodeCatalogDatabaseFailure, "scanning entry: %w", err)
		}

		createdAt, err := parseTime(created)
		if err != nil {
			s.logger.Warn("skipping entry with corrupt timestamp",
				slog.String("path", entry.Path),
				slog.String("created_at", created),
			)
			continue
		}
		entry.CreatedAt = createdAt

		embedding, err := deserializeFloat32(blob)
		if err != nil {
			s.logger.Warn("skipping entry with corrupt embedding",
				slog.String("path", entry.Path),
				slog.String("error", err.Error()),
			)
			continue
		}
		entry.Embedding = embedding

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, snaperr.Errorf(snaperr.CodeCatalogDatabaseFailure, "iterating entries: %w", err)
	}

	return entries, nil
}

// Count returns the number of cataloged entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM images`).Scan(&n); err != nil {
		return 0, snaperr.Errorf(snaperr.CodeCatalogDatabaseFailure, "counting entries: %w", err)
	}
	return n, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Timestamps are stored as fixed-width UTC RFC3339 text so the range
// filter's lexicographic comparison matches chronological order.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// deserializeFloat32 is the inverse of sqlite-vec's float32 blob layout.
func deserializeFloat32(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, snaperr.Errorf(snaperr.CodeCatalogEntryCorrupt, "embedding blob length %d is not a multiple of 4", len(blob))
	}

	vec := make([]float32, len(blob)/4)
	for i := range vec {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		vec[i] = math.Float32frombits(bits)
	}
	return vec, nil
}
