package blueprint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

// Ensure both backends implement Store.
var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
)

// SQLiteStore implements Store on an embedded SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	opts storeOptions
}

// NewSQLiteStore opens (or creates) the SQLite database at path and, unless
// disabled with WithSchemaBootstrap, creates the schema. Use ":memory:" for a
// throwaway database.
func NewSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	o := buildOptions(opts)

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps ":memory:" shared.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q: %w", pragma, err)
		}
	}

	if o.bootstrapSchema {
		if _, err := db.ExecContext(ctx, SQLiteSchema); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &SQLiteStore{db: db, opts: o}, nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Create inserts the header and all points in one transaction.
func (s *SQLiteStore) Create(ctx context.Context, bp Blueprint) (Blueprint, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Blueprint{}, storageErr("beginning create transaction", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO blueprints (author, name, point_count) VALUES (?, ?, ?) ON CONFLICT (author, name) DO NOTHING",
		bp.Author, bp.Name, len(bp.Points),
	)
	if err != nil {
		return Blueprint{}, storageErr("inserting blueprint", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Blueprint{}, storageErr("inserting blueprint", err)
	}
	if affected == 0 {
		return Blueprint{}, ErrConflict
	}

	if len(bp.Points) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO points (author, blueprint_name, seq, x, y) VALUES (?, ?, ?, ?, ?)",
		)
		if err != nil {
			return Blueprint{}, storageErr("preparing point insert", err)
		}
		defer stmt.Close()

		for i, p := range bp.Points {
			if _, err := stmt.ExecContext(ctx, bp.Author, bp.Name, i, p.X, p.Y); err != nil {
				return Blueprint{}, storageErr("inserting point", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return Blueprint{}, storageErr("committing create", err)
	}

	return bp.Clone(), nil
}

// Get retrieves a blueprint by author and name.
func (s *SQLiteStore) Get(ctx context.Context, author, name string) (Blueprint, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT x, y FROM points WHERE author = ? AND blueprint_name = ? ORDER BY seq ASC",
		author, name,
	)
	if err != nil {
		return Blueprint{}, storageErr("querying points", err)
	}
	defer rows.Close()

	var points []Point
	for rows.Next() {
		var p Point
		if err := rows.Scan(&p.X, &p.Y); err != nil {
			return Blueprint{}, storageErr("scanning point row", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return Blueprint{}, storageErr("iterating point rows", err)
	}
	if len(points) == 0 {
		return Blueprint{}, ErrNotFound
	}

	return Blueprint{Author: author, Name: name, Points: points}, nil
}

// GetByAuthor retrieves every blueprint that belongs to author.
func (s *SQLiteStore) GetByAuthor(ctx context.Context, author string) ([]Blueprint, error) {
	keys, err := s.queryKeys(ctx, "SELECT author, name FROM blueprints WHERE author = ? ORDER BY name ASC", author)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, ErrNotFound
	}
	return assemble(ctx, keys, s.opts.bulkConcurrency, s.Get)
}

// GetAll retrieves every blueprint in the store.
func (s *SQLiteStore) GetAll(ctx context.Context) ([]Blueprint, error) {
	keys, err := s.queryKeys(ctx, "SELECT author, name FROM blueprints ORDER BY author ASC, name ASC")
	if err != nil {
		return nil, err
	}
	return assemble(ctx, keys, s.opts.bulkConcurrency, s.Get)
}

// queryKeys drains the result set before returning so the single connection
// is free for the per-key reads that follow.
func (s *SQLiteStore) queryKeys(ctx context.Context, query string, args ...any) ([]Key, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("querying blueprint keys", err)
	}
	defer rows.Close()

	var keys []Key
	for rows.Next() {
		var k Key
		if err := rows.Scan(&k.Author, &k.Name); err != nil {
			return nil, storageErr("scanning blueprint key", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterating blueprint keys", err)
	}
	return keys, nil
}

// AppendPoint reserves the next sequence number on the header row and inserts
// the point under it, both inside one write transaction.
func (s *SQLiteStore) AppendPoint(ctx context.Context, author, name string, p Point) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("beginning append transaction", err)
	}
	defer tx.Rollback()

	var seq int
	err = tx.QueryRowContext(ctx,
		"UPDATE blueprints SET point_count = point_count + 1 WHERE author = ? AND name = ? RETURNING point_count - 1",
		author, name,
	).Scan(&seq)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return storageErr("reserving point sequence", err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO points (author, blueprint_name, seq, x, y) VALUES (?, ?, ?, ?, ?)",
		author, name, seq, p.X, p.Y,
	); err != nil {
		return storageErr("inserting point", err)
	}

	if err := tx.Commit(); err != nil {
		return storageErr("committing append", err)
	}
	return nil
}

// Ping verifies the database handle is usable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
