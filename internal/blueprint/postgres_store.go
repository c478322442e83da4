package blueprint

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool *pgxpool.Pool
	opts storeOptions
}

// NewPostgresStore creates a new Store backed by the given connection pool.
func NewPostgresStore(pool *pgxpool.Pool, opts ...Option) *PostgresStore {
	return &PostgresStore{pool: pool, opts: buildOptions(opts)}
}

// pointColumns is the column order used when copying point rows.
var pointColumns = []string{"author", "blueprint_name", "seq", "x", "y"}

// Create inserts the header and all points in one transaction. A second
// create for the same key waits on the primary key and then inserts nothing.
func (s *PostgresStore) Create(ctx context.Context, bp Blueprint) (Blueprint, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Blueprint{}, storageErr("beginning create transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		INSERT INTO blueprints (author, name, point_count)
		VALUES ($1, $2, $3)
		ON CONFLICT (author, name) DO NOTHING`,
		bp.Author, bp.Name, len(bp.Points))
	if err != nil {
		return Blueprint{}, storageErr("inserting blueprint", err)
	}
	if tag.RowsAffected() == 0 {
		return Blueprint{}, ErrConflict
	}

	if len(bp.Points) > 0 {
		rows := make([][]any, len(bp.Points))
		for i, p := range bp.Points {
			rows[i] = []any{bp.Author, bp.Name, i, p.X, p.Y}
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"points"}, pointColumns, pgx.CopyFromRows(rows)); err != nil {
			return Blueprint{}, storageErr("copying points", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Blueprint{}, storageErr("committing create", err)
	}

	return bp.Clone(), nil
}

// Get retrieves a blueprint by author and name.
func (s *PostgresStore) Get(ctx context.Context, author, name string) (Blueprint, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT x, y FROM points
		WHERE author = $1 AND blueprint_name = $2
		ORDER BY seq ASC`, author, name)
	if err != nil {
		return Blueprint{}, storageErr("querying points", err)
	}

	points, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Point])
	if err != nil {
		return Blueprint{}, storageErr("scanning point rows", err)
	}
	if len(points) == 0 {
		return Blueprint{}, ErrNotFound
	}

	return Blueprint{Author: author, Name: name, Points: points}, nil
}

// GetByAuthor retrieves every blueprint that belongs to author.
func (s *PostgresStore) GetByAuthor(ctx context.Context, author string) ([]Blueprint, error) {
	rows, err := s.pool.Query(ctx, `SELECT name FROM blueprints WHERE author = $1 ORDER BY name ASC`, author)
	if err != nil {
		return nil, storageErr("querying blueprint names", err)
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, storageErr("scanning blueprint names", err)
	}
	if len(names) == 0 {
		return nil, ErrNotFound
	}

	keys := make([]Key, len(names))
	for i, name := range names {
		keys[i] = Key{Author: author, Name: name}
	}
	return assemble(ctx, keys, s.opts.bulkConcurrency, s.Get)
}

// GetAll retrieves every blueprint in the store.
func (s *PostgresStore) GetAll(ctx context.Context) ([]Blueprint, error) {
	rows, err := s.pool.Query(ctx, `SELECT author, name FROM blueprints ORDER BY author ASC, name ASC`)
	if err != nil {
		return nil, storageErr("querying blueprint keys", err)
	}

	keys, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Key])
	if err != nil {
		return nil, storageErr("scanning blueprint keys", err)
	}
	return assemble(ctx, keys, s.opts.bulkConcurrency, s.Get)
}

// AppendPoint reserves the next sequence number on the header row and inserts
// the point under it. The row lock held by the UPDATE orders concurrent appends
// to the same blueprint by commit.
func (s *PostgresStore) AppendPoint(ctx context.Context, author, name string, p Point) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return storageErr("beginning append transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var seq int
	err = tx.QueryRow(ctx, `
		UPDATE blueprints SET point_count = point_count + 1
		WHERE author = $1 AND name = $2
		RETURNING point_count - 1`, author, name).Scan(&seq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return storageErr("reserving point sequence", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO points (author, blueprint_name, seq, x, y)
		VALUES ($1, $2, $3, $4, $5)`, author, name, seq, p.X, p.Y)
	if err != nil {
		return storageErr("inserting point", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return storageErr("committing append", err)
	}
	return nil
}

// Ping verifies the pool can reach the database.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
