package blueprint

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrNotFound is returned when no blueprint (or no blueprint for an author) exists.
var ErrNotFound = errors.New("blueprint not found")

// ErrConflict is returned when a blueprint with the same author and name already exists.
var ErrConflict = errors.New("blueprint already exists")

// ErrStorage marks failures of the underlying database. The driver error is wrapped alongside it.
var ErrStorage = errors.New("blueprint storage failure")

// Store persists blueprints as a header row plus ordered point rows and
// reassembles them on every read. Implementations must be safe for concurrent use.
type Store interface {
	// Create atomically records the header and every point of bp.
	Create(ctx context.Context, bp Blueprint) (Blueprint, error)
	// Get rebuilds a single blueprint from its point rows, ordered by sequence.
	Get(ctx context.Context, author, name string) (Blueprint, error)
	// GetByAuthor rebuilds every blueprint of an author. Blueprints without
	// points are left out of the result.
	GetByAuthor(ctx context.Context, author string) ([]Blueprint, error)
	// GetAll rebuilds every blueprint in the store. Blueprints without points
	// are left out of the result. An empty store yields an empty slice.
	GetAll(ctx context.Context) ([]Blueprint, error)
	// AppendPoint adds p after the last point of an existing blueprint.
	AppendPoint(ctx context.Context, author, name string, p Point) error
	// Ping verifies the backing database is reachable.
	Ping(ctx context.Context) error
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

// getFunc is the single-blueprint read used by assemble.
type getFunc func(ctx context.Context, author, name string) (Blueprint, error)

// assemble rebuilds each key with get, running at most limit reads at once.
// Keys that rebuild to ErrNotFound are skipped; any other error aborts the
// whole read. The result is sorted by key and never nil.
func assemble(ctx context.Context, keys []Key, limit int, get getFunc) ([]Blueprint, error) {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	var mu sync.Mutex
	result := make([]Blueprint, 0, len(keys))

	for _, k := range keys {
		g.Go(func() error {
			bp, err := get(ctx, k.Author, k.Name)
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			result = append(result, bp)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(result, func(a, b Blueprint) int {
		switch {
		case a.Key().less(b.Key()):
			return -1
		case b.Key().less(a.Key()):
			return 1
		default:
			return 0
		}
	})
	return result, nil
}

// defaultBulkConcurrency bounds concurrent reconstruction in GetByAuthor and GetAll.
const defaultBulkConcurrency = 8

type storeOptions struct {
	bulkConcurrency int
	bootstrapSchema bool
}

// Option configures a Store implementation.
type Option func(*storeOptions)

// WithBulkConcurrency sets how many blueprints a bulk read rebuilds in parallel.
// Values below one are ignored.
func WithBulkConcurrency(n int) Option {
	return func(o *storeOptions) {
		if n > 0 {
			o.bulkConcurrency = n
		}
	}
}

// WithSchemaBootstrap controls whether a store that owns its database creates
// the tables on open. It is on by default. PostgresStore never runs DDL itself.
func WithSchemaBootstrap(enabled bool) Option {
	return func(o *storeOptions) {
		o.bootstrapSchema = enabled
	}
}

func buildOptions(opts []Option) storeOptions {
	o := storeOptions{bulkConcurrency: defaultBulkConcurrency, bootstrapSchema: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
