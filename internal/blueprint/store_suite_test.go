package blueprint_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arsw/blueprints/internal/blueprint"
)

// storeFactory returns an empty store for a single subtest.
type storeFactory func(t *testing.T) blueprint.Store

// sequenceReader reads the raw seq column of a blueprint's points, in order,
// and the point_count of its header straight from the backing database.
type sequenceReader func(t *testing.T, store blueprint.Store, author, name string) (seqs []int, pointCount int)

func pts(coords ...int) []blueprint.Point {
	out := make([]blueprint.Point, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		out = append(out, blueprint.Point{X: coords[i], Y: coords[i+1]})
	}
	return out
}

func newBP(author, name string, points ...blueprint.Point) blueprint.Blueprint {
	return blueprint.Blueprint{Author: author, Name: name, Points: points}
}

// runStoreSuite checks the behavior every Store implementation must share.
func runStoreSuite(t *testing.T, newStore storeFactory, readSequences sequenceReader) {
	t.Run("Create_RoundTrip", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		in := newBP("ana", "house", pts(0, 0, 10, 0, 10, 10, 0, 10)...)
		created, err := store.Create(ctx, in)
		require.NoError(t, err)
		assert.True(t, in.Equal(created))

		got, err := store.Get(ctx, "ana", "house")
		require.NoError(t, err)
		assert.True(t, in.Equal(got), "got %+v", got)
		assert.Equal(t, in.Points, got.Points)
	})

	t.Run("Create_PreservesRepeatedPointsAndOrder", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		in := newBP("ana", "zigzag", pts(5, 5, 1, 1, 5, 5, 5, 5, -3, 7)...)
		_, err := store.Create(ctx, in)
		require.NoError(t, err)

		got, err := store.Get(ctx, "ana", "zigzag")
		require.NoError(t, err)
		assert.Equal(t, in.Points, got.Points)
	})

	t.Run("Create_ReturnedPointsDoNotAliasInput", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		in := newBP("ana", "alias", pts(1, 2)...)
		created, err := store.Create(ctx, in)
		require.NoError(t, err)

		created.Points[0] = blueprint.Point{X: 99, Y: 99}
		assert.Equal(t, blueprint.Point{X: 1, Y: 2}, in.Points[0])
	})

	t.Run("Create_DuplicateKeyConflicts", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.Create(ctx, newBP("ana", "house", pts(0, 0)...))
		require.NoError(t, err)

		_, err = store.Create(ctx, newBP("ana", "house", pts(7, 7, 8, 8)...))
		assert.ErrorIs(t, err, blueprint.ErrConflict)

		got, err := store.Get(ctx, "ana", "house")
		require.NoError(t, err)
		assert.Equal(t, pts(0, 0), got.Points, "losing create must not touch the stored points")
	})

	t.Run("Create_SameNameDifferentAuthors", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.Create(ctx, newBP("ana", "house", pts(0, 0)...))
		require.NoError(t, err)
		_, err = store.Create(ctx, newBP("bob", "house", pts(1, 1)...))
		require.NoError(t, err)

		got, err := store.Get(ctx, "bob", "house")
		require.NoError(t, err)
		assert.Equal(t, pts(1, 1), got.Points)
	})

	t.Run("Create_ZeroPointsIsNotFoundOnRead", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.Create(ctx, newBP("ana", "empty"))
		require.NoError(t, err)

		_, err = store.Get(ctx, "ana", "empty")
		assert.ErrorIs(t, err, blueprint.ErrNotFound)

		_, err = store.Create(ctx, newBP("ana", "empty", pts(1, 1)...))
		assert.ErrorIs(t, err, blueprint.ErrConflict, "header-only blueprint still owns its key")
	})

	t.Run("Create_ConcurrentSameKeyOneWinner", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		const writers = 8
		errs := make([]error, writers)
		var wg sync.WaitGroup
		for i := range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = store.Create(ctx, newBP("ana", "race", pts(i, i, i+1, i+1)...))
			}()
		}
		wg.Wait()

		var ok, conflicts, winner int
		for i, err := range errs {
			switch {
			case err == nil:
				ok++
				winner = i
			case assert.ErrorIs(t, err, blueprint.ErrConflict):
				conflicts++
			}
		}
		assert.Equal(t, 1, ok)
		assert.Equal(t, writers-1, conflicts)

		got, err := store.Get(ctx, "ana", "race")
		require.NoError(t, err)
		assert.Equal(t, pts(winner, winner, winner+1, winner+1), got.Points)
	})

	t.Run("Get_NeverCreated", func(t *testing.T) {
		store := newStore(t)

		_, err := store.Get(context.Background(), "ana", "missing")
		assert.ErrorIs(t, err, blueprint.ErrNotFound)
	})

	t.Run("AppendPoint_KeepsCallOrder", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.Create(ctx, newBP("ana", "line", pts(0, 0)...))
		require.NoError(t, err)

		want := pts(0, 0)
		for i := 1; i <= 5; i++ {
			p := blueprint.Point{X: 10 - i, Y: i * i}
			require.NoError(t, store.AppendPoint(ctx, "ana", "line", p))
			want = append(want, p)
		}

		got, err := store.Get(ctx, "ana", "line")
		require.NoError(t, err)
		assert.Equal(t, want, got.Points)
	})

	t.Run("AppendPoint_MakesHeaderOnlyBlueprintVisible", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.Create(ctx, newBP("ana", "late"))
		require.NoError(t, err)
		require.NoError(t, store.AppendPoint(ctx, "ana", "late", blueprint.Point{X: 3, Y: 4}))

		got, err := store.Get(ctx, "ana", "late")
		require.NoError(t, err)
		assert.Equal(t, pts(3, 4), got.Points)
	})

	t.Run("AppendPoint_NeverCreatedPersistsNothing", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		err := store.AppendPoint(ctx, "ana", "ghost", blueprint.Point{X: 1, Y: 1})
		assert.ErrorIs(t, err, blueprint.ErrNotFound)

		_, err = store.Get(ctx, "ana", "ghost")
		assert.ErrorIs(t, err, blueprint.ErrNotFound)

		all, err := store.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		_, err = store.Create(ctx, newBP("ana", "ghost", pts(5, 5)...))
		require.NoError(t, err)
		got, err := store.Get(ctx, "ana", "ghost")
		require.NoError(t, err)
		assert.Equal(t, pts(5, 5), got.Points)
	})

	t.Run("AppendPoint_ConcurrentAppendsAllLand", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.Create(ctx, newBP("ana", "busy", pts(-1, -1)...))
		require.NoError(t, err)

		const appenders = 16
		var wg sync.WaitGroup
		for i := range appenders {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, store.AppendPoint(ctx, "ana", "busy", blueprint.Point{X: i, Y: i}))
			}()
		}
		wg.Wait()

		got, err := store.Get(ctx, "ana", "busy")
		require.NoError(t, err)
		require.Len(t, got.Points, appenders+1)
		assert.Equal(t, blueprint.Point{X: -1, Y: -1}, got.Points[0])

		expected := make([]blueprint.Point, 0, appenders)
		for i := range appenders {
			expected = append(expected, blueprint.Point{X: i, Y: i})
		}
		assert.ElementsMatch(t, expected, got.Points[1:])

		seqs, pointCount := readSequences(t, store, "ana", "busy")
		wantSeqs := make([]int, appenders+1)
		for i := range wantSeqs {
			wantSeqs[i] = i
		}
		assert.Equal(t, wantSeqs, seqs, "seq values are gap-free and start at zero")
		assert.Equal(t, appenders+1, pointCount, "point_count matches the stored rows")
	})

	t.Run("GetByAuthor_UnknownAuthor", func(t *testing.T) {
		store := newStore(t)

		_, err := store.GetByAuthor(context.Background(), "nobody")
		assert.ErrorIs(t, err, blueprint.ErrNotFound)
	})

	t.Run("GetByAuthor_OnlyThatAuthorSortedByName", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		for _, bp := range []blueprint.Blueprint{
			newBP("ana", "tower", pts(1, 1)...),
			newBP("bob", "barn", pts(2, 2)...),
			newBP("ana", "house", pts(0, 0, 10, 0)...),
		} {
			_, err := store.Create(ctx, bp)
			require.NoError(t, err)
		}

		got, err := store.GetByAuthor(ctx, "ana")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.True(t, newBP("ana", "house", pts(0, 0, 10, 0)...).Equal(got[0]))
		assert.True(t, newBP("ana", "tower", pts(1, 1)...).Equal(got[1]))
	})

	t.Run("GetByAuthor_SkipsHeaderOnly", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.Create(ctx, newBP("ana", "house", pts(0, 0)...))
		require.NoError(t, err)
		_, err = store.Create(ctx, newBP("ana", "draft"))
		require.NoError(t, err)

		got, err := store.GetByAuthor(ctx, "ana")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "house", got[0].Name)
	})

	t.Run("GetByAuthor_AllHeaderOnlyIsEmptyNotMissing", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.Create(ctx, newBP("ana", "draft"))
		require.NoError(t, err)

		got, err := store.GetByAuthor(ctx, "ana")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("GetAll_EmptyStore", func(t *testing.T) {
		store := newStore(t)

		got, err := store.GetAll(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("GetAll_ExcludesHeaderOnly", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		valid := newBP("ana", "house", pts(0, 0, 10, 0)...)
		_, err := store.Create(ctx, valid)
		require.NoError(t, err)
		_, err = store.Create(ctx, newBP("bob", "draft"))
		require.NoError(t, err)

		got, err := store.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, valid.Equal(got[0]))
	})

	t.Run("GetAll_ManyBlueprintsSorted", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		const n = 25
		for i := n - 1; i >= 0; i-- {
			author := fmt.Sprintf("author-%d", i%3)
			name := fmt.Sprintf("bp-%02d", i)
			_, err := store.Create(ctx, newBP(author, name, pts(i, i)...))
			require.NoError(t, err)
		}

		got, err := store.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, got, n)
		for i := 1; i < len(got); i++ {
			prev, cur := got[i-1], got[i]
			assert.True(t, prev.Author < cur.Author || (prev.Author == cur.Author && prev.Name < cur.Name),
				"%s/%s should sort before %s/%s", prev.Author, prev.Name, cur.Author, cur.Name)
		}
	})

	t.Run("Scenario_AnaHouse", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.Create(ctx, newBP("ana", "house", pts(0, 0, 10, 0)...))
		require.NoError(t, err)
		require.NoError(t, store.AppendPoint(ctx, "ana", "house", blueprint.Point{X: 10, Y: 10}))

		want := newBP("ana", "house", pts(0, 0, 10, 0, 10, 10)...)

		got, err := store.Get(ctx, "ana", "house")
		require.NoError(t, err)
		assert.True(t, want.Equal(got), "got %+v", got)

		byAuthor, err := store.GetByAuthor(ctx, "ana")
		require.NoError(t, err)
		require.Len(t, byAuthor, 1)
		assert.True(t, want.Equal(byAuthor[0]))

		_, err = store.Get(ctx, "ana", "missing")
		assert.ErrorIs(t, err, blueprint.ErrNotFound)
	})

	t.Run("Ping", func(t *testing.T) {
		store := newStore(t)
		assert.NoError(t, store.Ping(context.Background()))
	})
}
