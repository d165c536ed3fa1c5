package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odelu/catalog/internal/document"
	"github.com/odelu/catalog/pkg/cache"
)

type fakeMovieStore struct {
	movies     map[primitive.ObjectID]document.Movie
	watches    map[primitive.ObjectID]document.WatchRecord
	listCalls  atomic.Int64
	byIDCalls  atomic.Int64
	candidates []document.Movie
}

func newFakeMovieStore() *fakeMovieStore {
	return &fakeMovieStore{
		movies:  map[primitive.ObjectID]document.Movie{},
		watches: map[primitive.ObjectID]document.WatchRecord{},
	}
}

func (f *fakeMovieStore) MovieByID(_ context.Context, id primitive.ObjectID) (*document.Movie, error) {
	f.byIDCalls.Add(1)
	m, ok := f.movies[id]
	if !ok {
		return nil, document.ErrNotFound
	}
	return &m, nil
}

func (f *fakeMovieStore) ListMovies(_ context.Context, _ document.ListFilter) ([]document.Movie, int64, error) {
	f.listCalls.Add(1)
	var out []document.Movie
	for _, m := range f.movies {
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (f *fakeMovieStore) FeaturedMovies(_ context.Context, _ int) ([]document.Movie, error) {
	return nil, nil
}

func (f *fakeMovieStore) RelatedMovieCandidates(_ context.Context, _ primitive.ObjectID) ([]document.Movie, error) {
	return f.candidates, nil
}

func (f *fakeMovieStore) WatchRecordFor(_ context.Context, _, _ string, contentID primitive.ObjectID) (*document.WatchRecord, error) {
	rec, ok := f.watches[contentID]
	if !ok {
		return nil, document.ErrNotFound
	}
	return &rec, nil
}

func TestMoviesList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("second read is served from cache", func(t *testing.T) {
		t.Parallel()

		fake := newFakeMovieStore()
		fake.movies[primitive.NewObjectID()] = document.Movie{Title: "Heat"}
		svc := NewMovies(fake, cache.New(cache.NewMemory()))

		first, err := svc.List(ctx, document.ListFilter{}, ReadOptions{})
		require.NoError(t, err)
		require.True(t, first.Success)
		require.Len(t, first.Data, 1)
		require.Equal(t, "movie", first.Data[0].Type)

		second, err := svc.List(ctx, document.ListFilter{}, ReadOptions{})
		require.NoError(t, err)
		require.Equal(t, first.Data, second.Data)
		require.EqualValues(t, 1, fake.listCalls.Load())
	})

	t.Run("refresh bypasses read and write", func(t *testing.T) {
		t.Parallel()

		fake := newFakeMovieStore()
		fake.movies[primitive.NewObjectID()] = document.Movie{Title: "Heat"}
		backend := cache.NewMemory()
		svc := NewMovies(fake, cache.New(backend))

		_, err := svc.List(ctx, document.ListFilter{}, ReadOptions{Refresh: true})
		require.NoError(t, err)
		require.Empty(t, backend.Keys())

		_, err = svc.List(ctx, document.ListFilter{}, ReadOptions{Refresh: true})
		require.NoError(t, err)
		require.EqualValues(t, 2, fake.listCalls.Load())
	})

	t.Run("disabled cache serves every read from the store", func(t *testing.T) {
		t.Parallel()

		fake := newFakeMovieStore()
		fake.movies[primitive.NewObjectID()] = document.Movie{Title: "Heat"}
		backend := cache.NewMemory()
		svc := NewMovies(fake, cache.New(backend,
			cache.WithEnabledFunc(func() bool { return false })))

		var wg sync.WaitGroup
		errs := make([]error, 1000)
		for i := range errs {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				page, err := svc.List(ctx, document.ListFilter{}, ReadOptions{})
				if err == nil && len(page.Data) != 1 {
					err = context.Canceled
				}
				errs[i] = err
			}()
		}
		wg.Wait()

		for _, err := range errs {
			require.NoError(t, err)
		}
		require.Empty(t, backend.Keys())
		// No cache means no collapsing: every read runs its own query.
		require.EqualValues(t, 1000, fake.listCalls.Load())
	})
}

func TestMoviesDetail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	newFixture := func() (*fakeMovieStore, primitive.ObjectID) {
		fake := newFakeMovieStore()
		id := primitive.NewObjectID()
		fake.movies[id] = document.Movie{
			ID:     id,
			Title:  "Inception",
			Tags:   []string{"thriller", "heist"},
			Rating: 8.8,
		}
		fake.candidates = []document.Movie{
			{ID: primitive.NewObjectID(), Title: "Inception 2", Rating: 7},
			{ID: primitive.NewObjectID(), Title: "Amelie", Rating: 8},
		}
		return fake, id
	}

	t.Run("ranks related items and caches the payload", func(t *testing.T) {
		t.Parallel()

		fake, id := newFixture()
		backend := cache.NewMemory()
		svc := NewMovies(fake, cache.New(backend))

		detail, err := svc.Detail(ctx, id.Hex(), nil, ReadOptions{})
		require.NoError(t, err)
		require.Equal(t, "Inception", detail.Data.Title)
		require.Len(t, detail.Related, 2)
		require.Equal(t, "Inception 2", detail.Related[0].Title)
		require.Nil(t, detail.WatchStatus)
		require.Contains(t, backend.Keys(), "movies:detail:"+id.Hex())

		_, err = svc.Detail(ctx, id.Hex(), nil, ReadOptions{})
		require.NoError(t, err)
		require.EqualValues(t, 1, fake.byIDCalls.Load())
	})

	t.Run("personalized request bypasses the shared cache", func(t *testing.T) {
		t.Parallel()

		fake, id := newFixture()
		fake.watches[id] = document.WatchRecord{
			ContentID: id,
			Progress:  42.5,
			WatchedAt: time.Now().UTC(),
		}
		backend := cache.NewMemory()
		svc := NewMovies(fake, cache.New(backend))

		user := &Identity{ID: primitive.NewObjectID().Hex()}
		detail, err := svc.Detail(ctx, id.Hex(), user, ReadOptions{})
		require.NoError(t, err)
		require.NotNil(t, detail.WatchStatus)
		require.InDelta(t, 42.5, detail.WatchStatus.Progress, 1e-9)

		// The merged payload was never written to the shared cache.
		require.Empty(t, backend.Keys())
	})

	t.Run("anonymous read after personalized read caches a clean payload", func(t *testing.T) {
		t.Parallel()

		fake, id := newFixture()
		fake.watches[id] = document.WatchRecord{ContentID: id, Progress: 99}
		svc := NewMovies(fake, cache.New(cache.NewMemory()))

		user := &Identity{ID: primitive.NewObjectID().Hex()}
		_, err := svc.Detail(ctx, id.Hex(), user, ReadOptions{})
		require.NoError(t, err)

		anon, err := svc.Detail(ctx, id.Hex(), nil, ReadOptions{})
		require.NoError(t, err)
		require.Nil(t, anon.WatchStatus)
	})

	t.Run("invalid id is rejected before the store", func(t *testing.T) {
		t.Parallel()

		fake, _ := newFixture()
		svc := NewMovies(fake, cache.New(cache.NewMemory()))

		_, err := svc.Detail(ctx, "not-an-id", nil, ReadOptions{})
		require.ErrorIs(t, err, ErrInvalidID)
		require.EqualValues(t, 0, fake.byIDCalls.Load())
	})

	t.Run("unknown movie maps to not found", func(t *testing.T) {
		t.Parallel()

		fake, _ := newFixture()
		svc := NewMovies(fake, cache.New(cache.NewMemory()))

		_, err := svc.Detail(ctx, primitive.NewObjectID().Hex(), nil, ReadOptions{})
		require.ErrorIs(t, err, ErrNotFound)
	})
}
