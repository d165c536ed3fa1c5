package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odelu/catalog/internal/document"
	"github.com/odelu/catalog/pkg/cache"
)

type fakeSearchStore struct {
	moviesByTier map[document.SuggestionTier][]document.Movie
	showsByTier  map[document.SuggestionTier][]document.Show
}

func excluded(id primitive.ObjectID, exclude []primitive.ObjectID) bool {
	for _, e := range exclude {
		if e == id {
			return true
		}
	}
	return false
}

func (f *fakeSearchStore) SuggestMovies(_ context.Context, _ string, tier document.SuggestionTier, exclude []primitive.ObjectID, limit int) ([]document.Movie, error) {
	var out []document.Movie
	for _, m := range f.moviesByTier[tier] {
		if excluded(m.ID, exclude) || len(out) == limit {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeSearchStore) SuggestShows(_ context.Context, _ string, tier document.SuggestionTier, exclude []primitive.ObjectID, limit int) ([]document.Show, error) {
	var out []document.Show
	for _, sh := range f.showsByTier[tier] {
		if excluded(sh.ID, exclude) || len(out) == limit {
			continue
		}
		out = append(out, sh)
	}
	return out, nil
}

func TestSearchSuggest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("short queries return empty without a store hit", func(t *testing.T) {
		t.Parallel()

		svc := NewSearch(&fakeSearchStore{}, cache.New(cache.NewMemory()))
		page, err := svc.Suggest(ctx, " i ", 10, ReadOptions{})
		require.NoError(t, err)
		require.True(t, page.Success)
		require.Empty(t, page.Data)
	})

	t.Run("tiers rank prefix above word start above contains", func(t *testing.T) {
		t.Parallel()

		prefix := document.Movie{ID: primitive.NewObjectID(), Title: "Inception"}
		wordStart := document.Show{ID: primitive.NewObjectID(), Title: "Beyond Inception"}
		contains := document.Movie{ID: primitive.NewObjectID(), Title: "Reinception"}

		fake := &fakeSearchStore{
			moviesByTier: map[document.SuggestionTier][]document.Movie{
				document.TierPrefix:   {prefix},
				document.TierContains: {contains},
			},
			showsByTier: map[document.SuggestionTier][]document.Show{
				document.TierWordStart: {wordStart},
			},
		}

		svc := NewSearch(fake, cache.New(cache.NewMemory()))
		page, err := svc.Suggest(ctx, "incep", 10, ReadOptions{})
		require.NoError(t, err)
		require.Len(t, page.Data, 3)
		require.Equal(t, scorePrefix, page.Data[0].Score)
		require.Equal(t, "Inception", page.Data[0].Title)
		require.Equal(t, scoreWordStart, page.Data[1].Score)
		require.Equal(t, scoreContains, page.Data[2].Score)
	})

	t.Run("earlier tiers exclude results from later tiers", func(t *testing.T) {
		t.Parallel()

		movie := document.Movie{ID: primitive.NewObjectID(), Title: "Inception"}
		fake := &fakeSearchStore{
			moviesByTier: map[document.SuggestionTier][]document.Movie{
				document.TierPrefix:   {movie},
				document.TierContains: {movie},
			},
		}

		svc := NewSearch(fake, cache.New(cache.NewMemory()))
		page, err := svc.Suggest(ctx, "incep", 10, ReadOptions{})
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
	})

	t.Run("tag-only matches are demoted", func(t *testing.T) {
		t.Parallel()

		tagged := document.Movie{ID: primitive.NewObjectID(), Title: "Heat", Tags: []string{"inception-like"}}
		fake := &fakeSearchStore{
			moviesByTier: map[document.SuggestionTier][]document.Movie{
				document.TierContains: {tagged},
			},
		}

		svc := NewSearch(fake, cache.New(cache.NewMemory()))
		page, err := svc.Suggest(ctx, "incep", 10, ReadOptions{})
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
		require.Equal(t, scoreTagOnly, page.Data[0].Score)
	})

	t.Run("query is normalized for the cache key", func(t *testing.T) {
		t.Parallel()

		backend := cache.NewMemory()
		svc := NewSearch(&fakeSearchStore{}, cache.New(backend))

		_, err := svc.Suggest(ctx, "  InCePtIoN  ", 10, ReadOptions{})
		require.NoError(t, err)
		require.Contains(t, backend.Keys(), "search:suggestions:inception:10")
	})
}
