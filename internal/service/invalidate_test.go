package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odelu/catalog/pkg/cache"
)

func TestCommentCreatePatterns(t *testing.T) {
	t.Parallel()

	t.Run("top-level comment purges only the content's pages", func(t *testing.T) {
		t.Parallel()

		patterns := CommentCreatePatterns("movie", "m1", "")
		require.Equal(t, []string{"comments:movie:m1:*"}, patterns)
	})

	t.Run("reply additionally purges the parent's keys", func(t *testing.T) {
		t.Parallel()

		patterns := CommentCreatePatterns("movie", "m1", "c1")
		require.Equal(t, []string{
			"comments:movie:m1:*",
			"comment:c1",
			"comment_tree:c1",
		}, patterns)
	})
}

func TestCommentUpdatePatterns(t *testing.T) {
	t.Parallel()

	patterns := CommentUpdatePatterns("show", "s1", "c1", "u1")
	require.Equal(t, []string{
		"comments:show:s1:*",
		"comment:c1",
		"comment_tree:*",
		"user_comments:u1:*",
	}, patterns)
}

func TestCommentDeletePatterns(t *testing.T) {
	t.Parallel()

	t.Run("covers every distinct author once", func(t *testing.T) {
		t.Parallel()

		patterns := CommentDeletePatterns("movie", "m1", "c1", []string{"u1", "u2", "u1"})
		require.Equal(t, []string{
			"comments:movie:m1:*",
			"comment:c1",
			"comment_tree:*",
			"user_comments:u1:*",
			"user_comments:u2:*",
		}, patterns)
	})
}

func TestMutationPatternFamilies(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"user:u1:*"}, WatchStatusPatterns("u1"))
	require.Equal(t, []string{"user:u1:watchlist"}, WatchlistPatterns("u1"))
	require.Equal(t, []string{"user:u1:*", "user_comments:u1:*"}, ProfilePatterns("u1"))
	require.Contains(t, MoviePatterns(), "movies:*")
	require.Contains(t, ShowPatterns(), "shows:*")
	require.Contains(t, ShowPatterns(), "episodes:*")
	require.NotContains(t, MoviePatterns(), "shows:*")
}

func TestInvalidatorCommentCreated(t *testing.T) {
	t.Parallel()

	backend := cache.NewMemory()
	store := cache.New(backend)
	ctx := context.Background()

	// Seed keys for the affected content, the parent comment and an
	// unrelated movie.
	store.Set(ctx, "comments:movie:m1:none:20:0", "page", time.Minute)
	store.Set(ctx, "comments:movie:m1:c1:20:0", "replies", time.Minute)
	store.Set(ctx, "comment:c1", "parent", time.Minute)
	store.Set(ctx, "comment_tree:c1", "tree", time.Minute)
	store.Set(ctx, "comments:movie:m2:none:20:0", "other content", time.Minute)
	store.Set(ctx, "movies:detail:m1", "detail", time.Minute)

	inv := NewInvalidator(store)
	inv.CommentCreated(ctx, "movie", "m1", "c1")

	remaining := backend.Keys()
	require.ElementsMatch(t, []string{
		"comments:movie:m2:none:20:0",
		"movies:detail:m1",
	}, remaining)
}

func TestInvalidatorMovieChanged(t *testing.T) {
	t.Parallel()

	backend := cache.NewMemory()
	store := cache.New(backend)
	ctx := context.Background()

	store.Set(ctx, "movies:list:all:none:1:20", "page", time.Minute)
	store.Set(ctx, "popular:movies:10:week", "rail", time.Minute)
	store.Set(ctx, "trending:10:week", "rail", time.Minute)
	store.Set(ctx, "recently_added:10", "rail", time.Minute)
	store.Set(ctx, "search:suggestions:incep:10", "hits", time.Minute)
	store.Set(ctx, "shows:detail:s1", "show", time.Minute)
	store.Set(ctx, "comments:movie:m1:none:20:0", "page", time.Minute)

	inv := NewInvalidator(store)
	inv.MovieChanged(ctx)

	require.ElementsMatch(t, []string{
		"shows:detail:s1",
		"comments:movie:m1:none:20:0",
	}, backend.Keys())
}
