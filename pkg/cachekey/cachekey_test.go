package cachekey_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odelu/catalog/pkg/cachekey"
)

func TestKeyTemplates(t *testing.T) {
	t.Parallel()

	require.Equal(t, "movies:list:all:none:1:20", cachekey.MovieList("", "", 1, 20))
	require.Equal(t, "movies:list:drama:heat:2:10", cachekey.MovieList("drama", "heat", 2, 10))
	require.Equal(t, "movies:detail:m1", cachekey.MovieDetail("m1"))
	require.Equal(t, "shows:s1:season:x2:episodes:1:20", cachekey.SeasonEpisodes("s1", "x2", 1, 20))
	require.Equal(t, "shows:s1:season:x2:all-episodes", cachekey.SeasonAllEpisodes("s1", "x2"))
	require.Equal(t, "comments:movie:m1:none:20:0", cachekey.Comments("movie", "m1", "", 20, 0))
	require.Equal(t, "comments:movie:m1:c9:20:40", cachekey.Comments("movie", "m1", "c9", 20, 40))
	require.Equal(t, "user_comments:u1:20:0", cachekey.UserComments("u1", 20, 0))
	require.Equal(t, "user:u1:watchlist", cachekey.UserWatchlist("u1"))
	require.Equal(t, "popular:movies:10:week", cachekey.PopularMovies(10, "week"))
	require.Equal(t, "search:suggestions:incep:10", cachekey.SearchSuggestions("incep", 10))
}

func TestAbsentParametersDoNotCollide(t *testing.T) {
	t.Parallel()

	require.NotEqual(t,
		cachekey.MovieList("", "none", 1, 20),
		cachekey.MovieList("none", "", 1, 20))
	require.NotEqual(t,
		cachekey.Comments("movie", "m1", "", 20, 0),
		cachekey.Comments("movie", "m1", "c1", 20, 0))
}

func TestPatternsScopeTheirFamily(t *testing.T) {
	t.Parallel()

	require.Equal(t, "user:u1:*", cachekey.UserPattern("u1"))
	require.Equal(t, "comments:movie:m1:*", cachekey.CommentsPattern("movie", "m1"))
	require.Equal(t, "user_comments:u1:*", cachekey.UserCommentsPattern("u1"))

	// The user pattern must catch every key in the user namespace.
	for _, key := range []string{
		cachekey.UserWatchHistory("u1"),
		cachekey.UserContinueWatching("u1"),
		cachekey.UserWatchlist("u1"),
		cachekey.UserPublicWatchlist("u1"),
	} {
		require.True(t, strings.HasPrefix(key, "user:u1:"), key)
	}

	// But never a different user's keys or the user_comments family.
	require.False(t, strings.HasPrefix(cachekey.UserWatchlist("u10"), "user:u1:w"))
	require.False(t, strings.HasPrefix(cachekey.UserComments("u1", 20, 0), "user:"))
}

func TestFamilySets(t *testing.T) {
	t.Parallel()

	require.ElementsMatch(t,
		[]string{"comments:*", "comment:*", "comment_tree:*", "user_comments:*"},
		cachekey.CommentFamilies())

	for _, p := range cachekey.MovieFamilies() {
		require.False(t, strings.HasPrefix(p, "shows:"))
		require.False(t, strings.HasPrefix(p, "comments:"))
	}
	require.Contains(t, cachekey.ShowFamilies(), "episodes:*")
}
