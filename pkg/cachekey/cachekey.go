// Package cachekey defines the deterministic cache key templates for every
// cached resource family, plus the wildcard patterns used for bulk
// invalidation. Every key starts with its resource-kind prefix so a pattern
// purge scoped to one family can never touch another.
//
// Query parameters that affect the result are always encoded; absent values
// use a canonical placeholder ("all" for a missing tag filter, "none" for a
// missing search term or parent id) so absent and present states never
// collide on the same key. Detail-view keys never include a user identifier:
// personalized fields are merged after the cache read and are never part of
// the cached payload.
package cachekey

import "fmt"

// Placeholder tokens for absent query parameters.
const (
	AllTag   = "all"
	NoSearch = "none"
	NoParent = "none"
)

func orToken(v, token string) string {
	if v == "" {
		return token
	}
	return v
}

// MovieList keys paginated, filtered movie listings.
func MovieList(tag, search string, page, limit int) string {
	return fmt.Sprintf("movies:list:%s:%s:%d:%d", orToken(tag, AllTag), orToken(search, NoSearch), page, limit)
}

// MoviesFeatured keys the curated featured-movies list.
func MoviesFeatured() string { return "movies:featured" }

// MovieDetail keys a movie detail view, related items included.
func MovieDetail(id string) string { return "movies:detail:" + id }

// ShowList keys paginated, filtered show listings.
func ShowList(tag, search string, page, limit int) string {
	return fmt.Sprintf("shows:list:%s:%s:%d:%d", orToken(tag, AllTag), orToken(search, NoSearch), page, limit)
}

// ShowsFeatured keys the curated featured-shows list.
func ShowsFeatured() string { return "shows:featured" }

// ShowDetail keys a show detail view, seasons and related items included.
func ShowDetail(id string) string { return "shows:detail:" + id }

// SeasonEpisodes keys one page of a season's episodes.
func SeasonEpisodes(showID, seasonID string, page, limit int) string {
	return fmt.Sprintf("shows:%s:season:%s:episodes:%d:%d", showID, seasonID, page, limit)
}

// SeasonAllEpisodes keys the unpaginated episode list of a season.
func SeasonAllEpisodes(showID, seasonID string) string {
	return fmt.Sprintf("shows:%s:season:%s:all-episodes", showID, seasonID)
}

// EpisodeDetail keys an episode detail view.
func EpisodeDetail(id string) string { return "episodes:detail:" + id }

// Comments keys one page of a content item's comments. An empty parentID
// means top-level comments.
func Comments(contentType, contentID, parentID string, limit, skip int) string {
	return fmt.Sprintf("comments:%s:%s:%s:%d:%d", contentType, contentID, orToken(parentID, NoParent), limit, skip)
}

// Comment keys a single comment.
func Comment(id string) string { return "comment:" + id }

// CommentTree keys a comment with all nested replies materialized.
func CommentTree(id string) string { return "comment_tree:" + id }

// UserComments keys one page of a user's comments.
func UserComments(userID string, limit, skip int) string {
	return fmt.Sprintf("user_comments:%s:%d:%d", userID, limit, skip)
}

// UserWatchHistory keys a user's watch history.
func UserWatchHistory(userID string) string { return "user:" + userID + ":watch_history" }

// UserContinueWatching keys a user's continue-watching rail.
func UserContinueWatching(userID string) string { return "user:" + userID + ":continue_watching" }

// UserWatchlist keys a user's own watchlist view.
func UserWatchlist(userID string) string { return "user:" + userID + ":watchlist" }

// UserPublicWatchlist keys the public-profile view of a user's watchlist.
func UserPublicWatchlist(userID string) string { return "user:" + userID + ":public_watchlist" }

// RecentlyAdded keys the combined recently-added rail.
func RecentlyAdded(limit int) string { return fmt.Sprintf("recently_added:%d", limit) }

// PopularMovies keys the windowed popular-movies ranking.
func PopularMovies(limit int, period string) string {
	return fmt.Sprintf("popular:movies:%d:%s", limit, period)
}

// PopularShows keys the windowed popular-shows ranking.
func PopularShows(limit int, period string) string {
	return fmt.Sprintf("popular:shows:%d:%s", limit, period)
}

// Trending keys the combined movies+shows trending ranking.
func Trending(limit int, period string) string {
	return fmt.Sprintf("trending:%d:%s", limit, period)
}

// SearchSuggestions keys typeahead suggestion results.
func SearchSuggestions(query string, limit int) string {
	return fmt.Sprintf("search:suggestions:%s:%d", query, limit)
}

// --- Invalidation patterns ---

// UserPattern matches every key under one user's namespace (watch history,
// continue watching, watchlist views).
func UserPattern(userID string) string { return "user:" + userID + ":*" }

// CommentsPattern matches every cached comment page for one content item.
func CommentsPattern(contentType, contentID string) string {
	return fmt.Sprintf("comments:%s:%s:*", contentType, contentID)
}

// UserCommentsPattern matches every cached page of one user's comments.
func UserCommentsPattern(userID string) string { return "user_comments:" + userID + ":*" }

// CommentTreeAll matches every cached comment tree. Tree purges are
// intentionally broad: finding the exact set of cached ancestor trees that
// embed a given comment would require an unbounded graph walk, so an edit
// trades hit rate for correctness and purges them all.
func CommentTreeAll() string { return "comment_tree:*" }

// CommentFamilies is the full comment-related key family set, purged
// unconditionally by the background sweeper.
func CommentFamilies() []string {
	return []string{"comments:*", "comment:*", "comment_tree:*", "user_comments:*"}
}

// MovieFamilies matches every cached payload a movie mutation can invalidate.
func MovieFamilies() []string {
	return []string{"movies:*", "popular:*", "trending:*", "recently_added:*", "search:suggestions:*"}
}

// ShowFamilies matches every cached payload a show, season or episode
// mutation can invalidate. Season and episode payloads live under the
// shows:* and episodes:* prefixes.
func ShowFamilies() []string {
	return []string{"shows:*", "episodes:*", "popular:*", "trending:*", "recently_added:*", "search:suggestions:*"}
}
