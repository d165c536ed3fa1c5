package service

import (
	"context"

	"github.com/odelu/catalog/pkg/cache"
	"github.com/odelu/catalog/pkg/cachekey"
)

// The pattern functions below compute the exact key set each mutation must
// purge. They are pure so invalidation policy can be asserted in tests
// without a cache; Invalidator applies them through the cache store, whose
// delete errors are swallowed and logged (stale entries self-heal via TTL).

// CommentCreatePatterns covers a new comment on (contentType, contentID).
// parentID is the hex id of the parent comment, empty for a top-level
// comment; a reply additionally purges the parent's single-comment and tree
// keys, since both embed the reply list.
func CommentCreatePatterns(contentType, contentID, parentID string) []string {
	patterns := []string{cachekey.CommentsPattern(contentType, contentID)}
	if parentID != "" {
		patterns = append(patterns,
			cachekey.Comment(parentID),
			cachekey.CommentTree(parentID),
		)
	}
	return patterns
}

// CommentUpdatePatterns covers an edit to commentID by authorID. Every
// cached tree is purged because any ancestor's tree may embed the edited
// comment.
func CommentUpdatePatterns(contentType, contentID, commentID, authorID string) []string {
	return []string{
		cachekey.CommentsPattern(contentType, contentID),
		cachekey.Comment(commentID),
		cachekey.CommentTreeAll(),
		cachekey.UserCommentsPattern(authorID),
	}
}

// CommentDeletePatterns covers the removal of commentID together with its
// descendants. authorIDs are the distinct authors of every deleted comment;
// each of their cached comment pages is purged.
func CommentDeletePatterns(contentType, contentID, commentID string, authorIDs []string) []string {
	patterns := []string{
		cachekey.CommentsPattern(contentType, contentID),
		cachekey.Comment(commentID),
		cachekey.CommentTreeAll(),
	}
	seen := make(map[string]struct{}, len(authorIDs))
	for _, id := range authorIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		patterns = append(patterns, cachekey.UserCommentsPattern(id))
	}
	return patterns
}

// WatchStatusPatterns covers a watch-progress upsert or watch-history
// deletion: everything under the user's namespace (history, continue
// watching, watchlist views) is recomputed from it.
func WatchStatusPatterns(userID string) []string {
	return []string{cachekey.UserPattern(userID)}
}

// WatchlistPatterns covers adding or removing a watchlist item. Only the
// owner's own watchlist key is purged; the public-profile view ages out on
// its own TTL.
func WatchlistPatterns(userID string) []string {
	return []string{cachekey.UserWatchlist(userID)}
}

// ProfilePatterns covers a profile update or account deletion: the user's
// namespace plus their cached comment pages, which embed the profile.
func ProfilePatterns(userID string) []string {
	return []string{
		cachekey.UserPattern(userID),
		cachekey.UserCommentsPattern(userID),
	}
}

// MoviePatterns covers any movie create, update or delete.
func MoviePatterns() []string { return cachekey.MovieFamilies() }

// ShowPatterns covers any show, season or episode create, update or delete.
func ShowPatterns() []string { return cachekey.ShowFamilies() }

// Invalidator applies the purge policy after successful writes.
type Invalidator struct {
	cache *cache.Store
}

// NewInvalidator wires the purge policy to a cache store.
func NewInvalidator(c *cache.Store) *Invalidator {
	return &Invalidator{cache: c}
}

func (v *Invalidator) purge(ctx context.Context, patterns []string) {
	v.cache.DeleteByPattern(ctx, patterns...)
}

// CommentCreated purges after a new comment or reply.
func (v *Invalidator) CommentCreated(ctx context.Context, contentType, contentID, parentID string) {
	v.purge(ctx, CommentCreatePatterns(contentType, contentID, parentID))
}

// CommentUpdated purges after a comment edit.
func (v *Invalidator) CommentUpdated(ctx context.Context, contentType, contentID, commentID, authorID string) {
	v.purge(ctx, CommentUpdatePatterns(contentType, contentID, commentID, authorID))
}

// CommentDeleted purges after a comment and its descendants are removed.
func (v *Invalidator) CommentDeleted(ctx context.Context, contentType, contentID, commentID string, authorIDs []string) {
	v.purge(ctx, CommentDeletePatterns(contentType, contentID, commentID, authorIDs))
}

// WatchStatusUpdated purges after a watch-progress write.
func (v *Invalidator) WatchStatusUpdated(ctx context.Context, userID string) {
	v.purge(ctx, WatchStatusPatterns(userID))
}

// WatchlistChanged purges after a watchlist add or remove.
func (v *Invalidator) WatchlistChanged(ctx context.Context, userID string) {
	v.purge(ctx, WatchlistPatterns(userID))
}

// ProfileUpdated purges after a profile write or account deletion.
func (v *Invalidator) ProfileUpdated(ctx context.Context, userID string) {
	v.purge(ctx, ProfilePatterns(userID))
}

// MovieChanged purges after any movie mutation.
func (v *Invalidator) MovieChanged(ctx context.Context) {
	v.purge(ctx, MoviePatterns())
}

// ShowChanged purges after any show, season or episode mutation.
func (v *Invalidator) ShowChanged(ctx context.Context) {
	v.purge(ctx, ShowPatterns())
}
