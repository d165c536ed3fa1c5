package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odelu/catalog/internal/document"
	"github.com/odelu/catalog/pkg/cache"
	"github.com/odelu/catalog/pkg/cachekey"
)

// WatchlistStore is the slice of the document store the watchlist service
// uses.
type WatchlistStore interface {
	WatchlistContains(ctx context.Context, userID, contentType string, contentID primitive.ObjectID) (bool, error)
	AddWatchlistItem(ctx context.Context, userID, contentType string, contentID primitive.ObjectID) (*document.WatchlistItem, error)
	RemoveWatchlistItem(ctx context.Context, userID, contentType string, contentID primitive.ObjectID) error
	WatchlistByUser(ctx context.Context, userID string) ([]document.WatchlistItem, error)
	MovieExists(ctx context.Context, id primitive.ObjectID) (bool, error)
	ShowExists(ctx context.Context, id primitive.ObjectID) (bool, error)
	MoviesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]document.Movie, error)
	ShowsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]document.Show, error)
}

// Watchlist serves saved-items endpoints. Mutations purge only the owner's
// own watchlist key; the public-profile view ages out on its TTL.
type Watchlist struct {
	store WatchlistStore
	cache *cache.Store
	inv   *Invalidator
}

// NewWatchlist wires the watchlist service.
func NewWatchlist(store WatchlistStore, c *cache.Store, inv *Invalidator) *Watchlist {
	return &Watchlist{store: store, cache: c, inv: inv}
}

// WatchlistEntry is a saved item enriched with its content's display
// fields.
type WatchlistEntry struct {
	document.WatchlistItem
	Title  string  `json:"title,omitempty"`
	Image  string  `json:"image,omitempty"`
	Rating float64 `json:"rating,omitempty"`
}

// WatchlistPage is the cached payload of a watchlist view.
type WatchlistPage struct {
	Success bool             `json:"success"`
	Data    []WatchlistEntry `json:"data"`
}

func watchlistContentType(contentType string) error {
	if contentType != document.TypeMovie && contentType != document.TypeShow {
		return fmt.Errorf("%w: unknown content type %q", ErrValidation, contentType)
	}
	return nil
}

// Add saves a content item to the caller's watchlist. Adding an item twice
// is a no-op.
func (s *Watchlist) Add(ctx context.Context, user *Identity, contentType, contentID string) (*document.WatchlistItem, error) {
	if !personalized(user) {
		return nil, ErrForbidden
	}
	if err := watchlistContentType(contentType); err != nil {
		return nil, err
	}
	oid, err := document.ParseID(contentID)
	if err != nil {
		return nil, err
	}

	var exists bool
	if contentType == document.TypeMovie {
		exists, err = s.store.MovieExists(ctx, oid)
	} else {
		exists, err = s.store.ShowExists(ctx, oid)
	}
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, document.ErrNotFound
	}

	saved, err := s.store.WatchlistContains(ctx, user.ID, contentType, oid)
	if err != nil {
		return nil, err
	}
	if saved {
		return nil, nil
	}

	item, err := s.store.AddWatchlistItem(ctx, user.ID, contentType, oid)
	if err != nil {
		return nil, err
	}

	s.inv.WatchlistChanged(ctx, user.ID)
	return item, nil
}

// Remove deletes a saved item from the caller's watchlist.
func (s *Watchlist) Remove(ctx context.Context, user *Identity, contentType, contentID string) error {
	if !personalized(user) {
		return ErrForbidden
	}
	if err := watchlistContentType(contentType); err != nil {
		return err
	}
	oid, err := document.ParseID(contentID)
	if err != nil {
		return err
	}

	if err := s.store.RemoveWatchlistItem(ctx, user.ID, contentType, oid); err != nil {
		return err
	}

	s.inv.WatchlistChanged(ctx, user.ID)
	return nil
}

// Contains reports whether an item is on the caller's watchlist. Never
// cached: it backs the toggle button and must read its own writes.
func (s *Watchlist) Contains(ctx context.Context, user *Identity, contentType, contentID string) (bool, error) {
	if !personalized(user) {
		return false, ErrForbidden
	}
	if err := watchlistContentType(contentType); err != nil {
		return false, err
	}
	oid, err := document.ParseID(contentID)
	if err != nil {
		return false, err
	}
	return s.store.WatchlistContains(ctx, user.ID, contentType, oid)
}

// Mine returns the caller's own watchlist.
func (s *Watchlist) Mine(ctx context.Context, user *Identity, opts ReadOptions) (*WatchlistPage, error) {
	if !personalized(user) {
		return nil, ErrForbidden
	}
	return s.page(ctx, cachekey.UserWatchlist(user.ID), user.ID, opts)
}

// Public returns the public-profile view of a user's watchlist.
func (s *Watchlist) Public(ctx context.Context, userID string, opts ReadOptions) (*WatchlistPage, error) {
	if _, err := document.ParseID(userID); err != nil {
		return nil, err
	}
	return s.page(ctx, cachekey.UserPublicWatchlist(userID), userID, opts)
}

func (s *Watchlist) page(ctx context.Context, key, userID string, opts ReadOptions) (*WatchlistPage, error) {
	return cache.GetOrLoad(ctx, s.cache, key, railTTL, opts.Refresh, func(ctx context.Context) (*WatchlistPage, error) {
		items, err := s.store.WatchlistByUser(ctx, userID)
		if err != nil {
			return nil, err
		}

		var movieIDs, showIDs []primitive.ObjectID
		for _, it := range items {
			if it.ContentType == document.TypeMovie {
				movieIDs = append(movieIDs, it.ContentID)
			} else {
				showIDs = append(showIDs, it.ContentID)
			}
		}

		movies, err := s.store.MoviesByIDs(ctx, movieIDs)
		if err != nil {
			return nil, err
		}
		shows, err := s.store.ShowsByIDs(ctx, showIDs)
		if err != nil {
			return nil, err
		}

		entries := make([]WatchlistEntry, 0, len(items))
		for _, it := range items {
			entry := WatchlistEntry{WatchlistItem: it}
			if it.ContentType == document.TypeMovie {
				if m, ok := movies[it.ContentID]; ok {
					entry.Title, entry.Image, entry.Rating = m.Title, m.Image, m.Rating
				}
			} else if sh, ok := shows[it.ContentID]; ok {
				entry.Title, entry.Image, entry.Rating = sh.Title, sh.Image, sh.Rating
			}
			entries = append(entries, entry)
		}

		return &WatchlistPage{Success: true, Data: entries}, nil
	})
}
