package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odelu/catalog/internal/document"
	"github.com/odelu/catalog/pkg/cache"
	"github.com/odelu/catalog/pkg/cachekey"
)

const historyLimit = 20

// UserStore is the slice of the document store the users service uses.
type UserStore interface {
	UserByID(ctx context.Context, id primitive.ObjectID) (*document.User, error)
	UpdateUserProfile(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
	UpsertWatchRecord(ctx context.Context, userID, contentType string, contentID primitive.ObjectID, progress float64, completed bool) (*document.WatchRecord, error)
	RecentWatches(ctx context.Context, userID string, limit int) ([]document.WatchRecord, error)
	IncompleteWatches(ctx context.Context, userID string, limit int) ([]document.WatchRecord, error)
	DeleteWatchHistory(ctx context.Context, userID string) (int64, error)
	MoviesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]document.Movie, error)
	EpisodeByID(ctx context.Context, id primitive.ObjectID) (*document.Episode, error)
}

// Users serves account and watch-progress endpoints. Responses here are
// per-user, so they cache under the user's own key namespace and every
// write purges that namespace.
type Users struct {
	store UserStore
	cache *cache.Store
	inv   *Invalidator
}

// NewUsers wires the users service.
func NewUsers(store UserStore, c *cache.Store, inv *Invalidator) *Users {
	return &Users{store: store, cache: c, inv: inv}
}

// ProfileUpdate is a partial profile edit. Nil fields are left unchanged.
type ProfileUpdate struct {
	Username *string `json:"username"`
	Avatar   *string `json:"avatar"`
}

// WatchHistoryItem is a watch record enriched with the content's display
// fields.
type WatchHistoryItem struct {
	document.WatchRecord
	Title string `json:"title,omitempty"`
	Image string `json:"image,omitempty"`
}

// WatchHistoryPage is the cached payload of the history and
// continue-watching rails.
type WatchHistoryPage struct {
	Success bool               `json:"success"`
	Data    []WatchHistoryItem `json:"data"`
}

// Profile returns the caller's account document.
func (s *Users) Profile(ctx context.Context, user *Identity) (*document.User, error) {
	if !personalized(user) {
		return nil, ErrForbidden
	}
	oid, err := document.ParseID(user.ID)
	if err != nil {
		return nil, err
	}
	return s.store.UserByID(ctx, oid)
}

// UpdateProfile applies a partial profile edit and purges the user's cached
// views, their comment pages included since those embed the profile.
func (s *Users) UpdateProfile(ctx context.Context, user *Identity, upd ProfileUpdate) error {
	if !personalized(user) {
		return ErrForbidden
	}
	oid, err := document.ParseID(user.ID)
	if err != nil {
		return err
	}

	fields := bson.M{}
	if upd.Username != nil {
		if *upd.Username == "" {
			return fmt.Errorf("%w: empty username", ErrValidation)
		}
		fields["username"] = *upd.Username
	}
	if upd.Avatar != nil {
		fields["avatar"] = *upd.Avatar
	}
	if len(fields) == 0 {
		return fmt.Errorf("%w: nothing to update", ErrValidation)
	}

	if err := s.store.UpdateUserProfile(ctx, oid, fields); err != nil {
		return err
	}
	s.inv.ProfileUpdated(ctx, user.ID)
	return nil
}

// DeleteAccount removes the account with its watch data and purges every
// cached view derived from it.
func (s *Users) DeleteAccount(ctx context.Context, user *Identity) error {
	if !personalized(user) {
		return ErrForbidden
	}
	oid, err := document.ParseID(user.ID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteUser(ctx, oid); err != nil {
		return err
	}
	s.inv.ProfileUpdated(ctx, user.ID)
	return nil
}

// SetWatchProgress records playback progress on a movie or episode and
// purges the user's cached rails.
func (s *Users) SetWatchProgress(ctx context.Context, user *Identity, contentType, contentID string, progress float64, completed bool) (*document.WatchRecord, error) {
	if !personalized(user) {
		return nil, ErrForbidden
	}
	if contentType != document.TypeMovie && contentType != document.TypeEpisode {
		return nil, fmt.Errorf("%w: unknown content type %q", ErrValidation, contentType)
	}
	if progress < 0 || progress > 100 {
		return nil, fmt.Errorf("%w: progress out of range", ErrValidation)
	}

	oid, err := document.ParseID(contentID)
	if err != nil {
		return nil, err
	}

	rec, err := s.store.UpsertWatchRecord(ctx, user.ID, contentType, oid, progress, completed)
	if err != nil {
		return nil, err
	}

	s.inv.WatchStatusUpdated(ctx, user.ID)
	return rec, nil
}

// WatchHistory returns the user's most recent watches, newest first.
func (s *Users) WatchHistory(ctx context.Context, user *Identity, opts ReadOptions) (*WatchHistoryPage, error) {
	if !personalized(user) {
		return nil, ErrForbidden
	}

	key := cachekey.UserWatchHistory(user.ID)
	return cache.GetOrLoad(ctx, s.cache, key, railTTL, opts.Refresh, func(ctx context.Context) (*WatchHistoryPage, error) {
		records, err := s.store.RecentWatches(ctx, user.ID, historyLimit)
		if err != nil {
			return nil, err
		}
		items, err := s.enrich(ctx, records)
		if err != nil {
			return nil, err
		}
		return &WatchHistoryPage{Success: true, Data: items}, nil
	})
}

// ContinueWatching returns the user's partially watched items, newest
// first.
func (s *Users) ContinueWatching(ctx context.Context, user *Identity, opts ReadOptions) (*WatchHistoryPage, error) {
	if !personalized(user) {
		return nil, ErrForbidden
	}

	key := cachekey.UserContinueWatching(user.ID)
	return cache.GetOrLoad(ctx, s.cache, key, railTTL, opts.Refresh, func(ctx context.Context) (*WatchHistoryPage, error) {
		records, err := s.store.IncompleteWatches(ctx, user.ID, historyLimit)
		if err != nil {
			return nil, err
		}
		items, err := s.enrich(ctx, records)
		if err != nil {
			return nil, err
		}
		return &WatchHistoryPage{Success: true, Data: items}, nil
	})
}

// DeleteHistory wipes the user's watch records and returns how many were
// removed.
func (s *Users) DeleteHistory(ctx context.Context, user *Identity) (int64, error) {
	if !personalized(user) {
		return 0, ErrForbidden
	}

	n, err := s.store.DeleteWatchHistory(ctx, user.ID)
	if err != nil {
		return 0, err
	}
	s.inv.WatchStatusUpdated(ctx, user.ID)
	return n, nil
}

// enrich joins watch records with their content's display fields. Movies
// and shows resolve in one batch query each; records whose content has been
// deleted keep bare progress data.
func (s *Users) enrich(ctx context.Context, records []document.WatchRecord) ([]WatchHistoryItem, error) {
	var movieIDs []primitive.ObjectID
	for _, r := range records {
		if r.ContentType == document.TypeMovie {
			movieIDs = append(movieIDs, r.ContentID)
		}
	}

	movies, err := s.store.MoviesByIDs(ctx, movieIDs)
	if err != nil {
		return nil, err
	}

	items := make([]WatchHistoryItem, 0, len(records))
	for _, r := range records {
		item := WatchHistoryItem{WatchRecord: r}
		switch r.ContentType {
		case document.TypeMovie:
			if m, ok := movies[r.ContentID]; ok {
				item.Title, item.Image = m.Title, m.Image
			}
		case document.TypeEpisode:
			ep, err := s.store.EpisodeByID(ctx, r.ContentID)
			if err != nil && !errors.Is(err, document.ErrNotFound) {
				return nil, err
			}
			if ep != nil {
				item.Title, item.Image = ep.Title, ep.Image
			}
		}
		items = append(items, item)
	}
	return items, nil
}
