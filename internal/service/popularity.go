package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odelu/catalog/internal/document"
	"github.com/odelu/catalog/pkg/cache"
	"github.com/odelu/catalog/pkg/cachekey"
)

// Popularity window periods. Anything else counts as all time.
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
	PeriodAll   = "all"
)

const (
	defaultRailLimit = 10
	maxRailLimit     = 50
)

// PopularityStore is the slice of the document store the popularity service
// uses.
type PopularityStore interface {
	InsertContentView(ctx context.Context, view *document.ContentView) error
	IncrementViewCount(ctx context.Context, contentType string, contentID primitive.ObjectID) error
	TopViewedSince(ctx context.Context, contentType string, since time.Time, limit int) ([]document.ViewCount, error)
	MoviesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]document.Movie, error)
	ShowsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]document.Show, error)
	MoviesByOverallViews(ctx context.Context, exclude []primitive.ObjectID, limit int) ([]document.Movie, error)
	ShowsByOverallViews(ctx context.Context, exclude []primitive.ObjectID, limit int) ([]document.Show, error)
	MovieExists(ctx context.Context, id primitive.ObjectID) (bool, error)
	ShowExists(ctx context.Context, id primitive.ObjectID) (bool, error)
	RecentMovies(ctx context.Context, limit int) ([]document.Movie, error)
	RecentEpisodes(ctx context.Context, limit int) ([]document.Episode, error)
}

// Popularity serves view tracking and the popularity, trending and
// recently-added rails.
type Popularity struct {
	store PopularityStore
	cache *cache.Store
}

// NewPopularity wires the popularity service.
func NewPopularity(store PopularityStore, c *cache.Store) *Popularity {
	return &Popularity{store: store, cache: c}
}

// RankedItem is one entry of a popularity or trending rail.
type RankedItem struct {
	ID     primitive.ObjectID `json:"_id"`
	Title  string             `json:"title"`
	Image  string             `json:"image,omitempty"`
	Year   int                `json:"year,omitempty"`
	Rating float64            `json:"rating,omitempty"`
	Type   string             `json:"type"`
	Views  int64              `json:"views"`
}

// RailPage is the cached payload of a ranked rail.
type RailPage struct {
	Success bool         `json:"success"`
	Data    []RankedItem `json:"data"`
	Period  string       `json:"period,omitempty"`
}

// RecentItem is one entry of the recently-added rail.
type RecentItem struct {
	ID      primitive.ObjectID `json:"_id"`
	Title   string             `json:"title"`
	Image   string             `json:"image,omitempty"`
	Type    string             `json:"type"`
	AddedAt time.Time          `json:"addedAt"`
}

// RecentPage is the cached payload of the recently-added rail.
type RecentPage struct {
	Success bool         `json:"success"`
	Data    []RecentItem `json:"data"`
}

func periodStart(period string, now time.Time) time.Time {
	switch period {
	case PeriodDay:
		return now.Add(-24 * time.Hour)
	case PeriodWeek:
		return now.Add(-7 * 24 * time.Hour)
	case PeriodMonth:
		return now.Add(-30 * 24 * time.Hour)
	case PeriodYear:
		return now.Add(-365 * 24 * time.Hour)
	default:
		return time.Time{}
	}
}

func clampRailLimit(limit int) int {
	if limit < 1 {
		return defaultRailLimit
	}
	if limit > maxRailLimit {
		return maxRailLimit
	}
	return limit
}

// TrackView records one view event and bumps the content's denormalized
// counter. View writes deliberately do not purge popularity rails; rankings
// converge on the rail TTL.
func (s *Popularity) TrackView(ctx context.Context, user *Identity, contentType, contentID string) error {
	if contentType != document.TypeMovie && contentType != document.TypeShow {
		return fmt.Errorf("%w: unknown content type %q", ErrValidation, contentType)
	}
	oid, err := document.ParseID(contentID)
	if err != nil {
		return err
	}

	var exists bool
	if contentType == document.TypeMovie {
		exists, err = s.store.MovieExists(ctx, oid)
	} else {
		exists, err = s.store.ShowExists(ctx, oid)
	}
	if err != nil {
		return err
	}
	if !exists {
		return document.ErrNotFound
	}

	view := &document.ContentView{ContentID: oid, ContentType: contentType}
	if personalized(user) {
		view.UserID = user.ID
	}
	if err := s.store.InsertContentView(ctx, view); err != nil {
		return err
	}
	return s.store.IncrementViewCount(ctx, contentType, oid)
}

// PopularMovies returns the most viewed movies in the period, backfilled by
// overall view count when the window has too few events.
func (s *Popularity) PopularMovies(ctx context.Context, limit int, period string, opts ReadOptions) (*RailPage, error) {
	limit = clampRailLimit(limit)
	since := periodStart(period, time.Now().UTC())

	key := cachekey.PopularMovies(limit, period)
	return cache.GetOrLoad(ctx, s.cache, key, railTTL, opts.Refresh, func(ctx context.Context) (*RailPage, error) {
		items, err := s.rankMovies(ctx, since, limit)
		if err != nil {
			return nil, err
		}
		return &RailPage{Success: true, Data: items, Period: period}, nil
	})
}

// PopularShows is the show-side popularity rail.
func (s *Popularity) PopularShows(ctx context.Context, limit int, period string, opts ReadOptions) (*RailPage, error) {
	limit = clampRailLimit(limit)
	since := periodStart(period, time.Now().UTC())

	key := cachekey.PopularShows(limit, period)
	return cache.GetOrLoad(ctx, s.cache, key, railTTL, opts.Refresh, func(ctx context.Context) (*RailPage, error) {
		items, err := s.rankShows(ctx, since, limit)
		if err != nil {
			return nil, err
		}
		return &RailPage{Success: true, Data: items, Period: period}, nil
	})
}

// Trending interleaves the movie and show rankings into one rail ordered by
// windowed view count.
func (s *Popularity) Trending(ctx context.Context, limit int, period string, opts ReadOptions) (*RailPage, error) {
	limit = clampRailLimit(limit)
	since := periodStart(period, time.Now().UTC())

	key := cachekey.Trending(limit, period)
	return cache.GetOrLoad(ctx, s.cache, key, railTTL, opts.Refresh, func(ctx context.Context) (*RailPage, error) {
		movies, err := s.rankMovies(ctx, since, limit)
		if err != nil {
			return nil, err
		}
		shows, err := s.rankShows(ctx, since, limit)
		if err != nil {
			return nil, err
		}

		combined := append(movies, shows...)
		sort.SliceStable(combined, func(i, j int) bool {
			return combined[i].Views > combined[j].Views
		})
		if len(combined) > limit {
			combined = combined[:limit]
		}
		return &RailPage{Success: true, Data: combined, Period: period}, nil
	})
}

// RecentlyAdded merges the newest movies and episodes into one rail ordered
// by creation time.
func (s *Popularity) RecentlyAdded(ctx context.Context, limit int, opts ReadOptions) (*RecentPage, error) {
	limit = clampRailLimit(limit)

	key := cachekey.RecentlyAdded(limit)
	return cache.GetOrLoad(ctx, s.cache, key, railTTL, opts.Refresh, func(ctx context.Context) (*RecentPage, error) {
		movies, err := s.store.RecentMovies(ctx, limit)
		if err != nil {
			return nil, err
		}
		episodes, err := s.store.RecentEpisodes(ctx, limit)
		if err != nil {
			return nil, err
		}

		items := make([]RecentItem, 0, len(movies)+len(episodes))
		for _, m := range movies {
			items = append(items, RecentItem{
				ID:      m.ID,
				Title:   m.Title,
				Image:   m.Image,
				Type:    document.TypeMovie,
				AddedAt: m.CreatedAt,
			})
		}
		for _, ep := range episodes {
			items = append(items, RecentItem{
				ID:      ep.ID,
				Title:   ep.Title,
				Image:   ep.Image,
				Type:    document.TypeEpisode,
				AddedAt: ep.CreatedAt,
			})
		}

		sort.SliceStable(items, func(i, j int) bool {
			return items[i].AddedAt.After(items[j].AddedAt)
		})
		if len(items) > limit {
			items = items[:limit]
		}
		return &RecentPage{Success: true, Data: items}, nil
	})
}

func (s *Popularity) rankMovies(ctx context.Context, since time.Time, limit int) ([]RankedItem, error) {
	counts, err := s.store.TopViewedSince(ctx, document.TypeMovie, since, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, len(counts))
	for i, c := range counts {
		ids[i] = c.ContentID
	}
	movies, err := s.store.MoviesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]RankedItem, 0, limit)
	for _, c := range counts {
		m, ok := movies[c.ContentID]
		if !ok {
			continue
		}
		items = append(items, RankedItem{
			ID:     m.ID,
			Title:  m.Title,
			Image:  m.Image,
			Year:   m.ReleaseYear,
			Rating: m.Rating,
			Type:   document.TypeMovie,
			Views:  c.Views,
		})
	}

	if len(items) < limit {
		backfill, err := s.store.MoviesByOverallViews(ctx, ids, limit-len(items))
		if err != nil {
			return nil, err
		}
		for _, m := range backfill {
			items = append(items, RankedItem{
				ID:     m.ID,
				Title:  m.Title,
				Image:  m.Image,
				Year:   m.ReleaseYear,
				Rating: m.Rating,
				Type:   document.TypeMovie,
				Views:  m.ViewCount,
			})
		}
	}
	return items, nil
}

func (s *Popularity) rankShows(ctx context.Context, since time.Time, limit int) ([]RankedItem, error) {
	counts, err := s.store.TopViewedSince(ctx, document.TypeShow, since, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, len(counts))
	for i, c := range counts {
		ids[i] = c.ContentID
	}
	shows, err := s.store.ShowsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]RankedItem, 0, limit)
	for _, c := range counts {
		sh, ok := shows[c.ContentID]
		if !ok {
			continue
		}
		items = append(items, RankedItem{
			ID:     sh.ID,
			Title:  sh.Title,
			Image:  sh.Image,
			Year:   sh.StartYear,
			Rating: sh.Rating,
			Type:   document.TypeShow,
			Views:  c.Views,
		})
	}

	if len(items) < limit {
		backfill, err := s.store.ShowsByOverallViews(ctx, ids, limit-len(items))
		if err != nil {
			return nil, err
		}
		for _, sh := range backfill {
			items = append(items, RankedItem{
				ID:     sh.ID,
				Title:  sh.Title,
				Image:  sh.Image,
				Year:   sh.StartYear,
				Rating: sh.Rating,
				Type:   document.TypeShow,
				Views:  sh.ViewCount,
			})
		}
	}
	return items, nil
}
