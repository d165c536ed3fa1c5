package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odelu/catalog/internal/document"
	"github.com/odelu/catalog/pkg/cache"
	"github.com/odelu/catalog/pkg/cachekey"
)

// ShowStore is the slice of the document store the shows service reads.
type ShowStore interface {
	ShowByID(ctx context.Context, id primitive.ObjectID) (*document.Show, error)
	ListShows(ctx context.Context, f document.ListFilter) ([]document.Show, int64, error)
	FeaturedShows(ctx context.Context, limit int) ([]document.Show, error)
	RelatedShowCandidates(ctx context.Context, exclude primitive.ObjectID) ([]document.Show, error)
	SeasonsByShow(ctx context.Context, showID primitive.ObjectID) ([]document.Season, error)
	SeasonOfShow(ctx context.Context, seasonID, showID primitive.ObjectID) (*document.Season, error)
	EpisodesBySeason(ctx context.Context, seasonID primitive.ObjectID, page, limit int) ([]document.Episode, int64, error)
	EpisodeByID(ctx context.Context, id primitive.ObjectID) (*document.Episode, error)
	WatchRecordFor(ctx context.Context, userID, contentType string, contentID primitive.ObjectID) (*document.WatchRecord, error)
}

// Shows serves the public show, season and episode endpoints.
type Shows struct {
	store ShowStore
	cache *cache.Store
}

// NewShows wires the shows service.
func NewShows(store ShowStore, c *cache.Store) *Shows {
	return &Shows{store: store, cache: c}
}

// ShowItem is a show with its content-type discriminator.
type ShowItem struct {
	document.Show
	Type string `json:"type"`
}

// ShowListPage is the cached payload of a show listing.
type ShowListPage struct {
	Success    bool       `json:"success"`
	Data       []ShowItem `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// ShowFeatured is the cached payload of the featured rail.
type ShowFeatured struct {
	Success bool       `json:"success"`
	Data    []ShowItem `json:"data"`
}

// ShowDetail is a show detail view with its seasons and scored related
// shows.
type ShowDetail struct {
	Success bool              `json:"success"`
	Data    ShowItem          `json:"data"`
	Seasons []document.Season `json:"seasons"`
	Related []RelatedItem     `json:"related"`
}

// EpisodePage is the cached payload of a season's episode listing.
type EpisodePage struct {
	Success    bool               `json:"success"`
	Data       []document.Episode `json:"data"`
	Pagination *Pagination        `json:"pagination,omitempty"`
}

// EpisodeDetail is an episode detail view. WatchStatus is merged in after
// the cache read for authenticated users.
type EpisodeDetail struct {
	Success     bool             `json:"success"`
	Data        document.Episode `json:"data"`
	WatchStatus *WatchStatus     `json:"watchStatus,omitempty"`
}

func showItems(shows []document.Show) []ShowItem {
	items := make([]ShowItem, len(shows))
	for i, sh := range shows {
		items[i] = ShowItem{Show: sh, Type: document.TypeShow}
	}
	return items
}

// List returns one page of shows, optionally filtered by tag and search
// term.
func (s *Shows) List(ctx context.Context, f document.ListFilter, opts ReadOptions) (*ShowListPage, error) {
	f.Page, f.Limit = clampPage(f.Page, f.Limit, defaultPageSize, maxPageSize)
	key := cachekey.ShowList(f.Tag, f.Search, f.Page, f.Limit)

	return cache.GetOrLoad(ctx, s.cache, key, listTTL, opts.Refresh, func(ctx context.Context) (*ShowListPage, error) {
		shows, total, err := s.store.ListShows(ctx, f)
		if err != nil {
			return nil, err
		}
		return &ShowListPage{
			Success:    true,
			Data:       showItems(shows),
			Pagination: paginate(total, f.Page, f.Limit),
		}, nil
	})
}

// Featured returns the curated featured-shows rail.
func (s *Shows) Featured(ctx context.Context, opts ReadOptions) (*ShowFeatured, error) {
	return cache.GetOrLoad(ctx, s.cache, cachekey.ShowsFeatured(), featuredTTL, opts.Refresh, func(ctx context.Context) (*ShowFeatured, error) {
		shows, err := s.store.FeaturedShows(ctx, featuredLimit)
		if err != nil {
			return nil, err
		}
		return &ShowFeatured{Success: true, Data: showItems(shows)}, nil
	})
}

// Detail returns one show with its seasons and scored related shows.
func (s *Shows) Detail(ctx context.Context, id string, opts ReadOptions) (*ShowDetail, error) {
	oid, err := document.ParseID(id)
	if err != nil {
		return nil, err
	}

	return cache.GetOrLoad(ctx, s.cache, cachekey.ShowDetail(id), detailTTL, opts.Refresh, func(ctx context.Context) (*ShowDetail, error) {
		show, err := s.store.ShowByID(ctx, oid)
		if err != nil {
			return nil, err
		}

		seasons, err := s.store.SeasonsByShow(ctx, oid)
		if err != nil {
			return nil, err
		}

		candidates, err := s.store.RelatedShowCandidates(ctx, oid)
		if err != nil {
			return nil, err
		}

		reference := ScoreInput{Title: show.Title, Tags: show.Tags}
		top := rankRelated(candidates, reference, func(sh document.Show) ScoreInput {
			return ScoreInput{Title: sh.Title, Tags: sh.Tags, Rating: sh.Rating}
		})

		related := make([]RelatedItem, len(top))
		for i, sh := range top {
			related[i] = RelatedItem{
				ID:     sh.ID,
				Title:  sh.Title,
				Image:  sh.Image,
				Year:   sh.StartYear,
				Rating: sh.Rating,
				Type:   document.TypeShow,
			}
		}

		if seasons == nil {
			seasons = []document.Season{}
		}
		return &ShowDetail{
			Success: true,
			Data:    ShowItem{Show: *show, Type: document.TypeShow},
			Seasons: seasons,
			Related: related,
		}, nil
	})
}

// SeasonEpisodes returns one page of a season's episodes, verifying the
// season belongs to the show. A zero limit returns the whole season under
// its own cache key.
func (s *Shows) SeasonEpisodes(ctx context.Context, showID, seasonID string, page, limit int, opts ReadOptions) (*EpisodePage, error) {
	showOID, err := document.ParseID(showID)
	if err != nil {
		return nil, err
	}
	seasonOID, err := document.ParseID(seasonID)
	if err != nil {
		return nil, err
	}

	var key string
	if limit > 0 {
		page, limit = clampPage(page, limit, defaultPageSize, maxPageSize)
		key = cachekey.SeasonEpisodes(showID, seasonID, page, limit)
	} else {
		key = cachekey.SeasonAllEpisodes(showID, seasonID)
	}

	return cache.GetOrLoad(ctx, s.cache, key, seasonTTL, opts.Refresh, func(ctx context.Context) (*EpisodePage, error) {
		if _, err := s.store.SeasonOfShow(ctx, seasonOID, showOID); err != nil {
			return nil, err
		}

		episodes, total, err := s.store.EpisodesBySeason(ctx, seasonOID, page, limit)
		if err != nil {
			return nil, err
		}
		if episodes == nil {
			episodes = []document.Episode{}
		}

		result := &EpisodePage{Success: true, Data: episodes}
		if limit > 0 {
			p := paginate(total, page, limit)
			result.Pagination = &p
		}
		return result, nil
	})
}

// Episode returns one episode. Requests from authenticated users bypass
// the shared cache and get watch status merged in.
func (s *Shows) Episode(ctx context.Context, id string, user *Identity, opts ReadOptions) (*EpisodeDetail, error) {
	oid, err := document.ParseID(id)
	if err != nil {
		return nil, err
	}

	bypass := opts.Refresh || personalized(user)
	detail, err := cache.GetOrLoad(ctx, s.cache, cachekey.EpisodeDetail(id), detailTTL, bypass, func(ctx context.Context) (*EpisodeDetail, error) {
		episode, err := s.store.EpisodeByID(ctx, oid)
		if err != nil {
			return nil, err
		}
		return &EpisodeDetail{Success: true, Data: *episode}, nil
	})
	if err != nil {
		return nil, err
	}

	if personalized(user) {
		rec, err := s.store.WatchRecordFor(ctx, user.ID, document.TypeEpisode, oid)
		if err != nil && !errors.Is(err, document.ErrNotFound) {
			return nil, err
		}
		detail.WatchStatus = watchStatusOf(rec)
	}
	return detail, nil
}
