package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odelu/catalog/internal/document"
	"github.com/odelu/catalog/pkg/cache"
	"github.com/odelu/catalog/pkg/cachekey"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	featuredLimit   = 10
)

// MovieStore is the slice of the document store the movies service reads.
type MovieStore interface {
	MovieByID(ctx context.Context, id primitive.ObjectID) (*document.Movie, error)
	ListMovies(ctx context.Context, f document.ListFilter) ([]document.Movie, int64, error)
	FeaturedMovies(ctx context.Context, limit int) ([]document.Movie, error)
	RelatedMovieCandidates(ctx context.Context, exclude primitive.ObjectID) ([]document.Movie, error)
	WatchRecordFor(ctx context.Context, userID, contentType string, contentID primitive.ObjectID) (*document.WatchRecord, error)
}

// Movies serves the public movie endpoints through the read-through cache.
type Movies struct {
	store MovieStore
	cache *cache.Store
}

// NewMovies wires the movies service.
func NewMovies(store MovieStore, c *cache.Store) *Movies {
	return &Movies{store: store, cache: c}
}

// MovieItem is a movie with its content-type discriminator, the shape
// clients receive in listings.
type MovieItem struct {
	document.Movie
	Type string `json:"type"`
}

// RelatedItem is the compact related-content card on a detail view.
type RelatedItem struct {
	ID     primitive.ObjectID `json:"_id"`
	Title  string             `json:"title"`
	Image  string             `json:"image,omitempty"`
	Year   int                `json:"year,omitempty"`
	Rating float64            `json:"rating,omitempty"`
	Type   string             `json:"type"`
}

// MovieListPage is the cached payload of a movie listing.
type MovieListPage struct {
	Success    bool        `json:"success"`
	Data       []MovieItem `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// MovieFeatured is the cached payload of the featured rail.
type MovieFeatured struct {
	Success bool        `json:"success"`
	Data    []MovieItem `json:"data"`
}

// MovieDetail is a movie detail view. WatchStatus is merged in after the
// cache read for authenticated users and is always null in cached payloads.
type MovieDetail struct {
	Success     bool          `json:"success"`
	Data        MovieItem     `json:"data"`
	Related     []RelatedItem `json:"related"`
	WatchStatus *WatchStatus  `json:"watchStatus,omitempty"`
}

func movieItems(movies []document.Movie) []MovieItem {
	items := make([]MovieItem, len(movies))
	for i, m := range movies {
		items[i] = MovieItem{Movie: m, Type: document.TypeMovie}
	}
	return items
}

// List returns one page of movies, optionally filtered by tag and search
// term.
func (s *Movies) List(ctx context.Context, f document.ListFilter, opts ReadOptions) (*MovieListPage, error) {
	f.Page, f.Limit = clampPage(f.Page, f.Limit, defaultPageSize, maxPageSize)
	key := cachekey.MovieList(f.Tag, f.Search, f.Page, f.Limit)

	return cache.GetOrLoad(ctx, s.cache, key, listTTL, opts.Refresh, func(ctx context.Context) (*MovieListPage, error) {
		movies, total, err := s.store.ListMovies(ctx, f)
		if err != nil {
			return nil, err
		}
		return &MovieListPage{
			Success:    true,
			Data:       movieItems(movies),
			Pagination: paginate(total, f.Page, f.Limit),
		}, nil
	})
}

// Featured returns the curated featured-movies rail.
func (s *Movies) Featured(ctx context.Context, opts ReadOptions) (*MovieFeatured, error) {
	return cache.GetOrLoad(ctx, s.cache, cachekey.MoviesFeatured(), featuredTTL, opts.Refresh, func(ctx context.Context) (*MovieFeatured, error) {
		movies, err := s.store.FeaturedMovies(ctx, featuredLimit)
		if err != nil {
			return nil, err
		}
		return &MovieFeatured{Success: true, Data: movieItems(movies)}, nil
	})
}

// Detail returns one movie with its scored related items. Requests from
// authenticated users bypass the shared cache entirely and get the user's
// watch status merged into the response.
func (s *Movies) Detail(ctx context.Context, id string, user *Identity, opts ReadOptions) (*MovieDetail, error) {
	oid, err := document.ParseID(id)
	if err != nil {
		return nil, err
	}

	bypass := opts.Refresh || personalized(user)
	detail, err := cache.GetOrLoad(ctx, s.cache, cachekey.MovieDetail(id), detailTTL, bypass, func(ctx context.Context) (*MovieDetail, error) {
		movie, err := s.store.MovieByID(ctx, oid)
		if err != nil {
			return nil, err
		}

		candidates, err := s.store.RelatedMovieCandidates(ctx, oid)
		if err != nil {
			return nil, err
		}

		reference := ScoreInput{Title: movie.Title, Tags: movie.Tags}
		top := rankRelated(candidates, reference, func(m document.Movie) ScoreInput {
			return ScoreInput{Title: m.Title, Tags: m.Tags, Rating: m.Rating}
		})

		related := make([]RelatedItem, len(top))
		for i, m := range top {
			related[i] = RelatedItem{
				ID:     m.ID,
				Title:  m.Title,
				Image:  m.Image,
				Year:   m.ReleaseYear,
				Rating: m.Rating,
				Type:   document.TypeMovie,
			}
		}

		return &MovieDetail{
			Success: true,
			Data:    MovieItem{Movie: *movie, Type: document.TypeMovie},
			Related: related,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	if personalized(user) {
		rec, err := s.store.WatchRecordFor(ctx, user.ID, document.TypeMovie, oid)
		if err != nil && !errors.Is(err, document.ErrNotFound) {
			return nil, err
		}
		detail.WatchStatus = watchStatusOf(rec)
	}
	return detail, nil
}
