// Package httpapi exposes the catalog over HTTP: a chi router with JWT
// identity resolution, thin handlers that delegate to the service layer,
// and health endpoints for the store and cache.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/odelu/catalog/internal/service"
	"github.com/odelu/catalog/pkg/cache"
)

// Server holds the wired services and builds the router.
type Server struct {
	log       *slog.Logger
	jwtSecret []byte
	cache     *cache.Store
	storePing func(ctx context.Context) error
	cachePing func(ctx context.Context) error

	movies     *service.Movies
	shows      *service.Shows
	comments   *service.Comments
	users      *service.Users
	watchlist  *service.Watchlist
	popularity *service.Popularity
	search     *service.Search
	reports    *service.Reports
	admin      *service.Admin
}

// Deps carries everything the server needs.
type Deps struct {
	Log       *slog.Logger
	JWTSecret string
	Cache     *cache.Store
	StorePing func(ctx context.Context) error
	CachePing func(ctx context.Context) error

	Movies     *service.Movies
	Shows      *service.Shows
	Comments   *service.Comments
	Users      *service.Users
	Watchlist  *service.Watchlist
	Popularity *service.Popularity
	Search     *service.Search
	Reports    *service.Reports
	Admin      *service.Admin
}

// New builds the server.
func New(d Deps) *Server {
	return &Server{
		log:        d.Log,
		jwtSecret:  []byte(d.JWTSecret),
		cache:      d.Cache,
		storePing:  d.StorePing,
		cachePing:  d.CachePing,
		movies:     d.Movies,
		shows:      d.Shows,
		comments:   d.Comments,
		users:      d.Users,
		watchlist:  d.Watchlist,
		popularity: d.Popularity,
		search:     d.Search,
		reports:    d.Reports,
		admin:      d.Admin,
	}
}

// Router assembles the full route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.resolveIdentity)

	r.Get("/health", s.handleHealth)
	r.Get("/health/cache", s.handleCacheHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/movies", func(r chi.Router) {
			r.Get("/", s.handleMovieList)
			r.Get("/featured", s.handleMoviesFeatured)
			r.Get("/{id}", s.handleMovieDetail)
		})

		r.Route("/shows", func(r chi.Router) {
			r.Get("/", s.handleShowList)
			r.Get("/featured", s.handleShowsFeatured)
			r.Get("/{id}", s.handleShowDetail)
			r.Get("/{id}/seasons/{seasonID}/episodes", s.handleSeasonEpisodes)
		})
		r.Get("/episodes/{id}", s.handleEpisodeDetail)

		r.Get("/search/suggestions", s.handleSuggestions)
		r.Get("/popular/movies", s.handlePopularMovies)
		r.Get("/popular/shows", s.handlePopularShows)
		r.Get("/trending", s.handleTrending)
		r.Get("/recently-added", s.handleRecentlyAdded)
		r.Post("/views/{contentType}/{id}", s.handleTrackView)

		r.Route("/comments", func(r chi.Router) {
			r.Get("/{contentType}/{id}", s.handleCommentList)
			r.With(s.requireAuth).Post("/", s.handleCommentCreate)
		})
		r.Route("/comment/{id}", func(r chi.Router) {
			r.Get("/", s.handleCommentGet)
			r.Get("/tree", s.handleCommentTree)
			r.With(s.requireAuth).Put("/", s.handleCommentUpdate)
			r.With(s.requireAuth).Delete("/", s.handleCommentDelete)
		})

		r.Get("/users/{id}/comments", s.handleUserComments)
		r.Get("/users/{id}/watchlist", s.handlePublicWatchlist)

		r.Route("/users/me", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleProfile)
			r.Patch("/", s.handleProfileUpdate)
			r.Delete("/", s.handleAccountDelete)
			r.Post("/watch", s.handleWatchProgress)
			r.Get("/watch-history", s.handleWatchHistory)
			r.Delete("/watch-history", s.handleWatchHistoryDelete)
			r.Get("/continue-watching", s.handleContinueWatching)
			r.Route("/watchlist", func(r chi.Router) {
				r.Get("/", s.handleWatchlist)
				r.Post("/", s.handleWatchlistAdd)
				r.Get("/{contentType}/{id}", s.handleWatchlistContains)
				r.Delete("/{contentType}/{id}", s.handleWatchlistRemove)
			})
		})

		r.Post("/reports", s.handleReportFile)

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Route("/reports", func(r chi.Router) {
				r.Get("/", s.handleReportList)
				r.Get("/{id}", s.handleReportGet)
				r.Patch("/{id}", s.handleReportStatus)
				r.Delete("/{id}", s.handleReportDelete)
			})

			r.Post("/movies", s.handleMovieCreate)
			r.Patch("/movies/{id}", s.handleMovieUpdate)
			r.Delete("/movies/{id}", s.handleMovieDelete)

			r.Post("/shows", s.handleShowCreate)
			r.Patch("/shows/{id}", s.handleShowUpdate)
			r.Delete("/shows/{id}", s.handleShowDelete)

			r.Post("/shows/{id}/seasons", s.handleSeasonCreate)
			r.Patch("/seasons/{id}", s.handleSeasonUpdate)
			r.Delete("/seasons/{id}", s.handleSeasonDelete)

			r.Post("/seasons/{id}/episodes", s.handleEpisodesCreate)
			r.Patch("/episodes/{id}", s.handleEpisodeUpdate)
			r.Delete("/episodes/{id}", s.handleEpisodeDelete)
		})
	})

	return r
}
