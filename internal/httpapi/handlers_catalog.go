package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odelu/catalog/internal/document"
	"github.com/odelu/catalog/internal/service"
)

func listFilter(r *http.Request) document.ListFilter {
	q := r.URL.Query()
	return document.ListFilter{
		Tag:    q.Get("tag"),
		Search: q.Get("search"),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 0),
	}
}

func (s *Server) handleMovieList(w http.ResponseWriter, r *http.Request) {
	page, err := s.movies.List(r.Context(), listFilter(r), readOptions(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, page)
}

func (s *Server) handleMoviesFeatured(w http.ResponseWriter, r *http.Request) {
	featured, err := s.movies.Featured(r.Context(), readOptions(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, featured)
}

func (s *Server) handleMovieDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.movies.Detail(r.Context(), chi.URLParam(r, "id"), identity(r), readOptions(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, detail)
}

func (s *Server) handleShowList(w http.ResponseWriter, r *http.Request) {
	page, err := s.shows.List(r.Context(), listFilter(r), readOptions(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, page)
}

func (s *Server) handleShowsFeatured(w http.ResponseWriter, r *http.Request) {
	featured, err := s.shows.Featured(r.Context(), readOptions(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, featured)
}

func (s *Server) handleShowDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.shows.Detail(r.Context(), chi.URLParam(r, "id"), readOptions(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, detail)
}

func (s *Server) handleSeasonEpisodes(w http.ResponseWriter, r *http.Request) {
	page, err := s.shows.SeasonEpisodes(r.Context(),
		chi.URLParam(r, "id"),
		chi.URLParam(r, "seasonID"),
		queryInt(r, "page", 1),
		queryInt(r, "limit", 0),
		readOptions(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, page)
}

func (s *Server) handleEpisodeDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.shows.Episode(r.Context(), chi.URLParam(r, "id"), identity(r), readOptions(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, detail)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	page, err := s.search.Suggest(r.Context(),
		r.URL.Query().Get("q"),
		queryInt(r, "limit", 0),
		readOptions(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, page)
}

func popularityArgs(r *http.Request) (int, string) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = service.PeriodWeek
	}
	return queryInt(r, "limit", 0), period
}

func (s *Server) handlePopularMovies(w http.ResponseWriter, r *http.Request) {
	limit, period := popularityArgs(r)
	rail, err := s.popularity.PopularMovies(r.Context(), limit, period, readOptions(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, rail)
}

func (s *Server) handlePopularShows(w http.ResponseWriter, r *http.Request) {
	limit, period := popularityArgs(r)
	rail, err := s.popularity.PopularShows(r.Context(), limit, period, readOptions(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, rail)
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	limit, period := popularityArgs(r)
	rail, err := s.popularity.Trending(r.Context(), limit, period, readOptions(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, rail)
}

func (s *Server) handleRecentlyAdded(w http.ResponseWriter, r *http.Request) {
	rail, err := s.popularity.RecentlyAdded(r.Context(), queryInt(r, "limit", 0), readOptions(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, rail)
}

func (s *Server) handleTrackView(w http.ResponseWriter, r *http.Request) {
	err := s.popularity.TrackView(r.Context(), identity(r),
		chi.URLParam(r, "contentType"),
		chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusAccepted, map[string]bool{"success": true})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.storePing(ctx); err != nil {
		// The body never carries the ping error: store addresses and
		// driver details stay out of responses.
		s.log.WarnContext(ctx, "store ping failed", "error", err)
		s.respond(w, r, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "store": "unreachable"})
		return
	}
	s.respond(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCacheHealth(w http.ResponseWriter, r *http.Request) {
	enabled := s.cache.Enabled()
	if !enabled || s.cachePing == nil {
		s.respond(w, r, http.StatusOK, map[string]any{"status": "ok", "enabled": enabled})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.cachePing(ctx); err != nil {
		s.log.WarnContext(ctx, "cache ping failed", "error", err)
		s.respond(w, r, http.StatusServiceUnavailable, map[string]any{"status": "degraded", "enabled": enabled})
		return
	}
	s.respond(w, r, http.StatusOK, map[string]any{"status": "ok", "enabled": enabled})
}
