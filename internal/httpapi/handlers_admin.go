package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odelu/catalog/internal/document"
	"github.com/odelu/catalog/internal/service"
)

// --- Reports ---

func (s *Server) handleReportFile(w http.ResponseWriter, r *http.Request) {
	var body service.ReportInput
	if err := decodeBody(r, &body); err != nil {
		s.respondError(w, r, err)
		return
	}

	report, err := s.reports.File(r.Context(), identity(r), body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, map[string]any{"success": true, "data": report})
}

func (s *Server) handleReportList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := s.reports.List(r.Context(), identity(r),
		q.Get("status"),
		q.Get("contentType"),
		queryInt(r, "page", 1),
		queryInt(r, "limit", 0))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, page)
}

func (s *Server) handleReportGet(w http.ResponseWriter, r *http.Request) {
	report, err := s.reports.Get(r.Context(), identity(r), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, map[string]any{"success": true, "data": report})
}

func (s *Server) handleReportStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.reports.SetStatus(r.Context(), identity(r), chi.URLParam(r, "id"), body.Status); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleReportDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.reports.Delete(r.Context(), identity(r), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, map[string]bool{"success": true})
}

// --- Catalog mutations ---

func (s *Server) handleMovieCreate(w http.ResponseWriter, r *http.Request) {
	var movie document.Movie
	if err := decodeBody(r, &movie); err != nil {
		s.respondError(w, r, err)
		return
	}

	created, err := s.admin.CreateMovie(r.Context(), identity(r), &movie)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, map[string]any{"success": true, "data": created})
}

func (s *Server) handleMovieUpdate(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := decodeBody(r, &fields); err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.admin.UpdateMovie(r.Context(), identity(r), chi.URLParam(r, "id"), fields); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleMovieDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.DeleteMovie(r.Context(), identity(r), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleShowCreate(w http.ResponseWriter, r *http.Request) {
	var show document.Show
	if err := decodeBody(r, &show); err != nil {
		s.respondError(w, r, err)
		return
	}

	created, err := s.admin.CreateShow(r.Context(), identity(r), &show)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, map[string]any{"success": true, "data": created})
}

func (s *Server) handleShowUpdate(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := decodeBody(r, &fields); err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.admin.UpdateShow(r.Context(), identity(r), chi.URLParam(r, "id"), fields); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleShowDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.DeleteShow(r.Context(), identity(r), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleSeasonCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SeasonNumber int `json:"seasonNumber"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.respondError(w, r, err)
		return
	}

	season, err := s.admin.CreateSeason(r.Context(), identity(r), chi.URLParam(r, "id"), body.SeasonNumber)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, map[string]any{"success": true, "data": season})
}

func (s *Server) handleSeasonUpdate(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := decodeBody(r, &fields); err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.admin.UpdateSeason(r.Context(), identity(r), chi.URLParam(r, "id"), fields); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleSeasonDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.DeleteSeason(r.Context(), identity(r), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleEpisodesCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Episodes []document.Episode `json:"episodes"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.respondError(w, r, err)
		return
	}

	ids, err := s.admin.CreateEpisodes(r.Context(), identity(r), chi.URLParam(r, "id"), body.Episodes)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, map[string]any{"success": true, "ids": ids})
}

func (s *Server) handleEpisodeUpdate(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := decodeBody(r, &fields); err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.admin.UpdateEpisode(r.Context(), identity(r), chi.URLParam(r, "id"), fields); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleEpisodeDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.DeleteEpisode(r.Context(), identity(r), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, map[string]bool{"success": true})
}
