package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odelu/catalog/internal/service"
)

// --- Comments ---

func (s *Server) handleCommentList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := s.comments.List(r.Context(),
		chi.URLParam(r, "contentType"),
		chi.URLParam(r, "id"),
		q.Get("parent_id"),
		queryInt(r, "limit", 0),
		queryInt(r, "skip", 0),
		readOptions(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, page)
}

func (s *Server) handleCommentGet(w http.ResponseWriter, r *http.Request) {
	result, err := s.comments.Get(r.Context(), chi.URLParam(r, "id"), readOptions(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, result)
}

func (s *Server) handleCommentTree(w http.ResponseWriter, r *http.Request) {
	tree, err := s.comments.Tree(r.Context(), chi.URLParam(r, "id"), readOptions(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, tree)
}

func (s *Server) handleUserComments(w http.ResponseWriter, r *http.Request) {
	page, err := s.comments.ByUser(r.Context(),
		chi.URLParam(r, "id"),
		queryInt(r, "limit", 0),
		queryInt(r, "skip", 0),
		readOptions(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, page)
}

func (s *Server) handleCommentCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ContentType string `json:"contentType"`
		ContentID   string `json:"contentId"`
		ParentID    string `json:"parentId"`
		Content     string `json:"content"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.respondError(w, r, err)
		return
	}

	comment, err := s.comments.Create(r.Context(), identity(r),
		body.ContentType, body.ContentID, body.ParentID, body.Content)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, service.CommentResult{Success: true, Data: *comment})
}

func (s *Server) handleCommentUpdate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.respondError(w, r, err)
		return
	}

	comment, err := s.comments.Update(r.Context(), identity(r), chi.URLParam(r, "id"), body.Content)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, service.CommentResult{Success: true, Data: *comment})
}

func (s *Server) handleCommentDelete(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.comments.Delete(r.Context(), identity(r), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, map[string]any{"success": true, "deleted": deleted})
}

// --- Account ---

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.Profile(r.Context(), identity(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, map[string]any{"success": true, "data": user})
}

func (s *Server) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	var body service.ProfileUpdate
	if err := decodeBody(r, &body); err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.users.UpdateProfile(r.Context(), identity(r), body); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleAccountDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.users.DeleteAccount(r.Context(), identity(r)); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleWatchProgress(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ContentType string  `json:"contentType"`
		ContentID   string  `json:"contentId"`
		Progress    float64 `json:"progress"`
		Completed   bool    `json:"completed"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.respondError(w, r, err)
		return
	}

	rec, err := s.users.SetWatchProgress(r.Context(), identity(r),
		body.ContentType, body.ContentID, body.Progress, body.Completed)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, map[string]any{"success": true, "data": rec})
}

func (s *Server) handleWatchHistory(w http.ResponseWriter, r *http.Request) {
	page, err := s.users.WatchHistory(r.Context(), identity(r), readOptions(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, page)
}

func (s *Server) handleWatchHistoryDelete(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.users.DeleteHistory(r.Context(), identity(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, map[string]any{"success": true, "deleted": deleted})
}

func (s *Server) handleContinueWatching(w http.ResponseWriter, r *http.Request) {
	page, err := s.users.ContinueWatching(r.Context(), identity(r), readOptions(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, page)
}

// --- Watchlist ---

func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	page, err := s.watchlist.Mine(r.Context(), identity(r), readOptions(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, page)
}

func (s *Server) handlePublicWatchlist(w http.ResponseWriter, r *http.Request) {
	page, err := s.watchlist.Public(r.Context(), chi.URLParam(r, "id"), readOptions(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, page)
}

func (s *Server) handleWatchlistAdd(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ContentType string `json:"contentType"`
		ContentID   string `json:"contentId"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.respondError(w, r, err)
		return
	}

	item, err := s.watchlist.Add(r.Context(), identity(r), body.ContentType, body.ContentID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if item == nil {
		s.respond(w, r, http.StatusOK, map[string]any{"success": true, "alreadySaved": true})
		return
	}
	s.respond(w, r, http.StatusCreated, map[string]any{"success": true, "data": item})
}

func (s *Server) handleWatchlistContains(w http.ResponseWriter, r *http.Request) {
	saved, err := s.watchlist.Contains(r.Context(), identity(r),
		chi.URLParam(r, "contentType"),
		chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, map[string]any{"success": true, "saved": saved})
}

func (s *Server) handleWatchlistRemove(w http.ResponseWriter, r *http.Request) {
	err := s.watchlist.Remove(r.Context(), identity(r),
		chi.URLParam(r, "contentType"),
		chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, map[string]bool{"success": true})
}
