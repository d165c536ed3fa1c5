// Package service implements the catalog's read and write operations behind
// the HTTP layer: read-through caching per resource family, synchronous
// cache invalidation after every successful write, related-item scoring on
// detail views, and the response payload shapes that get cached.
package service

import (
	"errors"
	"time"

	"github.com/odelu/catalog/internal/document"
)

// Errors surfaced to the HTTP layer. Invalid ids and missing resources are
// client errors; everything else coming out of the document store is a
// server error. Cache failures never appear here.
var (
	ErrInvalidID  = document.ErrInvalidID
	ErrNotFound   = document.ErrNotFound
	ErrForbidden  = errors.New("service: forbidden")
	ErrValidation = errors.New("service: validation")
)

// Per-family TTLs (§ read-through policy). Comments use the configurable
// TTL carried by the comments service.
const (
	detailTTL   = 30 * time.Minute
	listTTL     = 5 * time.Minute
	featuredTTL = 10 * time.Minute
	seasonTTL   = 15 * time.Minute
	railTTL     = 5 * time.Minute
	suggestTTL  = time.Minute
)

// Identity is the resolved user attached to a request by the auth
// middleware. A nil *Identity means an anonymous, cacheable request.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == "admin"
}

// personalized reports whether a response for this identity must bypass the
// shared cache.
func personalized(user *Identity) bool {
	return user != nil && user.ID != ""
}

// ReadOptions carry the per-request cache controls common to all read
// operations.
type ReadOptions struct {
	// Refresh skips both the cache read and the cache write for this
	// request only.
	Refresh bool
}

// Pagination is the shared page envelope.
type Pagination struct {
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	Pages   int64 `json:"pages"`
	HasMore bool  `json:"hasMore,omitempty"`
}

func paginate(total int64, page, limit int) Pagination {
	pages := (total + int64(limit) - 1) / int64(limit)
	return Pagination{
		Total:   total,
		Page:    page,
		Pages:   pages,
		HasMore: int64(page*limit) < total,
	}
}

// WatchStatus is the personalized progress merged into detail views after
// the cache read. It is never part of a cached payload.
type WatchStatus struct {
	Progress    float64   `json:"progress"`
	Completed   bool      `json:"completed"`
	LastWatched time.Time `json:"lastWatched"`
}

func watchStatusOf(rec *document.WatchRecord) *WatchStatus {
	if rec == nil {
		return nil
	}
	return &WatchStatus{
		Progress:    rec.Progress,
		Completed:   rec.Completed,
		LastWatched: rec.WatchedAt,
	}
}

// clampPage normalizes pagination inputs.
func clampPage(page, limit, defaultLimit, maxLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}
