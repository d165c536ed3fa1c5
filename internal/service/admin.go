package service

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odelu/catalog/internal/document"
)

// AdminStore is the slice of the document store the admin service uses.
type AdminStore interface {
	CreateMovie(ctx context.Context, m *document.Movie) (primitive.ObjectID, error)
	UpdateMovie(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	DeleteMovie(ctx context.Context, id primitive.ObjectID) error
	CreateShow(ctx context.Context, sh *document.Show) (primitive.ObjectID, error)
	UpdateShow(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	DeleteShow(ctx context.Context, id primitive.ObjectID) error
	ShowExists(ctx context.Context, id primitive.ObjectID) (bool, error)
	CreateSeason(ctx context.Context, season *document.Season) (primitive.ObjectID, error)
	UpdateSeason(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	DeleteSeason(ctx context.Context, id primitive.ObjectID) error
	SeasonByID(ctx context.Context, id primitive.ObjectID) (*document.Season, error)
	CreateEpisodes(ctx context.Context, seasonID primitive.ObjectID, episodes []document.Episode) ([]primitive.ObjectID, error)
	UpdateEpisode(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	DeleteEpisode(ctx context.Context, id primitive.ObjectID) error
}

// Admin serves catalog mutations. Every successful write purges the whole
// affected key family: a movie edit can move listings, featured rails,
// popularity rankings and suggestions all at once, so precise invalidation
// buys nothing here.
type Admin struct {
	store AdminStore
	inv   *Invalidator
}

// NewAdmin wires the admin service.
func NewAdmin(store AdminStore, inv *Invalidator) *Admin {
	return &Admin{store: store, inv: inv}
}

// Updatable fields per collection. Anything else in an update body is
// rejected rather than silently dropped.
var (
	movieFields   = fieldSet("title", "description", "image", "coverImage", "releaseYear", "tags", "featured", "rating", "duration", "links")
	showFields    = fieldSet("title", "description", "image", "coverImage", "startYear", "endYear", "tags", "featured", "rating")
	seasonFields  = fieldSet("seasonNumber")
	episodeFields = fieldSet("episodeNumber", "title", "description", "image", "duration", "links")
)

func fieldSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func updateFields(in map[string]any, allowed map[string]struct{}) (bson.M, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}
	fields := bson.M{}
	for k, v := range in {
		if _, ok := allowed[k]; !ok {
			return nil, fmt.Errorf("%w: unknown field %q", ErrValidation, k)
		}
		fields[k] = v
	}
	return fields, nil
}

func requireAdmin(user *Identity) error {
	if !user.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// CreateMovie inserts a movie and purges the movie key families.
func (s *Admin) CreateMovie(ctx context.Context, user *Identity, m *document.Movie) (*document.Movie, error) {
	if err := requireAdmin(user); err != nil {
		return nil, err
	}
	if strings.TrimSpace(m.Title) == "" {
		return nil, fmt.Errorf("%w: empty title", ErrValidation)
	}

	id, err := s.store.CreateMovie(ctx, m)
	if err != nil {
		return nil, err
	}
	m.ID = id

	s.inv.MovieChanged(ctx)
	return m, nil
}

// UpdateMovie applies a partial movie edit.
func (s *Admin) UpdateMovie(ctx context.Context, user *Identity, id string, in map[string]any) error {
	if err := requireAdmin(user); err != nil {
		return err
	}
	oid, err := document.ParseID(id)
	if err != nil {
		return err
	}
	fields, err := updateFields(in, movieFields)
	if err != nil {
		return err
	}

	if err := s.store.UpdateMovie(ctx, oid, fields); err != nil {
		return err
	}
	s.inv.MovieChanged(ctx)
	return nil
}

// DeleteMovie removes a movie.
func (s *Admin) DeleteMovie(ctx context.Context, user *Identity, id string) error {
	if err := requireAdmin(user); err != nil {
		return err
	}
	oid, err := document.ParseID(id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteMovie(ctx, oid); err != nil {
		return err
	}
	s.inv.MovieChanged(ctx)
	return nil
}

// CreateShow inserts a show and purges the show key families.
func (s *Admin) CreateShow(ctx context.Context, user *Identity, sh *document.Show) (*document.Show, error) {
	if err := requireAdmin(user); err != nil {
		return nil, err
	}
	if strings.TrimSpace(sh.Title) == "" {
		return nil, fmt.Errorf("%w: empty title", ErrValidation)
	}

	id, err := s.store.CreateShow(ctx, sh)
	if err != nil {
		return nil, err
	}
	sh.ID = id

	s.inv.ShowChanged(ctx)
	return sh, nil
}

// UpdateShow applies a partial show edit.
func (s *Admin) UpdateShow(ctx context.Context, user *Identity, id string, in map[string]any) error {
	if err := requireAdmin(user); err != nil {
		return err
	}
	oid, err := document.ParseID(id)
	if err != nil {
		return err
	}
	fields, err := updateFields(in, showFields)
	if err != nil {
		return err
	}

	if err := s.store.UpdateShow(ctx, oid, fields); err != nil {
		return err
	}
	s.inv.ShowChanged(ctx)
	return nil
}

// DeleteShow removes a show with its seasons and episodes.
func (s *Admin) DeleteShow(ctx context.Context, user *Identity, id string) error {
	if err := requireAdmin(user); err != nil {
		return err
	}
	oid, err := document.ParseID(id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteShow(ctx, oid); err != nil {
		return err
	}
	s.inv.ShowChanged(ctx)
	return nil
}

// CreateSeason inserts a season under a show.
func (s *Admin) CreateSeason(ctx context.Context, user *Identity, showID string, seasonNumber int) (*document.Season, error) {
	if err := requireAdmin(user); err != nil {
		return nil, err
	}
	if seasonNumber < 1 {
		return nil, fmt.Errorf("%w: season number must be positive", ErrValidation)
	}
	showOID, err := document.ParseID(showID)
	if err != nil {
		return nil, err
	}

	exists, err := s.store.ShowExists(ctx, showOID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, document.ErrNotFound
	}

	season := &document.Season{ShowID: showOID, SeasonNumber: seasonNumber}
	id, err := s.store.CreateSeason(ctx, season)
	if err != nil {
		return nil, err
	}
	season.ID = id

	s.inv.ShowChanged(ctx)
	return season, nil
}

// UpdateSeason applies a partial season edit.
func (s *Admin) UpdateSeason(ctx context.Context, user *Identity, id string, in map[string]any) error {
	if err := requireAdmin(user); err != nil {
		return err
	}
	oid, err := document.ParseID(id)
	if err != nil {
		return err
	}
	fields, err := updateFields(in, seasonFields)
	if err != nil {
		return err
	}

	if err := s.store.UpdateSeason(ctx, oid, fields); err != nil {
		return err
	}
	s.inv.ShowChanged(ctx)
	return nil
}

// DeleteSeason removes a season with its episodes.
func (s *Admin) DeleteSeason(ctx context.Context, user *Identity, id string) error {
	if err := requireAdmin(user); err != nil {
		return err
	}
	oid, err := document.ParseID(id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteSeason(ctx, oid); err != nil {
		return err
	}
	s.inv.ShowChanged(ctx)
	return nil
}

// CreateEpisodes bulk-inserts episodes into a season.
func (s *Admin) CreateEpisodes(ctx context.Context, user *Identity, seasonID string, episodes []document.Episode) ([]primitive.ObjectID, error) {
	if err := requireAdmin(user); err != nil {
		return nil, err
	}
	if len(episodes) == 0 {
		return nil, fmt.Errorf("%w: no episodes", ErrValidation)
	}
	for _, ep := range episodes {
		if strings.TrimSpace(ep.Title) == "" {
			return nil, fmt.Errorf("%w: empty episode title", ErrValidation)
		}
	}

	seasonOID, err := document.ParseID(seasonID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.SeasonByID(ctx, seasonOID); err != nil {
		return nil, err
	}

	ids, err := s.store.CreateEpisodes(ctx, seasonOID, episodes)
	if err != nil {
		return nil, err
	}

	s.inv.ShowChanged(ctx)
	return ids, nil
}

// UpdateEpisode applies a partial episode edit.
func (s *Admin) UpdateEpisode(ctx context.Context, user *Identity, id string, in map[string]any) error {
	if err := requireAdmin(user); err != nil {
		return err
	}
	oid, err := document.ParseID(id)
	if err != nil {
		return err
	}
	fields, err := updateFields(in, episodeFields)
	if err != nil {
		return err
	}

	if err := s.store.UpdateEpisode(ctx, oid, fields); err != nil {
		return err
	}
	s.inv.ShowChanged(ctx)
	return nil
}

// DeleteEpisode removes an episode and unlinks it from its season.
func (s *Admin) DeleteEpisode(ctx context.Context, user *Identity, id string) error {
	if err := requireAdmin(user); err != nil {
		return err
	}
	oid, err := document.ParseID(id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteEpisode(ctx, oid); err != nil {
		return err
	}
	s.inv.ShowChanged(ctx)
	return nil
}
