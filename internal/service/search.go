package service

import (
	"context"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odelu/catalog/internal/document"
	"github.com/odelu/catalog/pkg/cache"
	"github.com/odelu/catalog/pkg/cachekey"
)

// Suggestion relevance scores per match tier. Tag-only matches rank below
// every title match.
const (
	scorePrefix    = 100
	scoreWordStart = 70
	scoreContains  = 60
	scoreTagOnly   = 40
)

const (
	defaultSuggestLimit = 10
	maxSuggestLimit     = 20
	minQueryLength      = 2
)

// SearchStore is the slice of the document store the search service uses.
type SearchStore interface {
	SuggestMovies(ctx context.Context, query string, tier document.SuggestionTier, exclude []primitive.ObjectID, limit int) ([]document.Movie, error)
	SuggestShows(ctx context.Context, query string, tier document.SuggestionTier, exclude []primitive.ObjectID, limit int) ([]document.Show, error)
}

// Search serves typeahead suggestions.
type Search struct {
	store SearchStore
	cache *cache.Store
}

// NewSearch wires the search service.
func NewSearch(store SearchStore, c *cache.Store) *Search {
	return &Search{store: store, cache: c}
}

// Suggestion is one typeahead result.
type Suggestion struct {
	ID    primitive.ObjectID `json:"_id"`
	Title string             `json:"title"`
	Image string             `json:"image,omitempty"`
	Year  int                `json:"year,omitempty"`
	Type  string             `json:"type"`
	Score int                `json:"score"`
}

// SuggestionPage is the cached payload of a suggestion query.
type SuggestionPage struct {
	Success bool         `json:"success"`
	Data    []Suggestion `json:"data"`
	Query   string       `json:"query"`
}

// Suggest runs the tiered typeahead: prefix matches first, then word-start
// matches, then substring matches in title or tags, each tier excluding
// everything already found. Queries shorter than two characters return an
// empty result without touching the store.
func (s *Search) Suggest(ctx context.Context, query string, limit int, opts ReadOptions) (*SuggestionPage, error) {
	query = strings.TrimSpace(query)
	if limit < 1 {
		limit = defaultSuggestLimit
	}
	if limit > maxSuggestLimit {
		limit = maxSuggestLimit
	}
	if len(query) < minQueryLength {
		return &SuggestionPage{Success: true, Data: []Suggestion{}, Query: query}, nil
	}

	normalized := strings.ToLower(query)
	key := cachekey.SearchSuggestions(normalized, limit)

	return cache.GetOrLoad(ctx, s.cache, key, suggestTTL, opts.Refresh, func(ctx context.Context) (*SuggestionPage, error) {
		var (
			results []Suggestion
			exclude []primitive.ObjectID
		)

		tiers := []struct {
			tier  document.SuggestionTier
			score int
		}{
			{document.TierPrefix, scorePrefix},
			{document.TierWordStart, scoreWordStart},
			{document.TierContains, scoreContains},
		}

		for _, t := range tiers {
			remaining := limit - len(results)
			if remaining <= 0 {
				break
			}

			movies, err := s.store.SuggestMovies(ctx, normalized, t.tier, exclude, remaining)
			if err != nil {
				return nil, err
			}
			shows, err := s.store.SuggestShows(ctx, normalized, t.tier, exclude, remaining)
			if err != nil {
				return nil, err
			}

			for _, m := range movies {
				results = append(results, Suggestion{
					ID:    m.ID,
					Title: m.Title,
					Image: m.Image,
					Year:  m.ReleaseYear,
					Type:  document.TypeMovie,
					Score: suggestionScore(t.tier, t.score, m.Title, normalized),
				})
				exclude = append(exclude, m.ID)
			}
			for _, sh := range shows {
				results = append(results, Suggestion{
					ID:    sh.ID,
					Title: sh.Title,
					Image: sh.Image,
					Year:  sh.StartYear,
					Type:  document.TypeShow,
					Score: suggestionScore(t.tier, t.score, sh.Title, normalized),
				})
				exclude = append(exclude, sh.ID)
			}
		}

		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Score > results[j].Score
		})
		if len(results) > limit {
			results = results[:limit]
		}
		if results == nil {
			results = []Suggestion{}
		}

		return &SuggestionPage{Success: true, Data: results, Query: normalized}, nil
	})
}

// suggestionScore demotes contains-tier rows whose title does not actually
// contain the query: those matched on a tag only.
func suggestionScore(tier document.SuggestionTier, base int, title, query string) int {
	if tier == document.TierContains && !strings.Contains(strings.ToLower(title), query) {
		return scoreTagOnly
	}
	return base
}
