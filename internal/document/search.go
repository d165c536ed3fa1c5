package document

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Suggestion projections keep typeahead payloads small.
var (
	movieSuggestionProjection = bson.M{"_id": 1, "title": 1, "image": 1, "releaseYear": 1, "tags": 1}
	showSuggestionProjection  = bson.M{"_id": 1, "title": 1, "image": 1, "startYear": 1, "tags": 1}
)

// SuggestionTier selects how strictly titles must match the query.
type SuggestionTier int

const (
	// TierPrefix matches titles starting with the query.
	TierPrefix SuggestionTier = iota
	// TierWordStart matches the query at a word boundary.
	TierWordStart
	// TierContains matches the query anywhere in title or tags.
	TierContains
)

func tierFilter(tier SuggestionTier, query string, exclude []primitive.ObjectID) bson.M {
	escaped := regexp.QuoteMeta(query)

	var titleFilter bson.M
	switch tier {
	case TierPrefix:
		titleFilter = bson.M{"title": primitive.Regex{Pattern: "^" + escaped, Options: "i"}}
	case TierWordStart:
		titleFilter = bson.M{"title": primitive.Regex{Pattern: `\b` + escaped, Options: "i"}}
	default:
		re := primitive.Regex{Pattern: escaped, Options: "i"}
		titleFilter = bson.M{"$or": bson.A{
			bson.M{"title": re},
			bson.M{"tags": re},
		}}
	}

	if len(exclude) == 0 {
		return titleFilter
	}
	return bson.M{"$and": bson.A{
		bson.M{"_id": bson.M{"$nin": exclude}},
		titleFilter,
	}}
}

// SuggestMovies returns movies matching the query at the given tier.
func (s *Store) SuggestMovies(ctx context.Context, query string, tier SuggestionTier, exclude []primitive.ObjectID, limit int) ([]Movie, error) {
	cur, err := s.movies.Find(ctx, tierFilter(tier, query, exclude), options.Find().
		SetProjection(movieSuggestionProjection).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	return decodeAll[Movie](ctx, cur)
}

// SuggestShows returns shows matching the query at the given tier.
func (s *Store) SuggestShows(ctx context.Context, query string, tier SuggestionTier, exclude []primitive.ObjectID, limit int) ([]Show, error) {
	cur, err := s.shows.Find(ctx, tierFilter(tier, query, exclude), options.Find().
		SetProjection(showSuggestionProjection).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	return decodeAll[Show](ctx, cur)
}
