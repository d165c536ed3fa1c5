package document

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InsertContentView records one view event.
func (s *Store) InsertContentView(ctx context.Context, view *ContentView) error {
	view.Timestamp = time.Now().UTC()
	_, err := s.views.InsertOne(ctx, view)
	return err
}

// IncrementViewCount bumps the denormalized counter on the content document.
func (s *Store) IncrementViewCount(ctx context.Context, contentType string, contentID primitive.ObjectID) error {
	coll := s.movies
	if contentType == TypeShow {
		coll = s.shows
	}
	_, err := coll.UpdateOne(ctx, bson.M{"_id": contentID}, bson.M{"$inc": bson.M{"viewCount": 1}})
	return err
}

// TopViewedSince aggregates view events into per-content counts within the
// window, most viewed first.
func (s *Store) TopViewedSince(ctx context.Context, contentType string, since time.Time, limit int) ([]ViewCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"contentType": contentType,
			"timestamp":   bson.M{"$gte": since},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":       "$contentId",
			"viewCount": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"viewCount": -1}}},
		{{Key: "$limit", Value: limit}},
	}

	cur, err := s.views.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	return decodeAll[ViewCount](ctx, cur)
}

// MoviesByIDs fetches a batch of movies with the popularity projection.
func (s *Store) MoviesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]Movie, error) {
	if len(ids) == 0 {
		return map[primitive.ObjectID]Movie{}, nil
	}
	cur, err := s.movies.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"title": 1, "image": 1, "releaseYear": 1, "rating": 1, "viewCount": 1}))
	if err != nil {
		return nil, err
	}
	movies, err := decodeAll[Movie](ctx, cur)
	if err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]Movie, len(movies))
	for _, m := range movies {
		byID[m.ID] = m
	}
	return byID, nil
}

// ShowsByIDs fetches a batch of shows with the popularity projection.
func (s *Store) ShowsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]Show, error) {
	if len(ids) == 0 {
		return map[primitive.ObjectID]Show{}, nil
	}
	cur, err := s.shows.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"title": 1, "image": 1, "startYear": 1, "endYear": 1, "rating": 1, "viewCount": 1}))
	if err != nil {
		return nil, err
	}
	shows, err := decodeAll[Show](ctx, cur)
	if err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]Show, len(shows))
	for _, sh := range shows {
		byID[sh.ID] = sh
	}
	return byID, nil
}

// MoviesByOverallViews backfills a popularity ranking from the denormalized
// counter when the windowed aggregation comes up short.
func (s *Store) MoviesByOverallViews(ctx context.Context, exclude []primitive.ObjectID, limit int) ([]Movie, error) {
	q := bson.M{}
	if len(exclude) > 0 {
		q["_id"] = bson.M{"$nin": exclude}
	}
	cur, err := s.movies.Find(ctx, q, options.Find().
		SetProjection(bson.M{"title": 1, "image": 1, "releaseYear": 1, "rating": 1, "viewCount": 1}).
		SetSort(bson.D{{Key: "viewCount", Value: -1}}).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	return decodeAll[Movie](ctx, cur)
}

// ShowsByOverallViews is the show-side backfill.
func (s *Store) ShowsByOverallViews(ctx context.Context, exclude []primitive.ObjectID, limit int) ([]Show, error) {
	q := bson.M{}
	if len(exclude) > 0 {
		q["_id"] = bson.M{"$nin": exclude}
	}
	cur, err := s.shows.Find(ctx, q, options.Find().
		SetProjection(bson.M{"title": 1, "image": 1, "startYear": 1, "endYear": 1, "rating": 1, "viewCount": 1}).
		SetSort(bson.D{{Key: "viewCount", Value: -1}}).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	return decodeAll[Show](ctx, cur)
}
