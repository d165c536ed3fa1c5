// Package document is the typed MongoDB layer behind the catalog services.
// It owns the collection handles, index definitions and every query and
// aggregation the services consume, returning the tagged models in
// models.go rather than raw bson maps so cache round-trips stay statically
// checked.
package document

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrInvalidID marks a malformed resource identifier, rejected before
	// any store access.
	ErrInvalidID = errors.New("document: invalid id format")

	// ErrNotFound marks a lookup that matched no document.
	ErrNotFound = errors.New("document: not found")
)

// ParseID validates and converts a hex resource identifier.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// Store bundles the collection handles for one database.
type Store struct {
	movies     *mongo.Collection
	shows      *mongo.Collection
	seasons    *mongo.Collection
	episodes   *mongo.Collection
	watches    *mongo.Collection
	users      *mongo.Collection
	watchlists *mongo.Collection
	comments   *mongo.Collection
	reports    *mongo.Collection
	views      *mongo.Collection
}

// Connect opens a pooled client and pings the deployment.
func Connect(ctx context.Context, uri string, maxPool, minPool uint64) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(maxPool).
		SetMinPoolSize(minPool).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return client, nil
}

// New wraps a database handle.
func New(db *mongo.Database) *Store {
	return &Store{
		movies:     db.Collection("movies"),
		shows:      db.Collection("shows"),
		seasons:    db.Collection("seasons"),
		episodes:   db.Collection("episodes"),
		watches:    db.Collection("user_watches"),
		users:      db.Collection("users"),
		watchlists: db.Collection("watchlists"),
		comments:   db.Collection("comments"),
		reports:    db.Collection("reports"),
		views:      db.Collection("content_views"),
	}
}

// EnsureIndexes creates the indexes the query paths depend on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	specs := []struct {
		coll    *mongo.Collection
		indexes []mongo.IndexModel
	}{
		{s.movies, []mongo.IndexModel{
			{Keys: bson.D{{Key: "title", Value: 1}}},
			{Keys: bson.D{{Key: "tags", Value: 1}}},
			{Keys: bson.D{{Key: "featured", Value: 1}}},
		}},
		{s.shows, []mongo.IndexModel{
			{Keys: bson.D{{Key: "title", Value: 1}}},
			{Keys: bson.D{{Key: "tags", Value: 1}}},
			{Keys: bson.D{{Key: "featured", Value: 1}}},
		}},
		{s.seasons, []mongo.IndexModel{
			{Keys: bson.D{{Key: "showId", Value: 1}}},
			{Keys: bson.D{{Key: "showId", Value: 1}, {Key: "seasonNumber", Value: 1}}, Options: unique},
		}},
		{s.episodes, []mongo.IndexModel{
			{Keys: bson.D{{Key: "seasonId", Value: 1}}},
			{Keys: bson.D{{Key: "seasonId", Value: 1}, {Key: "episodeNumber", Value: 1}}, Options: unique},
		}},
		{s.watches, []mongo.IndexModel{
			{Keys: bson.D{{Key: "userId", Value: 1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "contentType", Value: 1}, {Key: "contentId", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "watchedAt", Value: -1}}},
		}},
		{s.users, []mongo.IndexModel{
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
		{s.watchlists, []mongo.IndexModel{
			{Keys: bson.D{{Key: "userId", Value: 1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "contentType", Value: 1}, {Key: "contentId", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
		{s.comments, []mongo.IndexModel{
			{Keys: bson.D{{Key: "content_id", Value: 1}, {Key: "content_type", Value: 1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
			{Keys: bson.D{{Key: "parent_id", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		}},
		{s.reports, []mongo.IndexModel{
			{Keys: bson.D{{Key: "userId", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		}},
		{s.views, []mongo.IndexModel{
			{Keys: bson.D{{Key: "contentId", Value: 1}}},
			{Keys: bson.D{{Key: "contentType", Value: 1}, {Key: "timestamp", Value: -1}}},
		}},
	}

	for _, spec := range specs {
		if _, err := spec.coll.Indexes().CreateMany(ctx, spec.indexes); err != nil {
			return err
		}
	}
	return nil
}

// decodeAll drains a cursor into a typed slice.
func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]T, error) {
	defer cur.Close(ctx)

	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// findOne decodes a single document, mapping mongo.ErrNoDocuments to
// ErrNotFound.
func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts ...*options.FindOneOptions) (*T, error) {
	var doc T
	if err := coll.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}
