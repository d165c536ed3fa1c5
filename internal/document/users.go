package document

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserByID fetches one user.
func (s *Store) UserByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	return findOne[User](ctx, s.users, bson.M{"_id": id})
}

// UpdateUserProfile applies a partial profile update.
func (s *Store) UpdateUserProfile(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes the account and every document owned by it.
func (s *Store) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	uid := id.Hex()
	if _, err := s.watches.DeleteMany(ctx, bson.M{"userId": uid}); err != nil {
		return err
	}
	if _, err := s.watchlists.DeleteMany(ctx, bson.M{"userId": uid}); err != nil {
		return err
	}

	res, err := s.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Watch records ---

// WatchRecordFor returns a user's progress on one content item, or
// ErrNotFound.
func (s *Store) WatchRecordFor(ctx context.Context, userID, contentType string, contentID primitive.ObjectID) (*WatchRecord, error) {
	return findOne[WatchRecord](ctx, s.watches, bson.M{
		"userId":      userID,
		"contentType": contentType,
		"contentId":   contentID,
	})
}

// UpsertWatchRecord records progress, creating the record on first watch.
func (s *Store) UpsertWatchRecord(ctx context.Context, userID, contentType string, contentID primitive.ObjectID, progress float64, completed bool) (*WatchRecord, error) {
	filter := bson.M{
		"userId":      userID,
		"contentType": contentType,
		"contentId":   contentID,
	}

	if _, err := s.watches.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"progress":  progress,
		"completed": completed,
		"watchedAt": time.Now().UTC(),
	}}, options.Update().SetUpsert(true)); err != nil {
		return nil, err
	}

	return findOne[WatchRecord](ctx, s.watches, filter)
}

// RecentWatches returns a user's most recent watch records.
func (s *Store) RecentWatches(ctx context.Context, userID string, limit int) ([]WatchRecord, error) {
	cur, err := s.watches.Find(ctx, bson.M{"userId": userID}, options.Find().
		SetSort(bson.D{{Key: "watchedAt", Value: -1}}).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	return decodeAll[WatchRecord](ctx, cur)
}

// IncompleteWatches returns records with partial progress, newest first.
func (s *Store) IncompleteWatches(ctx context.Context, userID string, limit int) ([]WatchRecord, error) {
	cur, err := s.watches.Find(ctx, bson.M{
		"userId": userID,
		"$or": bson.A{
			bson.M{"progress": bson.M{"$gt": 0, "$lt": 90}},
			bson.M{"completed": false},
		},
	}, options.Find().
		SetSort(bson.D{{Key: "watchedAt", Value: -1}}).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	return decodeAll[WatchRecord](ctx, cur)
}

// DeleteWatchHistory removes all of a user's watch records and reports how
// many were deleted.
func (s *Store) DeleteWatchHistory(ctx context.Context, userID string) (int64, error) {
	res, err := s.watches.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// --- Watchlist ---

// WatchlistContains checks whether an item is on a user's watchlist.
func (s *Store) WatchlistContains(ctx context.Context, userID, contentType string, contentID primitive.ObjectID) (bool, error) {
	n, err := s.watchlists.CountDocuments(ctx, bson.M{
		"userId":      userID,
		"contentType": contentType,
		"contentId":   contentID,
	}, options.Count().SetLimit(1))
	return n > 0, err
}

// AddWatchlistItem stores a new watchlist entry and returns it.
func (s *Store) AddWatchlistItem(ctx context.Context, userID, contentType string, contentID primitive.ObjectID) (*WatchlistItem, error) {
	item := WatchlistItem{
		UserID:      userID,
		ContentType: contentType,
		ContentID:   contentID,
		AddedAt:     time.Now().UTC(),
	}

	res, err := s.watchlists.InsertOne(ctx, item)
	if err != nil {
		return nil, err
	}
	item.ID = res.InsertedID.(primitive.ObjectID)
	return &item, nil
}

// RemoveWatchlistItem deletes a watchlist entry, ErrNotFound if absent.
func (s *Store) RemoveWatchlistItem(ctx context.Context, userID, contentType string, contentID primitive.ObjectID) error {
	res, err := s.watchlists.DeleteOne(ctx, bson.M{
		"userId":      userID,
		"contentType": contentType,
		"contentId":   contentID,
	})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// WatchlistByUser returns a user's watchlist, newest first.
func (s *Store) WatchlistByUser(ctx context.Context, userID string) ([]WatchlistItem, error) {
	cur, err := s.watchlists.Find(ctx, bson.M{"userId": userID}, options.Find().
		SetSort(bson.D{{Key: "addedAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[WatchlistItem](ctx, cur)
}
