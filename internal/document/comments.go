package document

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommentByID fetches one comment.
func (s *Store) CommentByID(ctx context.Context, id primitive.ObjectID) (*Comment, error) {
	return findOne[Comment](ctx, s.comments, bson.M{"_id": id})
}

// CommentsByIDs fetches a batch of comments by id, unordered.
func (s *Store) CommentsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]Comment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.comments.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	return decodeAll[Comment](ctx, cur)
}

// CommentsByContent returns one page of comments for a content item plus the
// total count. A nil parentID selects top-level comments; otherwise the
// replies to that parent.
func (s *Store) CommentsByContent(ctx context.Context, contentType string, contentID primitive.ObjectID, parentID *primitive.ObjectID, limit, skip int) ([]Comment, int64, error) {
	q := bson.M{
		"content_id":   contentID,
		"content_type": contentType,
	}
	if parentID == nil {
		q["parent_id"] = bson.M{"$exists": false}
	} else {
		q["parent_id"] = *parentID
	}

	cur, err := s.comments.Find(ctx, q, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, 0, err
	}
	comments, err := decodeAll[Comment](ctx, cur)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.comments.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// CommentsByUser returns one page of a user's comments plus the total count.
func (s *Store) CommentsByUser(ctx context.Context, userID primitive.ObjectID, limit, skip int) ([]Comment, int64, error) {
	q := bson.M{"user_id": userID}

	cur, err := s.comments.Find(ctx, q, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, 0, err
	}
	comments, err := decodeAll[Comment](ctx, cur)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.comments.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// InsertComment stores a new comment and returns its id.
func (s *Store) InsertComment(ctx context.Context, c *Comment) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	if c.Replies == nil {
		c.Replies = []primitive.ObjectID{}
	}

	res, err := s.comments.InsertOne(ctx, c)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// PushReply appends a child id to a parent comment's reply list.
func (s *Store) PushReply(ctx context.Context, parentID, childID primitive.ObjectID) error {
	_, err := s.comments.UpdateOne(ctx,
		bson.M{"_id": parentID},
		bson.M{"$push": bson.M{"replies": childID}})
	return err
}

// PullReply removes a child id from a parent comment's reply list.
func (s *Store) PullReply(ctx context.Context, parentID, childID primitive.ObjectID) error {
	_, err := s.comments.UpdateOne(ctx,
		bson.M{"_id": parentID},
		bson.M{"$pull": bson.M{"replies": childID}})
	return err
}

// UpdateCommentContent replaces a comment's body.
func (s *Store) UpdateCommentContent(ctx context.Context, id primitive.ObjectID, content string) error {
	res, err := s.comments.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"content": content, "updatedAt": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCommentDoc removes a single comment document.
func (s *Store) DeleteCommentDoc(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.comments.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// UserAvatars resolves avatars for a batch of user ids in one query.
func (s *Store) UserAvatars(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*string, error) {
	if len(ids) == 0 {
		return map[primitive.ObjectID]*string{}, nil
	}

	cur, err := s.users.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"_id": 1, "avatar": 1}))
	if err != nil {
		return nil, err
	}
	users, err := decodeAll[User](ctx, cur)
	if err != nil {
		return nil, err
	}

	avatars := make(map[primitive.ObjectID]*string, len(users))
	for _, u := range users {
		avatars[u.ID] = u.Avatar
	}
	return avatars, nil
}
