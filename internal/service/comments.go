package service

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odelu/catalog/internal/document"
	"github.com/odelu/catalog/pkg/cache"
	"github.com/odelu/catalog/pkg/cachekey"
	"github.com/odelu/catalog/pkg/sanitizer"
)

// maxNestingLevel caps reply depth. Top-level comments sit at level 0.
const maxNestingLevel = 5

// CommentStore is the slice of the document store the comments service uses.
type CommentStore interface {
	CommentByID(ctx context.Context, id primitive.ObjectID) (*document.Comment, error)
	CommentsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]document.Comment, error)
	CommentsByContent(ctx context.Context, contentType string, contentID primitive.ObjectID, parentID *primitive.ObjectID, limit, skip int) ([]document.Comment, int64, error)
	CommentsByUser(ctx context.Context, userID primitive.ObjectID, limit, skip int) ([]document.Comment, int64, error)
	InsertComment(ctx context.Context, c *document.Comment) (primitive.ObjectID, error)
	PushReply(ctx context.Context, parentID, childID primitive.ObjectID) error
	PullReply(ctx context.Context, parentID, childID primitive.ObjectID) error
	UpdateCommentContent(ctx context.Context, id primitive.ObjectID, content string) error
	DeleteCommentDoc(ctx context.Context, id primitive.ObjectID) error
	UserAvatars(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*string, error)
	MovieExists(ctx context.Context, id primitive.ObjectID) (bool, error)
	ShowExists(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// Comments serves the comment endpoints. Comment payloads churn fast, so
// they get their own short TTL and are additionally swept wholesale by the
// background sweeper.
type Comments struct {
	store CommentStore
	cache *cache.Store
	inv   *Invalidator
	ttl   time.Duration
}

// NewComments wires the comments service. ttl is the comment-family cache
// TTL from configuration.
func NewComments(store CommentStore, c *cache.Store, inv *Invalidator, ttl time.Duration) *Comments {
	return &Comments{store: store, cache: c, inv: inv, ttl: ttl}
}

// CommentPage is the cached payload of a comment listing.
type CommentPage struct {
	Success bool               `json:"success"`
	Data    []document.Comment `json:"data"`
	Total   int64              `json:"total"`
	Limit   int                `json:"limit"`
	Skip    int                `json:"skip"`
}

// CommentResult wraps a single comment.
type CommentResult struct {
	Success bool             `json:"success"`
	Data    document.Comment `json:"data"`
}

// CommentNode is a comment with its replies materialized, depth-first.
type CommentNode struct {
	document.Comment
	Children []*CommentNode `json:"children"`
}

// CommentTreeResult is the cached payload of a materialized thread.
type CommentTreeResult struct {
	Success bool         `json:"success"`
	Data    *CommentNode `json:"data"`
}

func validContentType(contentType string) bool {
	return contentType == document.TypeMovie || contentType == document.TypeShow
}

func (s *Comments) contentExists(ctx context.Context, contentType string, contentID primitive.ObjectID) (bool, error) {
	if contentType == document.TypeMovie {
		return s.store.MovieExists(ctx, contentID)
	}
	return s.store.ShowExists(ctx, contentID)
}

// refreshAvatars replaces the avatar denormalized into each comment with the
// author's current one, one batch query for the whole page.
func (s *Comments) refreshAvatars(ctx context.Context, comments []document.Comment) error {
	if len(comments) == 0 {
		return nil
	}

	ids := make([]primitive.ObjectID, 0, len(comments))
	seen := make(map[primitive.ObjectID]struct{}, len(comments))
	for _, c := range comments {
		if _, dup := seen[c.UserID]; dup {
			continue
		}
		seen[c.UserID] = struct{}{}
		ids = append(ids, c.UserID)
	}

	avatars, err := s.store.UserAvatars(ctx, ids)
	if err != nil {
		return err
	}
	for i := range comments {
		if avatar, ok := avatars[comments[i].UserID]; ok {
			comments[i].Avatar = avatar
		}
	}
	return nil
}

// List returns one page of a content item's comments. An empty parentID
// selects top-level comments, otherwise the direct replies to that parent.
func (s *Comments) List(ctx context.Context, contentType, contentID, parentID string, limit, skip int, opts ReadOptions) (*CommentPage, error) {
	if !validContentType(contentType) {
		return nil, fmt.Errorf("%w: unknown content type %q", ErrValidation, contentType)
	}
	contentOID, err := document.ParseID(contentID)
	if err != nil {
		return nil, err
	}

	var parentOID *primitive.ObjectID
	if parentID != "" {
		oid, err := document.ParseID(parentID)
		if err != nil {
			return nil, err
		}
		parentOID = &oid
	}

	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	if skip < 0 {
		skip = 0
	}

	key := cachekey.Comments(contentType, contentID, parentID, limit, skip)
	return cache.GetOrLoad(ctx, s.cache, key, s.ttl, opts.Refresh, func(ctx context.Context) (*CommentPage, error) {
		ok, err := s.contentExists(ctx, contentType, contentOID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, document.ErrNotFound
		}

		comments, total, err := s.store.CommentsByContent(ctx, contentType, contentOID, parentOID, limit, skip)
		if err != nil {
			return nil, err
		}
		if err := s.refreshAvatars(ctx, comments); err != nil {
			return nil, err
		}
		if comments == nil {
			comments = []document.Comment{}
		}

		return &CommentPage{
			Success: true,
			Data:    comments,
			Total:   total,
			Limit:   limit,
			Skip:    skip,
		}, nil
	})
}

// Get returns a single comment.
func (s *Comments) Get(ctx context.Context, id string, opts ReadOptions) (*CommentResult, error) {
	oid, err := document.ParseID(id)
	if err != nil {
		return nil, err
	}

	return cache.GetOrLoad(ctx, s.cache, cachekey.Comment(id), s.ttl, opts.Refresh, func(ctx context.Context) (*CommentResult, error) {
		comment, err := s.store.CommentByID(ctx, oid)
		if err != nil {
			return nil, err
		}
		return &CommentResult{Success: true, Data: *comment}, nil
	})
}

// Tree returns a comment with every descendant materialized. The thread is
// walked breadth-first with one batch query per level, bounded by the
// nesting cap rather than recursion.
func (s *Comments) Tree(ctx context.Context, id string, opts ReadOptions) (*CommentTreeResult, error) {
	oid, err := document.ParseID(id)
	if err != nil {
		return nil, err
	}

	return cache.GetOrLoad(ctx, s.cache, cachekey.CommentTree(id), s.ttl, opts.Refresh, func(ctx context.Context) (*CommentTreeResult, error) {
		root, err := s.store.CommentByID(ctx, oid)
		if err != nil {
			return nil, err
		}

		rootNode := &CommentNode{Comment: *root, Children: []*CommentNode{}}
		nodes := map[primitive.ObjectID]*CommentNode{root.ID: rootNode}

		frontier := root.Replies
		for depth := 0; len(frontier) > 0 && depth < maxNestingLevel; depth++ {
			batch, err := s.store.CommentsByIDs(ctx, frontier)
			if err != nil {
				return nil, err
			}

			frontier = nil
			for _, c := range batch {
				nodes[c.ID] = &CommentNode{Comment: c, Children: []*CommentNode{}}
				frontier = append(frontier, c.Replies...)
			}
		}

		// Attach children in the order their parents recorded them so the
		// tree is deterministic regardless of batch-query ordering.
		for _, node := range nodes {
			for _, childID := range node.Replies {
				if child, ok := nodes[childID]; ok {
					node.Children = append(node.Children, child)
				}
			}
		}

		return &CommentTreeResult{Success: true, Data: rootNode}, nil
	})
}

// ByUser returns one page of a user's comments.
func (s *Comments) ByUser(ctx context.Context, userID string, limit, skip int, opts ReadOptions) (*CommentPage, error) {
	oid, err := document.ParseID(userID)
	if err != nil {
		return nil, err
	}

	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	if skip < 0 {
		skip = 0
	}

	key := cachekey.UserComments(userID, limit, skip)
	return cache.GetOrLoad(ctx, s.cache, key, s.ttl, opts.Refresh, func(ctx context.Context) (*CommentPage, error) {
		comments, total, err := s.store.CommentsByUser(ctx, oid, limit, skip)
		if err != nil {
			return nil, err
		}
		if comments == nil {
			comments = []document.Comment{}
		}
		return &CommentPage{
			Success: true,
			Data:    comments,
			Total:   total,
			Limit:   limit,
			Skip:    skip,
		}, nil
	})
}

// Create stores a new comment or reply and purges the affected cache
// entries. Replies deeper than the nesting cap are rejected.
func (s *Comments) Create(ctx context.Context, user *Identity, contentType, contentID, parentID, content string) (*document.Comment, error) {
	if !personalized(user) {
		return nil, ErrForbidden
	}
	if !validContentType(contentType) {
		return nil, fmt.Errorf("%w: unknown content type %q", ErrValidation, contentType)
	}

	content = sanitizer.Comment(content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty comment", ErrValidation)
	}

	contentOID, err := document.ParseID(contentID)
	if err != nil {
		return nil, err
	}
	userOID, err := document.ParseID(user.ID)
	if err != nil {
		return nil, err
	}

	ok, err := s.contentExists(ctx, contentType, contentOID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, document.ErrNotFound
	}

	comment := &document.Comment{
		Content:     content,
		UserID:      userOID,
		Username:    user.Username,
		ContentID:   contentOID,
		ContentType: contentType,
	}

	if parentID != "" {
		parentOID, err := document.ParseID(parentID)
		if err != nil {
			return nil, err
		}
		parent, err := s.store.CommentByID(ctx, parentOID)
		if err != nil {
			return nil, err
		}
		if parent.ContentID != contentOID || parent.ContentType != contentType {
			return nil, fmt.Errorf("%w: parent comment belongs to different content", ErrValidation)
		}
		if parent.NestingLevel+1 > maxNestingLevel {
			return nil, fmt.Errorf("%w: reply depth limit reached", ErrValidation)
		}
		comment.ParentID = &parentOID
		comment.NestingLevel = parent.NestingLevel + 1
	}

	id, err := s.store.InsertComment(ctx, comment)
	if err != nil {
		return nil, err
	}
	comment.ID = id

	if comment.ParentID != nil {
		if err := s.store.PushReply(ctx, *comment.ParentID, id); err != nil {
			return nil, err
		}
	}

	s.inv.CommentCreated(ctx, contentType, contentID, parentID)
	return comment, nil
}

// Update edits a comment's body. Only the author may edit; admins moderate
// through Delete.
func (s *Comments) Update(ctx context.Context, user *Identity, commentID, content string) (*document.Comment, error) {
	if !personalized(user) {
		return nil, ErrForbidden
	}

	oid, err := document.ParseID(commentID)
	if err != nil {
		return nil, err
	}

	content = sanitizer.Comment(content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty comment", ErrValidation)
	}

	comment, err := s.store.CommentByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if comment.UserID.Hex() != user.ID {
		return nil, ErrForbidden
	}

	if err := s.store.UpdateCommentContent(ctx, oid, content); err != nil {
		return nil, err
	}
	comment.Content = content

	s.inv.CommentUpdated(ctx, comment.ContentType, comment.ContentID.Hex(), commentID, comment.UserID.Hex())
	return comment, nil
}

// Delete removes a comment and its whole reply subtree. Only the author or
// an admin may delete. The subtree is collected iteratively with one batch
// query per level, so arbitrarily deep threads cannot exhaust the stack.
func (s *Comments) Delete(ctx context.Context, user *Identity, commentID string) (int, error) {
	if !personalized(user) {
		return 0, ErrForbidden
	}

	oid, err := document.ParseID(commentID)
	if err != nil {
		return 0, err
	}

	comment, err := s.store.CommentByID(ctx, oid)
	if err != nil {
		return 0, err
	}
	if comment.UserID.Hex() != user.ID && !user.IsAdmin() {
		return 0, ErrForbidden
	}

	ids := []primitive.ObjectID{comment.ID}
	authors := []string{comment.UserID.Hex()}

	frontier := comment.Replies
	for len(frontier) > 0 {
		batch, err := s.store.CommentsByIDs(ctx, frontier)
		if err != nil {
			return 0, err
		}

		frontier = nil
		for _, c := range batch {
			ids = append(ids, c.ID)
			authors = append(authors, c.UserID.Hex())
			frontier = append(frontier, c.Replies...)
		}
	}

	if comment.ParentID != nil {
		if err := s.store.PullReply(ctx, *comment.ParentID, comment.ID); err != nil {
			return 0, err
		}
	}
	for _, id := range ids {
		if err := s.store.DeleteCommentDoc(ctx, id); err != nil {
			return 0, err
		}
	}

	s.inv.CommentDeleted(ctx, comment.ContentType, comment.ContentID.Hex(), commentID, authors)
	return len(ids), nil
}
