package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/korero-app/korero-backend/internal/entities"
	"github.com/korero-app/korero-backend/internal/store"
	"github.com/korero-app/korero-backend/internal/validate"
)

// CommentService owns comment creation, deletion and per-post listing.
type CommentService struct {
	store  store.Store
	agg    decorator
	logger *zap.SugaredLogger
	now    func() time.Time
	newID  func() string
}

func NewCommentService(st store.Store, logger *zap.SugaredLogger) *CommentService {
	return &CommentService{
		store:  st,
		agg:    decorator{store: st},
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Create adds a comment to an existing post. The caller must have a
// profile; its display name is snapshotted into the comment.
func (s *CommentService) Create(ctx context.Context, caller, postID, content string) (*entities.Comment, error) {
	content = strings.TrimSpace(content)
	if err := validate.CommentContent(content); err != nil {
		return nil, Invalid(err.Error())
	}

	if err := postExists(ctx, s.store, postID); err != nil {
		return nil, err
	}

	displayName, err := displayNameOf(ctx, s.store, caller)
	if err != nil {
		return nil, err
	}

	comment := &entities.Comment{
		PostID:      postID,
		CommentID:   s.newID(),
		UserID:      caller,
		DisplayName: displayName,
		Content:     content,
		CreatedAt:   s.now(),
	}

	if err := s.store.PutItem(ctx, entities.CollectionComments, comment.ToItem()); err != nil {
		s.logger.Errorw("comment create failed", "post_id", postID, "user_id", caller, "error", err)
		return nil, Internal(err, "Failed to create comment")
	}
	return comment, nil
}

// Delete removes caller's own comment. Existence before ownership, as
// everywhere.
func (s *CommentService) Delete(ctx context.Context, caller, postID, commentID string) error {
	key := store.Key{Partition: postID, Sort: commentID}
	it, err := s.store.GetItem(ctx, entities.CollectionComments, key)
	if errors.Is(err, store.ErrNotFound) {
		return NotFound("Comment not found")
	}
	if err != nil {
		s.logger.Errorw("comment lookup failed", "post_id", postID, "comment_id", commentID, "error", err)
		return Internal(err, "Failed to retrieve comment")
	}
	if it.String("user_id") != caller {
		return Forbidden("You can only delete your own comments")
	}

	if err := s.store.DeleteItem(ctx, entities.CollectionComments, key); err != nil {
		s.logger.Errorw("comment delete failed", "post_id", postID, "comment_id", commentID, "error", err)
		return Internal(err, "Failed to delete comment")
	}
	return nil
}

// ListForPost returns a post's comments in conversation order, oldest
// first, decorated with like aggregates for the caller.
func (s *CommentService) ListForPost(ctx context.Context, caller, postID string) ([]CommentView, error) {
	if err := postExists(ctx, s.store, postID); err != nil {
		return nil, err
	}

	items, err := s.store.QueryByIndex(ctx, entities.CollectionComments, entities.IndexCommentsByPost, postID, true)
	if err != nil {
		s.logger.Errorw("comments query failed", "post_id", postID, "error", err)
		return nil, Internal(err, "Failed to retrieve comments")
	}

	comments := make([]*entities.Comment, 0, len(items))
	for _, it := range items {
		comments = append(comments, entities.CommentFromItem(it))
	}

	views, err := s.agg.decorateComments(ctx, caller, comments)
	if err != nil {
		s.logger.Errorw("comments decoration failed", "post_id", postID, "error", err)
		return nil, Internal(err, "Failed to retrieve comments")
	}
	return views, nil
}
