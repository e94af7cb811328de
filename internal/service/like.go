package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/korero-app/korero-backend/internal/entities"
	"github.com/korero-app/korero-backend/internal/store"
)

// LikeTarget names what a like points at. For comments both ids are
// required; the post id is only used to locate the comment.
type LikeTarget struct {
	Type      entities.TargetType
	PostID    string
	CommentID string
}

func (t LikeTarget) id() string {
	if t.Type == entities.TargetComment {
		return t.CommentID
	}
	return t.PostID
}

// ToggleResult reports the state a like ended up in after a toggle.
type ToggleResult struct {
	Liked   bool
	Message string
}

// Liker is one entry in a target's like listing.
type Liker struct {
	UserID      string
	DisplayName string
}

// LikeService flips and lists likes on posts and comments.
type LikeService struct {
	store  store.Store
	logger *zap.SugaredLogger
}

func NewLikeService(st store.Store, logger *zap.SugaredLogger) *LikeService {
	return &LikeService{store: st, logger: logger}
}

// Toggle likes the target if the caller has not liked it, and unlikes it
// otherwise. Both directions are idempotent at the store level, so two
// racing toggles settle on one of the two states instead of erroring.
func (s *LikeService) Toggle(ctx context.Context, caller string, target LikeTarget) (*ToggleResult, error) {
	if err := s.targetExists(ctx, target); err != nil {
		return nil, err
	}

	displayName, err := displayNameOf(ctx, s.store, caller)
	if err != nil {
		return nil, err
	}

	key := store.Key{Partition: target.id(), Sort: caller}
	_, err = s.store.GetItem(ctx, entities.CollectionLikes, key)
	switch {
	case err == nil:
		if err := s.store.DeleteItem(ctx, entities.CollectionLikes, key); err != nil {
			s.logger.Errorw("unlike failed", "target_id", target.id(), "user_id", caller, "error", err)
			return nil, Internal(err, "Failed to toggle like")
		}
		return &ToggleResult{Liked: false, Message: unlikedMessage(target.Type)}, nil

	case errors.Is(err, store.ErrNotFound):
		like := &entities.Like{
			TargetID:    target.id(),
			UserID:      caller,
			TargetType:  target.Type,
			DisplayName: displayName,
		}
		// Conditional create: a racing duplicate loses the write but the
		// like exists either way, so it still reports liked.
		err := s.store.PutItemIfAbsent(ctx, entities.CollectionLikes, like.ToItem())
		if err != nil && !errors.Is(err, store.ErrAlreadyExists) {
			s.logger.Errorw("like failed", "target_id", target.id(), "user_id", caller, "error", err)
			return nil, Internal(err, "Failed to toggle like")
		}
		return &ToggleResult{Liked: true, Message: likedMessage(target.Type)}, nil

	default:
		s.logger.Errorw("like lookup failed", "target_id", target.id(), "user_id", caller, "error", err)
		return nil, Internal(err, "Failed to toggle like")
	}
}

// Likers returns who liked the target, in index order.
func (s *LikeService) Likers(ctx context.Context, target LikeTarget) ([]Liker, error) {
	if err := s.targetExists(ctx, target); err != nil {
		return nil, err
	}

	items, err := s.store.QueryByIndex(ctx, entities.CollectionLikes, entities.IndexLikesByTarget, target.id(), true)
	if err != nil {
		s.logger.Errorw("likes query failed", "target_id", target.id(), "error", err)
		return nil, Internal(err, "Failed to retrieve likes")
	}

	likers := make([]Liker, 0, len(items))
	for _, it := range items {
		like := entities.LikeFromItem(it)
		if like.TargetType != target.Type {
			continue
		}
		likers = append(likers, Liker{UserID: like.UserID, DisplayName: like.DisplayName})
	}
	return likers, nil
}

func (s *LikeService) targetExists(ctx context.Context, target LikeTarget) error {
	if target.Type == entities.TargetComment {
		key := store.Key{Partition: target.PostID, Sort: target.CommentID}
		_, err := s.store.GetItem(ctx, entities.CollectionComments, key)
		if errors.Is(err, store.ErrNotFound) {
			return NotFound("Comment not found")
		}
		if err != nil {
			return Internal(err, "Failed to retrieve comment")
		}
		return nil
	}
	return postExists(ctx, s.store, target.PostID)
}

func likedMessage(tt entities.TargetType) string {
	if tt == entities.TargetComment {
		return "Comment liked"
	}
	return "Post liked"
}

func unlikedMessage(tt entities.TargetType) string {
	if tt == entities.TargetComment {
		return "Comment unliked"
	}
	return "Post unliked"
}
