package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/korero-app/korero-backend/internal/entities"
	"github.com/korero-app/korero-backend/internal/store"
	"github.com/korero-app/korero-backend/internal/validate"
)

// FeedLimit caps the global feed at the most recent posts. Per-user
// listings are not capped.
const FeedLimit = 100

// PostService owns post creation, mutation and the two listings.
type PostService struct {
	store  store.Store
	agg    decorator
	logger *zap.SugaredLogger
	now    func() time.Time
	newID  func() string
}

func NewPostService(st store.Store, logger *zap.SugaredLogger) *PostService {
	return &PostService{
		store:  st,
		agg:    decorator{store: st},
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Create publishes a new post for caller. The caller must have a profile;
// its display name is copied into the post and never re-synced.
func (s *PostService) Create(ctx context.Context, caller, content string) (*entities.Post, error) {
	content = strings.TrimSpace(content)
	if err := validate.PostContent(content); err != nil {
		return nil, Invalid(err.Error())
	}

	displayName, err := displayNameOf(ctx, s.store, caller)
	if err != nil {
		return nil, err
	}

	now := s.now()
	post := &entities.Post{
		PostID:      s.newID(),
		UserID:      caller,
		DisplayName: displayName,
		Content:     content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.PutItem(ctx, entities.CollectionPosts, post.ToItem()); err != nil {
		s.logger.Errorw("post create failed", "user_id", caller, "error", err)
		return nil, Internal(err, "Failed to create post")
	}
	return post, nil
}

// Update replaces the content of caller's own post. Existence is checked
// before ownership so an absent post is a 404, not a 403.
func (s *PostService) Update(ctx context.Context, caller, postID, content string) (*entities.Post, error) {
	content = strings.TrimSpace(content)
	if err := validate.PostContent(content); err != nil {
		return nil, Invalid(err.Error())
	}

	key := store.Key{Partition: postID}
	it, err := s.store.GetItem(ctx, entities.CollectionPosts, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFound("Post not found")
	}
	if err != nil {
		s.logger.Errorw("post lookup failed", "post_id", postID, "error", err)
		return nil, Internal(err, "Failed to retrieve post")
	}
	if it.String("user_id") != caller {
		return nil, Forbidden("Forbidden - You can only edit your own posts")
	}

	updated, err := s.store.UpdateItem(ctx, entities.CollectionPosts, key, store.Item{
		"content":    content,
		"updated_at": store.FormatTime(s.now()),
	})
	if err != nil {
		s.logger.Errorw("post update failed", "post_id", postID, "error", err)
		return nil, Internal(err, "Failed to update post")
	}
	return entities.PostFromItem(updated), nil
}

// Delete removes caller's own post. Comments and likes that reference the
// post are intentionally left in place; see the listing paths, which
// always start from an existing post.
func (s *PostService) Delete(ctx context.Context, caller, postID string) error {
	key := store.Key{Partition: postID}
	it, err := s.store.GetItem(ctx, entities.CollectionPosts, key)
	if errors.Is(err, store.ErrNotFound) {
		return NotFound("Post not found")
	}
	if err != nil {
		s.logger.Errorw("post lookup failed", "post_id", postID, "error", err)
		return Internal(err, "Failed to retrieve post")
	}
	if it.String("user_id") != caller {
		return Forbidden("Forbidden - You can only delete your own posts")
	}

	if err := s.store.DeleteItem(ctx, entities.CollectionPosts, key); err != nil {
		s.logger.Errorw("post delete failed", "post_id", postID, "error", err)
		return Internal(err, "Failed to delete post")
	}
	return nil
}

// Feed returns the most recent posts across all users, newest first,
// capped at FeedLimit, each decorated with like and comment aggregates
// for the caller.
func (s *PostService) Feed(ctx context.Context, caller string) ([]PostView, error) {
	items, err := s.store.Scan(ctx, entities.CollectionPosts)
	if err != nil {
		s.logger.Errorw("feed scan failed", "error", err)
		return nil, Internal(err, "Failed to retrieve posts")
	}

	posts := make([]*entities.Post, 0, len(items))
	for _, it := range items {
		posts = append(posts, entities.PostFromItem(it))
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	if len(posts) > FeedLimit {
		posts = posts[:FeedLimit]
	}

	views, err := s.agg.decoratePosts(ctx, caller, posts)
	if err != nil {
		s.logger.Errorw("feed decoration failed", "error", err)
		return nil, Internal(err, "Failed to retrieve posts")
	}
	return views, nil
}

// ListByUser returns every post authored by target, newest first, with no
// cap, decorated for the caller.
func (s *PostService) ListByUser(ctx context.Context, caller, target string) ([]PostView, error) {
	items, err := s.store.QueryByIndex(ctx, entities.CollectionPosts, entities.IndexPostsByUser, target, false)
	if err != nil {
		s.logger.Errorw("user posts query failed", "user_id", target, "error", err)
		return nil, Internal(err, "Failed to retrieve posts")
	}

	posts := make([]*entities.Post, 0, len(items))
	for _, it := range items {
		posts = append(posts, entities.PostFromItem(it))
	}

	views, err := s.agg.decoratePosts(ctx, caller, posts)
	if err != nil {
		s.logger.Errorw("user posts decoration failed", "user_id", target, "error", err)
		return nil, Internal(err, "Failed to retrieve posts")
	}
	return views, nil
}
