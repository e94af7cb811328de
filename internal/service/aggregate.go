package service

import (
	"context"
	"errors"

	"github.com/korero-app/korero-backend/internal/entities"
	"github.com/korero-app/korero-backend/internal/store"
)

// PostView is a post decorated with its aggregates for the caller.
type PostView struct {
	entities.Post
	LikeCount    int
	LikedByUser  bool
	CommentCount int
}

// CommentView is a comment decorated with its like aggregates.
type CommentView struct {
	entities.Comment
	LikeCount   int
	LikedByUser bool
}

// decorator joins posts and comments against the likes (and comments)
// collections. It issues one query per item; fine at this scale, and the
// documented boundary to revisit before the feed grows past it.
type decorator struct {
	store store.Store
}

// likesFor returns the likes on a target, filtered by target type. The
// index covers target_id alone and is shared between posts and comments,
// so the type filter is mandatory.
func (d *decorator) likesFor(ctx context.Context, targetID string, tt entities.TargetType) ([]*entities.Like, error) {
	items, err := d.store.QueryByIndex(ctx, entities.CollectionLikes, entities.IndexLikesByTarget, targetID, true)
	if err != nil {
		return nil, err
	}
	likes := make([]*entities.Like, 0, len(items))
	for _, it := range items {
		like := entities.LikeFromItem(it)
		if like.TargetType == tt {
			likes = append(likes, like)
		}
	}
	return likes, nil
}

func (d *decorator) decoratePosts(ctx context.Context, caller string, posts []*entities.Post) ([]PostView, error) {
	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		likes, err := d.likesFor(ctx, p.PostID, entities.TargetPost)
		if err != nil {
			return nil, err
		}

		comments, err := d.store.QueryByIndex(ctx, entities.CollectionComments, entities.IndexCommentsByPost, p.PostID, true)
		if err != nil {
			return nil, err
		}

		views = append(views, PostView{
			Post:         *p,
			LikeCount:    len(likes),
			LikedByUser:  likedBy(likes, caller),
			CommentCount: len(comments),
		})
	}
	return views, nil
}

func (d *decorator) decorateComments(ctx context.Context, caller string, comments []*entities.Comment) ([]CommentView, error) {
	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		likes, err := d.likesFor(ctx, c.CommentID, entities.TargetComment)
		if err != nil {
			return nil, err
		}
		views = append(views, CommentView{
			Comment:     *c,
			LikeCount:   len(likes),
			LikedByUser: likedBy(likes, caller),
		})
	}
	return views, nil
}

func likedBy(likes []*entities.Like, userID string) bool {
	for _, l := range likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}

// postExists reports whether a post is present, translating store errors
// into service errors.
func postExists(ctx context.Context, st store.Store, postID string) error {
	_, err := st.GetItem(ctx, entities.CollectionPosts, store.Key{Partition: postID})
	if errors.Is(err, store.ErrNotFound) {
		return NotFound("Post not found")
	}
	if err != nil {
		return Internal(err, "Failed to retrieve post")
	}
	return nil
}
