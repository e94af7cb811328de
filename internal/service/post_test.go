package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostCreate(t *testing.T) {
	st := newTestStore()
	svc := NewPostService(st, testLogger())
	ctx := context.Background()

	seedProfile(t, st, "user-1", "Aroha")

	post, err := svc.Create(ctx, "user-1", "  first post  ")
	require.NoError(t, err)
	assert.NotEmpty(t, post.PostID)
	assert.Equal(t, "user-1", post.UserID)
	assert.Equal(t, "Aroha", post.DisplayName, "display name is snapshotted from the profile")
	assert.Equal(t, "first post", post.Content, "content is trimmed")
	assert.Equal(t, post.CreatedAt, post.UpdatedAt)
}

func TestPostCreateRequiresProfile(t *testing.T) {
	svc := NewPostService(newTestStore(), testLogger())

	_, err := svc.Create(context.Background(), "user-1", "hello")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.EqualError(t, err, "Profile not found. Please complete onboarding first.")
}

func TestPostCreateValidation(t *testing.T) {
	st := newTestStore()
	svc := NewPostService(st, testLogger())
	ctx := context.Background()

	seedProfile(t, st, "user-1", "Aroha")

	_, err := svc.Create(ctx, "user-1", strings.Repeat("x", 281))
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.EqualError(t, err, "Content must not exceed 280 characters")

	_, err = svc.Create(ctx, "user-1", "   ")
	require.Error(t, err)
	assert.EqualError(t, err, "Content is required")

	// Nothing was persisted
	feed, err := svc.Feed(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestPostUpdate(t *testing.T) {
	st := newTestStore()
	svc := NewPostService(st, testLogger())
	svc.now = stepClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), time.Minute)
	ctx := context.Background()

	seedProfile(t, st, "user-1", "Aroha")
	post, err := svc.Create(ctx, "user-1", "original")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "user-1", post.PostID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))
	assert.Equal(t, post.CreatedAt, updated.CreatedAt)
}

func TestPostUpdateOwnership(t *testing.T) {
	st := newTestStore()
	svc := NewPostService(st, testLogger())
	ctx := context.Background()

	seedProfile(t, st, "user-1", "Aroha")
	post, err := svc.Create(ctx, "user-1", "original")
	require.NoError(t, err)

	// A missing post is a not-found, even for a would-be non-owner
	_, err = svc.Update(ctx, "user-2", "no-such-post", "edited")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.EqualError(t, err, "Post not found")

	// An existing post someone else owns is forbidden
	_, err = svc.Update(ctx, "user-2", post.PostID, "hijacked")
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
	assert.EqualError(t, err, "Forbidden - You can only edit your own posts")

	// Content is unchanged after the forbidden attempt
	feed, err := svc.Feed(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "original", feed[0].Content)
}

func TestPostDelete(t *testing.T) {
	st := newTestStore()
	svc := NewPostService(st, testLogger())
	ctx := context.Background()

	seedProfile(t, st, "user-1", "Aroha")
	post, err := svc.Create(ctx, "user-1", "to be removed")
	require.NoError(t, err)

	err = svc.Delete(ctx, "user-2", post.PostID)
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
	assert.EqualError(t, err, "Forbidden - You can only delete your own posts")

	require.NoError(t, svc.Delete(ctx, "user-1", post.PostID))

	err = svc.Delete(ctx, "user-1", post.PostID)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))

	feed, err := svc.Feed(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestFeedOrderAndCap(t *testing.T) {
	st := newTestStore()
	svc := NewPostService(st, testLogger())
	svc.now = stepClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), time.Second)
	ctx := context.Background()

	seedProfile(t, st, "user-1", "Aroha")
	for i := 0; i < FeedLimit+50; i++ {
		_, err := svc.Create(ctx, "user-1", fmt.Sprintf("post %d", i))
		require.NoError(t, err)
	}

	feed, err := svc.Feed(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, feed, FeedLimit, "feed is capped")

	assert.Equal(t, fmt.Sprintf("post %d", FeedLimit+49), feed[0].Content, "newest first")
	for i := 1; i < len(feed); i++ {
		assert.False(t, feed[i].CreatedAt.After(feed[i-1].CreatedAt),
			"feed out of order at %d", i)
	}
}

func TestFeedAggregates(t *testing.T) {
	st := newTestStore()
	postSvc := NewPostService(st, testLogger())
	commentSvc := NewCommentService(st, testLogger())
	likeSvc := NewLikeService(st, testLogger())
	ctx := context.Background()

	seedProfile(t, st, "user-1", "Aroha")
	seedProfile(t, st, "user-2", "Mere")

	post, err := postSvc.Create(ctx, "user-1", "popular post")
	require.NoError(t, err)

	_, err = likeSvc.Toggle(ctx, "user-2", LikeTarget{Type: "post", PostID: post.PostID})
	require.NoError(t, err)
	_, err = commentSvc.Create(ctx, "user-2", post.PostID, "nice one")
	require.NoError(t, err)

	// The liker sees their own like flagged
	feed, err := postSvc.Feed(ctx, "user-2")
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, 1, feed[0].LikeCount)
	assert.True(t, feed[0].LikedByUser)
	assert.Equal(t, 1, feed[0].CommentCount)

	// The author does not
	feed, err = postSvc.Feed(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, 1, feed[0].LikeCount)
	assert.False(t, feed[0].LikedByUser)
}

func TestListByUser(t *testing.T) {
	st := newTestStore()
	svc := NewPostService(st, testLogger())
	svc.now = stepClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), time.Second)
	ctx := context.Background()

	seedProfile(t, st, "user-1", "Aroha")
	seedProfile(t, st, "user-2", "Mere")

	for i := 0; i < FeedLimit+10; i++ {
		_, err := svc.Create(ctx, "user-1", fmt.Sprintf("post %d", i))
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, "user-2", "someone else's post")
	require.NoError(t, err)

	posts, err := svc.ListByUser(ctx, "user-2", "user-1")
	require.NoError(t, err)
	assert.Len(t, posts, FeedLimit+10, "per-user listing is not capped")
	assert.Equal(t, fmt.Sprintf("post %d", FeedLimit+9), posts[0].Content, "newest first")
	for _, p := range posts {
		assert.Equal(t, "user-1", p.UserID)
	}
}
