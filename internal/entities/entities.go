// Package entities holds the four domain records and their collection
// schemas. Display names inside posts, comments and likes are snapshots
// taken at creation time; they are never re-synced when a profile changes.
package entities

import (
	"time"

	"github.com/korero-app/korero-backend/internal/store"
)

// Collection names.
const (
	CollectionProfiles = "profiles"
	CollectionPosts    = "posts"
	CollectionComments = "comments"
	CollectionLikes    = "likes"
)

// Index names.
const (
	IndexPostsByUser    = "user_id-index"
	IndexCommentsByPost = "post_id-index"
	IndexLikesByTarget  = "target_id-index"
)

// Political alignment values accepted on profiles. The empty string means
// undisclosed.
var PoliticalAlignments = []string{"National", "Labour", "Independent", ""}

// TargetType distinguishes what a like points at. The likes collection is
// shared between posts and comments, so every query by target_id must also
// filter on this.
type TargetType string

const (
	TargetPost    TargetType = "post"
	TargetComment TargetType = "comment"
)

// ProfileSchema keys profiles by user_id alone. Profiles are created once
// and updated in place; they are never deleted.
var ProfileSchema = &store.Schema{
	Name:         CollectionProfiles,
	PartitionKey: "user_id",
}

// PostSchema keys posts by their generated post_id and indexes them by
// author for the per-user listing.
var PostSchema = &store.Schema{
	Name:         CollectionPosts,
	PartitionKey: "post_id",
	SortField:    "created_at",
	Indexes: []store.Index{
		{Name: IndexPostsByUser, Field: "user_id"},
	},
}

// CommentSchema keys comments by (post_id, comment_id) and indexes them by
// post for listing. Comments reference the post only at creation time;
// deleting a post leaves its comments in place.
var CommentSchema = &store.Schema{
	Name:         CollectionComments,
	PartitionKey: "post_id",
	SortKey:      "comment_id",
	SortField:    "created_at",
	Indexes: []store.Index{
		{Name: IndexCommentsByPost, Field: "post_id"},
	},
}

// LikeSchema keys likes by (target_id, user_id), which makes create and
// delete naturally idempotent per user and target. A like is binary state,
// so it carries no updated_at.
var LikeSchema = &store.Schema{
	Name:         CollectionLikes,
	PartitionKey: "target_id",
	SortKey:      "user_id",
	Indexes: []store.Index{
		{Name: IndexLikesByTarget, Field: "target_id"},
	},
}

// Schemas returns every collection schema, in registration order.
func Schemas() []*store.Schema {
	return []*store.Schema{ProfileSchema, PostSchema, CommentSchema, LikeSchema}
}

// Profile is a user's public identity record.
type Profile struct {
	UserID             string
	DisplayName        string
	Bio                string
	PoliticalAlignment string
	Private            bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (p *Profile) ToItem() store.Item {
	return store.Item{
		"user_id":             p.UserID,
		"display_name":        p.DisplayName,
		"bio":                 p.Bio,
		"political_alignment": p.PoliticalAlignment,
		"profile_private":     p.Private,
		"created_at":          store.FormatTime(p.CreatedAt),
		"updated_at":          store.FormatTime(p.UpdatedAt),
	}
}

func ProfileFromItem(it store.Item) *Profile {
	return &Profile{
		UserID:             it.String("user_id"),
		DisplayName:        it.String("display_name"),
		Bio:                it.String("bio"),
		PoliticalAlignment: it.String("political_alignment"),
		Private:            it.Bool("profile_private"),
		CreatedAt:          store.ParseTime(it.String("created_at")),
		UpdatedAt:          store.ParseTime(it.String("updated_at")),
	}
}

// Redacted returns the privacy-filtered view of a private profile as seen
// by another user: bio and political alignment blanked, name and
// timestamps kept.
func (p *Profile) Redacted() *Profile {
	return &Profile{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		Private:     true,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// Post is a short public message. UserID and PostID are immutable after
// creation; only the owner may change Content.
type Post struct {
	PostID      string
	UserID      string
	DisplayName string
	Content     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Post) ToItem() store.Item {
	return store.Item{
		"post_id":      p.PostID,
		"user_id":      p.UserID,
		"display_name": p.DisplayName,
		"content":      p.Content,
		"created_at":   store.FormatTime(p.CreatedAt),
		"updated_at":   store.FormatTime(p.UpdatedAt),
	}
}

func PostFromItem(it store.Item) *Post {
	return &Post{
		PostID:      it.String("post_id"),
		UserID:      it.String("user_id"),
		DisplayName: it.String("display_name"),
		Content:     it.String("content"),
		CreatedAt:   store.ParseTime(it.String("created_at")),
		UpdatedAt:   store.ParseTime(it.String("updated_at")),
	}
}

// Comment is immutable once created, except for deletion by its owner.
type Comment struct {
	PostID      string
	CommentID   string
	UserID      string
	DisplayName string
	Content     string
	CreatedAt   time.Time
}

func (c *Comment) ToItem() store.Item {
	return store.Item{
		"post_id":      c.PostID,
		"comment_id":   c.CommentID,
		"user_id":      c.UserID,
		"display_name": c.DisplayName,
		"content":      c.Content,
		"created_at":   store.FormatTime(c.CreatedAt),
	}
}

func CommentFromItem(it store.Item) *Comment {
	return &Comment{
		PostID:      it.String("post_id"),
		CommentID:   it.String("comment_id"),
		UserID:      it.String("user_id"),
		DisplayName: it.String("display_name"),
		Content:     it.String("content"),
		CreatedAt:   store.ParseTime(it.String("created_at")),
	}
}

// Like records that a user liked a post or comment.
type Like struct {
	TargetID    string
	UserID      string
	TargetType  TargetType
	DisplayName string
}

func (l *Like) ToItem() store.Item {
	return store.Item{
		"target_id":    l.TargetID,
		"user_id":      l.UserID,
		"target_type":  string(l.TargetType),
		"display_name": l.DisplayName,
	}
}

func LikeFromItem(it store.Item) *Like {
	return &Like{
		TargetID:    it.String("target_id"),
		UserID:      it.String("user_id"),
		TargetType:  TargetType(it.String("target_type")),
		DisplayName: it.String("display_name"),
	}
}
