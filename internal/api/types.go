package api

import (
	"github.com/korero-app/korero-backend/internal/entities"
	"github.com/korero-app/korero-backend/internal/service"
	"github.com/korero-app/korero-backend/internal/store"
)

// Request bodies

type CreateProfileRequest struct {
	DisplayName        string `json:"display_name"`
	Bio                string `json:"bio"`
	PoliticalAlignment string `json:"political_alignment"`
	ProfilePrivate     bool   `json:"profile_private"`
}

// UpdateProfileRequest uses pointers so absent fields are left untouched.
type UpdateProfileRequest struct {
	DisplayName        *string `json:"display_name"`
	Bio                *string `json:"bio"`
	PoliticalAlignment *string `json:"political_alignment"`
	ProfilePrivate     *bool   `json:"profile_private"`
}

type PostContentRequest struct {
	Content string `json:"content"`
}

type CommentContentRequest struct {
	Content string `json:"content"`
}

// Response DTOs

type ProfileDTO struct {
	UserID             string `json:"user_id"`
	DisplayName        string `json:"display_name"`
	Bio                string `json:"bio"`
	PoliticalAlignment string `json:"political_alignment"`
	ProfilePrivate     bool   `json:"profile_private"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

type PostDTO struct {
	PostID      string `json:"post_id"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Content     string `json:"content"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// PostViewDTO is a post with its aggregates, as served in the feed and
// per-user listings.
type PostViewDTO struct {
	PostDTO
	LikeCount    int  `json:"like_count"`
	LikedByUser  bool `json:"liked_by_user"`
	CommentCount int  `json:"comment_count"`
}

type CommentDTO struct {
	PostID      string `json:"post_id"`
	CommentID   string `json:"comment_id"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Content     string `json:"content"`
	CreatedAt   string `json:"created_at"`
}

type CommentViewDTO struct {
	CommentDTO
	LikeCount   int  `json:"like_count"`
	LikedByUser bool `json:"liked_by_user"`
}

type LikerDTO struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

type LikesDTO struct {
	Likes []LikerDTO `json:"likes"`
	Count int        `json:"count"`
}

type ToggleDTO struct {
	Liked   bool   `json:"liked"`
	Message string `json:"message"`
}

type MessageDTO struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Conversions

func profileDTO(p *entities.Profile) ProfileDTO {
	return ProfileDTO{
		UserID:             p.UserID,
		DisplayName:        p.DisplayName,
		Bio:                p.Bio,
		PoliticalAlignment: p.PoliticalAlignment,
		ProfilePrivate:     p.Private,
		CreatedAt:          store.FormatTime(p.CreatedAt),
		UpdatedAt:          store.FormatTime(p.UpdatedAt),
	}
}

func postDTO(p *entities.Post) PostDTO {
	return PostDTO{
		PostID:      p.PostID,
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		Content:     p.Content,
		CreatedAt:   store.FormatTime(p.CreatedAt),
		UpdatedAt:   store.FormatTime(p.UpdatedAt),
	}
}

func postViewDTOs(views []service.PostView) []PostViewDTO {
	dtos := make([]PostViewDTO, 0, len(views))
	for _, v := range views {
		dtos = append(dtos, PostViewDTO{
			PostDTO:      postDTO(&v.Post),
			LikeCount:    v.LikeCount,
			LikedByUser:  v.LikedByUser,
			CommentCount: v.CommentCount,
		})
	}
	return dtos
}

func commentDTO(c *entities.Comment) CommentDTO {
	return CommentDTO{
		PostID:      c.PostID,
		CommentID:   c.CommentID,
		UserID:      c.UserID,
		DisplayName: c.DisplayName,
		Content:     c.Content,
		CreatedAt:   store.FormatTime(c.CreatedAt),
	}
}

func commentViewDTOs(views []service.CommentView) []CommentViewDTO {
	dtos := make([]CommentViewDTO, 0, len(views))
	for _, v := range views {
		dtos = append(dtos, CommentViewDTO{
			CommentDTO:  commentDTO(&v.Comment),
			LikeCount:   v.LikeCount,
			LikedByUser: v.LikedByUser,
		})
	}
	return dtos
}

func likesDTO(likers []service.Liker) LikesDTO {
	dto := LikesDTO{Likes: make([]LikerDTO, 0, len(likers))}
	for _, l := range likers {
		dto.Likes = append(dto.Likes, LikerDTO{UserID: l.UserID, DisplayName: l.DisplayName})
	}
	dto.Count = len(dto.Likes)
	return dto
}
