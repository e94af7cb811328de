package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/korero-app/korero-backend/internal/auth"
	"github.com/korero-app/korero-backend/internal/entities"
	"github.com/korero-app/korero-backend/internal/service"
	"github.com/korero-app/korero-backend/internal/store"
)

type Handler struct {
	profileSvc *service.ProfileService
	postSvc    *service.PostService
	commentSvc *service.CommentService
	likeSvc    *service.LikeService
	store      store.Store
	logger     *zap.SugaredLogger
}

func NewHandler(
	profileSvc *service.ProfileService,
	postSvc *service.PostService,
	commentSvc *service.CommentService,
	likeSvc *service.LikeService,
	st store.Store,
	logger *zap.SugaredLogger,
) *Handler {
	return &Handler{
		profileSvc: profileSvc,
		postSvc:    postSvc,
		commentSvc: commentSvc,
		likeSvc:    likeSvc,
		store:      st,
		logger:     logger,
	}
}

// Health endpoints

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Errorw("Readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("NOT READY"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}

// Profile endpoints

func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		h.writeServiceError(w, service.Unauthenticated(err.Error()))
		return
	}

	var req CreateProfileRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeServiceError(w, service.Invalid("Invalid request body"))
		return
	}

	profile, err := h.profileSvc.Create(r.Context(), caller, service.CreateProfileInput{
		DisplayName:        req.DisplayName,
		Bio:                req.Bio,
		PoliticalAlignment: req.PoliticalAlignment,
		Private:            req.ProfilePrivate,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, profileDTO(profile))
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		h.writeServiceError(w, service.Unauthenticated(err.Error()))
		return
	}

	target, err := auth.Target(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		h.writeServiceError(w, service.Unauthenticated(err.Error()))
		return
	}

	profile, err := h.profileSvc.Get(r.Context(), caller, target)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, profileDTO(profile))
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		h.writeServiceError(w, service.Unauthenticated(err.Error()))
		return
	}

	var req UpdateProfileRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeServiceError(w, service.Invalid("Invalid request body"))
		return
	}

	profile, err := h.profileSvc.Update(r.Context(), caller, service.UpdateProfileInput{
		DisplayName:        req.DisplayName,
		Bio:                req.Bio,
		PoliticalAlignment: req.PoliticalAlignment,
		Private:            req.ProfilePrivate,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, profileDTO(profile))
}

// Post endpoints

func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		h.writeServiceError(w, service.Unauthenticated(err.Error()))
		return
	}

	views, err := h.postSvc.Feed(r.Context(), caller)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, postViewDTOs(views))
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		h.writeServiceError(w, service.Unauthenticated(err.Error()))
		return
	}

	var req PostContentRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeServiceError(w, service.Invalid("Invalid request body"))
		return
	}

	post, err := h.postSvc.Create(r.Context(), caller, req.Content)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, postDTO(post))
}

func (h *Handler) GetUserPosts(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		h.writeServiceError(w, service.Unauthenticated(err.Error()))
		return
	}

	target, err := auth.Target(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		h.writeServiceError(w, service.Unauthenticated(err.Error()))
		return
	}

	views, err := h.postSvc.ListByUser(r.Context(), caller, target)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, postViewDTOs(views))
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		h.writeServiceError(w, service.Unauthenticated(err.Error()))
		return
	}

	var req PostContentRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeServiceError(w, service.Invalid("Invalid request body"))
		return
	}

	post, err := h.postSvc.Update(r.Context(), caller, chi.URLParam(r, "post_id"), req.Content)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, postDTO(post))
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		h.writeServiceError(w, service.Unauthenticated(err.Error()))
		return
	}

	if err := h.postSvc.Delete(r.Context(), caller, chi.URLParam(r, "post_id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, MessageDTO{Message: "Post deleted successfully"})
}

// Like endpoints

func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		h.writeServiceError(w, service.Unauthenticated(err.Error()))
		return
	}

	result, err := h.likeSvc.Toggle(r.Context(), caller, service.LikeTarget{
		Type:   entities.TargetPost,
		PostID: chi.URLParam(r, "post_id"),
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ToggleDTO{Liked: result.Liked, Message: result.Message})
}

func (h *Handler) GetPostLikes(w http.ResponseWriter, r *http.Request) {
	likers, err := h.likeSvc.Likers(r.Context(), service.LikeTarget{
		Type:   entities.TargetPost,
		PostID: chi.URLParam(r, "post_id"),
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, likesDTO(likers))
}

func (h *Handler) LikeComment(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		h.writeServiceError(w, service.Unauthenticated(err.Error()))
		return
	}

	result, err := h.likeSvc.Toggle(r.Context(), caller, service.LikeTarget{
		Type:      entities.TargetComment,
		PostID:    chi.URLParam(r, "post_id"),
		CommentID: chi.URLParam(r, "comment_id"),
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ToggleDTO{Liked: result.Liked, Message: result.Message})
}

func (h *Handler) GetCommentLikes(w http.ResponseWriter, r *http.Request) {
	likers, err := h.likeSvc.Likers(r.Context(), service.LikeTarget{
		Type:      entities.TargetComment,
		PostID:    chi.URLParam(r, "post_id"),
		CommentID: chi.URLParam(r, "comment_id"),
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, likesDTO(likers))
}

// Comment endpoints

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		h.writeServiceError(w, service.Unauthenticated(err.Error()))
		return
	}

	var req CommentContentRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeServiceError(w, service.Invalid("Invalid request body"))
		return
	}

	comment, err := h.commentSvc.Create(r.Context(), caller, chi.URLParam(r, "post_id"), req.Content)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, commentDTO(comment))
}

func (h *Handler) GetComments(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		h.writeServiceError(w, service.Unauthenticated(err.Error()))
		return
	}

	views, err := h.commentSvc.ListForPost(r.Context(), caller, chi.URLParam(r, "post_id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, commentViewDTOs(views))
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		h.writeServiceError(w, service.Unauthenticated(err.Error()))
		return
	}

	if err := h.commentSvc.Delete(r.Context(), caller, chi.URLParam(r, "post_id"), chi.URLParam(r, "comment_id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, MessageDTO{Message: "Comment deleted successfully"})
}

// Utility methods

func decodeBody(r *http.Request, dst any) error {
	defer io.Copy(io.Discard, r.Body)
	return json.NewDecoder(r.Body).Decode(dst)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		h.logger.Errorw("API error", "status", status, "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()})
}

func statusOf(err error) int {
	if errors.Is(err, auth.ErrUnauthenticated) {
		return http.StatusUnauthorized
	}
	switch service.KindOf(err) {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindUnauthenticated:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
