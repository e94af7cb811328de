package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/korero-app/korero-backend/internal/auth"
)

func (h *Handler) Routes(m *Middleware, tokens auth.Tokens, metricsHandler http.Handler, rateLimitRPM int) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(m.RequestID)
	r.Use(m.RequestLogger)
	r.Use(m.Recoverer)
	r.Use(m.SecurityHeaders)
	r.Use(m.Timeout(15 * time.Second))
	r.Use(middleware.Heartbeat("/ping"))

	r.Use(m.CORS())
	r.Use(m.RateLimit(rateLimitRPM))

	// Health and metrics endpoints
	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
	r.Handle("/metrics", metricsHandler)

	// v1 API routes, all behind bearer auth
	r.Route("/v1", func(r chi.Router) {
		r.Use(m.Authenticate(tokens))

		// Profiles
		r.Route("/profile", func(r chi.Router) {
			r.Post("/", h.CreateProfile)
			r.Get("/", h.GetProfile)
			r.Put("/", h.UpdateProfile)
		})

		// Posts, comments, likes
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", h.GetFeed)
			r.Post("/", h.CreatePost)
			r.Get("/user", h.GetUserPosts)

			r.Route("/{post_id}", func(r chi.Router) {
				r.Put("/", h.UpdatePost)
				r.Delete("/", h.DeletePost)
				r.Post("/like", h.LikePost)
				r.Get("/likes", h.GetPostLikes)

				r.Route("/comments", func(r chi.Router) {
					r.Post("/", h.CreateComment)
					r.Get("/", h.GetComments)

					r.Route("/{comment_id}", func(r chi.Router) {
						r.Delete("/", h.DeleteComment)
						r.Post("/like", h.LikeComment)
						r.Get("/likes", h.GetCommentLikes)
					})
				})
			})
		})
	})

	return r
}
