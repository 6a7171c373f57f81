// Package create implements the HTTP handler for publishing a post.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/uzeed/uzeed-backend/internal/http/middlewarectx"
	"github.com/uzeed/uzeed-backend/internal/http/response"
	"github.com/uzeed/uzeed-backend/internal/lib/sl"
	"github.com/uzeed/uzeed-backend/internal/models"
	"github.com/uzeed/uzeed-backend/internal/services/post"
)

// Handler serves POST /api/v1/posts.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service is the business logic surface of post publishing.
type Service interface {
	Publish(ctx context.Context, authorID string, req models.DummyPost, now time.Time) (*models.Post, error)
}

// New builds a create Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Publish a post
// @Description Publishes a post with optional media references. Viewer accounts cannot publish.
// @Tags Posts
// @Accept  json
// @Produce  json
// @Param request body models.DummyPost true "Post data"
// @Success 200 {object} map[string]any "Created post"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Failure 403 {object} response.ErrorResponse "Profile cannot publish posts"
// @Failure 422 {object} response.ErrorResponse "Validation error"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Security BearerAuth
// @Router /posts [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.post.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := r.Context().Value(middlewarectx.UserID).(string)
	if !ok || userID == "" {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req models.DummyPost
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	created, err := h.service.Publish(r.Context(), userID, req, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, post.ErrNotCreatorProfile):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("profile cannot publish posts"))
		case errors.Is(err, post.ErrAuthorNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("author not found"))
		default:
			log.Error("failed to publish post", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not publish post"))
		}
		return
	}

	log.Info("post published", slog.String("post_id", created.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"id":         created.ID,
		"title":      created.Title,
		"is_public":  created.IsPublic,
		"created_at": created.CreatedAt,
	}))
}
