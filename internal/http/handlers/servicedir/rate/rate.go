// Package rate implements the HTTP handler for rating a service profile.
package rate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/uzeed/uzeed-backend/internal/http/middlewarectx"
	"github.com/uzeed/uzeed-backend/internal/http/response"
	"github.com/uzeed/uzeed-backend/internal/lib/sl"
	"github.com/uzeed/uzeed-backend/internal/models"
	"github.com/uzeed/uzeed-backend/internal/services/directory"
)

// Handler serves POST /api/v1/services/{userID}/rating.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service is the business logic surface of rating.
type Service interface {
	Rate(ctx context.Context, profileID, raterID string, rating int, now time.Time) error
}

// New builds a rate Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Rate a service profile
// @Description Records a 1..5 rating. Rating again replaces the previous value.
// @Tags Services
// @Accept  json
// @Produce  json
// @Param userID path string true "Profile id"
// @Param request body models.DummyRating true "Rating"
// @Success 200 {object} response.Response "Rating recorded"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Failure 404 {object} response.ErrorResponse "Profile not found"
// @Failure 409 {object} response.ErrorResponse "Cannot rate own profile"
// @Failure 422 {object} response.ErrorResponse "Validation error"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /services/{userID}/rating [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.servicedir.rate"
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
	profileID := chi.URLParam(r, "userID")

	var req models.DummyRating
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

	if err := h.service.Rate(r.Context(), profileID, userID, req.Rating, time.Now()); err != nil {
		switch {
		case errors.Is(err, directory.ErrProfileNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("profile not found"))
		case errors.Is(err, directory.ErrSelfRating):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("cannot rate own profile"))
		default:
			log.Error("failed to record rating", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not record rating"))
		}
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"profile_id": profileID,
		"rating":     req.Rating,
	}))
}
