// Package subscribe implements the HTTP handler for subscribing to a
// profile.
package subscribe

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/uzeed/uzeed-backend/internal/http/middlewarectx"
	"github.com/uzeed/uzeed-backend/internal/http/response"
	"github.com/uzeed/uzeed-backend/internal/lib/sl"
	"github.com/uzeed/uzeed-backend/internal/models"
	"github.com/uzeed/uzeed-backend/internal/services/subscription"
)

// Handler serves POST /api/v1/profiles/{username}/subscribe.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the business logic surface of subscribing.
type Service interface {
	Subscribe(ctx context.Context, subscriberID, username string, now time.Time) (*models.ProfileSubscription, error)
}

// New builds a subscribe Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Subscribe to a profile
// @Description Creates or renews a 30-day subscription to a creator or professional profile.
// @Tags Profiles
// @Produce  json
// @Param username path string true "Profile username"
// @Success 200 {object} map[string]any "Subscription state"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Failure 404 {object} response.ErrorResponse "Profile not found"
// @Failure 409 {object} response.ErrorResponse "Profile cannot be subscribed to"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /profiles/{username}/subscribe [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.subscribe"
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
	username := chi.URLParam(r, "username")

	sub, err := h.service.Subscribe(r.Context(), userID, username, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, subscription.ErrProfileNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("profile not found"))
		case errors.Is(err, subscription.ErrSelfSubscribe):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("cannot subscribe to own profile"))
		case errors.Is(err, subscription.ErrNotSubscribable):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("profile is not subscribable"))
		default:
			log.Error("failed to subscribe", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not subscribe"))
		}
		return
	}

	log.Info("subscription written",
		slog.String("subscriber_id", userID),
		slog.String("profile_id", sub.ProfileID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"profile_id": sub.ProfileID,
		"status":     sub.Status,
		"expires_at": sub.ExpiresAt,
		"price":      sub.Price,
	}))
}
