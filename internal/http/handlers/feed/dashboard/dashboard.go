// Package dashboard implements the HTTP handler for the account state view.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/uzeed/uzeed-backend/internal/http/middlewarectx"
	"github.com/uzeed/uzeed-backend/internal/http/response"
	"github.com/uzeed/uzeed-backend/internal/lib/sl"
	"github.com/uzeed/uzeed-backend/internal/services/feed"
)

// Handler serves GET /api/v1/dashboard.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the business logic surface of the dashboard.
type Service interface {
	Dashboard(ctx context.Context, userID string, now time.Time) (*feed.DashboardView, error)
}

// New builds a dashboard Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Account dashboard
// @Description Returns the membership and trial state of the logged-in user.
// @Tags Feed
// @Produce  json
// @Success 200 {object} map[string]any "Account state"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /dashboard [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.feed.dashboard"
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

	view, err := h.service.Dashboard(r.Context(), userID, time.Now())
	if err != nil {
		if errors.Is(err, feed.ErrProfileNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("account not found"))
			return
		}
		log.Error("failed to build dashboard", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load dashboard"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(view))
}
