// Package view implements the HTTP handler for the home feed.
//
// The feed is public: anonymous visitors get the paywalled projection,
// authenticated viewers get posts unlocked by their entitlements.
package view

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/uzeed/uzeed-backend/internal/http/middlewarectx"
	"github.com/uzeed/uzeed-backend/internal/http/response"
	"github.com/uzeed/uzeed-backend/internal/lib/sl"
	"github.com/uzeed/uzeed-backend/internal/services/entitlement"
)

// Handler serves GET /api/v1/feed.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the business logic surface of the feed.
type Service interface {
	Feed(ctx context.Context, viewerID string, now time.Time) ([]entitlement.PostView, error)
}

// New builds a feed Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Home feed
// @Description Returns the latest posts. Locked posts are truncated for viewers without access. Pass sort=popular for the popularity ordering.
// @Tags Feed
// @Produce  json
// @Param sort query string false "Ordering: newest (default) or popular"
// @Success 200 {object} map[string]any "Feed entries"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /feed [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.feed.view"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	viewerID, _ := r.Context().Value(middlewarectx.UserID).(string)

	views, err := h.service.Feed(r.Context(), viewerID, time.Now())
	if err != nil {
		log.Error("failed to build feed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load feed"))
		return
	}

	switch r.URL.Query().Get("sort") {
	case "popular":
		entitlement.SortByPopularity(views)
	default:
		entitlement.SortNewestFirst(views)
	}

	render.JSON(w, r, response.StatusOKWithData(views))
}
