// Package view implements the HTTP handler for the profile page.
package view

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
	"github.com/uzeed/uzeed-backend/internal/services/feed"
)

// Handler serves GET /api/v1/profiles/{username}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the business logic surface of the profile page.
type Service interface {
	Profile(ctx context.Context, username, viewerID string, now time.Time) (*feed.ProfileView, error)
}

// New builds a profile view Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Profile page
// @Description Returns a profile with its posts projected for the viewer.
// @Tags Profiles
// @Produce  json
// @Param username path string true "Profile username"
// @Success 200 {object} map[string]any "Profile"
// @Failure 403 {object} response.ErrorResponse "Profile not accessible"
// @Failure 404 {object} response.ErrorResponse "Profile not found"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /profiles/{username} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.view"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	username := chi.URLParam(r, "username")
	if username == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing username"))
		return
	}
	viewerID, _ := r.Context().Value(middlewarectx.UserID).(string)

	view, err := h.service.Profile(r.Context(), username, viewerID, time.Now())
	if err != nil {
		if errors.Is(err, feed.ErrProfileNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("profile not found"))
			return
		}
		if errors.Is(err, feed.ErrProfileForbidden) {
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("profile not accessible"))
			return
		}
		log.Error("failed to load profile", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load profile"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(view))
}
