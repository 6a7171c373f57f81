// Package items implements the HTTP handler that lists one profile's
// service items.
package items

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/uzeed/uzeed-backend/internal/http/response"
	"github.com/uzeed/uzeed-backend/internal/lib/sl"
	"github.com/uzeed/uzeed-backend/internal/models"
	"github.com/uzeed/uzeed-backend/internal/services/directory"
)

// Handler serves GET /api/v1/services/{userID}/items.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the business logic surface of the item listing.
type Service interface {
	ListItems(ctx context.Context, ownerID string) ([]*models.ServiceItem, error)
}

// New builds an items Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Service items of a profile
// @Tags Services
// @Produce  json
// @Param userID path string true "Profile id"
// @Success 200 {object} map[string]any "Items"
// @Failure 404 {object} response.ErrorResponse "Profile not found"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /services/{userID}/items [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.servicedir.items"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	ownerID := chi.URLParam(r, "userID")

	items, err := h.service.ListItems(r.Context(), ownerID)
	if err != nil {
		if errors.Is(err, directory.ErrProfileNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("profile not found"))
			return
		}
		log.Error("failed to list service items", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list items"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(items))
}
