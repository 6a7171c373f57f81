// Package list implements the HTTP handler for the services directory.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/uzeed/uzeed-backend/internal/http/response"
	"github.com/uzeed/uzeed-backend/internal/lib/sl"
	"github.com/uzeed/uzeed-backend/internal/services/directory"
)

// Handler serves GET /api/v1/services.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the business logic surface of the directory listing.
type Service interface {
	ListProfiles(ctx context.Context, lat, lng *float64) ([]directory.ProfileEntry, error)
}

// New builds a directory list Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// parseCoord returns nil for an absent or malformed coordinate parameter.
func parseCoord(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ServeHTTP godoc
// @Summary Services directory
// @Description Lists professional and shop profiles, nearest first when coordinates are given.
// @Tags Services
// @Produce  json
// @Param lat query number false "Viewer latitude"
// @Param lng query number false "Viewer longitude"
// @Success 200 {object} map[string]any "Directory entries"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /services [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.servicedir.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	lat := parseCoord(r.URL.Query().Get("lat"))
	lng := parseCoord(r.URL.Query().Get("lng"))

	entries, err := h.service.ListProfiles(r.Context(), lat, lng)
	if err != nil {
		log.Error("failed to list service profiles", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list services"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(entries))
}
