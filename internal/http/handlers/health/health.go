// Package health implements the HTTP liveness and readiness handler.
package health

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/uzeed/uzeed-backend/internal/http/response"
	"github.com/uzeed/uzeed-backend/internal/lib/sl"
)

// Checker reports whether the database schema is reachable.
type Checker interface {
	Ready() error
}

// Handler serves GET /health.
type Handler struct {
	log     *slog.Logger
	checker Checker
}

// New builds a health Handler.
func New(log *slog.Logger, checker Checker) *Handler {
	return &Handler{log: log, checker: checker}
}

// ServeHTTP godoc
// @Summary Health check
// @Tags Service
// @Produce  json
// @Success 200 {object} response.Response "Service healthy"
// @Failure 503 {object} response.ErrorResponse "Database unavailable"
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.checker.Ready(); err != nil {
		h.log.Error("health check failed", sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("database unavailable"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData("healthy"))
}
