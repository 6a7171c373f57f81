// Package list implements the HTTP handler for reading a conversation.
package list

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/uzeed/uzeed-backend/internal/http/middlewarectx"
	"github.com/uzeed/uzeed-backend/internal/http/response"
	"github.com/uzeed/uzeed-backend/internal/lib/sl"
	"github.com/uzeed/uzeed-backend/internal/models"
	"github.com/uzeed/uzeed-backend/internal/services/message"
)

// Handler serves GET /api/v1/messages/{userID}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the business logic surface of reading conversations.
type Service interface {
	Conversation(ctx context.Context, userID, otherID string) ([]*models.Message, error)
}

// New builds a list Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Conversation with a user
// @Tags Messages
// @Produce  json
// @Param userID path string true "Other participant id"
// @Success 200 {object} map[string]any "Messages, oldest first"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Failure 404 {object} response.ErrorResponse "User not found"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /messages/{userID} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.message.list"
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
	otherID := chi.URLParam(r, "userID")

	msgs, err := h.service.Conversation(r.Context(), userID, otherID)
	if err != nil {
		if errors.Is(err, message.ErrRecipientNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to load conversation", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load conversation"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(msgs))
}
