// Package send implements the HTTP handler for sending a direct message.
package send

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
	"github.com/uzeed/uzeed-backend/internal/services/message"
)

// Handler serves POST /api/v1/messages/{userID}.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service is the business logic surface of sending messages.
type Service interface {
	Send(ctx context.Context, senderID, recipientID, body string, now time.Time) (*models.Message, error)
}

// New builds a send Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Send a direct message
// @Tags Messages
// @Accept  json
// @Produce  json
// @Param userID path string true "Recipient id"
// @Param request body models.DummyMessage true "Message body"
// @Success 200 {object} map[string]any "Sent message"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Failure 404 {object} response.ErrorResponse "Recipient not found"
// @Failure 409 {object} response.ErrorResponse "Cannot message yourself"
// @Failure 422 {object} response.ErrorResponse "Validation error"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /messages/{userID} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.message.send"
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
	recipientID := chi.URLParam(r, "userID")

	var req models.DummyMessage
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

	msg, err := h.service.Send(r.Context(), userID, recipientID, req.Body, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, message.ErrRecipientNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("recipient not found"))
		case errors.Is(err, message.ErrSelfMessage):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("cannot message yourself"))
		default:
			log.Error("failed to send message", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not send message"))
		}
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"id":         msg.ID,
		"created_at": msg.CreatedAt,
	}))
}
