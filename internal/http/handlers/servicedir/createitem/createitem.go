// Package createitem implements the HTTP handler for publishing a service
// item.
package createitem

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/uzeed/uzeed-backend/internal/http/middlewarectx"
	"github.com/uzeed/uzeed-backend/internal/http/response"
	"github.com/uzeed/uzeed-backend/internal/lib/sl"
	"github.com/uzeed/uzeed-backend/internal/models"
	"github.com/uzeed/uzeed-backend/internal/services/directory"
)

// Handler serves POST /api/v1/services/items.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service is the business logic surface of item creation.
type Service interface {
	CreateItem(ctx context.Context, ownerID string, req models.DummyServiceItem, now time.Time) (*models.ServiceItem, error)
}

// New builds a createitem Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Publish a service item
// @Description Publishes a service item on the caller's profile. Professionals and shops only.
// @Tags Services
// @Accept  json
// @Produce  json
// @Param request body models.DummyServiceItem true "Item data"
// @Success 200 {object} map[string]any "Created item"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Failure 403 {object} response.ErrorResponse "Profile cannot publish services"
// @Failure 422 {object} response.ErrorResponse "Validation error"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /services/items [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.servicedir.createitem"
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

	var req models.DummyServiceItem
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

	item, err := h.service.CreateItem(r.Context(), userID, req, time.Now())
	if err != nil {
		if errors.Is(err, directory.ErrNotServiceProfile) {
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("profile cannot publish services"))
			return
		}
		log.Error("failed to create service item", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create item"))
		return
	}

	log.Info("service item created", slog.String("item_id", item.ID))
	render.JSON(w, r, response.StatusOKWithData(item))
}
