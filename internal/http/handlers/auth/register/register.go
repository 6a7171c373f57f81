// Package register implements the HTTP handler for account registration.
//
// The handler decodes and validates the registration JSON, calls the auth
// service and returns the public fields of the created account.
package register

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

	"github.com/uzeed/uzeed-backend/internal/http/response"
	"github.com/uzeed/uzeed-backend/internal/lib/sl"
	"github.com/uzeed/uzeed-backend/internal/models"
	"github.com/uzeed/uzeed-backend/internal/services/auth"
)

// Handler serves POST /api/v1/register.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service is the business logic surface of registration.
type Service interface {
	Register(ctx context.Context, req models.DummyRegister, now time.Time) (*models.User, error)
}

// New builds a register Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Register a new account
// @Description Creates a new account. Shop accounts start with a free trial.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.DummyRegister true "Registration data"
// @Success 200 {object} map[string]any "Created account"
// @Failure 400 {object} response.ErrorResponse "Malformed JSON"
// @Failure 409 {object} response.ErrorResponse "Username taken"
// @Failure 422 {object} response.ErrorResponse "Validation error"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyRegister
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

	user, err := h.service.Register(r.Context(), req, time.Now())
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			log.Info("username taken", slog.String("username", req.Username))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("username already taken"))
			return
		}
		log.Error("failed to register user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not register user"))
		return
	}

	log.Info("user registered", slog.String("user_id", user.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"id":           user.ID,
		"username":     user.Username,
		"profile_type": user.ProfileType,
	}))
}
