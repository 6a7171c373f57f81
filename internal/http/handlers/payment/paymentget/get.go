// Package paymentget implements the HTTP handler for reading one payment.
package paymentget

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
	"github.com/uzeed/uzeed-backend/internal/services/payment"
)

// Handler serves GET /api/v1/payments/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the business logic surface of the payment lookup.
type Service interface {
	Lookup(ctx context.Context, paymentID, requesterID string) (*models.Payment, error)
}

// New builds a payment get Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Read a payment
// @Description Returns one of the caller's payments. Foreign payments look nonexistent.
// @Tags Payments
// @Produce  json
// @Param id path string true "Payment id"
// @Success 200 {object} map[string]any "Payment"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Failure 404 {object} response.ErrorResponse "Payment not found"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /payments/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.get"
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
	paymentID := chi.URLParam(r, "id")

	p, err := h.service.Lookup(r.Context(), paymentID, userID)
	if err != nil {
		if errors.Is(err, payment.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("payment not found"))
			return
		}
		log.Error("failed to read payment", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read payment"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"payment_id": p.ID,
		"status":     p.Status,
		"amount":     p.Amount,
		"currency":   p.Currency,
		"created_at": p.CreatedAt,
		"updated_at": p.UpdatedAt,
	}))
}
