// Package paymentcreate implements the HTTP handler that opens a membership
// payment and returns the Khipu payment page URL.
package paymentcreate

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
	"github.com/uzeed/uzeed-backend/internal/models"
	"github.com/uzeed/uzeed-backend/internal/services/payment"
)

// Handler serves POST /api/v1/payments/create.
type Handler struct {
	log     *slog.Logger
	service Service
	users   UserReader
}

// Service is the business logic surface of payment creation.
type Service interface {
	Create(ctx context.Context, userID, payerEmail string, now time.Time) (*payment.CreateResult, error)
}

// UserReader loads the payer record for the provider request.
type UserReader interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// New builds a payment create Handler.
func New(log *slog.Logger, service Service, users UserReader) *Handler {
	return &Handler{log: log, service: service, users: users}
}

// ServeHTTP godoc
// @Summary Start a membership payment
// @Description Opens a payment attempt and returns the provider payment page URL.
// @Tags Payments
// @Produce  json
// @Success 200 {object} map[string]any "Payment and payment URL"
// @Failure 401 {object} response.ErrorResponse "Not authenticated"
// @Failure 502 {object} response.ErrorResponse "Payment provider unavailable"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /payments/create [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.create"
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

	payer, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil || payer == nil {
		log.Error("failed to load payer", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create payment"))
		return
	}

	result, err := h.service.Create(r.Context(), userID, payer.Email, time.Now())
	if err != nil {
		log.Error("failed to create payment", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("payment provider unavailable"))
		return
	}

	log.Info("payment created", slog.String("payment_id", result.Payment.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"payment_id":  result.Payment.ID,
		"status":      result.Payment.Status,
		"amount":      result.Payment.Amount,
		"currency":    result.Payment.Currency,
		"payment_url": result.PaymentURL,
	}))
}
