// Package paymentwebhook implements the HTTP handler for Khipu payment
// notifications.
//
// The body is passed to the service as raw bytes: the signature, when
// present, covers the exact bytes on the wire, so the handler must not
// re-serialize the payload before verification.
package paymentwebhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/uzeed/uzeed-backend/internal/http/response"
	"github.com/uzeed/uzeed-backend/internal/lib/sl"
	"github.com/uzeed/uzeed-backend/internal/services/payment"
)

// maxBodyBytes bounds the notification body size.
const maxBodyBytes = 1 << 20

// Handler serves POST /api/v1/webhooks/khipu.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service is the reconciliation surface of the webhook.
type Service interface {
	HandleWebhook(ctx context.Context, req payment.WebhookRequest, now time.Time) (*payment.WebhookResult, error)
}

// New builds a webhook Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Khipu payment notification
// @Description Reconciles a payment notification. Safe to deliver more than once.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Success 200 {object} map[string]any "Reconciliation outcome"
// @Failure 400 {object} response.ErrorResponse "Bad notification"
// @Failure 403 {object} response.ErrorResponse "Bad signature"
// @Failure 404 {object} response.ErrorResponse "Unknown payment"
// @Failure 502 {object} response.ErrorResponse "Provider verification failed"
// @Router /webhooks/khipu [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	rawBody, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		log.Error("failed to read notification body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	result, err := h.service.HandleWebhook(r.Context(), payment.WebhookRequest{
		RawBody:   rawBody,
		Signature: r.Header.Get("x-khipu-signature"),
	}, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrInvalidSignature):
			log.Error("notification signature mismatch")
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("invalid signature"))
		case errors.Is(err, payment.ErrMissingPaymentID):
			log.Error("notification without payment reference")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("missing payment id"))
		case errors.Is(err, payment.ErrPaymentNotFound):
			log.Error("notification for unknown payment")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("payment not found"))
		default:
			// Transient: the provider retries and the payment stays
			// VERIFYING until a delivery succeeds.
			log.Error("failed to reconcile notification", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("could not verify payment"))
		}
		return
	}

	log.Info("notification reconciled",
		slog.String("payment_id", result.PaymentID),
		slog.String("status", result.Status))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"payment_id": result.PaymentID,
		"status":     result.Status,
	}))
}
