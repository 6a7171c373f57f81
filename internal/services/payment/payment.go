// Package payment implements the membership purchase flow against Khipu:
// payment creation, lookup and the webhook reconciliation state machine.
package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/uzeed/uzeed-backend/internal/khipu"
	"github.com/uzeed/uzeed-backend/internal/lib/sl"
	"github.com/uzeed/uzeed-backend/internal/metrics"
	"github.com/uzeed/uzeed-backend/internal/models"
)

var (
	// ErrNotFound means the payment does not exist or belongs to another user.
	ErrNotFound = errors.New("payment not found")
)

// Repository is the storage surface the payment service needs.
type Repository interface {
	BeginTx(ctx context.Context) (*sql.Tx, error)
	CreatePayment(ctx context.Context, payment models.Payment) (string, error)
	UpdateProviderPaymentID(ctx context.Context, paymentID, providerPaymentID string) error
	GetPaymentByID(ctx context.Context, paymentID string) (*models.Payment, error)
	GetPaymentByProviderID(ctx context.Context, providerPaymentID string) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, paymentID, status string) (bool, error)
	GetPaymentForUpdateTx(ctx context.Context, tx *sql.Tx, paymentID string) (*models.Payment, error)
	UpdatePaymentStatusTx(ctx context.Context, tx *sql.Tx, paymentID, status string) error
}

// Provider is the Khipu API surface used by the service.
type Provider interface {
	CreatePayment(reqParams khipu.CreatePaymentRequest) (*khipu.CreatePaymentResponse, error)
	GetPayment(providerPaymentID string) (*khipu.GetPaymentResponse, error)
}

// MembershipExtender applies the membership extension inside the caller's
// transaction.
type MembershipExtender interface {
	ExtendTx(ctx context.Context, tx *sql.Tx, userID string, days int, now time.Time) (time.Time, error)
}

// Config carries the billing settings of the service.
type Config struct {
	AmountCLP     int
	DurationDays  int
	AppURL        string
	APIURL        string
	WebhookSecret string
}

// Service implements payment creation, lookup and webhook reconciliation.
type Service struct {
	repo       Repository
	provider   Provider
	membership MembershipExtender
	cfg        Config
	log        *slog.Logger
}

// New builds a payment Service.
func New(repo Repository, provider Provider, membership MembershipExtender, cfg Config, log *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		provider:   provider,
		membership: membership,
		cfg:        cfg,
		log:        log,
	}
}

// CreateResult is what the create operation hands back to the handler.
type CreateResult struct {
	Payment    *models.Payment
	PaymentURL string
}

// Create opens a new payment attempt for userID and asks Khipu for a payment
// page. The row is inserted as PENDING before the provider call; when the
// provider call fails the row stays PENDING and a retry opens a fresh
// attempt with its own transaction id.
func (s *Service) Create(ctx context.Context, userID, payerEmail string, now time.Time) (*CreateResult, error) {
	const op = "payment.Create"

	p := models.Payment{
		ID:                uuid.NewString(),
		UserID:            userID,
		ProviderPaymentID: models.ProviderPaymentIDPlaceholder,
		TransactionID:     fmt.Sprintf("uzeed_%s_%d", userID, now.UnixMilli()),
		Status:            models.PaymentStatusPending,
		Amount:            s.cfg.AmountCLP,
		Currency:          "CLP",
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if _, err := s.repo.CreatePayment(ctx, p); err != nil {
		metrics.PaymentsCreated.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := s.provider.CreatePayment(khipu.CreatePaymentRequest{
		Subject:          fmt.Sprintf("UZEED membership (%d days)", s.cfg.DurationDays),
		Amount:           p.Amount,
		Currency:         p.Currency,
		TransactionID:    p.TransactionID,
		ReturnURL:        s.cfg.AppURL + "/membership/success",
		CancelURL:        s.cfg.AppURL + "/membership/cancel",
		NotifyURL:        s.cfg.APIURL + "/api/v1/webhooks/khipu",
		NotifyAPIVersion: khipu.NotifyAPIVersion,
		PayerEmail:       payerEmail,
		Custom:           userID,
	})
	if err != nil {
		metrics.PaymentsCreated.WithLabelValues("provider_error").Inc()
		s.log.Error("provider rejected payment creation",
			slog.String("payment_id", p.ID),
			sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.UpdateProviderPaymentID(ctx, p.ID, resp.PaymentID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p.ProviderPaymentID = resp.PaymentID

	metrics.PaymentsCreated.WithLabelValues("ok").Inc()
	s.log.Info("payment created",
		slog.String("payment_id", p.ID),
		slog.String("provider_payment_id", resp.PaymentID),
		slog.Int("amount", p.Amount))

	return &CreateResult{Payment: &p, PaymentURL: resp.PaymentURL}, nil
}

// Lookup returns the payment with the given id when it belongs to
// requesterID. Foreign and unknown payments both come back as ErrNotFound.
func (s *Service) Lookup(ctx context.Context, paymentID, requesterID string) (*models.Payment, error) {
	const op = "payment.Lookup"

	p, err := s.repo.GetPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if p == nil || p.UserID != requesterID {
		return nil, ErrNotFound
	}
	return p, nil
}
