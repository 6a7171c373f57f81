package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/uzeed/uzeed-backend/internal/lib/sl"
	"github.com/uzeed/uzeed-backend/internal/metrics"
	"github.com/uzeed/uzeed-backend/internal/models"
)

var (
	// ErrInvalidSignature means the webhook carried a signature that does
	// not match the configured secret.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrMissingPaymentID means no payment reference field was present in
	// the notification body.
	ErrMissingPaymentID = errors.New("missing payment id in notification")
	// ErrPaymentNotFound means the referenced payment is unknown.
	ErrPaymentNotFound = errors.New("payment for notification not found")
)

// WebhookRequest is the validated webhook input: the raw body bytes exactly
// as received (the signature covers them) and the x-khipu-signature header,
// empty when the notification is unsigned.
type WebhookRequest struct {
	RawBody   []byte
	Signature string
}

// WebhookResult reports the reconciliation outcome.
type WebhookResult struct {
	PaymentID           string
	Status              string
	MembershipExpiresAt *time.Time
}

// notificationBody holds the payment reference fields Khipu has used across
// notification versions, checked in order.
type notificationBody struct {
	PaymentID         string `json:"payment_id"`
	NotificationToken string `json:"notification_token"`
	PaymentIDCamel    string `json:"paymentId"`
}

func (b notificationBody) ref() string {
	switch {
	case b.PaymentID != "":
		return b.PaymentID
	case b.NotificationToken != "":
		return b.NotificationToken
	default:
		return b.PaymentIDCamel
	}
}

// verifySignature checks the HMAC-SHA256 hex signature over the raw body.
func verifySignature(secret string, rawBody []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func paidStatus(providerStatus string) bool {
	switch strings.ToLower(providerStatus) {
	case "done", "paid":
		return true
	}
	return false
}

// HandleWebhook reconciles a Khipu payment notification. The notification
// content is treated as untrusted: after signature and reference checks the
// authoritative status is re-fetched from Khipu server-to-server, and only a
// confirmed success flips the payment to PAID and extends the membership,
// both inside one transaction. Processing the same notification again is a
// no-op.
func (s *Service) HandleWebhook(ctx context.Context, req WebhookRequest, now time.Time) (*WebhookResult, error) {
	const op = "payment.HandleWebhook"

	if req.Signature != "" && s.cfg.WebhookSecret != "" {
		if !verifySignature(s.cfg.WebhookSecret, req.RawBody, req.Signature) {
			metrics.WebhookOutcomes.WithLabelValues(metrics.WebhookOutcomeBadRequest).Inc()
			return nil, ErrInvalidSignature
		}
	} else {
		s.log.Warn("processing unsigned payment notification")
	}

	var body notificationBody
	if err := json.Unmarshal(req.RawBody, &body); err != nil {
		metrics.WebhookOutcomes.WithLabelValues(metrics.WebhookOutcomeBadRequest).Inc()
		return nil, ErrMissingPaymentID
	}
	ref := body.ref()
	if ref == "" {
		metrics.WebhookOutcomes.WithLabelValues(metrics.WebhookOutcomeBadRequest).Inc()
		return nil, ErrMissingPaymentID
	}

	p, err := s.repo.GetPaymentByProviderID(ctx, ref)
	if err != nil {
		metrics.WebhookOutcomes.WithLabelValues(metrics.WebhookOutcomeError).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if p == nil {
		metrics.WebhookOutcomes.WithLabelValues(metrics.WebhookOutcomeBadRequest).Inc()
		return nil, ErrPaymentNotFound
	}

	if p.Status == models.PaymentStatusPaid {
		metrics.WebhookOutcomes.WithLabelValues(metrics.WebhookOutcomeDuplicate).Inc()
		s.log.Info("duplicate notification for paid payment", slog.String("payment_id", p.ID))
		return &WebhookResult{PaymentID: p.ID, Status: models.PaymentStatusPaid}, nil
	}

	// The status write is guarded against the terminal PAID state. Losing
	// the guard race means another delivery confirmed the payment between
	// our read and this write, so the notification is a duplicate.
	updated, err := s.repo.UpdatePaymentStatus(ctx, p.ID, models.PaymentStatusVerifying)
	if err != nil {
		metrics.WebhookOutcomes.WithLabelValues(metrics.WebhookOutcomeError).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !updated {
		metrics.WebhookOutcomes.WithLabelValues(metrics.WebhookOutcomeDuplicate).Inc()
		s.log.Info("payment confirmed concurrently, skipping verification",
			slog.String("payment_id", p.ID))
		return &WebhookResult{PaymentID: p.ID, Status: models.PaymentStatusPaid}, nil
	}

	// Never trust the notification payload for money state: ask Khipu.
	// A fetch failure leaves the payment VERIFYING so the provider retry
	// picks it up again.
	provider, err := s.provider.GetPayment(ref)
	if err != nil {
		metrics.WebhookOutcomes.WithLabelValues(metrics.WebhookOutcomeError).Inc()
		s.log.Error("authoritative status fetch failed",
			slog.String("payment_id", p.ID),
			sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !paidStatus(provider.Status) {
		marked, err := s.repo.UpdatePaymentStatus(ctx, p.ID, models.PaymentStatusFailed)
		if err != nil {
			metrics.WebhookOutcomes.WithLabelValues(metrics.WebhookOutcomeError).Inc()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !marked {
			metrics.WebhookOutcomes.WithLabelValues(metrics.WebhookOutcomeDuplicate).Inc()
			return &WebhookResult{PaymentID: p.ID, Status: models.PaymentStatusPaid}, nil
		}
		metrics.WebhookOutcomes.WithLabelValues(metrics.WebhookOutcomeRejected).Inc()
		s.log.Info("payment rejected by provider",
			slog.String("payment_id", p.ID),
			slog.String("provider_status", provider.Status))
		return &WebhookResult{PaymentID: p.ID, Status: models.PaymentStatusFailed}, nil
	}

	result, err := s.confirm(ctx, p, now)
	if err != nil {
		metrics.WebhookOutcomes.WithLabelValues(metrics.WebhookOutcomeError).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// confirm flips the payment to PAID and extends the membership in one
// transaction. The payment row is locked first; a competing delivery that
// already committed PAID turns this call into a no-op.
func (s *Service) confirm(ctx context.Context, p *models.Payment, now time.Time) (*WebhookResult, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	locked, err := s.repo.GetPaymentForUpdateTx(ctx, tx, p.ID)
	if err != nil {
		return nil, err
	}
	if locked == nil {
		return nil, ErrPaymentNotFound
	}
	if locked.Status == models.PaymentStatusPaid {
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		metrics.WebhookOutcomes.WithLabelValues(metrics.WebhookOutcomeDuplicate).Inc()
		return &WebhookResult{PaymentID: p.ID, Status: models.PaymentStatusPaid}, nil
	}

	if err := s.repo.UpdatePaymentStatusTx(ctx, tx, p.ID, models.PaymentStatusPaid); err != nil {
		return nil, err
	}
	expiry, err := s.membership.ExtendTx(ctx, tx, p.UserID, s.cfg.DurationDays, now)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	metrics.WebhookOutcomes.WithLabelValues(metrics.WebhookOutcomeConfirmed).Inc()
	s.log.Info("payment confirmed",
		slog.String("payment_id", p.ID),
		slog.String("user_id", p.UserID),
		slog.Time("membership_expires_at", expiry))

	return &WebhookResult{
		PaymentID:           p.ID,
		Status:              models.PaymentStatusPaid,
		MembershipExpiresAt: &expiry,
	}, nil
}
