package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uzeed/uzeed-backend/internal/models"
)

const paymentColumns = `id, user_id, provider_payment_id, transaction_id, status,
	amount, currency, created_at, updated_at`

func scanPayment(row interface{ Scan(dest ...any) error }) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(&p.ID, &p.UserID, &p.ProviderPaymentID, &p.TransactionID,
		&p.Status, &p.Amount, &p.Currency, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePayment inserts a new payment attempt and returns its id.
func (s *Storage) CreatePayment(ctx context.Context, payment models.Payment) (string, error) {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payments (id, user_id, provider_payment_id, transaction_id, status, amount, currency)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var newID string
	err := s.DB.QueryRowContext(ctx, query,
		payment.ID, payment.UserID, payment.ProviderPaymentID, payment.TransactionID,
		payment.Status, payment.Amount, payment.Currency).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdateProviderPaymentID replaces the placeholder provider id once Khipu
// answers the create call.
func (s *Storage) UpdateProviderPaymentID(ctx context.Context, paymentID, providerPaymentID string) error {
	const op = "storage.UpdateProviderPaymentID"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payments SET provider_payment_id = $1, updated_at = NOW() WHERE id = $2`
	if _, err := s.DB.ExecContext(ctx, query, providerPaymentID, paymentID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetPaymentByID returns a payment by id, or (nil, nil) when absent.
func (s *Storage) GetPaymentByID(ctx context.Context, paymentID string) (*models.Payment, error) {
	const op = "storage.GetPaymentByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	payment, err := scanPayment(s.DB.QueryRowContext(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return payment, nil
}

// GetPaymentByProviderID returns the payment that carries the given provider
// payment id, or (nil, nil) when absent.
func (s *Storage) GetPaymentByProviderID(ctx context.Context, providerPaymentID string) (*models.Payment, error) {
	const op = "storage.GetPaymentByProviderID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE provider_payment_id = $1`
	payment, err := scanPayment(s.DB.QueryRowContext(ctx, query, providerPaymentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return payment, nil
}

// UpdatePaymentStatus sets the payment status outside a transaction. Used for
// the observable VERIFYING and FAILED transitions. PAID is terminal, so the
// write is guarded against it; the returned bool reports whether a row
// actually changed — false means a concurrent delivery already confirmed the
// payment.
func (s *Storage) UpdatePaymentStatus(ctx context.Context, paymentID, status string) (bool, error) {
	const op = "storage.UpdatePaymentStatus"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payments SET status = $1, updated_at = NOW() WHERE id = $2 AND status <> $3`
	res, err := s.DB.ExecContext(ctx, query, status, paymentID, models.PaymentStatusPaid)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return affected > 0, nil
}

// GetPaymentForUpdateTx reads a payment under a row lock inside the given
// transaction, so concurrent webhook deliveries for the same payment
// serialize on the row.
func (s *Storage) GetPaymentForUpdateTx(ctx context.Context, tx *sql.Tx, paymentID string) (*models.Payment, error) {
	const op = "storage.GetPaymentForUpdateTx"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 FOR UPDATE`
	payment, err := scanPayment(tx.QueryRowContext(ctx, query, paymentID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return payment, nil
}

// UpdatePaymentStatusTx sets the payment status inside the given transaction.
func (s *Storage) UpdatePaymentStatusTx(ctx context.Context, tx *sql.Tx, paymentID, status string) error {
	const op = "storage.UpdatePaymentStatusTx"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payments SET status = $1, updated_at = NOW() WHERE id = $2`
	if _, err := tx.ExecContext(ctx, query, status, paymentID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
