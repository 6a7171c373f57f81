package models

import "time"

// Payment lifecycle states. PAID and FAILED are terminal; the reconciler never
// moves a payment out of PAID.
const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusVerifying = "VERIFYING"
	PaymentStatusPaid      = "PAID"
	PaymentStatusFailed    = "FAILED"
)

// ProviderPaymentIDPlaceholder is stored until Khipu returns a real payment id.
const ProviderPaymentIDPlaceholder = "pending"

// Payment represents one attempted purchase. Rows are never deleted.
type Payment struct {
	ID                string
	UserID            string
	ProviderPaymentID string
	TransactionID     string
	Status            string
	Amount            int
	Currency          string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
