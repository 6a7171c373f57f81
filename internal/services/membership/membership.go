// Package membership manages the platform-wide membership expiry. Renewals
// stack: paying while the membership is still active extends it from the
// current expiry, not from the payment moment.
package membership

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/uzeed/uzeed-backend/internal/lib/timeutil"
)

// Repository is the storage surface the membership service needs. Both
// methods run against the caller's transaction so the extension can be
// committed atomically with the payment state change.
type Repository interface {
	GetMembershipExpiryForUpdateTx(ctx context.Context, tx *sql.Tx, userID string) (*time.Time, error)
	UpdateMembershipExpiryTx(ctx context.Context, tx *sql.Tx, userID string, expiry time.Time) error
}

// Service implements membership extension.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New builds a membership Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// ExtendTx extends the membership of userID by days inside tx and returns
// the new expiry. The base of the extension is the current expiry when it is
// still in the future, otherwise now. The user row is locked until tx ends.
func (s *Service) ExtendTx(ctx context.Context, tx *sql.Tx, userID string, days int, now time.Time) (time.Time, error) {
	const op = "membership.ExtendTx"

	current, err := s.repo.GetMembershipExpiryForUpdateTx(ctx, tx, userID)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	base := now
	if timeutil.IsActive(current, now) {
		base = *current
	}
	newExpiry := timeutil.AddDays(base, days)

	if err := s.repo.UpdateMembershipExpiryTx(ctx, tx, userID, newExpiry); err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("membership extended",
		slog.String("user_id", userID),
		slog.Time("expires_at", newExpiry))

	return newExpiry, nil
}
