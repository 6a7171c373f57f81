package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uzeed/uzeed-backend/internal/models"
)

// UpsertProfileSubscription replaces the (subscriber, profile) subscription
// row. Re-subscribing resets the expiry instead of extending it.
func (s *Storage) UpsertProfileSubscription(ctx context.Context, sub models.ProfileSubscription) error {
	const op = "storage.UpsertProfileSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO profile_subscriptions (subscriber_id, profile_id, status, expires_at, price)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (subscriber_id, profile_id)
			  DO UPDATE SET status = EXCLUDED.status,
			                expires_at = EXCLUDED.expires_at,
			                price = EXCLUDED.price`
	if _, err := s.DB.ExecContext(ctx, query,
		sub.SubscriberID, sub.ProfileID, sub.Status, sub.ExpiresAt, sub.Price); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetProfileSubscription returns the subscription row for the pair, or
// (nil, nil) when there is none.
func (s *Storage) GetProfileSubscription(ctx context.Context, subscriberID, profileID string) (*models.ProfileSubscription, error) {
	const op = "storage.GetProfileSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT subscriber_id, profile_id, status, expires_at, price, created_at
			  FROM profile_subscriptions
			  WHERE subscriber_id = $1 AND profile_id = $2`
	var sub models.ProfileSubscription
	err := s.DB.QueryRowContext(ctx, query, subscriberID, profileID).Scan(
		&sub.SubscriberID, &sub.ProfileID, &sub.Status, &sub.ExpiresAt,
		&sub.Price, &sub.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, nil
}

// ListActiveSubscriptions returns the subscriber's non-expired subscriptions
// keyed by profile id.
func (s *Storage) ListActiveSubscriptions(ctx context.Context, subscriberID string, now time.Time) (map[string]time.Time, error) {
	const op = "storage.ListActiveSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT profile_id, expires_at
			  FROM profile_subscriptions
			  WHERE subscriber_id = $1 AND status = $2 AND expires_at > $3`
	rows, err := s.DB.QueryContext(ctx, query, subscriberID, models.SubscriptionStatusActive, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make(map[string]time.Time)
	for rows.Next() {
		var profileID string
		var expiresAt time.Time
		if err := rows.Scan(&profileID, &expiresAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result[profileID] = expiresAt
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
