// Package subscription manages per-profile subscriptions. Unlike the
// platform membership, a renewal does not stack: it always resets the expiry
// to a full period from the renewal moment.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/uzeed/uzeed-backend/internal/lib/timeutil"
	"github.com/uzeed/uzeed-backend/internal/models"
)

// Pricing bounds in CLP. A profile without a configured price sells at the
// default.
const (
	DefaultPriceCLP = 2500
	MinPriceCLP     = 100
	MaxPriceCLP     = 20000

	// DurationDays is the length of one subscription period.
	DurationDays = 30
)

var (
	// ErrProfileNotFound means the target profile does not exist.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrSelfSubscribe means a user tried to subscribe to themselves.
	ErrSelfSubscribe = errors.New("cannot subscribe to own profile")
	// ErrNotSubscribable means the target profile type sells no subscriptions.
	ErrNotSubscribable = errors.New("profile is not subscribable")
)

// Repository is the storage surface the subscription service needs.
type Repository interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpsertProfileSubscription(ctx context.Context, sub models.ProfileSubscription) error
}

// Service implements the subscribe operation.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New builds a subscription Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// PriceFor returns the effective subscription price of a profile, clamped to
// the allowed range.
func PriceFor(profile *models.User) int {
	price := DefaultPriceCLP
	if profile.SubscriptionPrice != nil {
		price = *profile.SubscriptionPrice
	}
	if price < MinPriceCLP {
		price = MinPriceCLP
	}
	if price > MaxPriceCLP {
		price = MaxPriceCLP
	}
	return price
}

// Subscribe creates or renews the subscription of subscriberID to the profile
// named by username. Renewal replaces the previous row: the new expiry is a
// full period from now regardless of any remaining time.
func (s *Service) Subscribe(ctx context.Context, subscriberID, username string, now time.Time) (*models.ProfileSubscription, error) {
	const op = "subscription.Subscribe"

	profile, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	if profile.ID == subscriberID {
		return nil, ErrSelfSubscribe
	}
	if profile.ProfileType != models.ProfileTypeCreator && profile.ProfileType != models.ProfileTypeProfessional {
		return nil, ErrNotSubscribable
	}

	sub := models.ProfileSubscription{
		SubscriberID: subscriberID,
		ProfileID:    profile.ID,
		Status:       models.SubscriptionStatusActive,
		ExpiresAt:    timeutil.NextExpiry(DurationDays, now),
		Price:        PriceFor(profile),
		CreatedAt:    now,
	}
	if err := s.repo.UpsertProfileSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("profile subscription written",
		slog.String("subscriber_id", subscriberID),
		slog.String("profile_id", profile.ID),
		slog.Time("expires_at", sub.ExpiresAt))

	return &sub, nil
}
