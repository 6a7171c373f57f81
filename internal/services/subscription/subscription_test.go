package subscription_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/uzeed/uzeed-backend/internal/models"
	"github.com/uzeed/uzeed-backend/internal/services/subscription"
)

type RepositoryMock struct {
	mock.Mock
}

func (m *RepositoryMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *RepositoryMock) UpsertProfileSubscription(ctx context.Context, sub models.ProfileSubscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

func TestPriceFor(t *testing.T) {
	tests := []struct {
		name  string
		price *int
		want  int
	}{
		{"no configured price falls to default", nil, 2500},
		{"price inside range kept", intPtr(5000), 5000},
		{"price below minimum clamped up", intPtr(50), 100},
		{"price above maximum clamped down", intPtr(99999), 20000},
		{"zero clamped up", intPtr(0), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := &models.User{SubscriptionPrice: tt.price}
			assert.Equal(t, tt.want, subscription.PriceFor(profile))
		})
	}
}

func TestSubscribe(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	creator := &models.User{ID: "creator-1", Username: "creator", ProfileType: models.ProfileTypeCreator}

	t.Run("creates subscription with full period expiry", func(t *testing.T) {
		repo := new(RepositoryMock)
		repo.On("GetUserByUsername", mock.Anything, "creator").Return(creator, nil)
		repo.On("UpsertProfileSubscription", mock.Anything, mock.MatchedBy(func(sub models.ProfileSubscription) bool {
			return sub.SubscriberID == "viewer-1" &&
				sub.ProfileID == "creator-1" &&
				sub.Status == models.SubscriptionStatusActive &&
				sub.ExpiresAt.Equal(now.AddDate(0, 0, 30)) &&
				sub.Price == 2500
		})).Return(nil)

		svc := subscription.New(repo, newNoopLogger())
		sub, err := svc.Subscribe(context.Background(), "viewer-1", "creator", now)

		require.NoError(t, err)
		assert.Equal(t, now.AddDate(0, 0, 30), sub.ExpiresAt)
		repo.AssertExpectations(t)
	})

	t.Run("renewal resets expiry instead of stacking", func(t *testing.T) {
		// The upsert always carries now+30d, even while the previous
		// subscription still has remaining time.
		repo := new(RepositoryMock)
		repo.On("GetUserByUsername", mock.Anything, "creator").Return(creator, nil)
		repo.On("UpsertProfileSubscription", mock.Anything, mock.Anything).Return(nil)

		svc := subscription.New(repo, newNoopLogger())
		later := now.Add(10 * 24 * time.Hour)
		sub, err := svc.Subscribe(context.Background(), "viewer-1", "creator", later)

		require.NoError(t, err)
		assert.Equal(t, later.AddDate(0, 0, 30), sub.ExpiresAt)
	})

	t.Run("self subscribe rejected", func(t *testing.T) {
		repo := new(RepositoryMock)
		repo.On("GetUserByUsername", mock.Anything, "creator").Return(creator, nil)

		svc := subscription.New(repo, newNoopLogger())
		_, err := svc.Subscribe(context.Background(), "creator-1", "creator", now)

		assert.ErrorIs(t, err, subscription.ErrSelfSubscribe)
	})

	t.Run("viewer profile not subscribable", func(t *testing.T) {
		viewer := &models.User{ID: "u2", Username: "viewer", ProfileType: models.ProfileTypeViewer}
		repo := new(RepositoryMock)
		repo.On("GetUserByUsername", mock.Anything, "viewer").Return(viewer, nil)

		svc := subscription.New(repo, newNoopLogger())
		_, err := svc.Subscribe(context.Background(), "viewer-1", "viewer", now)

		assert.ErrorIs(t, err, subscription.ErrNotSubscribable)
	})

	t.Run("shop profile not subscribable", func(t *testing.T) {
		shop := &models.User{ID: "u3", Username: "shop", ProfileType: models.ProfileTypeShop}
		repo := new(RepositoryMock)
		repo.On("GetUserByUsername", mock.Anything, "shop").Return(shop, nil)

		svc := subscription.New(repo, newNoopLogger())
		_, err := svc.Subscribe(context.Background(), "viewer-1", "shop", now)

		assert.ErrorIs(t, err, subscription.ErrNotSubscribable)
	})

	t.Run("unknown profile", func(t *testing.T) {
		repo := new(RepositoryMock)
		repo.On("GetUserByUsername", mock.Anything, "ghost").Return(nil, nil)

		svc := subscription.New(repo, newNoopLogger())
		_, err := svc.Subscribe(context.Background(), "viewer-1", "ghost", now)

		assert.ErrorIs(t, err, subscription.ErrProfileNotFound)
	})
}
