package feed_test

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
	"github.com/uzeed/uzeed-backend/internal/services/entitlement"
	"github.com/uzeed/uzeed-backend/internal/services/feed"
)

type RepositoryMock struct {
	mock.Mock
}

func (m *RepositoryMock) ListRecentPosts(ctx context.Context, limit int) ([]*models.Post, error) {
	args := m.Called(ctx, limit)
	posts, _ := args.Get(0).([]*models.Post)
	return posts, args.Error(1)
}

func (m *RepositoryMock) ListPostsByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	args := m.Called(ctx, authorID)
	posts, _ := args.Get(0).([]*models.Post)
	return posts, args.Error(1)
}

func (m *RepositoryMock) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	args := m.Called(ctx, ids)
	users, _ := args.Get(0).(map[string]*models.User)
	return users, args.Error(1)
}

func (m *RepositoryMock) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *RepositoryMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *RepositoryMock) ListActiveSubscriptions(ctx context.Context, subscriberID string, now time.Time) (map[string]time.Time, error) {
	args := m.Called(ctx, subscriberID, now)
	subs, _ := args.Get(0).(map[string]time.Time)
	return subs, args.Error(1)
}

func (m *RepositoryMock) GetProfileRating(ctx context.Context, profileID string) (float64, int, error) {
	args := m.Called(ctx, profileID)
	return args.Get(0).(float64), args.Int(1), args.Error(2)
}

type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testPosts() []*models.Post {
	return []*models.Post{
		{ID: "p1", AuthorID: "creator-1", Title: "open", Body: "hello", IsPublic: true, CreatedAt: now},
		{ID: "p2", AuthorID: "creator-1", Title: "locked", Body: "secret", IsPublic: false, CreatedAt: now.Add(-time.Hour),
			Media: []models.Media{{ID: "m1", PostID: "p2", Type: models.MediaTypeImage, URL: "u"}}},
	}
}

func TestFeedAnonymous(t *testing.T) {
	repo := new(RepositoryMock)
	cache := new(CacheMock)

	cache.On("Get", mock.Anything, "feed:public", mock.Anything).Return(false, nil)
	repo.On("ListRecentPosts", mock.Anything, feed.FeedLimit).Return(testPosts(), nil)
	repo.On("GetUsersByIDs", mock.Anything, []string{"creator-1"}).Return(map[string]*models.User{
		"creator-1": {ID: "creator-1", Username: "creator", ProfileType: models.ProfileTypeCreator},
	}, nil)
	cache.On("Set", mock.Anything, "feed:public", mock.Anything, time.Minute).Return(nil)

	svc := feed.New(repo, cache, newNoopLogger())
	views, err := svc.Feed(context.Background(), "", now)

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.False(t, views[0].Paywalled)
	assert.True(t, views[1].Paywalled)
	assert.Empty(t, views[1].Media)
	cache.AssertExpectations(t)
}

func TestFeedAnonymousCacheHit(t *testing.T) {
	repo := new(RepositoryMock)
	cache := new(CacheMock)

	cache.On("Get", mock.Anything, "feed:public", mock.Anything).
		Run(func(args mock.Arguments) {
			out := args.Get(2).(*[]entitlement.PostView)
			*out = []entitlement.PostView{{ID: "cached"}}
		}).Return(true, nil)

	svc := feed.New(repo, cache, newNoopLogger())
	views, err := svc.Feed(context.Background(), "", now)

	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "cached", views[0].ID)
	repo.AssertNotCalled(t, "ListRecentPosts", mock.Anything, mock.Anything)
}

func TestFeedSubscriberSeesLockedPosts(t *testing.T) {
	repo := new(RepositoryMock)
	cache := new(CacheMock)

	future := now.Add(24 * time.Hour)
	repo.On("GetUserByID", mock.Anything, "viewer-1").Return(&models.User{ID: "viewer-1"}, nil)
	repo.On("ListActiveSubscriptions", mock.Anything, "viewer-1", now).
		Return(map[string]time.Time{"creator-1": future}, nil)
	repo.On("ListRecentPosts", mock.Anything, feed.FeedLimit).Return(testPosts(), nil)
	repo.On("GetUsersByIDs", mock.Anything, []string{"creator-1"}).Return(map[string]*models.User{
		"creator-1": {ID: "creator-1", Username: "creator"},
	}, nil)

	svc := feed.New(repo, cache, newNoopLogger())
	views, err := svc.Feed(context.Background(), "viewer-1", now)

	require.NoError(t, err)
	assert.False(t, views[1].Paywalled)
	assert.Equal(t, "secret", views[1].Body)
	// Authenticated feeds never touch the public cache.
	cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFeedDanglingAuthorGetsSentinel(t *testing.T) {
	repo := new(RepositoryMock)
	cache := new(CacheMock)

	cache.On("Get", mock.Anything, "feed:public", mock.Anything).Return(false, nil)
	repo.On("ListRecentPosts", mock.Anything, feed.FeedLimit).Return(testPosts(), nil)
	repo.On("GetUsersByIDs", mock.Anything, []string{"creator-1"}).Return(map[string]*models.User{}, nil)
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := feed.New(repo, cache, newNoopLogger())
	views, err := svc.Feed(context.Background(), "", now)

	require.NoError(t, err)
	assert.Equal(t, entitlement.SentinelAuthorUsername, views[0].Author.Username)
}

func TestProfile(t *testing.T) {
	planExpiry := now.Add(72 * time.Hour)
	creator := &models.User{ID: "creator-1", Username: "creator", ProfileType: models.ProfileTypeCreator,
		MembershipExpiresAt: &planExpiry}

	t.Run("subscribed viewer", func(t *testing.T) {
		repo := new(RepositoryMock)
		future := now.Add(24 * time.Hour)

		repo.On("GetUserByUsername", mock.Anything, "creator").Return(creator, nil)
		repo.On("GetUserByID", mock.Anything, "viewer-1").Return(&models.User{ID: "viewer-1"}, nil)
		repo.On("ListActiveSubscriptions", mock.Anything, "viewer-1", now).
			Return(map[string]time.Time{"creator-1": future}, nil)
		repo.On("ListPostsByAuthor", mock.Anything, "creator-1").Return(testPosts(), nil)
		repo.On("GetProfileRating", mock.Anything, "creator-1").Return(4.5, 12, nil)

		svc := feed.New(repo, new(CacheMock), newNoopLogger())
		view, err := svc.Profile(context.Background(), "creator", "viewer-1", now)

		require.NoError(t, err)
		assert.True(t, view.IsSubscribed)
		assert.False(t, view.IsOwner)
		require.NotNil(t, view.SubscriptionExpiresAt)
		assert.Equal(t, future, *view.SubscriptionExpiresAt)
		assert.Equal(t, 4.5, view.RatingAverage)
		assert.False(t, view.Posts[1].Paywalled)
	})

	t.Run("owner", func(t *testing.T) {
		repo := new(RepositoryMock)
		repo.On("GetUserByUsername", mock.Anything, "creator").Return(creator, nil)
		repo.On("GetUserByID", mock.Anything, "creator-1").Return(creator, nil)
		repo.On("ListActiveSubscriptions", mock.Anything, "creator-1", now).Return(map[string]time.Time{}, nil)
		repo.On("ListPostsByAuthor", mock.Anything, "creator-1").Return(testPosts(), nil)
		repo.On("GetProfileRating", mock.Anything, "creator-1").Return(0.0, 0, nil)

		svc := feed.New(repo, new(CacheMock), newNoopLogger())
		view, err := svc.Profile(context.Background(), "creator", "creator-1", now)

		require.NoError(t, err)
		assert.True(t, view.IsOwner)
		assert.False(t, view.Posts[1].Paywalled)
	})

	t.Run("unknown profile", func(t *testing.T) {
		repo := new(RepositoryMock)
		repo.On("GetUserByUsername", mock.Anything, "ghost").Return(nil, nil)

		svc := feed.New(repo, new(CacheMock), newNoopLogger())
		_, err := svc.Profile(context.Background(), "ghost", "", now)

		assert.ErrorIs(t, err, feed.ErrProfileNotFound)
	})

	t.Run("lapsed plan hides the page", func(t *testing.T) {
		past := now.Add(-time.Hour)
		future := now.Add(24 * time.Hour)
		lapsed := &models.User{ID: "creator-1", Username: "creator", ProfileType: models.ProfileTypeCreator,
			MembershipExpiresAt: &past}

		repo := new(RepositoryMock)
		repo.On("GetUserByUsername", mock.Anything, "creator").Return(lapsed, nil)
		repo.On("GetUserByID", mock.Anything, "viewer-1").Return(&models.User{ID: "viewer-1"}, nil)
		// Even an active subscription does not reopen a lapsed profile.
		repo.On("ListActiveSubscriptions", mock.Anything, "viewer-1", now).
			Return(map[string]time.Time{"creator-1": future}, nil)

		svc := feed.New(repo, new(CacheMock), newNoopLogger())
		_, err := svc.Profile(context.Background(), "creator", "viewer-1", now)

		assert.ErrorIs(t, err, feed.ErrProfileForbidden)
		repo.AssertNotCalled(t, "ListPostsByAuthor", mock.Anything, mock.Anything)
	})

	t.Run("owner still reaches a lapsed profile", func(t *testing.T) {
		past := now.Add(-time.Hour)
		lapsed := &models.User{ID: "creator-1", Username: "creator", ProfileType: models.ProfileTypeCreator,
			MembershipExpiresAt: &past}

		repo := new(RepositoryMock)
		repo.On("GetUserByUsername", mock.Anything, "creator").Return(lapsed, nil)
		repo.On("GetUserByID", mock.Anything, "creator-1").Return(lapsed, nil)
		repo.On("ListActiveSubscriptions", mock.Anything, "creator-1", now).Return(map[string]time.Time{}, nil)
		repo.On("ListPostsByAuthor", mock.Anything, "creator-1").Return(testPosts(), nil)
		repo.On("GetProfileRating", mock.Anything, "creator-1").Return(0.0, 0, nil)

		svc := feed.New(repo, new(CacheMock), newNoopLogger())
		view, err := svc.Profile(context.Background(), "creator", "creator-1", now)

		require.NoError(t, err)
		assert.True(t, view.IsOwner)
	})
}

func TestDashboard(t *testing.T) {
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	tests := []struct {
		name               string
		user               *models.User
		wantMembership     bool
		wantTrial          bool
		wantBusinessActive bool
	}{
		{
			name:           "active member",
			user:           &models.User{ID: "u", Username: "u", MembershipExpiresAt: &future},
			wantMembership: true, wantBusinessActive: true,
		},
		{
			name:      "shop on trial",
			user:      &models.User{ID: "u", Username: "u", ProfileType: models.ProfileTypeShop, ShopTrialEndsAt: &future},
			wantTrial: true, wantBusinessActive: true,
		},
		{
			name: "everything expired",
			user: &models.User{ID: "u", Username: "u", MembershipExpiresAt: &past, ShopTrialEndsAt: &past},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepositoryMock)
			repo.On("GetUserByID", mock.Anything, "u").Return(tt.user, nil)

			svc := feed.New(repo, new(CacheMock), newNoopLogger())
			view, err := svc.Dashboard(context.Background(), "u", now)

			require.NoError(t, err)
			assert.Equal(t, tt.wantMembership, view.MembershipActive)
			assert.Equal(t, tt.wantTrial, view.ShopTrialActive)
			assert.Equal(t, tt.wantBusinessActive, view.BusinessPlanActive)
		})
	}
}
