package post_test

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
	"github.com/uzeed/uzeed-backend/internal/services/post"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *RepoMock) CreatePost(ctx context.Context, p models.Post) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublish(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("creator publishes post with media", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUserByID", mock.Anything, "author-1").
			Return(&models.User{ID: "author-1", ProfileType: models.ProfileTypeCreator}, nil)
		repo.On("CreatePost", mock.Anything, mock.MatchedBy(func(p models.Post) bool {
			return p.AuthorID == "author-1" &&
				p.Title == "Backstage" &&
				!p.IsPublic &&
				len(p.Media) == 1 &&
				p.Media[0].Type == models.MediaTypeImage &&
				p.Media[0].PostID == p.ID
		})).Return("post-id", nil)

		svc := post.New(repo, newNoopLogger())
		got, err := svc.Publish(context.Background(), "author-1", models.DummyPost{
			Title: "Backstage",
			Body:  "full text",
			Media: []models.DummyMedia{{Type: models.MediaTypeImage, URL: "https://cdn.example/1.jpg"}},
		}, now)

		require.NoError(t, err)
		assert.Equal(t, "author-1", got.AuthorID)
		assert.Equal(t, now, got.CreatedAt)
		assert.NotEmpty(t, got.ID)
		repo.AssertExpectations(t)
	})

	t.Run("viewer cannot publish", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUserByID", mock.Anything, "viewer-1").
			Return(&models.User{ID: "viewer-1", ProfileType: models.ProfileTypeViewer}, nil)

		svc := post.New(repo, newNoopLogger())
		_, err := svc.Publish(context.Background(), "viewer-1", models.DummyPost{
			Title: "nope", Body: "nope",
		}, now)

		require.ErrorIs(t, err, post.ErrNotCreatorProfile)
		repo.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything)
	})

	t.Run("unknown author", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUserByID", mock.Anything, "ghost").Return(nil, nil)

		svc := post.New(repo, newNoopLogger())
		_, err := svc.Publish(context.Background(), "ghost", models.DummyPost{
			Title: "x", Body: "y",
		}, now)

		require.ErrorIs(t, err, post.ErrAuthorNotFound)
	})
}
