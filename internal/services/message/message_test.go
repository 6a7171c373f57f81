package message_test

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
	"github.com/uzeed/uzeed-backend/internal/services/message"
)

type RepositoryMock struct {
	mock.Mock
}

func (m *RepositoryMock) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *RepositoryMock) CreateMessage(ctx context.Context, msg models.Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

func (m *RepositoryMock) ListConversation(ctx context.Context, userID, otherID string, limit int) ([]*models.Message, error) {
	args := m.Called(ctx, userID, otherID, limit)
	msgs, _ := args.Get(0).([]*models.Message)
	return msgs, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestSend(t *testing.T) {
	t.Run("stores message", func(t *testing.T) {
		repo := new(RepositoryMock)
		repo.On("GetUserByID", mock.Anything, "user-2").Return(&models.User{ID: "user-2"}, nil)
		repo.On("CreateMessage", mock.Anything, mock.MatchedBy(func(msg models.Message) bool {
			return msg.SenderID == "user-1" && msg.RecipientID == "user-2" && msg.Body == "hola"
		})).Return("msg-1", nil)

		svc := message.New(repo, newNoopLogger())
		msg, err := svc.Send(context.Background(), "user-1", "user-2", "hola", now)

		require.NoError(t, err)
		assert.NotEmpty(t, msg.ID)
		repo.AssertExpectations(t)
	})

	t.Run("self message rejected", func(t *testing.T) {
		svc := message.New(new(RepositoryMock), newNoopLogger())
		_, err := svc.Send(context.Background(), "user-1", "user-1", "hi", now)

		assert.ErrorIs(t, err, message.ErrSelfMessage)
	})

	t.Run("unknown recipient", func(t *testing.T) {
		repo := new(RepositoryMock)
		repo.On("GetUserByID", mock.Anything, "ghost").Return(nil, nil)

		svc := message.New(repo, newNoopLogger())
		_, err := svc.Send(context.Background(), "user-1", "ghost", "hi", now)

		assert.ErrorIs(t, err, message.ErrRecipientNotFound)
	})
}

func TestConversation(t *testing.T) {
	repo := new(RepositoryMock)
	msgs := []*models.Message{
		{ID: "m1", SenderID: "user-1", RecipientID: "user-2", Body: "hola", CreatedAt: now.Add(-time.Minute)},
		{ID: "m2", SenderID: "user-2", RecipientID: "user-1", Body: "buenas", CreatedAt: now},
	}
	repo.On("GetUserByID", mock.Anything, "user-2").Return(&models.User{ID: "user-2"}, nil)
	repo.On("ListConversation", mock.Anything, "user-1", "user-2", message.ConversationLimit).Return(msgs, nil)

	svc := message.New(repo, newNoopLogger())
	got, err := svc.Conversation(context.Background(), "user-1", "user-2")

	require.NoError(t, err)
	assert.Equal(t, msgs, got)
}
