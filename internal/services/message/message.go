// Package message implements direct messaging between users.
package message

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/uzeed/uzeed-backend/internal/models"
)

// ConversationLimit caps how many messages one conversation page loads.
const ConversationLimit = 100

var (
	// ErrRecipientNotFound means the message target does not exist.
	ErrRecipientNotFound = errors.New("recipient not found")
	// ErrSelfMessage means a user tried to message themselves.
	ErrSelfMessage = errors.New("cannot message yourself")
)

// Repository is the storage surface the message service needs.
type Repository interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CreateMessage(ctx context.Context, msg models.Message) (string, error)
	ListConversation(ctx context.Context, userID, otherID string, limit int) ([]*models.Message, error)
}

// Service implements sending and reading direct messages.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New builds a message Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Send stores a message from senderID to recipientID.
func (s *Service) Send(ctx context.Context, senderID, recipientID, body string, now time.Time) (*models.Message, error) {
	const op = "message.Send"

	if senderID == recipientID {
		return nil, ErrSelfMessage
	}
	recipient, err := s.repo.GetUserByID(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if recipient == nil {
		return nil, ErrRecipientNotFound
	}

	msg := models.Message{
		ID:          uuid.NewString(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Body:        body,
		CreatedAt:   now,
	}
	if _, err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("message sent",
		slog.String("sender_id", senderID),
		slog.String("recipient_id", recipientID))

	return &msg, nil
}

// Conversation returns the messages between userID and otherID, oldest
// first.
func (s *Service) Conversation(ctx context.Context, userID, otherID string) ([]*models.Message, error) {
	const op = "message.Conversation"

	other, err := s.repo.GetUserByID(ctx, otherID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if other == nil {
		return nil, ErrRecipientNotFound
	}

	msgs, err := s.repo.ListConversation(ctx, userID, otherID, ConversationLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return msgs, nil
}
