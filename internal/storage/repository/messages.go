package repository

import (
	"context"
	"fmt"

	"github.com/uzeed/uzeed-backend/internal/models"
)

// CreateMessage inserts a direct message and returns its id.
func (s *Storage) CreateMessage(ctx context.Context, msg models.Message) (string, error) {
	const op = "storage.CreateMessage"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO messages (id, sender_id, recipient_id, body)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID string
	err := s.DB.QueryRowContext(ctx, query,
		msg.ID, msg.SenderID, msg.RecipientID, msg.Body).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListConversation returns the messages exchanged between two users, oldest
// first.
func (s *Storage) ListConversation(ctx context.Context, userID, otherID string, limit int) ([]*models.Message, error) {
	const op = "storage.ListConversation"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, sender_id, recipient_id, body, created_at
			  FROM messages
			  WHERE (sender_id = $1 AND recipient_id = $2)
			     OR (sender_id = $2 AND recipient_id = $1)
			  ORDER BY created_at
			  LIMIT $3`
	rows, err := s.DB.QueryContext(ctx, query, userID, otherID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
