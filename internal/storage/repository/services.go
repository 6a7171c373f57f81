package repository

import (
	"context"
	"fmt"

	"github.com/uzeed/uzeed-backend/internal/models"
)

// ListServiceItems returns a profile's service items, newest first.
func (s *Storage) ListServiceItems(ctx context.Context, ownerID string) ([]*models.ServiceItem, error) {
	const op = "storage.ListServiceItems"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, owner_id, title, description, category, price, created_at
			  FROM service_items
			  WHERE owner_id = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ServiceItem
	for rows.Next() {
		var item models.ServiceItem
		if err := rows.Scan(&item.ID, &item.OwnerID, &item.Title, &item.Description,
			&item.Category, &item.Price, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CreateServiceItem inserts a service item and returns its id.
func (s *Storage) CreateServiceItem(ctx context.Context, item models.ServiceItem) (string, error) {
	const op = "storage.CreateServiceItem"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO service_items (id, owner_id, title, description, category, price)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID string
	err := s.DB.QueryRowContext(ctx, query,
		item.ID, item.OwnerID, item.Title, item.Description, item.Category, item.Price).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpsertServiceRating writes a rater's rating for a profile, overwriting a
// previous rating by the same rater.
func (s *Storage) UpsertServiceRating(ctx context.Context, rating models.ServiceRating) error {
	const op = "storage.UpsertServiceRating"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO service_ratings (profile_id, rater_id, rating)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (profile_id, rater_id)
			  DO UPDATE SET rating = EXCLUDED.rating`
	if _, err := s.DB.ExecContext(ctx, query, rating.ProfileID, rating.RaterID, rating.Rating); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetProfileRating returns the average rating and rating count for a profile.
func (s *Storage) GetProfileRating(ctx context.Context, profileID string) (float64, int, error) {
	const op = "storage.GetProfileRating"
	select {
	case <-ctx.Done():
		return 0, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COALESCE(AVG(rating), 0), COUNT(*)
			  FROM service_ratings
			  WHERE profile_id = $1`
	var avg float64
	var count int
	if err := s.DB.QueryRowContext(ctx, query, profileID).Scan(&avg, &count); err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	return avg, count, nil
}
