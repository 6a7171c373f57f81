package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uzeed/uzeed-backend/internal/models"
)

const userColumns = `id, email, username, display_name, password_hash, role, profile_type,
	membership_expires_at, shop_trial_ends_at, subscription_price, avatar_url, bio,
	address, city, latitude, longitude, service_category, service_description, created_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.DisplayName, &u.PasswordHash,
		&u.Role, &u.ProfileType, &u.MembershipExpiresAt, &u.ShopTrialEndsAt,
		&u.SubscriptionPrice, &u.AvatarURL, &u.Bio, &u.Address, &u.City,
		&u.Latitude, &u.Longitude, &u.ServiceCategory, &u.ServiceDescription,
		&u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user and returns its id.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (id, email, username, display_name, password_hash, role,
			      profile_type, shop_trial_ends_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id`
	var newID string
	err := s.DB.QueryRowContext(ctx, query,
		user.ID, user.Email, user.Username, user.DisplayName, user.PasswordHash,
		user.Role, user.ProfileType, user.ShopTrialEndsAt).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUserByUsername returns a user by username, or (nil, nil) when absent.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(s.DB.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// GetUserByID returns a user by id, or (nil, nil) when absent.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUserByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// GetUsersByIDs returns the users for the given ids, keyed by id.
func (s *Storage) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	const op = "storage.GetUsersByIDs"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id IN (` + strings.Join(placeholders, ", ") + `)`

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result[user.ID] = user
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListServiceProfiles returns the PROFESSIONAL and SHOP profiles for the
// services directory.
func (s *Storage) ListServiceProfiles(ctx context.Context) ([]*models.User, error) {
	const op = "storage.ListServiceProfiles"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users
			  WHERE profile_type IN ($1, $2)
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, models.ProfileTypeProfessional, models.ProfileTypeShop)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetMembershipExpiry returns the user's platform membership expiry.
func (s *Storage) GetMembershipExpiry(ctx context.Context, userID string) (*time.Time, error) {
	const op = "storage.GetMembershipExpiry"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT membership_expires_at FROM users WHERE id = $1`
	var expiry *time.Time
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&expiry); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return expiry, nil
}

// GetMembershipExpiryForUpdateTx reads the membership expiry under a row lock
// inside the given transaction.
func (s *Storage) GetMembershipExpiryForUpdateTx(ctx context.Context, tx *sql.Tx, userID string) (*time.Time, error) {
	const op = "storage.GetMembershipExpiryForUpdateTx"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT membership_expires_at FROM users WHERE id = $1 FOR UPDATE`
	var expiry *time.Time
	if err := tx.QueryRowContext(ctx, query, userID).Scan(&expiry); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return expiry, nil
}

// UpdateMembershipExpiryTx writes the membership expiry inside the given
// transaction.
func (s *Storage) UpdateMembershipExpiryTx(ctx context.Context, tx *sql.Tx, userID string, expiry time.Time) error {
	const op = "storage.UpdateMembershipExpiryTx"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET membership_expires_at = $1 WHERE id = $2`
	if _, err := tx.ExecContext(ctx, query, expiry, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
