// Package auth implements registration and login.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/uzeed/uzeed-backend/internal/lib/password"
	"github.com/uzeed/uzeed-backend/internal/lib/timeutil"
	"github.com/uzeed/uzeed-backend/internal/models"
)

// ShopTrialDays is the length of the free trial a new shop account gets.
const ShopTrialDays = 30

var (
	// ErrUserExists means the username is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials covers both unknown user and wrong password so
	// the two are indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Repository is the storage surface the auth service needs.
type Repository interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// TokenMaker issues JWT access tokens.
type TokenMaker interface {
	GenerateToken(userID, username, role string) (string, error)
}

// Service implements registration and login.
type Service struct {
	repo  Repository
	maker TokenMaker
	log   *slog.Logger
}

// New builds an auth Service.
func New(repo Repository, maker TokenMaker, log *slog.Logger) *Service {
	return &Service{repo: repo, maker: maker, log: log}
}

// Register creates a new account. Shop accounts start with a free trial.
func (s *Service) Register(ctx context.Context, req models.DummyRegister, now time.Time) (*models.User, error) {
	const op = "auth.Register"

	existing, err := s.repo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := password.GetHash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	profileType := req.ProfileType
	if profileType == "" {
		profileType = models.ProfileTypeViewer
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		Role:         models.RoleUser,
		ProfileType:  profileType,
		CreatedAt:    now,
	}
	if req.DisplayName != "" {
		user.DisplayName = &req.DisplayName
	}
	if profileType == models.ProfileTypeShop {
		trialEnd := timeutil.AddDays(now, ShopTrialDays)
		user.ShopTrialEndsAt = &trialEnd
	}

	if _, err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
		slog.String("profile_type", user.ProfileType))

	return &user, nil
}

// Login checks the credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, req models.DummyLogin) (string, *models.User, error) {
	const op = "auth.Login"

	user, err := s.repo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := password.CompareHash(user.PasswordHash, req.Password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.maker.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user logged in", slog.String("user_id", user.ID))

	return token, user, nil
}
