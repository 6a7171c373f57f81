// Package post implements publishing content posts.
package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/uzeed/uzeed-backend/internal/models"
)

var (
	// ErrAuthorNotFound means the publishing account does not exist.
	ErrAuthorNotFound = errors.New("author not found")
	// ErrNotCreatorProfile means viewer accounts cannot publish posts.
	ErrNotCreatorProfile = errors.New("profile cannot publish posts")
)

// Repository is the storage surface the post service needs.
type Repository interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CreatePost(ctx context.Context, post models.Post) (string, error)
}

// Service implements post publishing.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New builds a post Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Publish stores a new post with its media references for authorID. Viewer
// accounts are rejected; any other profile type can publish.
func (s *Service) Publish(ctx context.Context, authorID string, req models.DummyPost, now time.Time) (*models.Post, error) {
	const op = "post.Publish"

	author, err := s.repo.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if author == nil {
		return nil, ErrAuthorNotFound
	}
	if author.ProfileType == models.ProfileTypeViewer {
		return nil, ErrNotCreatorProfile
	}

	p := models.Post{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Title:     req.Title,
		Body:      req.Body,
		IsPublic:  req.IsPublic,
		Price:     req.Price,
		CreatedAt: now,
	}
	for _, m := range req.Media {
		p.Media = append(p.Media, models.Media{
			ID:     uuid.NewString(),
			PostID: p.ID,
			Type:   m.Type,
			URL:    m.URL,
		})
	}

	if _, err := s.repo.CreatePost(ctx, p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("post published",
		slog.String("post_id", p.ID),
		slog.String("author_id", authorID),
		slog.Bool("is_public", p.IsPublic))
	return &p, nil
}
