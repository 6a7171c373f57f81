package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/uzeed/uzeed-backend/internal/models"
)

// ListRecentPosts returns the newest posts with their media attached.
func (s *Storage) ListRecentPosts(ctx context.Context, limit int) ([]*models.Post, error) {
	const op = "storage.ListRecentPosts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, author_id, title, body, is_public, price, created_at
			  FROM posts
			  ORDER BY created_at DESC
			  LIMIT $1`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Body, &p.IsPublic,
			&p.Price, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.attachMedia(ctx, result); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListPostsByAuthor returns an author's posts, newest first, with media.
func (s *Storage) ListPostsByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	const op = "storage.ListPostsByAuthor"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, author_id, title, body, is_public, price, created_at
			  FROM posts
			  WHERE author_id = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, authorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Body, &p.IsPublic,
			&p.Price, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.attachMedia(ctx, result); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CreatePost inserts a post together with its media rows.
func (s *Storage) CreatePost(ctx context.Context, post models.Post) (string, error) {
	const op = "storage.CreatePost"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT INTO posts (id, author_id, title, body, is_public, price)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID string
	if err := tx.QueryRowContext(ctx, query,
		post.ID, post.AuthorID, post.Title, post.Body, post.IsPublic, post.Price).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	for _, m := range post.Media {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO media (id, post_id, type, url) VALUES ($1, $2, $3, $4)`,
			m.ID, newID, m.Type, m.URL); err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// attachMedia loads the media rows for the given posts and assigns them to
// their owners, preserving insertion order.
func (s *Storage) attachMedia(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	byID := make(map[string]*models.Post, len(posts))
	placeholders := make([]string, len(posts))
	args := make([]any, len(posts))
	for i, p := range posts {
		byID[p.ID] = p
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = p.ID
	}

	query := `SELECT id, post_id, type, url FROM media
			  WHERE post_id IN (` + strings.Join(placeholders, ", ") + `)
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var m models.Media
		if err := rows.Scan(&m.ID, &m.PostID, &m.Type, &m.URL); err != nil {
			return err
		}
		if p, ok := byID[m.PostID]; ok {
			p.Media = append(p.Media, m)
		}
	}
	return rows.Err()
}
