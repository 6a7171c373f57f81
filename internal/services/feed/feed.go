// Package feed assembles the paywall-aware post projections: the home feed,
// the profile page and the viewer dashboard.
package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/uzeed/uzeed-backend/internal/lib/sl"
	"github.com/uzeed/uzeed-backend/internal/lib/timeutil"
	"github.com/uzeed/uzeed-backend/internal/models"
	"github.com/uzeed/uzeed-backend/internal/services/entitlement"
	"github.com/uzeed/uzeed-backend/internal/services/subscription"
)

// FeedLimit caps how many posts the home feed loads.
const FeedLimit = 50

// publicFeedCacheKey holds the anonymous feed projection, which is identical
// for every logged-out visitor.
const (
	publicFeedCacheKey = "feed:public"
	publicFeedCacheTTL = time.Minute
)

var (
	// ErrProfileNotFound means the requested profile does not exist.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrProfileForbidden means the profile's business plan has lapsed and
	// the page is hidden from everyone but the owner.
	ErrProfileForbidden = errors.New("profile not accessible")
)

// Repository is the storage surface the feed service needs.
type Repository interface {
	ListRecentPosts(ctx context.Context, limit int) ([]*models.Post, error)
	ListPostsByAuthor(ctx context.Context, authorID string) ([]*models.Post, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListActiveSubscriptions(ctx context.Context, subscriberID string, now time.Time) (map[string]time.Time, error)
	GetProfileRating(ctx context.Context, profileID string) (float64, int, error)
}

// Cache is the cache surface the feed service needs.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Service builds the read-side projections.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New builds a feed Service.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

// ProfileView is the profile page payload.
type ProfileView struct {
	ID                    string                 `json:"id"`
	Username              string                 `json:"username"`
	DisplayName           *string                `json:"displayName"`
	AvatarURL             *string                `json:"avatarUrl"`
	Bio                   *string                `json:"bio"`
	City                  *string                `json:"city"`
	ProfileType           string                 `json:"profileType"`
	SubscriptionPrice     int                    `json:"subscriptionPrice"`
	IsOwner               bool                   `json:"isOwner"`
	IsSubscribed          bool                   `json:"isSubscribed"`
	SubscriptionExpiresAt *time.Time             `json:"subscriptionExpiresAt,omitempty"`
	RatingAverage         float64                `json:"ratingAverage"`
	RatingCount           int                    `json:"ratingCount"`
	Posts                 []entitlement.PostView `json:"posts"`
}

// DashboardView is the account state payload of the logged-in user.
type DashboardView struct {
	UserID              string     `json:"userId"`
	Username            string     `json:"username"`
	ProfileType         string     `json:"profileType"`
	MembershipActive    bool       `json:"membershipActive"`
	MembershipExpiresAt *time.Time `json:"membershipExpiresAt,omitempty"`
	ShopTrialActive     bool       `json:"shopTrialActive"`
	ShopTrialEndsAt     *time.Time `json:"shopTrialEndsAt,omitempty"`
	BusinessPlanActive  bool       `json:"businessPlanActive"`
}

// viewer loads the entitlements of viewerID. An empty id yields the
// anonymous viewer.
func (s *Service) viewer(ctx context.Context, viewerID string, now time.Time) (entitlement.Viewer, error) {
	if viewerID == "" {
		return entitlement.Viewer{}, nil
	}
	user, err := s.repo.GetUserByID(ctx, viewerID)
	if err != nil {
		return entitlement.Viewer{}, err
	}
	if user == nil {
		return entitlement.Viewer{}, nil
	}
	subs, err := s.repo.ListActiveSubscriptions(ctx, viewerID, now)
	if err != nil {
		return entitlement.Viewer{}, err
	}
	return entitlement.Viewer{
		ID:                  user.ID,
		MembershipExpiresAt: user.MembershipExpiresAt,
		Subscriptions:       subs,
	}, nil
}

// Feed returns the latest posts projected for viewerID. The anonymous
// projection is cached; misses fall through to the database.
func (s *Service) Feed(ctx context.Context, viewerID string, now time.Time) ([]entitlement.PostView, error) {
	const op = "feed.Feed"

	if viewerID == "" {
		var cached []entitlement.PostView
		found, err := s.cache.Get(ctx, publicFeedCacheKey, &cached)
		if err != nil {
			s.log.Warn("feed cache read failed", sl.Err(err))
		}
		if found {
			return cached, nil
		}
	}

	viewer, err := s.viewer(ctx, viewerID, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	posts, err := s.repo.ListRecentPosts(ctx, FeedLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	authorIDs := make([]string, 0, len(posts))
	seen := make(map[string]struct{}, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.AuthorID]; ok {
			continue
		}
		seen[p.AuthorID] = struct{}{}
		authorIDs = append(authorIDs, p.AuthorID)
	}
	authors, err := s.repo.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	views := make([]entitlement.PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, entitlement.ResolvePost(p, authors[p.AuthorID], viewer, now))
	}

	if viewerID == "" {
		if err := s.cache.Set(ctx, publicFeedCacheKey, views, publicFeedCacheTTL); err != nil {
			s.log.Warn("feed cache write failed", sl.Err(err))
		}
	}

	return views, nil
}

// Profile returns the profile page of username projected for viewerID.
func (s *Service) Profile(ctx context.Context, username, viewerID string, now time.Time) (*ProfileView, error) {
	const op = "feed.Profile"

	profile, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	viewer, err := s.viewer(ctx, viewerID, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	access := entitlement.ResolveProfileAccess(profile, viewer, now)
	if !access.Allowed {
		return nil, ErrProfileForbidden
	}

	posts, err := s.repo.ListPostsByAuthor(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	views := make([]entitlement.PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, entitlement.ResolvePost(p, profile, viewer, now))
	}

	avg, count, err := s.repo.GetProfileRating(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	view := &ProfileView{
		ID:                profile.ID,
		Username:          profile.Username,
		DisplayName:       profile.DisplayName,
		AvatarURL:         profile.AvatarURL,
		Bio:               profile.Bio,
		City:              profile.City,
		ProfileType:       profile.ProfileType,
		SubscriptionPrice: subscription.PriceFor(profile),
		IsOwner:           access.IsOwner,
		IsSubscribed:      access.IsSubscribed,
		RatingAverage:     avg,
		RatingCount:       count,
		Posts:             views,
	}
	if exp, ok := viewer.Subscriptions[profile.ID]; ok && exp.After(now) {
		view.SubscriptionExpiresAt = &exp
	}
	return view, nil
}

// Dashboard returns the account state of userID.
func (s *Service) Dashboard(ctx context.Context, userID string, now time.Time) (*DashboardView, error) {
	const op = "feed.Dashboard"

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if user == nil {
		return nil, ErrProfileNotFound
	}

	return &DashboardView{
		UserID:              user.ID,
		Username:            user.Username,
		ProfileType:         user.ProfileType,
		MembershipActive:    timeutil.IsActive(user.MembershipExpiresAt, now),
		MembershipExpiresAt: user.MembershipExpiresAt,
		ShopTrialActive:     timeutil.IsActive(user.ShopTrialEndsAt, now),
		ShopTrialEndsAt:     user.ShopTrialEndsAt,
		BusinessPlanActive:  entitlement.BusinessPlanActive(user, now),
	}, nil
}
