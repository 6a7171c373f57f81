// Package directory lists the professional and shop profiles, their service
// items and ratings.
package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/uzeed/uzeed-backend/internal/models"
)

var (
	// ErrProfileNotFound means the target profile does not exist.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrNotServiceProfile means the account type cannot publish service items.
	ErrNotServiceProfile = errors.New("profile cannot publish services")
	// ErrSelfRating means a user tried to rate their own profile.
	ErrSelfRating = errors.New("cannot rate own profile")
)

// Repository is the storage surface the directory service needs.
type Repository interface {
	ListServiceProfiles(ctx context.Context) ([]*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListServiceItems(ctx context.Context, ownerID string) ([]*models.ServiceItem, error)
	CreateServiceItem(ctx context.Context, item models.ServiceItem) (string, error)
	UpsertServiceRating(ctx context.Context, rating models.ServiceRating) error
	GetProfileRating(ctx context.Context, profileID string) (float64, int, error)
}

// Service implements the marketplace directory.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New builds a directory Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// ProfileEntry is one directory listing. DistanceKm is nil when either side
// has no coordinates.
type ProfileEntry struct {
	ID                 string   `json:"id"`
	Username           string   `json:"username"`
	DisplayName        *string  `json:"displayName"`
	AvatarURL          *string  `json:"avatarUrl"`
	ProfileType        string   `json:"profileType"`
	City               *string  `json:"city"`
	ServiceCategory    *string  `json:"serviceCategory"`
	ServiceDescription *string  `json:"serviceDescription"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
	DistanceKm         *float64 `json:"distanceKm,omitempty"`
	RatingAverage      float64  `json:"ratingAverage"`
	RatingCount        int      `json:"ratingCount"`
}

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two points in km.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// ListProfiles returns all service profiles. When the caller supplies
// coordinates, entries are annotated with the distance and sorted nearest
// first; profiles without coordinates keep their relative order at the end.
func (s *Service) ListProfiles(ctx context.Context, lat, lng *float64) ([]ProfileEntry, error) {
	const op = "directory.ListProfiles"

	profiles, err := s.repo.ListServiceProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	entries := make([]ProfileEntry, 0, len(profiles))
	for _, p := range profiles {
		entry := ProfileEntry{
			ID:                 p.ID,
			Username:           p.Username,
			DisplayName:        p.DisplayName,
			AvatarURL:          p.AvatarURL,
			ProfileType:        p.ProfileType,
			City:               p.City,
			ServiceCategory:    p.ServiceCategory,
			ServiceDescription: p.ServiceDescription,
			Latitude:           p.Latitude,
			Longitude:          p.Longitude,
		}
		if lat != nil && lng != nil && p.Latitude != nil && p.Longitude != nil {
			d := HaversineKm(*lat, *lng, *p.Latitude, *p.Longitude)
			entry.DistanceKm = &d
		}
		avg, count, err := s.repo.GetProfileRating(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		entry.RatingAverage = avg
		entry.RatingCount = count
		entries = append(entries, entry)
	}

	if lat != nil && lng != nil {
		sort.SliceStable(entries, func(i, j int) bool {
			di, dj := math.Inf(1), math.Inf(1)
			if entries[i].DistanceKm != nil {
				di = *entries[i].DistanceKm
			}
			if entries[j].DistanceKm != nil {
				dj = *entries[j].DistanceKm
			}
			return di < dj
		})
	}

	return entries, nil
}

// ListItems returns the service items published by ownerID.
func (s *Service) ListItems(ctx context.Context, ownerID string) ([]*models.ServiceItem, error) {
	const op = "directory.ListItems"

	owner, err := s.repo.GetUserByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if owner == nil {
		return nil, ErrProfileNotFound
	}

	items, err := s.repo.ListServiceItems(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// CreateItem publishes a service item for ownerID. Only professional and
// shop accounts may publish.
func (s *Service) CreateItem(ctx context.Context, ownerID string, req models.DummyServiceItem, now time.Time) (*models.ServiceItem, error) {
	const op = "directory.CreateItem"

	owner, err := s.repo.GetUserByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if owner == nil {
		return nil, ErrProfileNotFound
	}
	if owner.ProfileType != models.ProfileTypeProfessional && owner.ProfileType != models.ProfileTypeShop {
		return nil, ErrNotServiceProfile
	}

	item := models.ServiceItem{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     req.Title,
		CreatedAt: now,
	}
	if req.Description != "" {
		item.Description = &req.Description
	}
	if req.Category != "" {
		item.Category = &req.Category
	}
	if req.Price > 0 {
		item.Price = &req.Price
	}

	if _, err := s.repo.CreateServiceItem(ctx, item); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("service item created",
		slog.String("owner_id", ownerID),
		slog.String("item_id", item.ID))

	return &item, nil
}

// Rate records raterID's 1..5 rating of profileID. Rating again replaces the
// previous value.
func (s *Service) Rate(ctx context.Context, profileID, raterID string, rating int, now time.Time) error {
	const op = "directory.Rate"

	if profileID == raterID {
		return ErrSelfRating
	}
	profile, err := s.repo.GetUserByID(ctx, profileID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if profile == nil {
		return ErrProfileNotFound
	}

	err = s.repo.UpsertServiceRating(ctx, models.ServiceRating{
		ProfileID: profileID,
		RaterID:   raterID,
		Rating:    rating,
		CreatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
