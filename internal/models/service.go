package models

import "time"

// ServiceItem is an offering published by a shop or professional profile.
type ServiceItem struct {
	ID          string
	OwnerID     string
	Title       string
	Description *string
	Category    *string
	Price       *int
	CreatedAt   time.Time
}

// ServiceRating is a 1..5 rating a viewer gave to a profile. A rater's later
// rating overwrites the former one.
type ServiceRating struct {
	ProfileID string
	RaterID   string
	Rating    int
	CreatedAt time.Time
}

// DummyServiceItem receives service item data from a JSON request.
type DummyServiceItem struct {
	Title       string `json:"title" validate:"required,min=1,max=120"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Price       int    `json:"price,omitempty" validate:"omitempty,gte=0"`
}

// DummyRating receives a rating value from a JSON request.
type DummyRating struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}
