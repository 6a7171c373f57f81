package models

import "time"

// Media types attached to a post.
const (
	MediaTypeImage = "IMAGE"
	MediaTypeVideo = "VIDEO"
)

// Post is a content item published by a creator. Public posts are never
// paywalled; non-public posts are only shown in full to entitled viewers.
type Post struct {
	ID        string
	AuthorID  string
	Title     string
	Body      string
	IsPublic  bool
	Price     int
	CreatedAt time.Time
	Media     []Media
}

// Media belongs to exactly one post.
type Media struct {
	ID     string
	PostID string
	Type   string
	URL    string
}

// DummyPost receives post data from a JSON request.
type DummyPost struct {
	Title    string       `json:"title" validate:"required,min=1,max=200"`
	Body     string       `json:"body" validate:"required"`
	IsPublic bool         `json:"is_public"`
	Price    int          `json:"price,omitempty" validate:"omitempty,gte=0"`
	Media    []DummyMedia `json:"media,omitempty" validate:"omitempty,dive"`
}

// DummyMedia receives one media attachment reference.
type DummyMedia struct {
	Type string `json:"type" validate:"required,oneof=IMAGE VIDEO"`
	URL  string `json:"url" validate:"required,url"`
}

// PostAuthor is the public author projection embedded into feed entries.
type PostAuthor struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	DisplayName *string `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl"`
	ProfileType string  `json:"profileType"`
}
