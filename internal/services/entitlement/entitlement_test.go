package entitlement_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uzeed/uzeed-backend/internal/models"
	"github.com/uzeed/uzeed-backend/internal/services/entitlement"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func lockedPost(body string) *models.Post {
	return &models.Post{
		ID:       "post-1",
		AuthorID: "author-1",
		Title:    "locked",
		Body:     body,
		IsPublic: false,
		Media: []models.Media{
			{ID: "m1", PostID: "post-1", Type: models.MediaTypeImage, URL: "https://cdn/x.jpg"},
		},
		CreatedAt: now.Add(-time.Hour),
	}
}

func TestResolvePost(t *testing.T) {
	author := &models.User{ID: "author-1", Username: "creator", ProfileType: models.ProfileTypeCreator}
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)
	longBody := strings.Repeat("x", 500)

	tests := []struct {
		name          string
		post          *models.Post
		viewer        entitlement.Viewer
		wantPaywalled bool
	}{
		{
			name:          "public post is open to anonymous",
			post:          &models.Post{ID: "p", AuthorID: "author-1", Body: longBody, IsPublic: true},
			viewer:        entitlement.Viewer{},
			wantPaywalled: false,
		},
		{
			name:          "locked post is paywalled for anonymous",
			post:          lockedPost(longBody),
			viewer:        entitlement.Viewer{},
			wantPaywalled: true,
		},
		{
			name:          "author sees own locked post",
			post:          lockedPost(longBody),
			viewer:        entitlement.Viewer{ID: "author-1"},
			wantPaywalled: false,
		},
		{
			name:          "active membership unlocks",
			post:          lockedPost(longBody),
			viewer:        entitlement.Viewer{ID: "viewer-1", MembershipExpiresAt: &future},
			wantPaywalled: false,
		},
		{
			name:          "expired membership does not unlock",
			post:          lockedPost(longBody),
			viewer:        entitlement.Viewer{ID: "viewer-1", MembershipExpiresAt: &past},
			wantPaywalled: true,
		},
		{
			name: "active profile subscription unlocks",
			post: lockedPost(longBody),
			viewer: entitlement.Viewer{
				ID:            "viewer-1",
				Subscriptions: map[string]time.Time{"author-1": future},
			},
			wantPaywalled: false,
		},
		{
			name: "subscription to another profile does not unlock",
			post: lockedPost(longBody),
			viewer: entitlement.Viewer{
				ID:            "viewer-1",
				Subscriptions: map[string]time.Time{"author-2": future},
			},
			wantPaywalled: true,
		},
		{
			name: "expired subscription with expired membership stays locked",
			post: lockedPost(longBody),
			viewer: entitlement.Viewer{
				ID:                  "viewer-1",
				MembershipExpiresAt: &past,
				Subscriptions:       map[string]time.Time{"author-1": past},
			},
			wantPaywalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := entitlement.ResolvePost(tt.post, author, tt.viewer, now)
			assert.Equal(t, tt.wantPaywalled, view.Paywalled)
			if tt.wantPaywalled {
				assert.Empty(t, view.Media)
				assert.LessOrEqual(t, len([]rune(view.Body)), entitlement.BodyPreviewRunes+1)
				assert.True(t, strings.HasSuffix(view.Body, "…"))
			} else {
				assert.Equal(t, tt.post.Body, view.Body)
				assert.Len(t, view.Media, len(tt.post.Media))
			}
		})
	}
}

func TestResolvePostPreviewKeepsMultibyteRunesIntact(t *testing.T) {
	body := strings.Repeat("ñ", 300)
	view := entitlement.ResolvePost(lockedPost(body), nil, entitlement.Viewer{}, now)

	require.True(t, view.Paywalled)
	runes := []rune(view.Body)
	assert.Len(t, runes, entitlement.BodyPreviewRunes+1)
	for _, r := range runes[:entitlement.BodyPreviewRunes] {
		assert.Equal(t, 'ñ', r)
	}
}

func TestResolvePostSentinelAuthor(t *testing.T) {
	view := entitlement.ResolvePost(lockedPost("body"), nil, entitlement.Viewer{}, now)

	assert.Equal(t, entitlement.SentinelAuthorUsername, view.Author.Username)
	assert.Equal(t, "author-1", view.Author.ID)
}

func TestResolvePostExpiryBoundary(t *testing.T) {
	// An expiry exactly equal to now is already inactive.
	exact := now
	viewer := entitlement.Viewer{ID: "viewer-1", MembershipExpiresAt: &exact}

	view := entitlement.ResolvePost(lockedPost("body"), nil, viewer, now)
	assert.True(t, view.Paywalled)
}

func TestResolveProfileAccess(t *testing.T) {
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	lapsed := &models.User{ID: "prof-1", Username: "pro", ProfileType: models.ProfileTypeProfessional,
		MembershipExpiresAt: &past}
	paying := &models.User{ID: "prof-1", Username: "pro", ProfileType: models.ProfileTypeProfessional,
		MembershipExpiresAt: &future}
	onTrial := &models.User{ID: "prof-1", Username: "pro", ProfileType: models.ProfileTypeShop,
		ShopTrialEndsAt: &future}

	tests := []struct {
		name    string
		profile *models.User
		viewer  entitlement.Viewer
		want    entitlement.ProfileAccess
	}{
		{
			name:    "anonymous on active plan",
			profile: paying,
			viewer:  entitlement.Viewer{},
			want:    entitlement.ProfileAccess{Allowed: true},
		},
		{
			name:    "anonymous on lapsed plan",
			profile: lapsed,
			viewer:  entitlement.Viewer{},
			want:    entitlement.ProfileAccess{},
		},
		{
			name:    "owner sees own lapsed profile",
			profile: lapsed,
			viewer:  entitlement.Viewer{ID: "prof-1"},
			want:    entitlement.ProfileAccess{Allowed: true, IsOwner: true},
		},
		{
			name:    "subscriber on active plan",
			profile: paying,
			viewer:  entitlement.Viewer{ID: "v", Subscriptions: map[string]time.Time{"prof-1": future}},
			want:    entitlement.ProfileAccess{Allowed: true, IsSubscribed: true},
		},
		{
			name:    "subscriber denied when plan lapsed",
			profile: lapsed,
			viewer:  entitlement.Viewer{ID: "v", Subscriptions: map[string]time.Time{"prof-1": future}},
			want:    entitlement.ProfileAccess{IsSubscribed: true},
		},
		{
			name:    "member denied when plan lapsed",
			profile: lapsed,
			viewer:  entitlement.Viewer{ID: "v", MembershipExpiresAt: &future},
			want:    entitlement.ProfileAccess{},
		},
		{
			name:    "shop trial keeps the page open",
			profile: onTrial,
			viewer:  entitlement.Viewer{ID: "v"},
			want:    entitlement.ProfileAccess{Allowed: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := entitlement.ResolveProfileAccess(tt.profile, tt.viewer, now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBusinessPlanActive(t *testing.T) {
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	assert.False(t, entitlement.BusinessPlanActive(&models.User{}, now))
	assert.True(t, entitlement.BusinessPlanActive(&models.User{MembershipExpiresAt: &future}, now))
	assert.True(t, entitlement.BusinessPlanActive(&models.User{ShopTrialEndsAt: &future}, now))
	assert.False(t, entitlement.BusinessPlanActive(&models.User{MembershipExpiresAt: &past, ShopTrialEndsAt: &past}, now))
}

func TestSortByPopularity(t *testing.T) {
	views := []entitlement.PostView{
		{ID: "a", CreatedAt: now.Add(-3 * time.Hour), Media: []entitlement.MediaView{{}, {}}},
		{ID: "b", CreatedAt: now.Add(-1 * time.Hour)},
		{ID: "c", CreatedAt: now.Add(-2 * time.Hour), Media: []entitlement.MediaView{{}, {}}},
		{ID: "d", CreatedAt: now},
	}

	entitlement.SortByPopularity(views)

	gotOrder := []string{views[0].ID, views[1].ID, views[2].ID, views[3].ID}
	assert.Equal(t, []string{"c", "a", "d", "b"}, gotOrder)
}

func TestSortNewestFirst(t *testing.T) {
	views := []entitlement.PostView{
		{ID: "old", CreatedAt: now.Add(-time.Hour)},
		{ID: "new", CreatedAt: now},
	}

	entitlement.SortNewestFirst(views)
	assert.Equal(t, "new", views[0].ID)
}
