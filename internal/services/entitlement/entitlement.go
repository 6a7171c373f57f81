// Package entitlement decides what a viewer is allowed to see. It is pure:
// every function takes the current time and the viewer's entitlements as
// arguments and touches no storage, so callers can resolve whole pages with
// data they already loaded.
package entitlement

import (
	"sort"
	"time"

	"github.com/uzeed/uzeed-backend/internal/lib/timeutil"
	"github.com/uzeed/uzeed-backend/internal/models"
)

// BodyPreviewRunes is how much of a locked post body is shown to
// non-entitled viewers.
const BodyPreviewRunes = 220

// SentinelAuthorUsername is shown when a post's author record is missing.
const SentinelAuthorUsername = "uzeed"

// Viewer carries the entitlements of the requesting user. The zero value is
// an anonymous viewer with no entitlements.
type Viewer struct {
	ID                  string
	MembershipExpiresAt *time.Time
	// Subscriptions maps a profile id to the expiry of the viewer's active
	// subscription to that profile.
	Subscriptions map[string]time.Time
}

// EntitledTo reports whether the viewer sees authorID's locked posts in
// full: the author always does, and so does anyone with an active platform
// membership or an active subscription to the profile.
func (v Viewer) EntitledTo(authorID string, now time.Time) bool {
	if v.ID != "" && v.ID == authorID {
		return true
	}
	if timeutil.IsActive(v.MembershipExpiresAt, now) {
		return true
	}
	if exp, ok := v.Subscriptions[authorID]; ok && exp.After(now) {
		return true
	}
	return false
}

// MediaView is the media projection embedded into a post view.
type MediaView struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

// PostView is the feed projection of a post. For paywalled entries the body
// is a truncated preview and the media list is empty.
type PostView struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	IsPublic  bool              `json:"isPublic"`
	Price     int               `json:"price"`
	Paywalled bool              `json:"paywalled"`
	CreatedAt time.Time         `json:"createdAt"`
	Media     []MediaView       `json:"media"`
	Author    models.PostAuthor `json:"author"`
}

// ResolvePost projects one post for the given viewer. author may be nil when
// the author record is gone; the sentinel author is substituted then.
func ResolvePost(post *models.Post, author *models.User, viewer Viewer, now time.Time) PostView {
	view := PostView{
		ID:        post.ID,
		Title:     post.Title,
		Body:      post.Body,
		IsPublic:  post.IsPublic,
		Price:     post.Price,
		CreatedAt: post.CreatedAt,
		Media:     mediaViews(post.Media),
		Author:    authorView(post.AuthorID, author),
	}

	if post.IsPublic || viewer.EntitledTo(post.AuthorID, now) {
		return view
	}

	view.Paywalled = true
	view.Body = previewBody(post.Body)
	view.Media = []MediaView{}
	return view
}

// ProfileAccess describes what the viewer may do on a profile page.
type ProfileAccess struct {
	Allowed      bool `json:"allowed"`
	IsOwner      bool `json:"isOwner"`
	IsSubscribed bool `json:"isSubscribed"`
}

// ResolveProfileAccess computes the access flags of viewer on profile.
// Visibility follows the profile's own business plan: a profile whose
// membership and trial have both lapsed is hidden from everyone but its
// owner, no matter what the viewer is entitled to.
func ResolveProfileAccess(profile *models.User, viewer Viewer, now time.Time) ProfileAccess {
	var access ProfileAccess
	access.IsOwner = viewer.ID != "" && viewer.ID == profile.ID
	if exp, ok := viewer.Subscriptions[profile.ID]; ok && exp.After(now) {
		access.IsSubscribed = true
	}
	access.Allowed = access.IsOwner || BusinessPlanActive(profile, now)
	return access
}

// BusinessPlanActive reports whether a shop or professional account is
// currently on an active plan, paid or trial.
func BusinessPlanActive(user *models.User, now time.Time) bool {
	return timeutil.IsActive(user.MembershipExpiresAt, now) ||
		timeutil.IsActive(user.ShopTrialEndsAt, now)
}

// SortNewestFirst orders views by creation time, newest first. Stable.
func SortNewestFirst(views []PostView) {
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
}

// SortByPopularity orders views by attached media count, then by creation
// time, both descending. Stable.
func SortByPopularity(views []PostView) {
	sort.SliceStable(views, func(i, j int) bool {
		if len(views[i].Media) != len(views[j].Media) {
			return len(views[i].Media) > len(views[j].Media)
		}
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
}

func previewBody(body string) string {
	runes := []rune(body)
	if len(runes) > BodyPreviewRunes {
		runes = runes[:BodyPreviewRunes]
	}
	return string(runes) + "…"
}

func mediaViews(media []models.Media) []MediaView {
	views := make([]MediaView, 0, len(media))
	for _, m := range media {
		views = append(views, MediaView{ID: m.ID, Type: m.Type, URL: m.URL})
	}
	return views
}

func authorView(authorID string, author *models.User) models.PostAuthor {
	if author == nil {
		return models.PostAuthor{
			ID:          authorID,
			Username:    SentinelAuthorUsername,
			ProfileType: models.ProfileTypeCreator,
		}
	}
	return models.PostAuthor{
		ID:          author.ID,
		Username:    author.Username,
		DisplayName: author.DisplayName,
		AvatarURL:   author.AvatarURL,
		ProfileType: author.ProfileType,
	}
}
