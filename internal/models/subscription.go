package models

import "time"

// SubscriptionStatusActive is the only status the subscribe operation writes.
const SubscriptionStatusActive = "ACTIVE"

// ProfileSubscription is a time-boxed access right scoped to one creator or
// professional profile. There is at most one row per (subscriber, profile)
// pair; re-subscribing replaces the row.
type ProfileSubscription struct {
	SubscriberID string
	ProfileID    string
	Status       string
	ExpiresAt    time.Time
	Price        int
	CreatedAt    time.Time
}
