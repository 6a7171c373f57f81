// Package timeutil implements the expiry arithmetic shared by the membership
// and subscription ledgers. The current time is always an explicit parameter
// so expiry boundaries can be tested deterministically.
package timeutil

import "time"

// IsActive reports whether expiresAt is set and strictly after now.
func IsActive(expiresAt *time.Time, now time.Time) bool {
	return expiresAt != nil && expiresAt.After(now)
}

// AddDays adds whole calendar days to base using UTC date-component
// arithmetic. Elapsed-seconds arithmetic would drift across DST boundaries in
// a non-UTC reading path.
func AddDays(base time.Time, days int) time.Time {
	return base.UTC().AddDate(0, 0, days)
}

// NextExpiry returns the expiry of a fresh period of the given length
// starting at now.
func NextExpiry(days int, now time.Time) time.Time {
	return AddDays(now, days)
}
