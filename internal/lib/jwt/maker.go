// Package jwt implements generation and parsing of JWT tokens with the custom
// claim fields used by the API (user id, username, role).
package jwt

import (
	"time"
)

// Maker describes the interface for generating and parsing JWT tokens.
type Maker interface {
	// GenerateToken creates a signed token carrying the user id, username and role.
	GenerateToken(userID, username, role string) (string, error)
	// ParseToken validates a token and returns its custom claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl implements Maker with an HMAC secret key and a token TTL.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker creates a MakerImpl from a secret key and a TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
