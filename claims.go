package relink

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims is the read-only view of a validated token's payload
type AuthClaims interface {
	Subject() string
	UserID() string
	Name() string
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete claim set carried by issued tokens: the
// registered iat/exp/sub claims plus the bearer's display name at
// issuance time.
type JWTClaims struct {
	jwt.RegisteredClaims
	BearerName string `json:"name,omitempty"`
}

var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim, the principal's ID
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID is an alias for Subject
func (c *JWTClaims) UserID() string {
	return c.Subject()
}

// Name returns the bearer's display name as it was at issuance
func (c *JWTClaims) Name() string {
	return c.BearerName
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
