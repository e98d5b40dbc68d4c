package flightdeck

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the payload signed into every issued token:
// {id, username, email, iat, exp}.
type TokenClaims struct {
	jwt.RegisteredClaims
	UID      int64  `json:"id"`
	Name     string `json:"username"`
	UserMail string `json:"email"`
}

// UserID returns the numeric identity id the token was issued for.
func (c *TokenClaims) UserID() int64 {
	return c.UID
}

// Username returns the username claim
func (c *TokenClaims) Username() string {
	return c.Name
}

// Email returns the email claim
func (c *TokenClaims) Email() string {
	return c.UserMail
}

// Expires returns the expiration time
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *TokenClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
