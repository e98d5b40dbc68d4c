package flightdeck

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated identity that end
// up inside a token.
type Identity interface {
	ID() int64
	Username() string
	Email() string
}

// TokenService issues and verifies signed tokens
type TokenService interface {
	Generate(identity Identity) (string, error)
	SignClaims(claims *TokenClaims) (string, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// BlacklistStore records revoked token strings. Add is semantically
// idempotent; there is no removal beyond expiry-driven purging.
type BlacklistStore interface {
	Contains(ctx context.Context, token string) (bool, error)
	Add(ctx context.Context, token string, expiresAt time.Time) error
}

// IdentityProvider ensures we have a store to retrieve auth identities
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, email, password string) (*User, error)
	FindIdentityByID(ctx context.Context, id int64) (*User, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Register(ctx context.Context, username, email, password string) (*User, string, error)
	Login(ctx context.Context, email, password string) (*User, string, error)
	Authenticate(ctx context.Context, rawHeader string) (*User, string, error)
	Logout(ctx context.Context, rawHeader string) error
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetTokenTTLMinutes() int
	GetAuthScheme() string
	GetContextKey() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
