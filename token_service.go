package flightdeck

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey []byte
	ttlMinutes int
	logger     Logger
}

// NewTokenService creates a new TokenService instance
func NewTokenService(signingKey []byte, ttlMinutes int, logger Logger) TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		signingKey: signingKey,
		ttlMinutes: ttlMinutes,
		logger:     logger,
	}
}

// Generate creates a signed token for the given identity. Issuance
// refuses to run with an unconfigured TTL rather than sign a token
// with an undefined expiry.
func (ts *TokenServiceImpl) Generate(identity Identity) (string, error) {
	if identity == nil {
		return "", errors.New("identity must not be nil", errors.CategoryInternal)
	}

	if ts.ttlMinutes <= 0 {
		return "", errors.New("token TTL is not configured", errors.CategoryInternal).
			WithTextCode("TOKEN_TTL_MISSING")
	}

	now := time.Now()
	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ts.ttlMinutes) * time.Minute)),
		},
		UID:      identity.ID(),
		Name:     identity.Username(),
		UserMail: identity.Email(),
	}

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary token claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *TokenClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign token")
	}

	return signedString, nil
}

// Validate parses and verifies a token string, returning structured
// claims. Failures are tagged: ErrTokenExpired for expiry,
// ErrTokenMalformed for bad signatures or structure, and a generic
// auth error for anything else the parser reports.
func (ts *TokenServiceImpl) Validate(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed),
			errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenMalformed
		default:
			return nil, errors.Wrap(err, errors.CategoryAuth, "token verification failed").
				WithTextCode("TOKEN_INVALID").
				WithCode(errors.CodeUnauthorized)
		}
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode claims")
	return nil, ErrTokenMalformed
}

// peekExpiry reads the expiry claim without verifying the token. Used
// only to size blacklist retention; revocation never depends on it.
func peekExpiry(tokenString string) time.Time {
	claims := &TokenClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}
	}
	return claims.Expires()
}
