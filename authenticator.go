package flightdeck

import (
	"context"
	"strings"

	"github.com/goliatone/go-errors"
)

// DefaultAuthScheme is the Authorization header keyword, matched
// case-insensitively.
const DefaultAuthScheme = "Token"

// Auther orchestrates registration, login, logout, and the per-request
// authentication gate.
type Auther struct {
	repo      RepositoryManager
	provider  IdentityProvider
	blacklist BlacklistStore
	validator *CredentialValidator
	tokens    TokenService
	scheme    string
	logger    Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(repo RepositoryManager, blacklist BlacklistStore, cfg Config) *Auther {
	scheme := cfg.GetAuthScheme()
	if scheme == "" {
		scheme = DefaultAuthScheme
	}

	return &Auther{
		repo:      repo,
		provider:  NewUserProvider(repo.Users()),
		blacklist: blacklist,
		validator: NewCredentialValidator(repo.Users()),
		tokens:    NewTokenService([]byte(cfg.GetSigningKey()), cfg.GetTokenTTLMinutes(), defLogger{}),
		scheme:    scheme,
		logger:    defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithIdentityProvider sets a custom identity provider.
func (s *Auther) WithIdentityProvider(provider IdentityProvider) *Auther {
	s.provider = provider
	return s
}

// WithTokenService sets a custom token service.
func (s *Auther) WithTokenService(tokens TokenService) *Auther {
	s.tokens = tokens
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokens
}

// Register validates the candidate credentials, creates the inactive
// identity together with its empty profile, and issues a token. The
// token is usable-looking even though the account starts inactive;
// Authenticate rejects it until activation.
func (s *Auther) Register(ctx context.Context, username, email, password string) (*User, string, error) {
	if err := s.validator.Validate(ctx, username, email, password); err != nil {
		return nil, "", err
	}

	var user *User
	handler := &RegisterUserHandler{repo: s.repo}
	err := handler.Execute(ctx, RegisterUserMessage{
		Username: username,
		Email:    email,
		Password: password,
		OnCreated: func(u *User) {
			user = u
		},
	})
	if err != nil {
		s.logger.Error("Register create user error", "error", err)
		return nil, "", err
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		s.logger.Error("Register token issuance error", "error", err)
		return nil, "", err
	}

	return user, token, nil
}

// Login verifies the email/password pair and issues a fresh token.
// It does not require the account to be active; see UserProvider.
func (s *Auther) Login(ctx context.Context, email, password string) (*User, string, error) {
	user, err := s.provider.VerifyIdentity(ctx, email, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		return nil, "", err
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		s.logger.Error("Login token issuance error", "error", err)
		return nil, "", err
	}

	return user, token, nil
}

// Authenticate is the per-request gate. Given the raw Authorization
// header it returns the authenticated identity and the presented token,
// (nil, "", nil) for anonymous requests, or a tagged failure.
//
// The order is fixed: scheme match, segment shape, blacklist, decode,
// identity lookup, active flag. The blacklist is consulted before the
// signature so revocation wins over everything else.
func (s *Auther) Authenticate(ctx context.Context, rawHeader string) (*User, string, error) {
	segments := strings.Fields(rawHeader)

	if len(segments) == 0 || !strings.EqualFold(segments[0], s.scheme) {
		return nil, "", nil
	}

	if len(segments) == 1 {
		return nil, "", ErrMissingCredentials
	}

	if len(segments) > 2 {
		return nil, "", ErrMalformedHeader
	}

	return s.authenticateCredentials(ctx, segments[1])
}

func (s *Auther) authenticateCredentials(ctx context.Context, token string) (*User, string, error) {
	revoked, err := s.blacklist.Contains(ctx, token)
	if err != nil {
		s.logger.Error("Authenticate blacklist lookup error", "error", err)
		return nil, "", errors.Wrap(err, errors.CategoryInternal, "blacklist lookup failed")
	}
	if revoked {
		return nil, "", ErrTokenBlacklisted
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, "", err
	}

	user, err := s.provider.FindIdentityByID(ctx, claims.UserID())
	if err != nil {
		return nil, "", err
	}

	if !user.IsActive() {
		return nil, "", ErrIdentityDeactivated
	}

	return user, token, nil
}

// Logout revokes the presented token. The header is assumed to be
// well-formed; this path does not repeat Authenticate's segment
// validation. Logging out twice with the same token is a client error,
// preserved from the observed behavior.
func (s *Auther) Logout(ctx context.Context, rawHeader string) error {
	segments := strings.Fields(rawHeader)
	if len(segments) < 2 {
		return ErrMissingCredentials
	}
	token := segments[1]

	revoked, err := s.blacklist.Contains(ctx, token)
	if err != nil {
		s.logger.Error("Logout blacklist lookup error", "error", err)
		return errors.Wrap(err, errors.CategoryInternal, "blacklist lookup failed")
	}
	if revoked {
		return ErrAlreadyLoggedOut
	}

	if err := s.blacklist.Add(ctx, token, peekExpiry(token)); err != nil {
		s.logger.Error("Logout blacklist insert error", "error", err)
		return errors.Wrap(err, errors.CategoryInternal, "could not revoke token")
	}

	return nil
}
