package flightdeck

import (
	"context"

	"github.com/goliatone/go-errors"
)

// UserProvider resolves identities against the user directory.
type UserProvider struct {
	users  Users
	logger Logger
}

var _ IdentityProvider = (*UserProvider)(nil)

// NewUserProvider will create a new UserProvider
func NewUserProvider(users Users) *UserProvider {
	return &UserProvider{
		users:  users,
		logger: defLogger{},
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

// VerifyIdentity will find the user by email, compare the password
// hash, and return the identity. Failures collapse into the generic
// invalid-credentials error so callers cannot tell whether the email
// exists.
//
// The active flag is deliberately not checked here: login succeeds for
// deactivated accounts, matching the observed behavior of the system
// this replaces. Authenticate still gates on the flag per request.
func (u *UserProvider) VerifyIdentity(ctx context.Context, email, password string) (*User, error) {
	user, err := u.users.GetByEmail(ctx, email)
	if err != nil {
		if IsUserNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "password comparison failed")
	}

	return user, nil
}

// FindIdentityByID resolves the identity a token claims as its subject.
func (u *UserProvider) FindIdentityByID(ctx context.Context, id int64) (*User, error) {
	user, err := u.users.GetByID(ctx, id)
	if err != nil {
		if IsUserNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user by id")
	}

	return user, nil
}
