package flightdeck

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type RegisterUserMessage struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	// OnCreated receives the persisted user before the transaction commits.
	OnCreated func(*User)
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// RegisterUserHandler creates the identity and its empty profile in one
// transaction, so a failed profile insert rolls the identity back.
type RegisterUserHandler struct {
	repo RepositoryManager
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user := &User{
			Name:         event.Username,
			EmailAddress: event.Email,
			PasswordHash: hash,
		}

		if user, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		profile := &Profile{
			ID:     profileID(event.Email),
			UserID: user.UserID,
		}

		if _, err = h.repo.Profiles().CreateTx(ctx, tx, profile); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create profile")
		}

		if event.OnCreated != nil {
			event.OnCreated(user)
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	return nil
}

// profileID derives a stable uuid from the email so re-running a failed
// registration cannot strand duplicate profiles.
func profileID(email string) uuid.UUID {
	if id, err := hashid.NewUUID(email); err == nil {
		return id
	}
	return uuid.New()
}
