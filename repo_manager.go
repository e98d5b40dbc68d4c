package flightdeck

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() Users
	Profiles() repository.Repository[*Profile]
	Blacklist() *SQLBlacklist
}

// NewProfilesRepository builds the generic repository for profile
// companion records.
func NewProfilesRepository(db *bun.DB) repository.Repository[*Profile] {
	handlers := repository.ModelHandlers[*Profile]{
		NewRecord: func() *Profile {
			return &Profile{}
		},
		GetID: func(record *Profile) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *Profile, id uuid.UUID) {
			record.ID = id
		},
	}
	return repository.NewRepository(db, handlers)
}

type mngr struct {
	db        *bun.DB
	users     Users
	profiles  repository.Repository[*Profile]
	blacklist *SQLBlacklist
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:        db,
		users:     NewUsersRepository(db),
		profiles:  NewProfilesRepository(db),
		blacklist: NewSQLBlacklist(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.profiles == nil {
		return errors.New("repository profiles should be initialized")
	}

	if m.blacklist == nil {
		return errors.New("repository blacklist should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Profiles() repository.Repository[*Profile] {
	return m.profiles
}

func (m mngr) Blacklist() *SQLBlacklist {
	return m.blacklist
}
