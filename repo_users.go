package flightdeck

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Users is the user directory: it owns identity records and the
// queries the authentication service needs. IDs are int64 because the
// token claim schema carries integer ids; see DESIGN.md.
type Users interface {
	Create(ctx context.Context, record *User) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, record *User, columns ...string) (*User, error)
	SetActive(ctx context.Context, id int64, active bool) error
	ResetPassword(ctx context.Context, id int64, passwordHash string) error
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type users struct {
	db *bun.DB
}

var _ Users = (*users)(nil)

// NewUsersRepository returns the bun-backed user directory.
func NewUsersRepository(db *bun.DB) Users {
	return &users{db: db}
}

func (a *users) Create(ctx context.Context, record *User) (*User, error) {
	return a.CreateTx(ctx, a.db, record)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error) {
	if record == nil {
		return nil, errors.New("user record must not be nil", errors.CategoryBadInput)
	}

	// Accounts always start inactive; activation is an administrative action.
	record.Active = false

	if _, err := tx.NewInsert().Model(record).Returning("*").Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryConflict, "could not create user")
	}

	return record, nil
}

func (a *users) GetByID(ctx context.Context, id int64) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapUserLookup(err, map[string]any{"id": id})
	}

	return record, nil
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapUserLookup(err, map[string]any{"email": email})
	}

	return record, nil
}

func (a *users) GetByUsername(ctx context.Context, username string) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.username = ?", username).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapUserLookup(err, map[string]any{"username": username})
	}

	return record, nil
}

// Update persists the given columns of the record. Identity-defining
// fields (id) are never part of an update.
func (a *users) Update(ctx context.Context, record *User, columns ...string) (*User, error) {
	if record == nil || record.UserID == 0 {
		return nil, errors.New("user record must carry an id", errors.CategoryBadInput)
	}

	now := time.Now()
	record.UpdatedAt = &now

	q := a.db.NewUpdate().
		Model(record).
		WherePK().
		Returning("*")

	if len(columns) > 0 {
		q = q.Column(append(columns, "updated_at")...)
	}

	if _, err := q.Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "could not update user")
	}

	return record, nil
}

func (a *users) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := a.db.NewUpdate().
		Model((*User)(nil)).
		Set("is_active = ?", active).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "could not change user active flag")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.New("user not found", errors.CategoryNotFound).
			WithMetadata(map[string]any{"id": id})
	}

	return nil
}

func (a *users) ResetPassword(ctx context.Context, id int64, passwordHash string) error {
	// NOTE: raw SQL so the hash column updates without touching the rest
	// of the record.
	res, err := a.db.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"password_hash" = ?,
			"updated_at" = ?
		WHERE ("usr".id = ?);
	`, passwordHash, time.Now(), id).Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "could not reset password")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.New("user not found", errors.CategoryNotFound).
			WithMetadata(map[string]any{"id": id})
	}

	return nil
}

func (a *users) UsernameExists(ctx context.Context, username string) (bool, error) {
	return a.db.NewSelect().
		Model((*User)(nil)).
		Where("?TableAlias.username = ?", username).
		Exists(ctx)
}

func (a *users) EmailExists(ctx context.Context, email string) (bool, error) {
	return a.db.NewSelect().
		Model((*User)(nil)).
		Where("?TableAlias.email = ?", email).
		Exists(ctx)
}

func wrapUserLookup(err error, meta map[string]any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return errors.New("user not found", errors.CategoryNotFound).
			WithMetadata(meta)
	}
	return errors.Wrap(err, errors.CategoryInternal, "user lookup failed")
}

// IsUserNotFound reports whether err is the directory's not-found failure.
func IsUserNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var rich *errors.Error
	return errors.As(err, &rich) && rich.Category == errors.CategoryNotFound
}
