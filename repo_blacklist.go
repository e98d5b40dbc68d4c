package flightdeck

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SQLBlacklist is the bun-backed revocation store. Records are
// append-only; the only way out is PurgeExpired, which uses the
// token's own expiry claim as recorded at revocation time.
type SQLBlacklist struct {
	repo repository.Repository[*BlacklistedToken]
	db   *bun.DB
}

var _ BlacklistStore = (*SQLBlacklist)(nil)

// NewSQLBlacklist creates the SQL revocation store.
func NewSQLBlacklist(db *bun.DB) *SQLBlacklist {
	handlers := repository.ModelHandlers[*BlacklistedToken]{
		NewRecord: func() *BlacklistedToken {
			return &BlacklistedToken{}
		},
		GetID: func(record *BlacklistedToken) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *BlacklistedToken, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "token"
		},
	}

	return &SQLBlacklist{
		repo: repository.NewRepository(db, handlers),
		db:   db,
	}
}

// Contains is an exact-string membership test.
func (s *SQLBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	_, err := s.repo.GetByIdentifier(ctx, token)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// Add inserts a revocation record. Inserting a token that is already
// present is a no-op, so concurrent logouts cannot fail each other.
func (s *SQLBlacklist) Add(ctx context.Context, token string, expiresAt time.Time) error {
	now := time.Now()
	record := &BlacklistedToken{
		ID:        uuid.New(),
		Token:     token,
		RevokedAt: &now,
	}
	if !expiresAt.IsZero() {
		record.ExpiresAt = &expiresAt
	}

	_, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (token) DO NOTHING").
		Exec(ctx)

	return err
}

// PurgeExpired removes records whose token expired before now. A token
// past its expiry is rejected by the codec anyway, so dropping the
// record does not widen the trust window.
func (s *SQLBlacklist) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.NewDelete().
		Model((*BlacklistedToken)(nil)).
		Where("?TableAlias.expires_at IS NOT NULL").
		Where("?TableAlias.expires_at < ?", time.Now()).
		Exec(ctx)
	if err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}

	return n, nil
}
