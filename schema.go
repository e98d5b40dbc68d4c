package flightdeck

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// CreateSchema bootstraps the tables for every model this core owns.
// Dev and test environments call it against sqlite; production schemas
// are expected to be managed by migrations.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*User)(nil),
		(*Profile)(nil),
		(*BlacklistedToken)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to create table")
		}
	}

	return nil
}
