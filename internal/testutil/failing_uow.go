package testutil

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/odontos/internal/db"
)

// FailingSaveUoW runs a plan save in a real transaction but fails its Nth
// write. A save writes the patient row first, then assignments, selections,
// work items and schedule days, so FailOnWrite picks which part of the
// snapshot never lands. Reads are not counted.
type FailingSaveUoW struct {
	DB          *sql.DB
	FailOnWrite int
	Err         error

	// FailedQuery is the statement that was rejected, if any.
	FailedQuery string
}

func (u *FailingSaveUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	w := &failingWrites{DBTX: tx, uow: u}
	if err := fn(ctx, w); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type failingWrites struct {
	db.DBTX
	uow    *FailingSaveUoW
	writes int
}

func (f *failingWrites) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.writes++
	if f.writes == f.uow.FailOnWrite {
		f.uow.FailedQuery = query
		return nil, f.uow.Err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
