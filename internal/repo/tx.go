package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Transactor runs a unit of work against a TripRepo bound to one transaction.
// The schedule engine wraps every request in a single InTx call so that a
// read, its reconciliation writes, and any follow-up query commit together.
type Transactor interface {
	// InTx calls fn with a repo scoped to a new transaction. The transaction
	// commits if fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(TripRepo) error) error
}

// beginner is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx (nested
// transactions become savepoints).
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// pgTransactor is the Postgres implementation of Transactor.
type pgTransactor struct {
	pool beginner
	loc  *time.Location
}

// NewTransactor constructs a Transactor backed by pool.
// In tests pass a pgx.Tx so that every unit of work becomes a savepoint
// inside the per-test transaction.
func NewTransactor(pool beginner, loc *time.Location) Transactor {
	return &pgTransactor{pool: pool, loc: loc}
}

// InTx begins a transaction, hands fn a TripRepo bound to it, and commits.
func (t *pgTransactor) InTx(ctx context.Context, fn func(TripRepo) error) error {
	err := pgx.BeginFunc(ctx, t.pool, func(tx pgx.Tx) error {
		return fn(NewTripRepo(tx, t.loc))
	})
	if err != nil {
		return fmt.Errorf("repo.Transactor.InTx: %w", err)
	}
	return nil
}
