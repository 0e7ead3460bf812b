package sqlutil

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MaxAttempts bounds how often Run retries a transaction that lost a
// serialization race or a deadlock.
const MaxAttempts = 3

// Beginner is satisfied by *pgxpool.Pool and *pgx.Conn.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Run executes fn inside a pgx.Tx.
// If fn returns an error the tx rolls back, else it commits. Serialization
// failures and deadlocks are retried up to MaxAttempts times.
func Run[T any](
	ctx context.Context,
	db Beginner,
	newQueries func(pgx.Tx) T,
	fn func(q T) error,
) error {
	var err error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		err = runOnce(ctx, db, newQueries, fn)
		if err == nil || !Retryable(err) {
			return err
		}
	}
	return err
}

func runOnce[T any](ctx context.Context, db Beginner, newQueries func(pgx.Tx) T, fn func(q T) error) error {
	tx, err := db.Begin(ctx) // BEGIN
	if err != nil {
		return err
	}
	q := newQueries(tx) // bind queries to this tx
	if err := fn(q); err != nil {
		_ = tx.Rollback(ctx) // ROLLBACK
		return err
	}
	return tx.Commit(ctx) // COMMIT
}

// Retryable reports whether err is a transient conflict worth retrying.
func Retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "40001", "40P01": // serialization_failure, deadlock_detected
		return true
	}
	return false
}
