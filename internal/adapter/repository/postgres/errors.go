package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/gobalance/internal/domain"
)

// PostgreSQL error codes surfaced by the mutation protocol.
const (
	pgErrUniqueViolation      = "23505"
	pgErrCheckViolation       = "23514"
	pgErrLockNotAvailable     = "55P03"
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
)

// Constraint names from the migrations. A unique hit on either token index
// means the request was already applied.
const (
	constraintEntryToken   = "entries_token_key"
	constraintBalanceToken = "balances_last_token_key"
)

// mapError translates PostgreSQL errors into domain errors. Deadlocks and
// serialization failures surface as transient constraint violations so the
// retry coordinator re-attempts them with a fresh read.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgErrUniqueViolation:
		if pgErr.ConstraintName == constraintEntryToken || pgErr.ConstraintName == constraintBalanceToken {
			return domain.ErrDuplicateToken
		}

		return domain.ErrConstraintViolation
	case pgErrLockNotAvailable:
		return domain.ErrLockTimeout
	case pgErrCheckViolation, pgErrDeadlock, pgErrSerializationFailure:
		return domain.ErrConstraintViolation
	}

	return err
}
