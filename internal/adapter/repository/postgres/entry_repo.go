package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/gobalance/internal/domain"
	"github.com/iho/gobalance/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

// Create inserts an entry. The unique index on token surfaces duplicates as
// domain.ErrDuplicateToken.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx,
		"INSERT INTO entries (id, amount, token, created_at) VALUES ($1, $2, $3, $4)",
		entry.ID,
		decimalToNumeric(entry.Amount),
		entry.Token,
		timeToPgTimestamptz(entry.CreatedAt),
	)

	return mapError(err)
}

// ExistsByToken reports whether an entry with the token was already recorded.
func (r *EntryRepository) ExistsByToken(ctx context.Context, tx usecase.Transaction, token string) (bool, error) {
	pgxTx := tx.(*Tx).PgxTx()

	var exists bool

	err := pgxTx.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM entries WHERE token = $1)", token).Scan(&exists)
	if err != nil {
		return false, mapError(err)
	}

	return exists, nil
}

// GetByToken retrieves the entry recorded for a token.
func (r *EntryRepository) GetByToken(ctx context.Context, token string) (*domain.Entry, error) {
	var (
		e         domain.Entry
		amount    pgtype.Numeric
		createdAt pgtype.Timestamptz
	)

	err := r.pool.QueryRow(ctx,
		"SELECT id, amount, token, created_at FROM entries WHERE token = $1", token).
		Scan(&e.ID, &amount, &e.Token, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, mapError(err)
	}

	e.Amount = numericToDecimal(amount)
	e.CreatedAt = createdAt.Time

	return &e, nil
}
