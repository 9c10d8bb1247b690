package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/gobalance/internal/domain"
	"github.com/iho/gobalance/internal/usecase"
)

const balanceColumns = "id, amount, version, last_token, created_at, updated_at"

// BalanceRepository implements usecase.BalanceRepository.
type BalanceRepository struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewBalanceRepository creates a new BalanceRepository. lockTimeout bounds
// how long a FOR UPDATE read may wait for a concurrent writer.
func NewBalanceRepository(pool *pgxpool.Pool, lockTimeout time.Duration) *BalanceRepository {
	return &BalanceRepository{
		pool:        pool,
		lockTimeout: lockTimeout,
	}
}

// Create creates a new balance row.
func (r *BalanceRepository) Create(ctx context.Context, balance *domain.Balance) error {
	_, err := r.pool.Exec(ctx,
		"INSERT INTO balances ("+balanceColumns+") VALUES ($1, $2, $3, $4, $5, $6)",
		balance.ID,
		decimalToNumeric(balance.Amount),
		balance.Version,
		textOrNull(balance.LastToken),
		timeToPgTimestamptz(balance.CreatedAt),
		timeToPgTimestamptz(balance.UpdatedAt),
	)

	return mapError(err)
}

// GetByID retrieves a balance by ID.
func (r *BalanceRepository) GetByID(ctx context.Context, id string) (*domain.Balance, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+balanceColumns+" FROM balances WHERE id = $1", id)

	return scanBalance(row)
}

// GetByIDTx retrieves a balance inside the given transaction without locking.
func (r *BalanceRepository) GetByIDTx(ctx context.Context, tx usecase.Transaction, id string) (*domain.Balance, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx,
		"SELECT "+balanceColumns+" FROM balances WHERE id = $1", id)

	return scanBalance(row)
}

// GetByIDForUpdate retrieves a balance with a FOR UPDATE lock. The wait is
// bounded by the configured lock timeout; exceeding it returns
// domain.ErrLockTimeout, not an indefinite block.
func (r *BalanceRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Balance, error) {
	pgxTx := tx.(*Tx).PgxTx()

	// SET LOCAL scopes the timeout to this transaction.
	_, err := pgxTx.Exec(ctx,
		fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds()))
	if err != nil {
		return nil, mapError(err)
	}

	row := pgxTx.QueryRow(ctx,
		"SELECT "+balanceColumns+" FROM balances WHERE id = $1 FOR UPDATE", id)

	return scanBalance(row)
}

// Update persists amount and last token, incrementing version by one. The
// write is conditional on the version the caller read; a concurrent writer
// advancing it first surfaces as domain.ErrVersionConflict. Under a FOR
// UPDATE read the condition always holds.
func (r *BalanceRepository) Update(ctx context.Context, tx usecase.Transaction, balance *domain.Balance, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx,
		"UPDATE balances SET amount = $2, last_token = $3, version = version + 1, updated_at = $4 WHERE id = $1 AND version = $5",
		balance.ID,
		decimalToNumeric(balance.Amount),
		textOrNull(balance.LastToken),
		timeToPgTimestamptz(updatedAt),
		balance.Version,
	)
	if err != nil {
		return mapError(err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrVersionConflict
	}

	return nil
}

// UpdateIfVersion persists the amount only when the stored version still
// matches expectedVersion, returning the number of rows affected.
func (r *BalanceRepository) UpdateIfVersion(ctx context.Context, tx usecase.Transaction, id string, amount decimal.Decimal, expectedVersion int64, updatedAt time.Time) (int64, error) {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx,
		"UPDATE balances SET amount = $2, version = version + 1, updated_at = $3 WHERE id = $1 AND version = $4",
		id,
		decimalToNumeric(amount),
		timeToPgTimestamptz(updatedAt),
		expectedVersion,
	)
	if err != nil {
		return 0, mapError(err)
	}

	return tag.RowsAffected(), nil
}

func scanBalance(row pgx.Row) (*domain.Balance, error) {
	var (
		b         domain.Balance
		amount    pgtype.Numeric
		lastToken pgtype.Text
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(&b.ID, &amount, &b.Version, &lastToken, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBalanceNotFound
		}

		return nil, mapError(err)
	}

	b.Amount = numericToDecimal(amount)
	if lastToken.Valid {
		b.LastToken = &lastToken.String
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func textOrNull(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}

	return pgtype.Text{String: *s, Valid: true}
}
