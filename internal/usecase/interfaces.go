package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobalance/internal/domain"
)

// BalanceRepository defines data access for balances.
type BalanceRepository interface {
	Create(ctx context.Context, balance *domain.Balance) error
	GetByID(ctx context.Context, id string) (*domain.Balance, error)
	// GetByIDTx reads the balance inside the given transaction without locking.
	GetByIDTx(ctx context.Context, tx Transaction, id string) (*domain.Balance, error)
	// GetByIDForUpdate reads the balance with a FOR UPDATE lock, returning
	// domain.ErrLockTimeout when the lock cannot be acquired in time.
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Balance, error)
	// Update persists amount and last token, incrementing version by one. The
	// write is conditional on balance.Version still matching the stored row;
	// domain.ErrVersionConflict reports a concurrent writer. A unique index
	// on the token column maps to domain.ErrDuplicateToken.
	Update(ctx context.Context, tx Transaction, balance *domain.Balance, updatedAt time.Time) error
	// UpdateIfVersion persists the amount only when the stored version still
	// matches expectedVersion, returning the number of rows affected.
	UpdateIfVersion(ctx context.Context, tx Transaction, id string, amount decimal.Decimal, expectedVersion int64, updatedAt time.Time) (int64, error)
}

// EntryRepository defines data access for ledger entries.
type EntryRepository interface {
	// Create inserts an entry; the unique token index maps to
	// domain.ErrDuplicateToken.
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	ExistsByToken(ctx context.Context, tx Transaction, token string) (bool, error)
	GetByToken(ctx context.Context, token string) (*domain.Entry, error)
}

// TokenCache is a non-authoritative fast path for duplicate detection. The
// unique token index remains the source of truth; cache failures must never
// fail an apply.
type TokenCache interface {
	Seen(ctx context.Context, token string) (bool, error)
	MarkApplied(ctx context.Context, token string, ttl time.Duration) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// MetricsRecorder records apply outcomes and retries.
type MetricsRecorder interface {
	ObserveApply(strategy, outcome string, duration time.Duration)
	IncRetry(strategy string)
}
