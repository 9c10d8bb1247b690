package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gobalance/internal/domain"
)

// BalanceUseCase owns the idempotent mutation protocol: duplicate guard,
// concurrency controller and retry coordinator over one transactional store.
type BalanceUseCase struct {
	txManager       TransactionManager
	balanceRepo     BalanceRepository
	entryRepo       EntryRepository
	tokenCache      TokenCache
	idGen           IDGenerator
	metrics         MetricsRecorder
	retry           RetryConfig
	cacheTTL        time.Duration
	defaultStrategy Strategy
	defaultGuard    GuardMode
	logger          zerolog.Logger
}

// NewBalanceUseCase creates a new BalanceUseCase. tokenCache and metrics may
// be nil.
func NewBalanceUseCase(
	txManager TransactionManager,
	balanceRepo BalanceRepository,
	entryRepo EntryRepository,
	tokenCache TokenCache,
	idGen IDGenerator,
	metrics MetricsRecorder,
	retry RetryConfig,
	logger zerolog.Logger,
) *BalanceUseCase {
	return &BalanceUseCase{
		txManager:       txManager,
		balanceRepo:     balanceRepo,
		entryRepo:       entryRepo,
		tokenCache:      tokenCache,
		idGen:           idGen,
		metrics:         metrics,
		retry:           retry.withDefaults(),
		cacheTTL:        DefaultTokenCacheTTL,
		defaultStrategy: StrategyLock,
		defaultGuard:    GuardProbe,
		logger:          logger,
	}
}

// WithDefaults overrides the strategy and guard used when a request names
// neither.
func (uc *BalanceUseCase) WithDefaults(strategy Strategy, guard GuardMode) *BalanceUseCase {
	uc.defaultStrategy = strategy
	uc.defaultGuard = guard

	return uc
}

// WithCacheTTL overrides how long applied tokens stay in the token cache.
func (uc *BalanceUseCase) WithCacheTTL(ttl time.Duration) *BalanceUseCase {
	if ttl > 0 {
		uc.cacheTTL = ttl
	}

	return uc
}

// CreateBalance creates a balance with a non-negative initial amount.
func (uc *BalanceUseCase) CreateBalance(ctx context.Context, initial decimal.Decimal) (*domain.Balance, error) {
	balance, err := domain.NewBalance(uc.idGen.Generate(), initial, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	err = uc.balanceRepo.Create(ctx, balance)
	if err != nil {
		return nil, err
	}

	return balance, nil
}

// GetBalance retrieves a balance by ID.
func (uc *BalanceUseCase) GetBalance(ctx context.Context, id string) (*domain.Balance, error) {
	return uc.balanceRepo.GetByID(ctx, id)
}

// ApplyInput represents one mutation request.
type ApplyInput struct {
	BalanceID string
	Amount    decimal.Decimal
	// Token is the caller-supplied idempotency key, globally unique per
	// logical request.
	Token string
	// TransactionToken is stamped onto the balance under StrategyToken.
	// Defaults to Token when empty.
	TransactionToken string
	Strategy         Strategy
	Guard            GuardMode
}

// ApplyResult is the terminal outcome of an accepted apply call. A duplicate
// submission is a valid result, not an error.
type ApplyResult struct {
	Applied bool
}

// Apply mutates the balance by input.Amount exactly once for the given token.
// Retryable conflicts are re-attempted with a strategy-specific backoff; a
// request whose token was already applied returns Applied=false.
func (uc *BalanceUseCase) Apply(ctx context.Context, input ApplyInput) (ApplyResult, error) {
	start := time.Now()

	result, err := uc.apply(ctx, input)

	if uc.metrics != nil {
		outcome := "applied"

		switch {
		case err != nil:
			outcome = "error"
		case !result.Applied:
			outcome = "duplicate"
		}

		uc.metrics.ObserveApply(string(input.Strategy), outcome, time.Since(start))
	}

	return result, err
}

func (uc *BalanceUseCase) apply(ctx context.Context, input ApplyInput) (ApplyResult, error) {
	if input.Amount.IsZero() {
		return ApplyResult{}, domain.ErrInvalidAmount
	}

	if input.Token == "" {
		return ApplyResult{}, domain.ErrInvalidToken
	}

	if input.Strategy == "" {
		input.Strategy = uc.defaultStrategy
	}

	if input.Guard == "" {
		input.Guard = uc.defaultGuard
	}

	if input.Strategy == StrategyToken && input.TransactionToken == "" {
		input.TransactionToken = input.Token
	}

	if uc.tokenCache != nil {
		seen, err := uc.tokenCache.Seen(ctx, input.Token)
		if err != nil {
			uc.logger.Warn().Err(err).Str("token", input.Token).Msg("token cache lookup failed")
		} else if seen {
			return ApplyResult{Applied: false}, nil
		}
	}

	schedule := uc.retry.schedule(input.Strategy)

	var lastErr error
	for attempt := 0; attempt < uc.retry.MaxAttempts; attempt++ {
		result, err := uc.applyOnce(ctx, input)
		if err == nil {
			if result.Applied {
				uc.markApplied(ctx, input.Token)
			}

			return result, nil
		}

		if !isRetryable(err) {
			return ApplyResult{}, err
		}

		lastErr = err

		if uc.metrics != nil {
			uc.metrics.IncRetry(string(input.Strategy))
		}

		if attempt == uc.retry.MaxAttempts-1 {
			break
		}

		delay := schedule.NextBackOff()

		uc.logger.Warn().
			Err(err).
			Str("balance_id", input.BalanceID).
			Int("attempt", attempt+1).
			Dur("backoff", delay).
			Msg("retryable apply failure")

		err = sleepCtx(ctx, delay)
		if err != nil {
			return ApplyResult{}, err
		}
	}

	return ApplyResult{}, &RetriesExhaustedError{
		Strategy: input.Strategy,
		Attempts: uc.retry.MaxAttempts,
		Err:      lastErr,
	}
}

// applyOnce runs one attempt as a single unit of work: guard, controller,
// entry, commit. Any error rolls the whole attempt back.
func (uc *BalanceUseCase) applyOnce(ctx context.Context, input ApplyInput) (ApplyResult, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return ApplyResult{}, err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()

	if input.Guard == GuardInsertFirst {
		applied, err := uc.insertEntry(ctx, tx, input, now)
		if err != nil {
			return ApplyResult{}, err
		}

		if !applied {
			return ApplyResult{Applied: false}, nil
		}
	} else {
		exists, err := uc.entryRepo.ExistsByToken(ctx, tx, input.Token)
		if err != nil {
			return ApplyResult{}, err
		}

		if exists {
			return ApplyResult{Applied: false}, nil
		}
	}

	err = uc.mutateBalance(ctx, tx, input, now)
	if errors.Is(err, domain.ErrDuplicateToken) {
		// The transaction token was stamped by a concurrent or earlier
		// request; the deferred rollback discards this attempt's entry.
		return ApplyResult{Applied: false}, nil
	}

	if err != nil {
		return ApplyResult{}, err
	}

	if input.Guard == GuardProbe {
		applied, err := uc.insertEntry(ctx, tx, input, now)
		if err != nil {
			return ApplyResult{}, err
		}

		// A concurrent duplicate slipped past the probe; the unique token
		// index is the backstop.
		if !applied {
			return ApplyResult{Applied: false}, nil
		}
	}

	err = tx.Commit(ctx)
	if err != nil {
		return ApplyResult{}, err
	}

	return ApplyResult{Applied: true}, nil
}

// mutateBalance is the concurrency controller: obtain access to the balance,
// validate the non-negativity invariant against the row read inside the
// guarded section, persist.
func (uc *BalanceUseCase) mutateBalance(ctx context.Context, tx Transaction, input ApplyInput, now time.Time) error {
	switch input.Strategy {
	case StrategyOptimistic:
		balance, err := uc.balanceRepo.GetByIDTx(ctx, tx, input.BalanceID)
		if err != nil {
			return err
		}

		err = balance.ApplyDelta(input.Amount)
		if err != nil {
			return err
		}

		rows, err := uc.balanceRepo.UpdateIfVersion(ctx, tx, input.BalanceID, balance.Amount, balance.Version, now)
		if err != nil {
			return err
		}

		if rows == 0 {
			return domain.ErrVersionConflict
		}

		return nil

	case StrategyToken:
		balance, err := uc.balanceRepo.GetByIDTx(ctx, tx, input.BalanceID)
		if err != nil {
			return err
		}

		err = balance.ApplyDelta(input.Amount)
		if err != nil {
			return err
		}

		balance.StampToken(input.TransactionToken)

		return uc.balanceRepo.Update(ctx, tx, balance, now)

	default:
		balance, err := uc.balanceRepo.GetByIDForUpdate(ctx, tx, input.BalanceID)
		if err != nil {
			return err
		}

		err = balance.ApplyDelta(input.Amount)
		if err != nil {
			return err
		}

		return uc.balanceRepo.Update(ctx, tx, balance, now)
	}
}

func (uc *BalanceUseCase) insertEntry(ctx context.Context, tx Transaction, input ApplyInput, now time.Time) (bool, error) {
	entry, err := domain.NewEntry(uc.idGen.Generate(), input.Amount, input.Token, now)
	if err != nil {
		return false, err
	}

	err = uc.entryRepo.Create(ctx, tx, entry)
	if errors.Is(err, domain.ErrDuplicateToken) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}

func (uc *BalanceUseCase) markApplied(ctx context.Context, token string) {
	if uc.tokenCache == nil {
		return
	}

	err := uc.tokenCache.MarkApplied(ctx, token, uc.cacheTTL)
	if err != nil {
		uc.logger.Warn().Err(err).Str("token", token).Msg("token cache write failed")
	}
}
