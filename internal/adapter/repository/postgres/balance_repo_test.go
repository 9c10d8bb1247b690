package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/iho/gobalance/internal/domain"
	"github.com/iho/gobalance/internal/usecase"
)

func beginTx(t *testing.T, mockPool pgxmock.PgxPoolIface) usecase.Transaction {
	t.Helper()

	mockPool.ExpectBegin()

	tx, err := newTxManagerWithPool(mockPool).Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	return tx
}

func TestBalanceRepository_GetByIDTx(t *testing.T) {
	mockPool := newMockPool(t)
	tx := beginTx(t, mockPool)

	now := time.Now().UTC()
	mockPool.ExpectQuery("SELECT (.+) FROM balances WHERE id = \\$1").
		WithArgs("bal-1").
		WillReturnRows(pgxmock.NewRows(
			[]string{"id", "amount", "version", "last_token", "created_at", "updated_at"}).
			AddRow("bal-1", "1000.50", int64(3), nil, now, now))

	repo := NewBalanceRepository(nil, time.Second)

	balance, err := repo.GetByIDTx(context.Background(), tx, "bal-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !balance.Amount.Equal(decimal.RequireFromString("1000.50")) {
		t.Errorf("expected amount 1000.50, got %s", balance.Amount)
	}

	if balance.Version != 3 {
		t.Errorf("expected version 3, got %d", balance.Version)
	}

	if balance.LastToken != nil {
		t.Errorf("expected nil last token, got %v", *balance.LastToken)
	}

	assertExpectations(t, mockPool)
}

func TestBalanceRepository_GetByIDTx_NotFound(t *testing.T) {
	mockPool := newMockPool(t)
	tx := beginTx(t, mockPool)

	mockPool.ExpectQuery("SELECT (.+) FROM balances WHERE id = \\$1").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(
			[]string{"id", "amount", "version", "last_token", "created_at", "updated_at"}))

	repo := NewBalanceRepository(nil, time.Second)

	_, err := repo.GetByIDTx(context.Background(), tx, "missing")
	if !errors.Is(err, domain.ErrBalanceNotFound) {
		t.Errorf("expected ErrBalanceNotFound, got %v", err)
	}
}

func TestBalanceRepository_GetByIDForUpdate_LockTimeout(t *testing.T) {
	mockPool := newMockPool(t)
	tx := beginTx(t, mockPool)

	mockPool.ExpectExec("SET LOCAL lock_timeout").
		WillReturnResult(pgxmock.NewResult("SET", 0))
	mockPool.ExpectQuery("SELECT (.+) FOR UPDATE").
		WithArgs("bal-1").
		WillReturnError(&pgconn.PgError{Code: pgErrLockNotAvailable})

	repo := NewBalanceRepository(nil, 200*time.Millisecond)

	_, err := repo.GetByIDForUpdate(context.Background(), tx, "bal-1")
	if !errors.Is(err, domain.ErrLockTimeout) {
		t.Errorf("expected ErrLockTimeout, got %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestBalanceRepository_UpdateIfVersion_Conflict(t *testing.T) {
	mockPool := newMockPool(t)
	tx := beginTx(t, mockPool)

	// Stale version: the conditional write affects zero rows.
	mockPool.ExpectExec("UPDATE balances SET amount").
		WithArgs("bal-1", pgxmock.AnyArg(), pgxmock.AnyArg(), int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewBalanceRepository(nil, time.Second)

	rows, err := repo.UpdateIfVersion(context.Background(), tx, "bal-1",
		decimal.NewFromInt(100), 7, time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rows != 0 {
		t.Errorf("expected 0 rows affected, got %d", rows)
	}

	assertExpectations(t, mockPool)
}

func TestBalanceRepository_Update_DuplicateToken(t *testing.T) {
	mockPool := newMockPool(t)
	tx := beginTx(t, mockPool)

	mockPool.ExpectExec("UPDATE balances SET amount").
		WithArgs("bal-1", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), int64(0)).
		WillReturnError(&pgconn.PgError{
			Code:           pgErrUniqueViolation,
			ConstraintName: constraintBalanceToken,
		})

	repo := NewBalanceRepository(nil, time.Second)

	token := "txtok-1"
	err := repo.Update(context.Background(), tx, &domain.Balance{
		ID:        "bal-1",
		Amount:    decimal.NewFromInt(100),
		LastToken: &token,
	}, time.Now().UTC())
	if !errors.Is(err, domain.ErrDuplicateToken) {
		t.Errorf("expected ErrDuplicateToken, got %v", err)
	}
}

func TestBalanceRepository_Update_StaleVersion(t *testing.T) {
	mockPool := newMockPool(t)
	tx := beginTx(t, mockPool)

	// Another writer advanced the row since the read.
	mockPool.ExpectExec("UPDATE balances SET amount").
		WithArgs("bal-1", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewBalanceRepository(nil, time.Second)

	err := repo.Update(context.Background(), tx, &domain.Balance{
		ID:      "bal-1",
		Amount:  decimal.NewFromInt(100),
		Version: 3,
	}, time.Now().UTC())
	if !errors.Is(err, domain.ErrVersionConflict) {
		t.Errorf("expected ErrVersionConflict, got %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestEntryRepository_Create_DuplicateToken(t *testing.T) {
	mockPool := newMockPool(t)
	tx := beginTx(t, mockPool)

	mockPool.ExpectExec("INSERT INTO entries").
		WithArgs("e-1", pgxmock.AnyArg(), "tok-1", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{
			Code:           pgErrUniqueViolation,
			ConstraintName: constraintEntryToken,
		})

	repo := NewEntryRepository(nil)

	err := repo.Create(context.Background(), tx, &domain.Entry{
		ID:        "e-1",
		Amount:    decimal.NewFromInt(100),
		Token:     "tok-1",
		CreatedAt: time.Now().UTC(),
	})
	if !errors.Is(err, domain.ErrDuplicateToken) {
		t.Errorf("expected ErrDuplicateToken, got %v", err)
	}
}

func TestEntryRepository_ExistsByToken(t *testing.T) {
	mockPool := newMockPool(t)
	tx := beginTx(t, mockPool)

	mockPool.ExpectQuery("SELECT EXISTS").
		WithArgs("tok-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	repo := NewEntryRepository(nil)

	exists, err := repo.ExistsByToken(context.Background(), tx, "tok-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !exists {
		t.Error("expected exists=true")
	}

	assertExpectations(t, mockPool)
}
