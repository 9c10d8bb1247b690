package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobalance/internal/domain"
	"github.com/iho/gobalance/internal/usecase"
)

// MockBalanceRepository is a mock implementation of BalanceRepository.
type MockBalanceRepository struct {
	mu       sync.RWMutex
	balances map[string]*domain.Balance

	CreateFunc           func(ctx context.Context, balance *domain.Balance) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Balance, error)
	GetByIDTxFunc        func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Balance, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Balance, error)
	UpdateFunc           func(ctx context.Context, tx usecase.Transaction, balance *domain.Balance, updatedAt time.Time) error
	UpdateIfVersionFunc  func(ctx context.Context, tx usecase.Transaction, id string, amount decimal.Decimal, expectedVersion int64, updatedAt time.Time) (int64, error)
}

func NewMockBalanceRepository() *MockBalanceRepository {
	return &MockBalanceRepository{
		balances: make(map[string]*domain.Balance),
	}
}

func (m *MockBalanceRepository) Create(ctx context.Context, balance *domain.Balance) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, balance)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[balance.ID] = balance
	return nil
}

func (m *MockBalanceRepository) GetByID(ctx context.Context, id string) (*domain.Balance, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if b, ok := m.balances[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, domain.ErrBalanceNotFound
}

func (m *MockBalanceRepository) GetByIDTx(ctx context.Context, tx usecase.Transaction, id string) (*domain.Balance, error) {
	if m.GetByIDTxFunc != nil {
		return m.GetByIDTxFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockBalanceRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Balance, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockBalanceRepository) Update(ctx context.Context, tx usecase.Transaction, balance *domain.Balance, updatedAt time.Time) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.balances[balance.ID]
	if !ok {
		return domain.ErrBalanceNotFound
	}
	if stored.Version != balance.Version {
		return domain.ErrVersionConflict
	}
	stored.Amount = balance.Amount
	stored.LastToken = balance.LastToken
	stored.Version++
	stored.UpdatedAt = updatedAt
	return nil
}

func (m *MockBalanceRepository) UpdateIfVersion(ctx context.Context, tx usecase.Transaction, id string, amount decimal.Decimal, expectedVersion int64, updatedAt time.Time) (int64, error) {
	if m.UpdateIfVersionFunc != nil {
		return m.UpdateIfVersionFunc(ctx, tx, id, amount, expectedVersion, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.balances[id]
	if !ok || stored.Version != expectedVersion {
		return 0, nil
	}
	stored.Amount = amount
	stored.Version++
	stored.UpdatedAt = updatedAt
	return 1, nil
}

// MockEntryRepository is a mock implementation of EntryRepository.
type MockEntryRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.Entry

	CreateFunc        func(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error
	ExistsByTokenFunc func(ctx context.Context, tx usecase.Transaction, token string) (bool, error)
	GetByTokenFunc    func(ctx context.Context, token string) (*domain.Entry, error)
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{
		entries: make(map[string]*domain.Entry),
	}
}

func (m *MockEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[entry.Token]; ok {
		return domain.ErrDuplicateToken
	}
	m.entries[entry.Token] = entry
	return nil
}

func (m *MockEntryRepository) ExistsByToken(ctx context.Context, tx usecase.Transaction, token string) (bool, error) {
	if m.ExistsByTokenFunc != nil {
		return m.ExistsByTokenFunc(ctx, tx, token)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[token]
	return ok, nil
}

func (m *MockEntryRepository) GetByToken(ctx context.Context, token string) (*domain.Entry, error) {
	if m.GetByTokenFunc != nil {
		return m.GetByTokenFunc(ctx, token)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[token]; ok {
		return e, nil
	}
	return nil, domain.ErrEntryNotFound
}

// Len returns the number of stored entries.
func (m *MockEntryRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	m.RolledBack = true
	return nil
}
