package usecase

import (
	"context"

	"github.com/iho/gobalance/internal/domain"
)

// EntryUseCase handles ledger entry lookups.
type EntryUseCase struct {
	entryRepo EntryRepository
}

// NewEntryUseCase creates a new EntryUseCase.
func NewEntryUseCase(entryRepo EntryRepository) *EntryUseCase {
	return &EntryUseCase{entryRepo: entryRepo}
}

// GetByToken retrieves the entry recorded for an idempotency token.
func (uc *EntryUseCase) GetByToken(ctx context.Context, token string) (*domain.Entry, error) {
	if token == "" {
		return nil, domain.ErrInvalidToken
	}

	return uc.entryRepo.GetByToken(ctx, token)
}
