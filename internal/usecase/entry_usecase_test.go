package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/gobalance/internal/domain"
	"github.com/iho/gobalance/internal/usecase"
	"github.com/iho/gobalance/internal/usecase/mocks"
)

func TestEntryUseCase_GetByToken(t *testing.T) {
	entryRepo := mocks.NewMockEntryRepository()
	entryRepo.GetByTokenFunc = func(ctx context.Context, token string) (*domain.Entry, error) {
		if token == "tok-1" {
			return &domain.Entry{ID: "e1", Token: "tok-1", Amount: decimal.NewFromInt(100)}, nil
		}
		return nil, errors.New("no rows")
	}

	uc := usecase.NewEntryUseCase(entryRepo)

	t.Run("existing token", func(t *testing.T) {
		entry, err := uc.GetByToken(context.Background(), "tok-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if entry.ID != "e1" {
			t.Errorf("expected entry e1, got %s", entry.ID)
		}
	})

	t.Run("empty token rejected", func(t *testing.T) {
		_, err := uc.GetByToken(context.Background(), "")
		if !errors.Is(err, domain.ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}
