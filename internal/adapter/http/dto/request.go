package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/gobalance/internal/usecase"
)

// CreateBalanceRequest represents a request to create a balance.
type CreateBalanceRequest struct {
	InitialAmount decimal.Decimal `json:"initial_amount"`
}

// ApplyRequest represents a request to mutate a balance. The idempotency
// token travels in the Idempotency-Key header, not the body.
type ApplyRequest struct {
	Amount           decimal.Decimal `json:"amount"`
	Strategy         string          `json:"strategy,omitempty"`
	Guard            string          `json:"guard,omitempty"`
	TransactionToken string          `json:"transaction_token,omitempty"`
}

// ToUseCaseInput converts to use case input. balanceID comes from the URL
// and token from the Idempotency-Key header.
func (r *ApplyRequest) ToUseCaseInput(balanceID, token string) (usecase.ApplyInput, error) {
	input := usecase.ApplyInput{
		BalanceID:        balanceID,
		Amount:           r.Amount,
		Token:            token,
		TransactionToken: r.TransactionToken,
	}

	if r.Strategy != "" {
		strategy, err := usecase.ParseStrategy(r.Strategy)
		if err != nil {
			return usecase.ApplyInput{}, err
		}

		input.Strategy = strategy
	}

	if r.Guard != "" {
		guard, err := usecase.ParseGuardMode(r.Guard)
		if err != nil {
			return usecase.ApplyInput{}, err
		}

		input.Guard = guard
	}

	return input, nil
}
