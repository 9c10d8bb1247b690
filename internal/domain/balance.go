package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is the mutable monetary total guarded by concurrency control.
type Balance struct {
	ID        string
	Amount    decimal.Decimal
	Version   int64
	LastToken *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBalance creates a balance with an initial non-negative amount at version 0.
func NewBalance(id string, initial decimal.Decimal, now time.Time) (*Balance, error) {
	if initial.IsNegative() {
		return nil, ErrInvalidAmount
	}

	return &Balance{
		ID:        id,
		Amount:    initial,
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ApplyDelta adds amount to the balance. Positive amounts credit, negative
// amounts debit. The balance is left unchanged on error.
func (b *Balance) ApplyDelta(amount decimal.Decimal) error {
	if amount.IsZero() {
		return ErrInvalidAmount
	}

	newAmount := b.Amount.Add(amount)
	if newAmount.IsNegative() {
		return ErrInsufficientFunds
	}

	b.Amount = newAmount

	return nil
}

// StampToken records the transaction token on the balance. The token column
// carries a unique index, so a second writer stamping the same token fails at
// persist time.
func (b *Balance) StampToken(token string) {
	b.LastToken = &token
}
