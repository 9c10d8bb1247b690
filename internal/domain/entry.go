package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry is an immutable record of one accepted balance mutation. Entries are
// keyed by the caller-supplied idempotency token; there is no back-reference
// from the balance, the token is the join key.
type Entry struct {
	ID        string
	Amount    decimal.Decimal
	Token     string
	CreatedAt time.Time
}

// NewEntry creates a ledger entry. The amount must be non-zero and the token
// must be present.
func NewEntry(id string, amount decimal.Decimal, token string, now time.Time) (*Entry, error) {
	if amount.IsZero() {
		return nil, ErrInvalidAmount
	}

	if token == "" {
		return nil, ErrInvalidToken
	}

	return &Entry{
		ID:        id,
		Amount:    amount,
		Token:     token,
		CreatedAt: now,
	}, nil
}
