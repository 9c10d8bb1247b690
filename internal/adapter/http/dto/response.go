package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobalance/internal/domain"
)

// BalanceResponse represents a balance in API responses.
type BalanceResponse struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Version   int64           `json:"version"`
	LastToken *string         `json:"last_token,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BalanceFromDomain converts domain balance to response.
func BalanceFromDomain(b *domain.Balance) *BalanceResponse {
	return &BalanceResponse{
		ID:        b.ID,
		Amount:    b.Amount,
		Version:   b.Version,
		LastToken: b.LastToken,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Token     string          `json:"token"`
	CreatedAt time.Time       `json:"created_at"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:        e.ID,
		Amount:    e.Amount,
		Token:     e.Token,
		CreatedAt: e.CreatedAt,
	}
}

// ApplyResponse reports the outcome of a mutation request. Applied is false
// when the token was already consumed by an earlier request.
type ApplyResponse struct {
	Applied bool   `json:"applied"`
	Token   string `json:"token"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
