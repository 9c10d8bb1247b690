package domain

import "errors"

var (
	// Balance errors
	ErrBalanceNotFound   = errors.New("balance not found")
	ErrEntryNotFound     = errors.New("entry not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be a non-zero decimal")
	ErrInvalidToken      = errors.New("idempotency token must not be empty")

	// Concurrency errors, retryable by the coordinator
	ErrVersionConflict     = errors.New("balance version conflict")
	ErrLockTimeout         = errors.New("lock acquisition timed out")
	ErrConstraintViolation = errors.New("storage constraint violation")

	// ErrDuplicateToken signals a uniqueness hit on an idempotency or
	// transaction token. It is terminal: the request was already applied.
	ErrDuplicateToken = errors.New("token already applied")
)
