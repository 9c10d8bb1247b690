package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/gobalance/internal/adapter/http/dto"
	"github.com/iho/gobalance/internal/domain"
	"github.com/iho/gobalance/internal/usecase"
)

// idempotencyKeyHeader carries the caller-supplied token that makes a
// mutation request safe to resubmit.
const idempotencyKeyHeader = "Idempotency-Key"

// BalanceService defines the behavior needed by BalanceHandler.
type BalanceService interface {
	CreateBalance(ctx context.Context, initial decimal.Decimal) (*domain.Balance, error)
	GetBalance(ctx context.Context, id string) (*domain.Balance, error)
	Apply(ctx context.Context, input usecase.ApplyInput) (usecase.ApplyResult, error)
}

// BalanceHandler handles balance-related HTTP requests.
type BalanceHandler struct {
	balanceUC BalanceService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceUC BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceUC: balanceUC}
}

// Create creates a new balance.
func (h *BalanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	balance, err := h.balanceUC.CreateBalance(r.Context(), req.InitialAmount)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create balance", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.BalanceFromDomain(balance))
}

// Get retrieves a balance by ID.
func (h *BalanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing balance ID", "")
		return
	}

	balance, err := h.balanceUC.GetBalance(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(balance))
}

// Apply mutates a balance exactly once per idempotency token.
func (h *BalanceHandler) Apply(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing balance ID", "")
		return
	}

	token := r.Header.Get(idempotencyKeyHeader)
	if token == "" {
		writeError(w, http.StatusBadRequest, "missing Idempotency-Key header", "")
		return
	}

	var req dto.ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(id, token)
	if err != nil {
		writeError(w, mapDomainError(err), "invalid apply request", err.Error())
		return
	}

	result, err := h.balanceUC.Apply(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to apply mutation", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ApplyResponse{
		Applied: result.Applied,
		Token:   token,
	})
}
