package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iho/gobalance/internal/adapter/http/dto"
	"github.com/iho/gobalance/internal/domain"
	"github.com/iho/gobalance/internal/usecase"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	var exhausted *usecase.RetriesExhaustedError
	if errors.As(err, &exhausted) {
		return http.StatusConflict
	}

	switch {
	case errors.Is(err, domain.ErrBalanceNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrUnknownStrategy):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrUnknownGuardMode):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
