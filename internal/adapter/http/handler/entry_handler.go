package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gobalance/internal/adapter/http/dto"
	"github.com/iho/gobalance/internal/domain"
)

// EntryService defines the behavior needed by EntryHandler.
type EntryService interface {
	GetByToken(ctx context.Context, token string) (*domain.Entry, error)
}

// EntryHandler handles ledger entry HTTP requests.
type EntryHandler struct {
	entryUC EntryService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(entryUC EntryService) *EntryHandler {
	return &EntryHandler{entryUC: entryUC}
}

// GetByToken retrieves the entry recorded for an idempotency token.
func (h *EntryHandler) GetByToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "missing token", "")
		return
	}

	entry, err := h.entryUC.GetByToken(r.Context(), token)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get entry", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}
