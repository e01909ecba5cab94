package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/goticket/internal/adapter/http/dto"
	"github.com/iho/goticket/internal/domain"
)

// CatalogService defines the behavior needed by CatalogHandler.
type CatalogService interface {
	ListCatalog(ctx context.Context) ([]*domain.CatalogItem, error)
	GetItem(ctx context.Context, eventName string) (*domain.CatalogItem, error)
	ListHoldings(ctx context.Context, userID string) ([]domain.HoldingLine, error)
}

// CatalogHandler serves the game schedule and the caller's holdings.
type CatalogHandler struct {
	inventory CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(inventory CatalogService) *CatalogHandler {
	return &CatalogHandler{inventory: inventory}
}

// List returns the schedule ordered by event date.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.ListCatalog(r.Context())
	if err != nil {
		writeDomainError(w, "failed to list catalog", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CatalogFromDomain(items))
}

// Get returns one event.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "event")
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing event name", "")
		return
	}

	item, err := h.inventory.GetItem(r.Context(), name)
	if err != nil {
		writeDomainError(w, "failed to get event", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CatalogItemFromDomain(item))
}

// Holdings lists the caller's tickets valued at the current price.
func (h *CatalogHandler) Holdings(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r)
	if !ok {
		return
	}

	lines, err := h.inventory.ListHoldings(r.Context(), user)
	if err != nil {
		writeDomainError(w, "failed to list holdings", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.HoldingsFromDomain(lines))
}
