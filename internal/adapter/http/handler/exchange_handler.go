package handler

import (
	"context"
	"net/http"

	"github.com/iho/goticket/internal/adapter/http/dto"
	"github.com/iho/goticket/internal/domain"
	"github.com/iho/goticket/internal/usecase"
)

// ExchangeService defines the behavior needed by ExchangeHandler.
type ExchangeService interface {
	Purchase(ctx context.Context, input usecase.ExchangeInput) (*domain.Receipt, error)
	Sell(ctx context.Context, input usecase.ExchangeInput) (*domain.Receipt, error)
}

// ExchangeHandler runs purchases and sales.
type ExchangeHandler struct {
	exchange ExchangeService
}

// NewExchangeHandler creates a new ExchangeHandler.
func NewExchangeHandler(exchange ExchangeService) *ExchangeHandler {
	return &ExchangeHandler{exchange: exchange}
}

// Purchase buys tickets for the caller.
func (h *ExchangeHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "purchase failed", h.exchange.Purchase)
}

// Sell sells the caller's tickets back.
func (h *ExchangeHandler) Sell(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "sale failed", h.exchange.Sell)
}

func (h *ExchangeHandler) run(
	w http.ResponseWriter,
	r *http.Request,
	message string,
	op func(context.Context, usecase.ExchangeInput) (*domain.Receipt, error),
) {
	user, ok := userID(w, r)
	if !ok {
		return
	}

	var req dto.ExchangeRequest
	if !decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeDomainError(w, message, err)
		return
	}

	receipt, err := op(r.Context(), req.ToUseCaseInput(user))
	if err != nil {
		writeDomainError(w, message, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ReceiptFromDomain(receipt))
}
