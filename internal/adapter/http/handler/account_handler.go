package handler

import (
	"context"
	"net/http"

	"github.com/iho/goticket/internal/adapter/http/dto"
	"github.com/iho/goticket/internal/domain"
	"github.com/iho/goticket/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	OpenAccount(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, userID string) (*domain.Account, error)
	Deposit(ctx context.Context, input usecase.DepositInput) (domain.Money, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	ledger AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(ledger AccountService) *AccountHandler {
	return &AccountHandler{ledger: ledger}
}

// Open registers the caller's account.
func (h *AccountHandler) Open(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r)
	if !ok {
		return
	}

	var req dto.OpenAccountRequest
	if !decode(w, r, &req) {
		return
	}

	account, err := h.ledger.OpenAccount(r.Context(), req.ToUseCaseInput(user))
	if err != nil {
		writeDomainError(w, "failed to open account", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get returns the caller's account and balance.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r)
	if !ok {
		return
	}

	account, err := h.ledger.GetAccount(r.Context(), user)
	if err != nil {
		writeDomainError(w, "failed to get account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Deposit credits the caller's balance after checking the card on file.
func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	user, ok := userID(w, r)
	if !ok {
		return
	}

	var req dto.DepositRequest
	if !decode(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput(user)
	if err != nil {
		writeDomainError(w, "invalid deposit", err)
		return
	}

	balance, err := h.ledger.Deposit(r.Context(), input)
	if err != nil {
		writeDomainError(w, "deposit failed", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{UserID: user, Balance: balance.String()})
}
