package dto

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/goticket/internal/domain"
	"github.com/iho/goticket/internal/usecase"
)

// OpenAccountRequest registers the caller's account with a payment card.
type OpenAccountRequest struct {
	CardNumber string `json:"card_number"`
}

// ToUseCaseInput converts to use case input.
func (r *OpenAccountRequest) ToUseCaseInput(userID string) usecase.OpenAccountInput {
	return usecase.OpenAccountInput{
		UserID:     userID,
		CardNumber: r.CardNumber,
	}
}

// DepositRequest tops up the caller's balance from the card on file.
type DepositRequest struct {
	CardNumber string          `json:"card_number"`
	Amount     decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input, rejecting sub-cent amounts.
func (r *DepositRequest) ToUseCaseInput(userID string) (usecase.DepositInput, error) {
	amount, err := domain.MoneyFromDecimal(r.Amount)
	if err != nil {
		return usecase.DepositInput{}, err
	}

	return usecase.DepositInput{
		UserID:     userID,
		CardNumber: r.CardNumber,
		Amount:     amount,
	}, nil
}

// ExchangeRequest is the body of a purchase or sale.
type ExchangeRequest struct {
	EventName string `json:"event_name"`
	Quantity  int    `json:"quantity"`
}

// ToUseCaseInput converts to use case input.
func (r *ExchangeRequest) ToUseCaseInput(userID string) usecase.ExchangeInput {
	return usecase.ExchangeInput{
		UserID:    userID,
		EventName: r.EventName,
		Quantity:  r.Quantity,
	}
}

// Validate rejects requests that cannot name an event.
func (r *ExchangeRequest) Validate() error {
	if r.EventName == "" {
		return fmt.Errorf("%w: event_name is required", domain.ErrInvalidEventName)
	}
	return nil
}
