package dto

import (
	"errors"
	"time"

	"github.com/iho/goticket/internal/domain"
)

// AccountResponse represents an account in API responses. Card data is
// never returned.
type AccountResponse struct {
	UserID    string    `json:"user_id"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		UserID:    a.UserID,
		Balance:   a.Balance.String(),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// BalanceResponse is returned after a deposit.
type BalanceResponse struct {
	UserID  string `json:"user_id"`
	Balance string `json:"balance"`
}

// CatalogItemResponse is one entry of the game schedule.
type CatalogItemResponse struct {
	EventName string    `json:"event_name"`
	Location  string    `json:"location"`
	UnitPrice string    `json:"unit_price"`
	EventDate time.Time `json:"event_date"`
	Remaining int       `json:"remaining"`
}

// CatalogItemFromDomain converts a catalog item to response.
func CatalogItemFromDomain(c *domain.CatalogItem) *CatalogItemResponse {
	return &CatalogItemResponse{
		EventName: c.EventName,
		Location:  c.Location,
		UnitPrice: c.UnitPrice.String(),
		EventDate: c.EventDate,
		Remaining: c.Quantity,
	}
}

// CatalogFromDomain converts the schedule to responses, keeping order.
func CatalogFromDomain(items []*domain.CatalogItem) []*CatalogItemResponse {
	result := make([]*CatalogItemResponse, len(items))
	for i, c := range items {
		result[i] = CatalogItemFromDomain(c)
	}
	return result
}

// HoldingResponse is one row of the caller's holdings.
type HoldingResponse struct {
	EventName string `json:"event_name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	TotalCost string `json:"total_cost"`
	CostBasis string `json:"cost_basis"`
}

// HoldingsFromDomain converts holding lines to responses, keeping order.
func HoldingsFromDomain(lines []domain.HoldingLine) []*HoldingResponse {
	result := make([]*HoldingResponse, len(lines))
	for i, l := range lines {
		result[i] = &HoldingResponse{
			EventName: l.EventName,
			UnitPrice: l.UnitPrice.String(),
			Quantity:  l.Quantity,
			TotalCost: l.TotalCost.String(),
			CostBasis: l.CostBasis.String(),
		}
	}
	return result
}

// ReceiptResponse represents a completed purchase or sale.
type ReceiptResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	UserID    string    `json:"user_id"`
	EventName string    `json:"event_name"`
	Quantity  int       `json:"quantity"`
	UnitPrice string    `json:"unit_price"`
	Total     string    `json:"total"`
	At        time.Time `json:"at"`
}

// ReceiptFromDomain converts domain receipt to response.
func ReceiptFromDomain(r *domain.Receipt) *ReceiptResponse {
	return &ReceiptResponse{
		ID:        r.ID,
		Kind:      string(r.Kind),
		UserID:    r.UserID,
		EventName: r.EventName,
		Quantity:  r.Quantity,
		UnitPrice: r.UnitPrice.String(),
		Total:     r.Total.String(),
		At:        r.At,
	}
}

// ErrorResponse represents an error in API responses. Kind, Stage and
// Compensated are set for failed exchanges.
type ErrorResponse struct {
	Error       string `json:"error"`
	Message     string `json:"message,omitempty"`
	Kind        string `json:"kind,omitempty"`
	Stage       string `json:"stage,omitempty"`
	Compensated bool   `json:"compensated,omitempty"`
}

// ErrorFromDomain builds an error response carrying the exchange taxonomy.
func ErrorFromDomain(message string, err error) ErrorResponse {
	resp := ErrorResponse{
		Error:   message,
		Message: err.Error(),
		Kind:    string(domain.KindOf(err)),
	}

	var exErr *domain.ExchangeError
	if errors.As(err, &exErr) {
		resp.Stage = string(exErr.Stage)
		resp.Compensated = exErr.Compensated
	}

	return resp
}
