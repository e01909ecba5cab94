package domain

import "time"

// Holding is a user's owned quantity of tickets for one event.
// A holding with zero quantity is deleted, never stored.
type Holding struct {
	UserID    string
	EventName string
	Quantity  int
	CostBasis Money
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateDecrement checks that quantity tickets can be removed.
func (h *Holding) ValidateDecrement(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if h.Quantity < quantity {
		return ErrInsufficientHolding
	}
	return nil
}

// ReleasedCost is the share of the cost basis that leaves with quantity tickets.
func (h *Holding) ReleasedCost(quantity int) Money {
	return h.CostBasis.ProRata(quantity, h.Quantity)
}

// HoldingLine is one row of a user's holdings listing.
type HoldingLine struct {
	EventName string
	UnitPrice Money
	Quantity  int
	TotalCost Money
	CostBasis Money
}
