package domain

import (
	"fmt"
	"strings"
	"time"
)

// CatalogItem is a sellable event with a finite ticket pool.
type CatalogItem struct {
	EventName string
	Location  string
	UnitPrice Money
	EventDate time.Time
	Quantity  int
}

// Validate checks a catalog item before it is seeded.
func (c *CatalogItem) Validate() error {
	if err := ValidateEventName(c.EventName); err != nil {
		return err
	}
	if !c.UnitPrice.IsPositive() {
		return fmt.Errorf("%w: price must be positive", ErrInvalidCatalogItem)
	}
	if c.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidCatalogItem)
	}
	if strings.TrimSpace(c.Location) == "" {
		return fmt.Errorf("%w: location is required", ErrInvalidCatalogItem)
	}
	return nil
}

// HasAvailable reports whether quantity tickets remain.
func (c *CatalogItem) HasAvailable(quantity int) bool {
	return c.Quantity >= quantity
}

// ValidateAdjust checks that applying delta keeps the pool non-negative.
func (c *CatalogItem) ValidateAdjust(delta int) error {
	if c.Quantity+delta < 0 {
		return ErrInsufficientInventory
	}
	return nil
}

// PriceFor returns unit price × quantity.
func (c *CatalogItem) PriceFor(quantity int) (Money, error) {
	return c.UnitPrice.Mul(quantity)
}
