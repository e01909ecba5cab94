package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Validation constants
const (
	MaxEventNameLength = 100
	MaxUserIDLength    = 64
	CardNumberLength   = 16
	MaxTicketsPerOrder = 10000
)

// Deposit bounds carried over from the storefront's deposit policy.
var (
	MinDeposit = MustMoney("1.00")
	MaxDeposit = MustMoney("999.00")
)

var cardNumberRegex = regexp.MustCompile(`^[0-9]{16}$`)

// ValidateQuantity validates a ticket quantity for purchase or sale.
func ValidateQuantity(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > MaxTicketsPerOrder {
		return fmt.Errorf("%w: at most %d tickets per order", ErrInvalidQuantity, MaxTicketsPerOrder)
	}
	return nil
}

// ValidateEventName validates a catalog event name.
func ValidateEventName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidEventName)
	}
	if trimmed != name {
		return fmt.Errorf("%w: name has surrounding whitespace", ErrInvalidEventName)
	}
	if len(name) > MaxEventNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidEventName, MaxEventNameLength)
	}
	return nil
}

// ValidateUserID validates the identity supplied by the identity layer.
func ValidateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrMissingUserID
	}
	if len(userID) > MaxUserIDLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrMissingUserID, MaxUserIDLength)
	}
	return nil
}

// ValidateCardNumber checks the card is exactly 16 digits.
func ValidateCardNumber(card string) error {
	if !cardNumberRegex.MatchString(card) {
		return ErrInvalidCardNumber
	}
	return nil
}

// ValidateDepositAmount checks a deposit lies within [MinDeposit, MaxDeposit].
func ValidateDepositAmount(amount Money) error {
	if amount < MinDeposit || amount > MaxDeposit {
		return ErrDepositOutOfRange
	}
	return nil
}
