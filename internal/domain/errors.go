package domain

import (
	"errors"
	"fmt"
)

var (
	// Validation errors
	ErrInvalidQuantity       = errors.New("quantity must be positive")
	ErrInvalidAmount         = errors.New("invalid monetary amount")
	ErrAmountOverflow        = errors.New("monetary amount overflows")
	ErrUnknownEvent          = errors.New("unknown event")
	ErrInsufficientInventory = errors.New("insufficient ticket inventory")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInsufficientHolding   = errors.New("insufficient tickets held")

	// Account errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidCardNumber  = errors.New("card number must be 16 digits")
	ErrCardMismatch       = errors.New("card number does not match the card on file")
	ErrDepositOutOfRange  = errors.New("deposit must be between 1.00 and 999.00")
	ErrMissingUserID      = errors.New("missing user id")
	ErrInvalidEventName   = errors.New("invalid event name")
	ErrInvalidCatalogItem = errors.New("invalid catalog item")
	ErrHoldingNotFound    = errors.New("holding not found")

	// Tokenizer errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExists  = errors.New("token already issued")
	ErrDecryption   = errors.New("stored card could not be decrypted")
	ErrCipherInit   = errors.New("card cipher initialization failed")

	// Infrastructure and pipeline errors
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrCompensationFailed = errors.New("compensation failed")
)

// ErrorKind classifies exchange failures for callers.
type ErrorKind string

const (
	KindValidation       ErrorKind = "validation"
	KindRaceCompensated  ErrorKind = "race_compensated"
	KindCrypto           ErrorKind = "crypto"
	KindStoreUnavailable ErrorKind = "store_unavailable"
	KindFatal            ErrorKind = "fatal"
	KindUnknown          ErrorKind = "unknown"
)

// ExchangeError reports where a Purchase or Sell pipeline stopped.
type ExchangeError struct {
	Operation   OperationKind
	Stage       Stage
	Err         error
	Compensated bool
}

func (e *ExchangeError) Error() string {
	if e.Compensated {
		return fmt.Sprintf("%s failed at %s (compensated): %v", e.Operation, e.Stage, e.Err)
	}
	return fmt.Sprintf("%s failed at %s: %v", e.Operation, e.Stage, e.Err)
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}

// KindOf maps an error into the exchange error taxonomy.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}

	if errors.Is(err, ErrCompensationFailed) {
		return KindFatal
	}

	var exErr *ExchangeError
	if errors.As(err, &exErr) && exErr.Compensated && !errors.Is(err, ErrStoreUnavailable) {
		return KindRaceCompensated
	}

	switch {
	case errors.Is(err, ErrCipherInit), errors.Is(err, ErrDecryption):
		return KindCrypto
	case errors.Is(err, ErrStoreUnavailable):
		return KindStoreUnavailable
	case errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrAmountOverflow),
		errors.Is(err, ErrUnknownEvent),
		errors.Is(err, ErrInsufficientInventory),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrInsufficientHolding),
		errors.Is(err, ErrAccountNotFound),
		errors.Is(err, ErrAccountExists),
		errors.Is(err, ErrInvalidCardNumber),
		errors.Is(err, ErrCardMismatch),
		errors.Is(err, ErrDepositOutOfRange),
		errors.Is(err, ErrMissingUserID),
		errors.Is(err, ErrInvalidEventName),
		errors.Is(err, ErrInvalidToken):
		return KindValidation
	default:
		return KindUnknown
	}
}
