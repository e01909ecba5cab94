package domain

import (
	"errors"
	"testing"
)

func TestAccount_ValidateDebit(t *testing.T) {
	tests := []struct {
		name        string
		balance     Money
		debitAmount Money
		expectErr   error
	}{
		{
			name:        "debit less than balance",
			balance:     MustMoney("100.00"),
			debitAmount: MustMoney("50.00"),
		},
		{
			name:        "debit exact balance",
			balance:     MustMoney("100.00"),
			debitAmount: MustMoney("100.00"),
		},
		{
			name:        "debit more than balance",
			balance:     MustMoney("100.00"),
			debitAmount: MustMoney("100.01"),
			expectErr:   ErrInsufficientFunds,
		},
		{
			name:        "zero debit",
			balance:     MustMoney("100.00"),
			debitAmount: 0,
			expectErr:   ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &Account{Balance: tt.balance}

			err := acc.ValidateDebit(tt.debitAmount)

			if tt.expectErr == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.expectErr != nil && !errors.Is(err, tt.expectErr) {
				t.Errorf("expected %v, got %v", tt.expectErr, err)
			}
		})
	}
}

func TestAccount_ValidateCredit(t *testing.T) {
	acc := &Account{Balance: MustMoney("10.00")}

	if err := acc.ValidateCredit(MustMoney("5.00")); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := acc.ValidateCredit(0); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}

	full := &Account{Balance: Money(1<<63 - 1)}
	if err := full.ValidateCredit(1); !errors.Is(err, ErrAmountOverflow) {
		t.Errorf("expected ErrAmountOverflow, got %v", err)
	}
}

func TestAccount_ApplyDebit(t *testing.T) {
	acc := &Account{Balance: MustMoney("100.00")}
	newBalance := acc.ApplyDebit(MustMoney("30.00"))

	if newBalance != MustMoney("70.00") {
		t.Errorf("expected balance 70.00, got %s", newBalance)
	}
}

func TestAccount_ApplyCredit(t *testing.T) {
	acc := &Account{Balance: MustMoney("100.00")}
	newBalance := acc.ApplyCredit(MustMoney("30.00"))

	if newBalance != MustMoney("130.00") {
		t.Errorf("expected balance 130.00, got %s", newBalance)
	}
}
