package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateQuantity(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		wantErr  bool
	}{
		{"positive", 3, false},
		{"upper bound", MaxTicketsPerOrder, false},
		{"zero", 0, true},
		{"negative", -1, true},
		{"too many", MaxTicketsPerOrder + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuantity(tt.quantity)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateQuantity(%d) error = %v, wantErr %v", tt.quantity, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidQuantity) {
				t.Errorf("expected ErrInvalidQuantity, got %v", err)
			}
		})
	}
}

func TestValidateEventName(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		wantErr   bool
	}{
		{"valid", "GameA", false},
		{"with spaces inside", "Lakers vs Celtics", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"leading space", " GameA", true},
		{"too long", strings.Repeat("a", MaxEventNameLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEventName(tt.eventName)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEventName(%q) error = %v, wantErr %v", tt.eventName, err, tt.wantErr)
			}
		})
	}
}

func TestValidateCardNumber(t *testing.T) {
	tests := []struct {
		card    string
		wantErr bool
	}{
		{"4111111111111111", false},
		{"411111111111111", true},
		{"41111111111111112", true},
		{"4111-1111-1111-11", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.card, func(t *testing.T) {
			err := ValidateCardNumber(tt.card)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCardNumber(%q) error = %v, wantErr %v", tt.card, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDepositAmount(t *testing.T) {
	tests := []struct {
		amount  string
		wantErr bool
	}{
		{"1.00", false},
		{"999.00", false},
		{"50.25", false},
		{"0.99", true},
		{"999.01", true},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			err := ValidateDepositAmount(MustMoney(tt.amount))
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDepositAmount(%s) error = %v, wantErr %v", tt.amount, err, tt.wantErr)
			}
		})
	}
}

func TestValidateUserID(t *testing.T) {
	if err := ValidateUserID("user-1"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateUserID(" "); !errors.Is(err, ErrMissingUserID) {
		t.Errorf("expected ErrMissingUserID, got %v", err)
	}
}
