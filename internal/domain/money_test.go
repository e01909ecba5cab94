package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		input     string
		expected  Money
		expectErr error
	}{
		{input: "25.00", expected: 2500},
		{input: "25", expected: 2500},
		{input: "0.1", expected: 10},
		{input: "999.99", expected: 99999},
		{input: "-3.50", expected: -350},
		{input: "1.005", expectErr: ErrInvalidAmount},
		{input: "abc", expectErr: ErrInvalidAmount},
		{input: "1000000000000000000000", expectErr: ErrAmountOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMoney(tt.input)
			if tt.expectErr != nil {
				if !errors.Is(err, tt.expectErr) {
					t.Fatalf("expected %v, got %v", tt.expectErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %d cents, got %d", tt.expected, got)
			}
		})
	}
}

func TestMoney_String(t *testing.T) {
	if got := Money(7500).String(); got != "75.00" {
		t.Errorf("expected 75.00, got %s", got)
	}
	if got := Money(5).String(); got != "0.05" {
		t.Errorf("expected 0.05, got %s", got)
	}
	if !Money(2500).Decimal().Equal(decimal.RequireFromString("25")) {
		t.Errorf("expected decimal 25")
	}
}

func TestMoney_Mul(t *testing.T) {
	got, err := MustMoney("25.00").Mul(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != MustMoney("75.00") {
		t.Errorf("expected 75.00, got %s", got)
	}

	// 0.10 * 3 is exact in minor units, unlike binary floating point.
	got, _ = MustMoney("0.10").Mul(3)
	if got != MustMoney("0.30") {
		t.Errorf("expected 0.30, got %s", got)
	}

	if _, err := Money(math.MaxInt64 / 2).Mul(3); !errors.Is(err, ErrAmountOverflow) {
		t.Errorf("expected overflow, got %v", err)
	}
}

func TestMoney_Add(t *testing.T) {
	if _, err := Money(math.MaxInt64).Add(1); !errors.Is(err, ErrAmountOverflow) {
		t.Errorf("expected overflow, got %v", err)
	}
	sum, err := Money(100).Add(-40)
	if err != nil || sum != 60 {
		t.Errorf("expected 60, got %d (%v)", sum, err)
	}
}

func TestMoney_ProRata(t *testing.T) {
	basis := MustMoney("100.00")

	if got := basis.ProRata(1, 3); got != MustMoney("33.33") {
		t.Errorf("expected 33.33, got %s", got)
	}
	if got := basis.ProRata(3, 3); got != basis {
		t.Errorf("expected full basis, got %s", got)
	}
	if got := basis.ProRata(0, 3); got != 0 {
		t.Errorf("expected 0, got %s", got)
	}
}
