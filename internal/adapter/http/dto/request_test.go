package dto

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/goticket/internal/domain"
	"github.com/iho/goticket/internal/usecase"
)

func TestDepositRequest_ToUseCaseInput(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		want    domain.Money
		wantErr error
	}{
		{name: "whole amount", amount: "50", want: 5000},
		{name: "cents", amount: "12.34", want: 1234},
		{name: "sub-cent rejected", amount: "1.005", wantErr: domain.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &DepositRequest{CardNumber: "4111111111111111", Amount: decimal.RequireFromString(tt.amount)}

			got, err := req.ToUseCaseInput("alice")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			want := usecase.DepositInput{UserID: "alice", CardNumber: "4111111111111111", Amount: tt.want}
			if got != want {
				t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestExchangeRequest(t *testing.T) {
	req := &ExchangeRequest{EventName: "GameA", Quantity: 3}
	if err := req.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := usecase.ExchangeInput{UserID: "alice", EventName: "GameA", Quantity: 3}
	if got := req.ToUseCaseInput("alice"); got != want {
		t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, want)
	}

	empty := &ExchangeRequest{Quantity: 1}
	if err := empty.Validate(); !errors.Is(err, domain.ErrInvalidEventName) {
		t.Fatalf("expected ErrInvalidEventName, got %v", err)
	}
}

func TestOpenAccountRequest_ToUseCaseInput(t *testing.T) {
	req := &OpenAccountRequest{CardNumber: "4111111111111111"}
	want := usecase.OpenAccountInput{UserID: "alice", CardNumber: "4111111111111111"}
	if got := req.ToUseCaseInput("alice"); got != want {
		t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, want)
	}
}
