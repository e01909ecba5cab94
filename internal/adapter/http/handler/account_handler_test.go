package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iho/goticket/internal/adapter/http/dto"
	"github.com/iho/goticket/internal/domain"
	"github.com/iho/goticket/internal/usecase"
)

type accountServiceStub struct {
	openFn    func(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error)
	getFn     func(ctx context.Context, userID string) (*domain.Account, error)
	depositFn func(ctx context.Context, input usecase.DepositInput) (domain.Money, error)
}

func (s *accountServiceStub) OpenAccount(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
	return s.openFn(ctx, input)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, userID string) (*domain.Account, error) {
	return s.getFn(ctx, userID)
}

func (s *accountServiceStub) Deposit(ctx context.Context, input usecase.DepositInput) (domain.Money, error) {
	return s.depositFn(ctx, input)
}

func TestAccountHandler_Open(t *testing.T) {
	var captured usecase.OpenAccountInput
	handler := NewAccountHandler(&accountServiceStub{
		openFn: func(_ context.Context, input usecase.OpenAccountInput) (*domain.Account, error) {
			captured = input
			return &domain.Account{UserID: input.UserID}, nil
		},
	})

	body, _ := json.Marshal(dto.OpenAccountRequest{CardNumber: "4111111111111111"})
	req := withUser(httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body)), "alice")
	rec := httptest.NewRecorder()

	handler.Open(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.UserID != "alice" || captured.CardNumber != "4111111111111111" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.UserID != "alice" || resp.Balance != "0.00" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestAccountHandler_OpenErrors(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		body     string
		err      error
		expected int
	}{
		{"missing identity", "", `{"card_number":"4111111111111111"}`, nil, http.StatusUnauthorized},
		{"invalid json", "alice", `{invalid`, nil, http.StatusBadRequest},
		{"unknown field", "alice", `{"card":"4111"}`, nil, http.StatusBadRequest},
		{"bad card", "alice", `{"card_number":"4111"}`, domain.ErrInvalidCardNumber, http.StatusBadRequest},
		{"duplicate", "alice", `{"card_number":"4111111111111111"}`, domain.ErrAccountExists, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAccountHandler(&accountServiceStub{
				openFn: func(context.Context, usecase.OpenAccountInput) (*domain.Account, error) {
					if tt.err == nil {
						t.Fatal("OpenAccount should not be called")
					}
					return nil, tt.err
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString(tt.body))
			if tt.user != "" {
				req = withUser(req, tt.user)
			}
			rec := httptest.NewRecorder()

			handler.Open(rec, req)

			if rec.Code != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, rec.Code)
			}
		})
	}
}

func TestAccountHandler_Get(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		getFn: func(_ context.Context, userID string) (*domain.Account, error) {
			if userID == "bob" {
				return nil, domain.ErrAccountNotFound
			}
			return &domain.Account{UserID: userID, Balance: domain.MustMoney("25.00")}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Get(rec, withUser(httptest.NewRequest(http.MethodGet, "/account", nil), "alice"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Balance != "25.00" {
		t.Fatalf("unexpected balance %s", resp.Balance)
	}

	rec = httptest.NewRecorder()
	handler.Get(rec, withUser(httptest.NewRequest(http.MethodGet, "/account", nil), "bob"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAccountHandler_Deposit(t *testing.T) {
	var captured usecase.DepositInput
	handler := NewAccountHandler(&accountServiceStub{
		depositFn: func(_ context.Context, input usecase.DepositInput) (domain.Money, error) {
			captured = input
			if input.Amount > domain.MaxDeposit {
				return 0, domain.ErrDepositOutOfRange
			}
			return domain.MustMoney("60.00"), nil
		},
	})

	rec := httptest.NewRecorder()
	req := withUser(httptest.NewRequest(http.MethodPost, "/account/deposits",
		bytes.NewBufferString(`{"card_number":"4111111111111111","amount":"50.00"}`)), "alice")
	handler.Deposit(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Amount != domain.MustMoney("50.00") {
		t.Fatalf("unexpected amount %v", captured.Amount)
	}

	var resp dto.BalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Balance != "60.00" {
		t.Fatalf("unexpected balance %s", resp.Balance)
	}

	rec = httptest.NewRecorder()
	req = withUser(httptest.NewRequest(http.MethodPost, "/account/deposits",
		bytes.NewBufferString(`{"card_number":"4111111111111111","amount":"1000.00"}`)), "alice")
	handler.Deposit(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range deposit, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = withUser(httptest.NewRequest(http.MethodPost, "/account/deposits",
		bytes.NewBufferString(`{"card_number":"4111111111111111","amount":"1.001"}`)), "alice")
	handler.Deposit(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for sub-cent deposit, got %d", rec.Code)
	}
}
