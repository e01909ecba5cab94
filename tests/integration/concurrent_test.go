package integration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iho/goticket/internal/domain"
	"github.com/iho/goticket/internal/usecase"
)

func TestConcurrentPurchasesNeverOversell(t *testing.T) {
	m := newMarket(t, domain.SalePriceCurrent)
	ctx := context.Background()

	const (
		buyers  = 12
		tickets = 8
	)
	m.db.CreateTestEvent(ctx, "GameA", domain.MustMoney("10.00"), tickets)
	for i := range buyers {
		m.db.CreateTestAccount(ctx, fmt.Sprintf("user-%d", i), domain.MustMoney("10.00"))
	}

	var (
		wg      sync.WaitGroup
		sold    atomic.Int32
		refused atomic.Int32
	)
	wg.Add(buyers)
	for i := range buyers {
		go func() {
			defer wg.Done()

			_, err := m.exchange.Purchase(ctx, usecase.ExchangeInput{
				UserID:    fmt.Sprintf("user-%d", i),
				EventName: "GameA",
				Quantity:  1,
			})
			switch {
			case err == nil:
				sold.Add(1)
			case errors.Is(err, domain.ErrInsufficientInventory):
				refused.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(tickets), sold.Load())
	assert.Equal(t, int32(buyers-tickets), refused.Load())
	assert.Equal(t, 0, m.remaining(t, "GameA"))
}

func TestConcurrentPurchasesOutnumberPoolConnections(t *testing.T) {
	const (
		maxConns = 4
		buyers   = 30
		tickets  = 20
	)
	m := newMarketWithMaxConns(t, domain.SalePriceCurrent, maxConns)
	ctx := context.Background()

	m.db.CreateTestEvent(ctx, "GameA", domain.MustMoney("10.00"), tickets)
	for i := range buyers {
		m.db.CreateTestAccount(ctx, fmt.Sprintf("user-%d", i), domain.MustMoney("10.00"))
	}

	var (
		wg      sync.WaitGroup
		sold    atomic.Int32
		refused atomic.Int32
	)
	wg.Add(buyers)
	for i := range buyers {
		go func() {
			defer wg.Done()

			_, err := m.exchange.Purchase(ctx, usecase.ExchangeInput{
				UserID:    fmt.Sprintf("user-%d", i),
				EventName: "GameA",
				Quantity:  1,
			})
			switch {
			case err == nil:
				sold.Add(1)
			case errors.Is(err, domain.ErrInsufficientInventory):
				refused.Add(1)
			default:
				t.Errorf("unexpected %s error: %v", domain.KindOf(err), err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(tickets), sold.Load())
	assert.Equal(t, int32(buyers-tickets), refused.Load())
	assert.Equal(t, 0, m.remaining(t, "GameA"))

	var spent domain.Money
	for i := range buyers {
		spent += domain.MustMoney("10.00") - m.balance(t, fmt.Sprintf("user-%d", i))
	}
	assert.Equal(t, domain.MustMoney("200.00"), spent)
}

func TestConcurrentSpendFromOneAccount(t *testing.T) {
	m := newMarket(t, domain.SalePriceCurrent)
	ctx := context.Background()

	m.db.CreateTestAccount(ctx, "alice", domain.MustMoney("30.00"))
	m.db.CreateTestEvent(ctx, "GameA", domain.MustMoney("10.00"), 50)
	m.db.CreateTestEvent(ctx, "GameB", domain.MustMoney("10.00"), 50)

	const attempts = 8
	var (
		wg   sync.WaitGroup
		sold atomic.Int32
	)
	wg.Add(attempts)
	for i := range attempts {
		event := "GameA"
		if i%2 == 1 {
			event = "GameB"
		}
		go func() {
			defer wg.Done()
			if _, err := m.exchange.Purchase(ctx, usecase.ExchangeInput{UserID: "alice", EventName: event, Quantity: 1}); err == nil {
				sold.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(3), sold.Load())
	assert.Equal(t, domain.Money(0), m.balance(t, "alice"))
	assert.Equal(t, 3, m.held(t, "alice", "GameA")+m.held(t, "alice", "GameB"))
	assert.Equal(t, 97, m.remaining(t, "GameA")+m.remaining(t, "GameB"))
}
