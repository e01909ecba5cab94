package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/goticket/internal/adapter/repository/memory"
	"github.com/iho/goticket/internal/domain"
	"github.com/iho/goticket/internal/infrastructure/cardcrypto"
	"github.com/iho/goticket/internal/infrastructure/clock"
	"github.com/iho/goticket/internal/usecase"
)

var testMasterKey = []byte("0123456789abcdef0123456789abcdef")

const testCard = "4111111111111111"

type seqIDs struct{ n int }

func (g *seqIDs) Generate() string {
	g.n++
	return fmt.Sprintf("rcpt-%03d", g.n)
}

// market is a fully wired exchange on memory adapters.
type market struct {
	store     *memory.Store
	tokens    *memory.TokenStore
	clock     *clock.Manual
	ledger    *usecase.LedgerUseCase
	inventory *usecase.InventoryUseCase
	tokenizer *usecase.TokenizerUseCase
	exchange  *usecase.ExchangeUseCase
	accounts  *memory.AccountRepository
	catalog   *memory.CatalogRepository
	holdings  *memory.HoldingRepository
}

func newMarket(t *testing.T, policy domain.SalePricePolicy) *market {
	t.Helper()

	cipher, err := cardcrypto.NewCipher(testMasterKey)
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}

	store := memory.NewStore()
	m := &market{
		store:    store,
		tokens:   memory.NewTokenStore(),
		clock:    clock.NewManual(time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)),
		accounts: memory.NewAccountRepository(store),
		catalog:  memory.NewCatalogRepository(store),
		holdings: memory.NewHoldingRepository(store),
	}
	locker := memory.NewKeyedLocker()

	m.ledger = usecase.NewLedgerUseCase(usecase.LedgerConfig{
		AccountRepo: m.accounts,
		Cipher:      cipher,
		Locker:      locker,
		Clock:       m.clock,
	})
	m.inventory = usecase.NewInventoryUseCase(usecase.InventoryConfig{
		TxManager:   memory.NewTxManager(store),
		CatalogRepo: m.catalog,
		HoldingRepo: m.holdings,
		Clock:       m.clock,
	})
	m.tokenizer = usecase.NewTokenizerUseCase(usecase.TokenizerConfig{
		Cipher:  cipher,
		Store:   m.tokens,
		Settler: m.ledger,
		Tokens:  cardcrypto.NewTokenGenerator(),
		Clock:   m.clock,
		TTL:     30 * time.Second,
	})
	m.exchange = usecase.NewExchangeUseCase(usecase.ExchangeConfig{
		Ledger:    m.ledger,
		Inventory: m.inventory,
		Tokenizer: m.tokenizer,
		Locker:    locker,
		IDGen:     &seqIDs{},
		Clock:     m.clock,
		Policy:    policy,
		Logger:    zerolog.Nop(),
	})

	return m
}

// open creates an account for userID funded with balance.
func (m *market) open(t *testing.T, userID string, balance string) {
	t.Helper()
	ctx := context.Background()

	if _, err := m.ledger.OpenAccount(ctx, usecase.OpenAccountInput{UserID: userID, CardNumber: testCard}); err != nil {
		t.Fatalf("open account: %v", err)
	}
	if amount := domain.MustMoney(balance); amount > 0 {
		if _, err := m.accounts.Credit(ctx, userID, amount, m.clock.Now()); err != nil {
			t.Fatalf("fund account: %v", err)
		}
	}
}

func (m *market) seed(t *testing.T, name, price string, quantity int) {
	t.Helper()
	err := m.inventory.SeedCatalog(context.Background(), []*domain.CatalogItem{{
		EventName: name,
		Location:  "Arena",
		UnitPrice: domain.MustMoney(price),
		EventDate: m.clock.Now().Add(72 * time.Hour),
		Quantity:  quantity,
	}})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func (m *market) balance(t *testing.T, userID string) domain.Money {
	t.Helper()
	b, err := m.ledger.GetBalance(context.Background(), userID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	return b
}

func (m *market) remaining(t *testing.T, name string) int {
	t.Helper()
	item, err := m.inventory.GetItem(context.Background(), name)
	if err != nil {
		t.Fatalf("item: %v", err)
	}
	return item.Quantity
}

func (m *market) held(t *testing.T, userID, name string) int {
	t.Helper()
	h, err := m.inventory.GetHolding(context.Background(), userID, name)
	if err != nil {
		t.Fatalf("holding: %v", err)
	}
	return h.Quantity
}
