package integration

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/goticket/internal/adapter/repository/postgres"
	redisrepo "github.com/iho/goticket/internal/adapter/repository/redis"
	"github.com/iho/goticket/internal/domain"
	"github.com/iho/goticket/internal/infrastructure/cardcrypto"
	"github.com/iho/goticket/internal/infrastructure/clock"
	"github.com/iho/goticket/internal/infrastructure/metrics"
	"github.com/iho/goticket/internal/usecase"
	"github.com/iho/goticket/tests/testutil"
)

// market is the full exchange stack over Postgres, an advisory locker and a
// Redis token store.
type market struct {
	db        *testutil.TestDB
	redis     *goredis.Client
	metrics   *metrics.Metrics
	accounts  *postgres.AccountRepository
	holdings  *postgres.HoldingRepository
	ledger    *usecase.LedgerUseCase
	inventory *usecase.InventoryUseCase
	exchange  *usecase.ExchangeUseCase
}

func newMarket(t *testing.T, policy domain.SalePricePolicy) *market {
	t.Helper()
	return newMarketWithMaxConns(t, policy, 20)
}

func newMarketWithMaxConns(t *testing.T, policy domain.SalePricePolicy, maxConns int) *market {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := testutil.NewTestDBWithMaxConns(t, maxConns)
	db.TruncateAll(context.Background())

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	m := metrics.New(prometheus.NewRegistry())
	refKey, err := cardcrypto.TokenReferenceKey(testutil.TestMasterKey)
	if err != nil {
		t.Fatalf("failed to derive token key: %v", err)
	}
	tokens, err := redisrepo.NewTokenStore(client, refKey, m)
	if err != nil {
		t.Fatalf("failed to create token store: %v", err)
	}

	clk := clock.NewSystem()
	locker := postgres.NewAdvisoryLocker(db.Pool)
	logger := zerolog.Nop()

	mk := &market{
		db:       db,
		redis:    client,
		metrics:  m,
		accounts: postgres.NewAccountRepository(db.Pool, m),
		holdings: postgres.NewHoldingRepository(db.Pool, m),
	}

	mk.ledger = usecase.NewLedgerUseCase(usecase.LedgerConfig{
		AccountRepo:  mk.accounts,
		Cipher:       db.Cipher,
		Locker:       locker,
		Clock:        clk,
		StoreTimeout: 5 * time.Second,
		Metrics:      m,
	})
	mk.inventory = usecase.NewInventoryUseCase(usecase.InventoryConfig{
		TxManager:    postgres.NewTxManager(db.Pool),
		CatalogRepo:  postgres.NewCatalogRepository(db.Pool, m),
		HoldingRepo:  mk.holdings,
		Clock:        clk,
		StoreTimeout: 5 * time.Second,
		Metrics:      m,
	})
	tokenizer := usecase.NewTokenizerUseCase(usecase.TokenizerConfig{
		Cipher:       db.Cipher,
		Store:        tokens,
		Settler:      mk.ledger,
		Tokens:       cardcrypto.NewTokenGenerator(),
		Clock:        clk,
		TTL:          30 * time.Second,
		StoreTimeout: 5 * time.Second,
		Metrics:      m,
	})
	mk.exchange = usecase.NewExchangeUseCase(usecase.ExchangeConfig{
		Ledger:       mk.ledger,
		Inventory:    mk.inventory,
		Tokenizer:    tokenizer,
		Locker:       locker,
		Retrier:      postgres.NewRetrier(logger),
		IDGen:        postgres.NewULIDGenerator(),
		Clock:        clk,
		Policy:       policy,
		Logger:       logger,
		Metrics:      m,
		StoreTimeout: 5 * time.Second,
	})

	return mk
}

func (m *market) balance(t *testing.T, userID string) domain.Money {
	t.Helper()
	b, err := m.ledger.GetBalance(context.Background(), userID)
	if err != nil {
		t.Fatalf("failed to get balance: %v", err)
	}
	return b
}

func (m *market) remaining(t *testing.T, event string) int {
	t.Helper()
	item, err := m.inventory.GetItem(context.Background(), event)
	if err != nil {
		t.Fatalf("failed to get item: %v", err)
	}
	return item.Quantity
}

func (m *market) held(t *testing.T, userID, event string) int {
	t.Helper()
	h, err := m.inventory.GetHolding(context.Background(), userID, event)
	if err != nil {
		return 0
	}
	return h.Quantity
}
