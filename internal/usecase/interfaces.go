package usecase

import (
	"context"
	"time"

	"github.com/iho/goticket/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, userID string) (*domain.Account, error)
	// Debit subtracts amount only if the balance covers it, in one statement.
	// Returns the new balance.
	Debit(ctx context.Context, userID string, amount domain.Money, updatedAt time.Time) (domain.Money, error)
	Credit(ctx context.Context, userID string, amount domain.Money, updatedAt time.Time) (domain.Money, error)
}

// CatalogRepository defines data access for catalog items.
type CatalogRepository interface {
	Upsert(ctx context.Context, item *domain.CatalogItem) error
	GetByName(ctx context.Context, eventName string) (*domain.CatalogItem, error)
	List(ctx context.Context) ([]*domain.CatalogItem, error)
	// AdjustQuantity applies delta only if the result stays non-negative.
	// Returns the new quantity.
	AdjustQuantity(ctx context.Context, eventName string, delta int) (int, error)
}

// HoldingRepository defines data access for holdings.
type HoldingRepository interface {
	Get(ctx context.Context, userID, eventName string) (*domain.Holding, error)
	GetForUpdate(ctx context.Context, tx Transaction, userID, eventName string) (*domain.Holding, error)
	// Upsert adds holding.Quantity and holding.CostBasis to any existing row.
	Upsert(ctx context.Context, holding *domain.Holding) error
	UpdateQuantity(ctx context.Context, tx Transaction, userID, eventName string, quantity int, costBasis domain.Money, updatedAt time.Time) error
	Delete(ctx context.Context, tx Transaction, userID, eventName string) error
	// ListByUser returns holdings in insertion order.
	ListByUser(ctx context.Context, userID string) ([]*domain.Holding, error)
}

// TokenStore keeps issued settlement tokens until they are consumed or expire.
type TokenStore interface {
	// Put stores token under token.Value. Fails with domain.ErrTokenExists
	// if a live token already has that value.
	Put(ctx context.Context, token *domain.Token) error
	// Consume removes and returns the token in one step. Missing or expired
	// tokens fail with domain.ErrInvalidToken.
	Consume(ctx context.Context, value string, now time.Time) (*domain.Token, error)
}

// CardCipher encrypts card numbers at rest.
type CardCipher interface {
	Encrypt(userID string, plaintext []byte) ([]byte, error)
	Decrypt(userID string, blob []byte) ([]byte, error)
}

// TokenGenerator produces unguessable token values.
type TokenGenerator interface {
	Generate() (string, error)
}

// Locker provides mutual exclusion over named keys. Keys are acquired in the
// order given; release frees all of them.
type Locker interface {
	Acquire(ctx context.Context, keys ...string) (release func(), err error)
}

// Retrier retries an operation with backoff.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Settler moves money on the ledger.
type Settler interface {
	Debit(ctx context.Context, userID string, amount domain.Money) error
	Credit(ctx context.Context, userID string, amount domain.Money) error
}

// Ledger is the ledger surface the exchange coordinator depends on.
type Ledger interface {
	Settler
	GetAccount(ctx context.Context, userID string) (*domain.Account, error)
}

// Inventory is the inventory surface the exchange coordinator depends on.
type Inventory interface {
	GetItem(ctx context.Context, eventName string) (*domain.CatalogItem, error)
	GetHolding(ctx context.Context, userID, eventName string) (*domain.Holding, error)
	AdjustQuantity(ctx context.Context, eventName string, delta int) error
	UpsertHolding(ctx context.Context, userID, eventName string, quantity int, cost domain.Money) error
	DecrementOrDeleteHolding(ctx context.Context, userID, eventName string, quantity int) (domain.Money, error)
}

// Tokenizer is the tokenizer surface the exchange coordinator depends on.
type Tokenizer interface {
	TokenizeStoredCard(ctx context.Context, account *domain.Account) (string, error)
	ResolveAndSettle(ctx context.Context, token string, amount domain.Money, userID string, direction domain.Direction) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// IdempotencyPending is stored under a key while the first request for it
// is in flight.
const IdempotencyPending = "processing"

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claim so the request can be retried.
	Release(ctx context.Context, key string) error
}
