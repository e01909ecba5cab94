// Package memory implements the repositories on process memory. It backs
// single-node development runs and the use case property tests.
package memory

import (
	"context"
	"sync"

	"github.com/iho/goticket/internal/domain"
	"github.com/iho/goticket/internal/usecase"
)

type holdingKey struct {
	userID    string
	eventName string
}

type holdingRow struct {
	holding domain.Holding
	seq     int64
}

// Store is the shared state behind the memory repositories.
type Store struct {
	mu       sync.Mutex
	accounts map[string]domain.Account
	catalog  map[string]domain.CatalogItem
	holdings map[holdingKey]holdingRow
	seq      int64
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]domain.Account),
		catalog:  make(map[string]domain.CatalogItem),
		holdings: make(map[holdingKey]holdingRow),
	}
}

// TxManager implements usecase.TransactionManager. A transaction holds the
// store lock until it commits or rolls back.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.store.mu.Lock()
	return &Tx{store: m.store}, nil
}

// Tx is a memory transaction with an undo journal.
type Tx struct {
	store *Store
	undo  []func()
	done  bool
}

// Commit keeps the changes and releases the store.
func (t *Tx) Commit(_ context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.undo = nil
	t.store.mu.Unlock()
	return nil
}

// Rollback reverts every change made in the transaction.
func (t *Tx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	t.store.mu.Unlock()
	return nil
}

func (t *Tx) record(fn func()) {
	t.undo = append(t.undo, fn)
}

func asTx(tx usecase.Transaction) *Tx {
	return tx.(*Tx)
}
