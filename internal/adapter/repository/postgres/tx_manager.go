package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/goticket/internal/infrastructure/postgres/generated"
	"github.com/iho/goticket/internal/usecase"
)

// pgxPool is the part of *pgxpool.Pool used to open transactions and
// advisory lock sessions.
type pgxPool interface {
	Begin(context.Context) (pgx.Tx, error)
}

// TxManager implements usecase.TransactionManager. Its transactions scope
// the read-modify-write of a single holding during a sale.
type TxManager struct {
	pool pgxPool
}

// NewTxManager creates a new TxManager.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool)
}

func newTxManagerWithPool(pool pgxPool) *TxManager {
	return &TxManager{pool: pool}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	return &Tx{tx: tx, queries: generated.New(tx)}, nil
}

// Tx is a Postgres transaction handed out by TxManager.
type Tx struct {
	tx      pgx.Tx
	queries *generated.Queries
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	return mapError(t.tx.Commit(ctx))
}

// Rollback rolls back the transaction. Rolling back a committed
// transaction is a no-op, so callers can always defer it.
func (t *Tx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return mapError(err)
}

// queriesIn returns queries bound to tx. Transactions from another adapter
// cannot carry Postgres statements.
func queriesIn(tx usecase.Transaction) (*generated.Queries, error) {
	pgTx, ok := tx.(*Tx)
	if !ok || pgTx == nil {
		return nil, fmt.Errorf("postgres: transaction of type %T not opened by TxManager", tx)
	}
	return pgTx.queries, nil
}
