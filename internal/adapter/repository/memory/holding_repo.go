package memory

import (
	"context"
	"sort"
	"time"

	"github.com/iho/goticket/internal/domain"
	"github.com/iho/goticket/internal/usecase"
)

// HoldingRepository implements usecase.HoldingRepository.
type HoldingRepository struct {
	store *Store
}

// NewHoldingRepository creates a new HoldingRepository.
func NewHoldingRepository(store *Store) *HoldingRepository {
	return &HoldingRepository{store: store}
}

// Get retrieves a holding.
func (r *HoldingRepository) Get(ctx context.Context, userID, eventName string) (*domain.Holding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.get(userID, eventName)
}

// GetForUpdate retrieves a holding inside tx. The transaction already owns
// the store.
func (r *HoldingRepository) GetForUpdate(ctx context.Context, _ usecase.Transaction, userID, eventName string) (*domain.Holding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.get(userID, eventName)
}

func (r *HoldingRepository) get(userID, eventName string) (*domain.Holding, error) {
	row, ok := r.store.holdings[holdingKey{userID, eventName}]
	if !ok {
		return nil, domain.ErrHoldingNotFound
	}
	h := row.holding
	return &h, nil
}

// Upsert adds to an existing holding or inserts a new one.
func (r *HoldingRepository) Upsert(ctx context.Context, holding *domain.Holding) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := domain.ValidateQuantity(holding.Quantity); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := holdingKey{holding.UserID, holding.EventName}
	row, ok := r.store.holdings[key]
	if !ok {
		r.store.seq++
		r.store.holdings[key] = holdingRow{holding: *holding, seq: r.store.seq}
		return nil
	}

	basis, err := row.holding.CostBasis.Add(holding.CostBasis)
	if err != nil {
		return err
	}
	row.holding.Quantity += holding.Quantity
	row.holding.CostBasis = basis
	row.holding.UpdatedAt = holding.UpdatedAt
	r.store.holdings[key] = row

	return nil
}

// UpdateQuantity sets the quantity and cost basis inside tx.
func (r *HoldingRepository) UpdateQuantity(ctx context.Context, tx usecase.Transaction, userID, eventName string, quantity int, costBasis domain.Money, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}

	key := holdingKey{userID, eventName}
	row, ok := r.store.holdings[key]
	if !ok {
		return domain.ErrHoldingNotFound
	}

	prev := row
	asTx(tx).record(func() { r.store.holdings[key] = prev })

	row.holding.Quantity = quantity
	row.holding.CostBasis = costBasis
	row.holding.UpdatedAt = updatedAt
	r.store.holdings[key] = row

	return nil
}

// Delete removes a holding inside tx.
func (r *HoldingRepository) Delete(ctx context.Context, tx usecase.Transaction, userID, eventName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := holdingKey{userID, eventName}
	row, ok := r.store.holdings[key]
	if !ok {
		return domain.ErrHoldingNotFound
	}

	asTx(tx).record(func() { r.store.holdings[key] = row })
	delete(r.store.holdings, key)

	return nil
}

// ListByUser returns the user's holdings in insertion order.
func (r *HoldingRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Holding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	rows := make([]holdingRow, 0)
	for key, row := range r.store.holdings {
		if key.userID == userID {
			rows = append(rows, row)
		}
	}
	r.store.mu.Unlock()

	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	holdings := make([]*domain.Holding, 0, len(rows))
	for _, row := range rows {
		h := row.holding
		holdings = append(holdings, &h)
	}

	return holdings, nil
}
