package memory

import (
	"context"
	"sort"

	"github.com/iho/goticket/internal/domain"
)

// CatalogRepository implements usecase.CatalogRepository.
type CatalogRepository struct {
	store *Store
}

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(store *Store) *CatalogRepository {
	return &CatalogRepository{store: store}
}

// Upsert inserts or replaces a catalog item.
func (r *CatalogRepository) Upsert(ctx context.Context, item *domain.CatalogItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.catalog[item.EventName] = *item
	return nil
}

// GetByName retrieves a catalog item.
func (r *CatalogRepository) GetByName(ctx context.Context, eventName string) (*domain.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.catalog[eventName]
	if !ok {
		return nil, domain.ErrUnknownEvent
	}
	return &item, nil
}

// List returns all items ordered by event date then name.
func (r *CatalogRepository) List(ctx context.Context) ([]*domain.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	items := make([]*domain.CatalogItem, 0, len(r.store.catalog))
	for _, item := range r.store.catalog {
		item := item
		items = append(items, &item)
	}
	r.store.mu.Unlock()

	sort.Slice(items, func(i, j int) bool {
		if !items[i].EventDate.Equal(items[j].EventDate) {
			return items[i].EventDate.Before(items[j].EventDate)
		}
		return items[i].EventName < items[j].EventName
	})

	return items, nil
}

// AdjustQuantity applies delta if the pool stays non-negative.
func (r *CatalogRepository) AdjustQuantity(ctx context.Context, eventName string, delta int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.catalog[eventName]
	if !ok {
		return 0, domain.ErrUnknownEvent
	}
	if err := item.ValidateAdjust(delta); err != nil {
		return 0, err
	}

	item.Quantity += delta
	r.store.catalog[eventName] = item

	return item.Quantity, nil
}
