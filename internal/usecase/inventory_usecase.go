package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iho/goticket/internal/domain"
	"github.com/iho/goticket/internal/infrastructure/metrics"
)

// InventoryUseCase handles the catalog and user holdings.
type InventoryUseCase struct {
	txManager    TransactionManager
	catalogRepo  CatalogRepository
	holdingRepo  HoldingRepository
	clock        Clock
	storeTimeout time.Duration
	metrics      *metrics.Metrics
}

// InventoryConfig bundles the inventory's dependencies.
type InventoryConfig struct {
	TxManager    TransactionManager
	CatalogRepo  CatalogRepository
	HoldingRepo  HoldingRepository
	Clock        Clock
	StoreTimeout time.Duration
	Metrics      *metrics.Metrics
}

// NewInventoryUseCase creates a new InventoryUseCase.
func NewInventoryUseCase(cfg InventoryConfig) *InventoryUseCase {
	return &InventoryUseCase{
		txManager:    cfg.TxManager,
		catalogRepo:  cfg.CatalogRepo,
		holdingRepo:  cfg.HoldingRepo,
		clock:        cfg.Clock,
		storeTimeout: cfg.StoreTimeout,
		metrics:      cfg.Metrics,
	}
}

// GetItem returns a catalog item or domain.ErrUnknownEvent.
func (uc *InventoryUseCase) GetItem(ctx context.Context, eventName string) (*domain.CatalogItem, error) {
	var item *domain.CatalogItem
	err := withStoreTimeout(ctx, uc.storeTimeout, func(ctx context.Context) error {
		var err error
		item, err = uc.catalogRepo.GetByName(ctx, eventName)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// HasAvailable reports whether quantity tickets remain. Unknown events
// report false.
func (uc *InventoryUseCase) HasAvailable(ctx context.Context, eventName string, quantity int) (bool, error) {
	item, err := uc.GetItem(ctx, eventName)
	if errors.Is(err, domain.ErrUnknownEvent) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return item.HasAvailable(quantity), nil
}

// PriceFor returns unit price × quantity. Unknown events price at zero.
func (uc *InventoryUseCase) PriceFor(ctx context.Context, eventName string, quantity int) (domain.Money, error) {
	item, err := uc.GetItem(ctx, eventName)
	if errors.Is(err, domain.ErrUnknownEvent) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return item.PriceFor(quantity)
}

// AdjustQuantity applies delta to the remaining ticket pool in one guarded
// update. A change that would go negative is rejected and nothing changes.
func (uc *InventoryUseCase) AdjustQuantity(ctx context.Context, eventName string, delta int) error {
	direction := "release"
	if delta < 0 {
		direction = "reserve"
	}

	err := withStoreTimeout(ctx, uc.storeTimeout, func(ctx context.Context) error {
		_, err := uc.catalogRepo.AdjustQuantity(ctx, eventName, delta)
		return err
	})

	if uc.metrics != nil {
		result := "ok"
		if err != nil {
			result = "rejected"
		}
		uc.metrics.InventoryAdjustments.WithLabelValues(direction, result).Inc()
	}

	return err
}

// GetHolding returns the user's holding for an event. A user without one
// gets a zero-quantity holding.
func (uc *InventoryUseCase) GetHolding(ctx context.Context, userID, eventName string) (*domain.Holding, error) {
	var holding *domain.Holding
	err := withStoreTimeout(ctx, uc.storeTimeout, func(ctx context.Context) error {
		var err error
		holding, err = uc.holdingRepo.Get(ctx, userID, eventName)
		return err
	})
	if errors.Is(err, domain.ErrHoldingNotFound) {
		return &domain.Holding{UserID: userID, EventName: eventName}, nil
	}
	if err != nil {
		return nil, err
	}
	return holding, nil
}

// UpsertHolding adds quantity tickets and their cost to the user's holding.
func (uc *InventoryUseCase) UpsertHolding(ctx context.Context, userID, eventName string, quantity int, cost domain.Money) error {
	if err := domain.ValidateQuantity(quantity); err != nil {
		return err
	}

	now := uc.clock.Now()
	return withStoreTimeout(ctx, uc.storeTimeout, func(ctx context.Context) error {
		return uc.holdingRepo.Upsert(ctx, &domain.Holding{
			UserID:    userID,
			EventName: eventName,
			Quantity:  quantity,
			CostBasis: cost,
			CreatedAt: now,
			UpdatedAt: now,
		})
	})
}

// DecrementOrDeleteHolding removes quantity tickets from the user's holding,
// deleting it when nothing is left. Returns the cost basis released.
func (uc *InventoryUseCase) DecrementOrDeleteHolding(ctx context.Context, userID, eventName string, quantity int) (domain.Money, error) {
	if err := domain.ValidateQuantity(quantity); err != nil {
		return 0, err
	}

	var released domain.Money
	err := withStoreTimeout(ctx, uc.storeTimeout, func(ctx context.Context) error {
		var err error
		released, err = uc.decrementOrDelete(ctx, userID, eventName, quantity)
		return err
	})
	if err != nil {
		return 0, err
	}

	return released, nil
}

func (uc *InventoryUseCase) decrementOrDelete(ctx context.Context, userID, eventName string, quantity int) (domain.Money, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	holding, err := uc.holdingRepo.GetForUpdate(ctx, tx, userID, eventName)
	if errors.Is(err, domain.ErrHoldingNotFound) {
		return 0, domain.ErrInsufficientHolding
	}
	if err != nil {
		return 0, err
	}

	if err := holding.ValidateDecrement(quantity); err != nil {
		return 0, err
	}

	released := holding.ReleasedCost(quantity)

	if holding.Quantity == quantity {
		err = uc.holdingRepo.Delete(ctx, tx, userID, eventName)
	} else {
		err = uc.holdingRepo.UpdateQuantity(ctx, tx, userID, eventName,
			holding.Quantity-quantity, holding.CostBasis-released, uc.clock.Now())
	}
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	return released, nil
}

// ListHoldings lists a user's holdings in insertion order, valued at the
// current catalog price.
func (uc *InventoryUseCase) ListHoldings(ctx context.Context, userID string) ([]domain.HoldingLine, error) {
	var (
		holdings []*domain.Holding
		items    []*domain.CatalogItem
	)
	err := withStoreTimeout(ctx, uc.storeTimeout, func(ctx context.Context) error {
		var err error
		if holdings, err = uc.holdingRepo.ListByUser(ctx, userID); err != nil {
			return err
		}
		items, err = uc.catalogRepo.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	prices := make(map[string]domain.Money, len(items))
	for _, item := range items {
		prices[item.EventName] = item.UnitPrice
	}

	lines := make([]domain.HoldingLine, 0, len(holdings))
	for _, h := range holdings {
		unitPrice := prices[h.EventName]
		total, err := unitPrice.Mul(h.Quantity)
		if err != nil {
			return nil, fmt.Errorf("value holding %s: %w", h.EventName, err)
		}
		lines = append(lines, domain.HoldingLine{
			EventName: h.EventName,
			UnitPrice: unitPrice,
			Quantity:  h.Quantity,
			TotalCost: total,
			CostBasis: h.CostBasis,
		})
	}

	return lines, nil
}

// ListCatalog returns the event schedule ordered by date then name.
func (uc *InventoryUseCase) ListCatalog(ctx context.Context) ([]*domain.CatalogItem, error) {
	var items []*domain.CatalogItem
	err := withStoreTimeout(ctx, uc.storeTimeout, func(ctx context.Context) error {
		var err error
		items, err = uc.catalogRepo.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// SeedCatalog validates and upserts catalog items. It is the bootstrap path
// for the catalog; exchanges never create items.
func (uc *InventoryUseCase) SeedCatalog(ctx context.Context, items []*domain.CatalogItem) error {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("seed %q: %w", item.EventName, err)
		}
	}

	for _, item := range items {
		err := withStoreTimeout(ctx, uc.storeTimeout, func(ctx context.Context) error {
			return uc.catalogRepo.Upsert(ctx, item)
		})
		if err != nil {
			return fmt.Errorf("seed %q: %w", item.EventName, err)
		}
	}

	return nil
}
