package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/goticket/internal/domain"
	"github.com/iho/goticket/internal/infrastructure/metrics"
	"github.com/iho/goticket/internal/infrastructure/postgres/generated"
)

// CatalogRepository implements usecase.CatalogRepository.
type CatalogRepository struct {
	queries *generated.Queries
	metrics *metrics.Metrics
}

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(db generated.DBTX, m *metrics.Metrics) *CatalogRepository {
	return &CatalogRepository{
		queries: generated.New(db),
		metrics: m,
	}
}

// Upsert inserts an item or replaces every column of an existing one.
func (r *CatalogRepository) Upsert(ctx context.Context, item *domain.CatalogItem) error {
	err := r.queries.UpsertCatalogItem(ctx, generated.UpsertCatalogItemParams{
		EventName: item.EventName,
		Location:  item.Location,
		UnitPrice: item.UnitPrice.Cents(),
		EventDate: timeToPgTimestamptz(item.EventDate),
		Quantity:  int32(item.Quantity),
	})
	if isPgCode(err, pgErrCheckViolation) {
		return domain.ErrInvalidCatalogItem
	}

	observeDBError(r.metrics, "catalog_upsert", err)
	return mapError(err)
}

// GetByName retrieves an item or domain.ErrUnknownEvent.
func (r *CatalogRepository) GetByName(ctx context.Context, eventName string) (*domain.CatalogItem, error) {
	row, err := r.queries.GetCatalogItem(ctx, eventName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUnknownEvent
		}

		observeDBError(r.metrics, "catalog_get", err)
		return nil, mapError(err)
	}

	return rowToCatalogItem(row), nil
}

// List returns the schedule ordered by event date, then name.
func (r *CatalogRepository) List(ctx context.Context) ([]*domain.CatalogItem, error) {
	rows, err := r.queries.ListCatalogItems(ctx)
	if err != nil {
		observeDBError(r.metrics, "catalog_list", err)
		return nil, mapError(err)
	}

	items := make([]*domain.CatalogItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, rowToCatalogItem(row))
	}

	return items, nil
}

// AdjustQuantity applies delta in one guarded UPDATE and returns the new
// quantity. A delta that would go negative matches no row.
func (r *CatalogRepository) AdjustQuantity(ctx context.Context, eventName string, delta int) (int, error) {
	quantity, err := r.queries.AdjustCatalogQuantity(ctx, generated.AdjustCatalogQuantityParams{
		Delta:     int32(delta),
		EventName: eventName,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		exists, existsErr := r.queries.CatalogItemExists(ctx, eventName)
		if existsErr != nil {
			observeDBError(r.metrics, "catalog_exists", existsErr)
			return 0, mapError(existsErr)
		}
		if !exists {
			return 0, domain.ErrUnknownEvent
		}
		return 0, domain.ErrInsufficientInventory
	}
	if err != nil {
		observeDBError(r.metrics, "catalog_adjust", err)
		return 0, mapError(err)
	}

	return int(quantity), nil
}

func rowToCatalogItem(row generated.CatalogItem) *domain.CatalogItem {
	return &domain.CatalogItem{
		EventName: row.EventName,
		Location:  row.Location,
		UnitPrice: domain.Money(row.UnitPrice),
		EventDate: row.EventDate.Time,
		Quantity:  int(row.Quantity),
	}
}
