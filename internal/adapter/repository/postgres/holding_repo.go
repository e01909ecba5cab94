package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/goticket/internal/domain"
	"github.com/iho/goticket/internal/infrastructure/metrics"
	"github.com/iho/goticket/internal/infrastructure/postgres/generated"
	"github.com/iho/goticket/internal/usecase"
)

// HoldingRepository implements usecase.HoldingRepository.
type HoldingRepository struct {
	queries *generated.Queries
	metrics *metrics.Metrics
}

// NewHoldingRepository creates a new HoldingRepository.
func NewHoldingRepository(db generated.DBTX, m *metrics.Metrics) *HoldingRepository {
	return &HoldingRepository{
		queries: generated.New(db),
		metrics: m,
	}
}

// Get retrieves a holding or domain.ErrHoldingNotFound.
func (r *HoldingRepository) Get(ctx context.Context, userID, eventName string) (*domain.Holding, error) {
	row, err := r.queries.GetHolding(ctx, generated.GetHoldingParams{UserID: userID, EventName: eventName})
	return r.holdingResult(row, err, "holding_get")
}

// GetForUpdate retrieves a holding with a FOR UPDATE lock.
func (r *HoldingRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, userID, eventName string) (*domain.Holding, error) {
	queries, err := queriesIn(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetHoldingForUpdate(ctx, generated.GetHoldingForUpdateParams{UserID: userID, EventName: eventName})
	return r.holdingResult(row, err, "holding_get_for_update")
}

// Upsert adds the holding's quantity and cost basis to any existing row.
func (r *HoldingRepository) Upsert(ctx context.Context, holding *domain.Holding) error {
	err := r.queries.UpsertHolding(ctx, generated.UpsertHoldingParams{
		UserID:    holding.UserID,
		EventName: holding.EventName,
		Quantity:  int32(holding.Quantity),
		CostBasis: holding.CostBasis.Cents(),
		CreatedAt: timeToPgTimestamptz(holding.CreatedAt),
		UpdatedAt: timeToPgTimestamptz(holding.UpdatedAt),
	})
	if isPgCode(err, pgErrForeignKeyViolation) {
		return domain.ErrUnknownEvent
	}

	observeDBError(r.metrics, "holding_upsert", err)
	return mapError(err)
}

// UpdateQuantity overwrites quantity and cost basis.
func (r *HoldingRepository) UpdateQuantity(ctx context.Context, tx usecase.Transaction, userID, eventName string, quantity int, costBasis domain.Money, updatedAt time.Time) error {
	queries, err := queriesIn(tx)
	if err != nil {
		return err
	}

	n, err := queries.UpdateHoldingQuantity(ctx, generated.UpdateHoldingQuantityParams{
		UserID:    userID,
		EventName: eventName,
		Quantity:  int32(quantity),
		CostBasis: costBasis.Cents(),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		observeDBError(r.metrics, "holding_update", err)
		return mapError(err)
	}
	if n == 0 {
		return domain.ErrHoldingNotFound
	}

	return nil
}

// Delete removes a holding.
func (r *HoldingRepository) Delete(ctx context.Context, tx usecase.Transaction, userID, eventName string) error {
	queries, err := queriesIn(tx)
	if err != nil {
		return err
	}

	n, err := queries.DeleteHolding(ctx, generated.DeleteHoldingParams{UserID: userID, EventName: eventName})
	if err != nil {
		observeDBError(r.metrics, "holding_delete", err)
		return mapError(err)
	}
	if n == 0 {
		return domain.ErrHoldingNotFound
	}

	return nil
}

// ListByUser returns the user's holdings in insertion order.
func (r *HoldingRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Holding, error) {
	rows, err := r.queries.ListHoldingsByUser(ctx, userID)
	if err != nil {
		observeDBError(r.metrics, "holding_list", err)
		return nil, mapError(err)
	}

	holdings := make([]*domain.Holding, 0, len(rows))
	for _, row := range rows {
		holdings = append(holdings, rowToHolding(row))
	}

	return holdings, nil
}

func (r *HoldingRepository) holdingResult(row generated.Holding, err error, operation string) (*domain.Holding, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrHoldingNotFound
		}

		observeDBError(r.metrics, operation, err)
		return nil, mapError(err)
	}

	return rowToHolding(row), nil
}

func rowToHolding(row generated.Holding) *domain.Holding {
	return &domain.Holding{
		UserID:    row.UserID,
		EventName: row.EventName,
		Quantity:  int(row.Quantity),
		CostBasis: domain.Money(row.CostBasis),
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}
