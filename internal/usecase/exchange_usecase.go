package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/goticket/internal/domain"
	"github.com/iho/goticket/internal/infrastructure/logger"
	"github.com/iho/goticket/internal/infrastructure/metrics"
)

// ExchangeUseCase runs the purchase and sale pipelines:
//
//	validating -> tokenizing -> settling -> adjusting_inventory -> recording_holding -> complete
//
// Ledger and inventory share no transaction, so every failure after
// settlement is undone by a compensating ledger (and inventory) change.
type ExchangeUseCase struct {
	ledger    Ledger
	inventory Inventory
	tokenizer Tokenizer
	locker    Locker
	retrier   Retrier
	idGen     IDGenerator
	clock     Clock
	policy    domain.SalePricePolicy
	logger    zerolog.Logger
	metrics   *metrics.Metrics

	lockTimeout time.Duration
}

// ExchangeConfig bundles the coordinator's dependencies.
type ExchangeConfig struct {
	Ledger    Ledger
	Inventory Inventory
	Tokenizer Tokenizer
	Locker    Locker
	// Retrier retries compensating actions. Nil runs them once.
	Retrier Retrier
	IDGen   IDGenerator
	Clock   Clock
	Policy  domain.SalePricePolicy
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
	// StoreTimeout bounds the wait for the account and event locks.
	StoreTimeout time.Duration
}

// NewExchangeUseCase creates a new ExchangeUseCase.
func NewExchangeUseCase(cfg ExchangeConfig) *ExchangeUseCase {
	policy := cfg.Policy
	if !policy.IsValid() {
		policy = domain.SalePriceCurrent
	}

	return &ExchangeUseCase{
		ledger:    cfg.Ledger,
		inventory: cfg.Inventory,
		tokenizer: cfg.Tokenizer,
		locker:    cfg.Locker,
		retrier:   cfg.Retrier,
		idGen:     cfg.IDGen,
		clock:     cfg.Clock,
		policy:    policy,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,

		lockTimeout: cfg.StoreTimeout,
	}
}

// ExchangeInput represents input for a purchase or sale.
type ExchangeInput struct {
	UserID    string
	EventName string
	Quantity  int
}

type compensation struct {
	name string
	run  func(ctx context.Context) error
}

// Purchase buys quantity tickets for the user at the current catalog price.
func (uc *ExchangeUseCase) Purchase(ctx context.Context, input ExchangeInput) (*domain.Receipt, error) {
	start := time.Now()
	receipt, err := uc.purchase(ctx, input)
	uc.observe(ctx, domain.OperationPurchase, start, receipt, err)
	return receipt, err
}

func (uc *ExchangeUseCase) purchase(ctx context.Context, input ExchangeInput) (*domain.Receipt, error) {
	const op = domain.OperationPurchase

	if err := validateExchangeInput(input); err != nil {
		return nil, failed(op, domain.StageValidating, err)
	}

	release, err := lockWithTimeout(ctx, uc.locker, uc.lockTimeout, AccountLockKey(input.UserID), EventLockKey(input.EventName))
	if err != nil {
		return nil, failed(op, domain.StageValidating, err)
	}
	defer release()

	item, err := uc.inventory.GetItem(ctx, input.EventName)
	if err != nil {
		return nil, failed(op, domain.StageValidating, err)
	}
	if !item.HasAvailable(input.Quantity) {
		return nil, failed(op, domain.StageValidating, domain.ErrInsufficientInventory)
	}

	cost, err := item.PriceFor(input.Quantity)
	if err != nil {
		return nil, failed(op, domain.StageValidating, err)
	}

	account, err := uc.ledger.GetAccount(ctx, input.UserID)
	if err != nil {
		return nil, failed(op, domain.StageValidating, err)
	}
	if account.Balance < cost {
		return nil, failed(op, domain.StageValidating, domain.ErrInsufficientFunds)
	}

	token, err := uc.tokenizer.TokenizeStoredCard(ctx, account)
	if err != nil {
		return nil, failed(op, domain.StageTokenizing, err)
	}

	// The debit re-checks the balance; losing a race here mutates nothing.
	if err := uc.tokenizer.ResolveAndSettle(ctx, token, cost, input.UserID, domain.DirectionDebit); err != nil {
		return nil, failed(op, domain.StageSettling, err)
	}

	// Money has moved: finish or compensate even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	refund := compensation{name: "credit", run: func(ctx context.Context) error {
		return uc.ledger.Credit(ctx, input.UserID, cost)
	}}

	if err := uc.inventory.AdjustQuantity(ctx, input.EventName, -input.Quantity); err != nil {
		return nil, uc.compensate(ctx, op, domain.StageAdjustingInventory, err, refund)
	}

	if err := uc.inventory.UpsertHolding(ctx, input.UserID, input.EventName, input.Quantity, cost); err != nil {
		restock := compensation{name: "restock", run: func(ctx context.Context) error {
			return uc.inventory.AdjustQuantity(ctx, input.EventName, input.Quantity)
		}}
		return nil, uc.compensate(ctx, op, domain.StageRecordingHolding, err, restock, refund)
	}

	return uc.receipt(op, input, item.UnitPrice, cost), nil
}

// Sell returns quantity held tickets to the pool and credits the proceeds
// under the configured sale price policy.
func (uc *ExchangeUseCase) Sell(ctx context.Context, input ExchangeInput) (*domain.Receipt, error) {
	start := time.Now()
	receipt, err := uc.sell(ctx, input)
	uc.observe(ctx, domain.OperationSale, start, receipt, err)
	return receipt, err
}

func (uc *ExchangeUseCase) sell(ctx context.Context, input ExchangeInput) (*domain.Receipt, error) {
	const op = domain.OperationSale

	if err := validateExchangeInput(input); err != nil {
		return nil, failed(op, domain.StageValidating, err)
	}

	release, err := lockWithTimeout(ctx, uc.locker, uc.lockTimeout, AccountLockKey(input.UserID), EventLockKey(input.EventName))
	if err != nil {
		return nil, failed(op, domain.StageValidating, err)
	}
	defer release()

	holding, err := uc.inventory.GetHolding(ctx, input.UserID, input.EventName)
	if err != nil {
		return nil, failed(op, domain.StageValidating, err)
	}
	if holding.Quantity < input.Quantity {
		return nil, failed(op, domain.StageValidating, domain.ErrInsufficientHolding)
	}

	item, err := uc.inventory.GetItem(ctx, input.EventName)
	if err != nil {
		return nil, failed(op, domain.StageValidating, err)
	}

	unitPrice := item.UnitPrice
	proceeds, err := item.PriceFor(input.Quantity)
	if uc.policy == domain.SalePricePurchase {
		proceeds, err = holding.ReleasedCost(input.Quantity), nil
		unitPrice = proceeds.ProRata(1, input.Quantity)
	}
	if err != nil {
		return nil, failed(op, domain.StageValidating, err)
	}

	account, err := uc.ledger.GetAccount(ctx, input.UserID)
	if err != nil {
		return nil, failed(op, domain.StageValidating, err)
	}

	token, err := uc.tokenizer.TokenizeStoredCard(ctx, account)
	if err != nil {
		return nil, failed(op, domain.StageTokenizing, err)
	}

	if err := uc.tokenizer.ResolveAndSettle(ctx, token, proceeds, input.UserID, domain.DirectionCredit); err != nil {
		return nil, failed(op, domain.StageSettling, err)
	}

	ctx = context.WithoutCancel(ctx)

	clawback := compensation{name: "debit", run: func(ctx context.Context) error {
		return uc.ledger.Debit(ctx, input.UserID, proceeds)
	}}

	if err := uc.inventory.AdjustQuantity(ctx, input.EventName, input.Quantity); err != nil {
		return nil, uc.compensate(ctx, op, domain.StageAdjustingInventory, err, clawback)
	}

	if _, err := uc.inventory.DecrementOrDeleteHolding(ctx, input.UserID, input.EventName, input.Quantity); err != nil {
		unstock := compensation{name: "unstock", run: func(ctx context.Context) error {
			return uc.inventory.AdjustQuantity(ctx, input.EventName, -input.Quantity)
		}}
		return nil, uc.compensate(ctx, op, domain.StageRecordingHolding, err, unstock, clawback)
	}

	return uc.receipt(op, input, unitPrice, proceeds), nil
}

// compensate runs every step, retrying each, and reports the original cause.
// If any step still fails the result wraps domain.ErrCompensationFailed.
func (uc *ExchangeUseCase) compensate(ctx context.Context, op domain.OperationKind, stage domain.Stage, cause error, steps ...compensation) error {
	log := logger.WithContext(ctx, uc.logger)

	var stepErrs []error
	for _, step := range steps {
		err := uc.retry(ctx, func() error { return step.run(ctx) })
		if err != nil {
			stepErrs = append(stepErrs, fmt.Errorf("%s: %w", step.name, err))
		}
	}

	if len(stepErrs) > 0 {
		compErr := errors.Join(stepErrs...)
		log.Error().
			Err(compErr).
			AnErr("cause", cause).
			Str("operation", string(op)).
			Str("stage", string(stage)).
			Msg("compensation failed, ledger and inventory disagree")

		uc.observeCompensation(op, stage, "failed")

		return &domain.ExchangeError{
			Operation: op,
			Stage:     stage,
			Err:       fmt.Errorf("%w: %w: %w", cause, domain.ErrCompensationFailed, compErr),
		}
	}

	log.Warn().
		AnErr("cause", cause).
		Str("operation", string(op)).
		Str("stage", string(stage)).
		Msg("exchange compensated")

	uc.observeCompensation(op, stage, "ok")

	return &domain.ExchangeError{Operation: op, Stage: stage, Err: cause, Compensated: true}
}

func (uc *ExchangeUseCase) retry(ctx context.Context, operation func() error) error {
	if uc.retrier == nil {
		return operation()
	}
	return uc.retrier.Retry(ctx, operation)
}

func (uc *ExchangeUseCase) receipt(op domain.OperationKind, input ExchangeInput, unitPrice, total domain.Money) *domain.Receipt {
	return &domain.Receipt{
		ID:        uc.idGen.Generate(),
		UserID:    input.UserID,
		EventName: input.EventName,
		Quantity:  input.Quantity,
		UnitPrice: unitPrice,
		Total:     total,
		Kind:      op,
		At:        uc.clock.Now(),
	}
}

func (uc *ExchangeUseCase) observe(ctx context.Context, op domain.OperationKind, start time.Time, receipt *domain.Receipt, err error) {
	if err != nil {
		kind := domain.KindOf(err)
		stage := domain.StageValidating
		var exErr *domain.ExchangeError
		if errors.As(err, &exErr) {
			stage = exErr.Stage
		}

		if kind != domain.KindValidation {
			log := logger.WithContext(ctx, uc.logger)
			log.Warn().
				Err(err).
				Str("operation", string(op)).
				Str("stage", string(stage)).
				Str("kind", string(kind)).
				Msg("exchange failed")
		}

		if uc.metrics != nil {
			uc.metrics.ExchangeFailures.WithLabelValues(string(op), string(stage), string(kind)).Inc()
		}
		return
	}

	log := logger.WithContext(ctx, uc.logger)
	log.Info().
		Str("operation", string(op)).
		Str("receipt_id", receipt.ID).
		Str("event", receipt.EventName).
		Int("quantity", receipt.Quantity).
		Str("total", receipt.Total.String()).
		Msg("exchange complete")

	if uc.metrics == nil {
		return
	}

	if op == domain.OperationPurchase {
		uc.metrics.Purchases.Inc()
	} else {
		uc.metrics.Sales.Inc()
	}
	uc.metrics.TicketsExchanged.WithLabelValues(string(op)).Add(float64(receipt.Quantity))
	uc.metrics.ExchangeAmount.WithLabelValues(string(op)).Observe(receipt.Total.Decimal().InexactFloat64())
	uc.metrics.ExchangeDuration.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())
}

func (uc *ExchangeUseCase) observeCompensation(op domain.OperationKind, stage domain.Stage, result string) {
	if uc.metrics != nil {
		uc.metrics.Compensations.WithLabelValues(string(op), string(stage), result).Inc()
	}
}

func validateExchangeInput(input ExchangeInput) error {
	if err := domain.ValidateUserID(input.UserID); err != nil {
		return err
	}
	if err := domain.ValidateEventName(input.EventName); err != nil {
		return err
	}
	return domain.ValidateQuantity(input.Quantity)
}

func failed(op domain.OperationKind, stage domain.Stage, err error) error {
	return &domain.ExchangeError{Operation: op, Stage: stage, Err: err}
}
