package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/goticket/internal/domain"
	"github.com/iho/goticket/internal/infrastructure/metrics"
	"github.com/iho/goticket/internal/infrastructure/postgres/generated"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
	metrics *metrics.Metrics
}

// NewAccountRepository creates a new AccountRepository. db is usually a
// *pgxpool.Pool.
func NewAccountRepository(db generated.DBTX, m *metrics.Metrics) *AccountRepository {
	return &AccountRepository{
		queries: generated.New(db),
		metrics: m,
	}
}

// Create inserts a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	err := r.queries.CreateAccount(ctx, generated.CreateAccountParams{
		UserID:        account.UserID,
		Balance:       account.Balance.Cents(),
		EncryptedCard: account.EncryptedCard,
		Version:       account.Version,
		CreatedAt:     timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:     timeToPgTimestamptz(account.UpdatedAt),
	})
	if isPgCode(err, pgErrUniqueViolation) {
		return domain.ErrAccountExists
	}

	observeDBError(r.metrics, "account_create", err)
	return mapError(err)
}

// GetByID retrieves an account by user id.
func (r *AccountRepository) GetByID(ctx context.Context, userID string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		observeDBError(r.metrics, "account_get", err)
		return nil, mapError(err)
	}

	return rowToAccount(row), nil
}

// Debit subtracts amount in one guarded UPDATE. When no row matches it
// tells a missing account apart from a short balance.
func (r *AccountRepository) Debit(ctx context.Context, userID string, amount domain.Money, updatedAt time.Time) (domain.Money, error) {
	balance, err := r.queries.DebitAccount(ctx, generated.DebitAccountParams{
		Amount:    amount.Cents(),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
		UserID:    userID,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, r.missingOrShort(ctx, userID)
	}
	if err != nil {
		observeDBError(r.metrics, "account_debit", err)
		return 0, mapError(err)
	}

	return domain.Money(balance), nil
}

// Credit adds amount to the balance.
func (r *AccountRepository) Credit(ctx context.Context, userID string, amount domain.Money, updatedAt time.Time) (domain.Money, error) {
	balance, err := r.queries.CreditAccount(ctx, generated.CreditAccountParams{
		Amount:    amount.Cents(),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
		UserID:    userID,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrAccountNotFound
	}
	if err != nil {
		observeDBError(r.metrics, "account_credit", err)
		return 0, mapError(err)
	}

	return domain.Money(balance), nil
}

func (r *AccountRepository) missingOrShort(ctx context.Context, userID string) error {
	exists, err := r.queries.AccountExists(ctx, userID)
	if err != nil {
		observeDBError(r.metrics, "account_exists", err)
		return mapError(err)
	}
	if !exists {
		return domain.ErrAccountNotFound
	}
	return domain.ErrInsufficientFunds
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		UserID:        row.UserID,
		Balance:       domain.Money(row.Balance),
		EncryptedCard: row.EncryptedCard,
		Version:       row.Version,
		CreatedAt:     row.CreatedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
