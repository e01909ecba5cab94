package memory

import (
	"context"
	"time"

	"github.com/iho/goticket/internal/domain"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.accounts[account.UserID]; ok {
		return domain.ErrAccountExists
	}

	stored := *account
	stored.EncryptedCard = append([]byte(nil), account.EncryptedCard...)
	r.store.accounts[account.UserID] = stored
	return nil
}

// GetByID retrieves an account by user id.
func (r *AccountRepository) GetByID(ctx context.Context, userID string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	account, ok := r.store.accounts[userID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &account, nil
}

// Debit subtracts amount if the balance covers it.
func (r *AccountRepository) Debit(ctx context.Context, userID string, amount domain.Money, updatedAt time.Time) (domain.Money, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	account, ok := r.store.accounts[userID]
	if !ok {
		return 0, domain.ErrAccountNotFound
	}
	if err := account.ValidateDebit(amount); err != nil {
		return 0, err
	}

	account.Balance = account.ApplyDebit(amount)
	account.Version++
	account.UpdatedAt = updatedAt
	r.store.accounts[userID] = account

	return account.Balance, nil
}

// Credit adds amount to the balance.
func (r *AccountRepository) Credit(ctx context.Context, userID string, amount domain.Money, updatedAt time.Time) (domain.Money, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	account, ok := r.store.accounts[userID]
	if !ok {
		return 0, domain.ErrAccountNotFound
	}
	if err := account.ValidateCredit(amount); err != nil {
		return 0, err
	}

	account.Balance = account.ApplyCredit(amount)
	account.Version++
	account.UpdatedAt = updatedAt
	r.store.accounts[userID] = account

	return account.Balance, nil
}
