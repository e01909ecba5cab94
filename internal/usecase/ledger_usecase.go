package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/iho/goticket/internal/domain"
	"github.com/iho/goticket/internal/infrastructure/metrics"
)

// LedgerUseCase handles account balances.
type LedgerUseCase struct {
	accountRepo  AccountRepository
	cipher       CardCipher
	locker       Locker
	clock        Clock
	storeTimeout time.Duration
	metrics      *metrics.Metrics
}

// LedgerConfig bundles the ledger's dependencies.
type LedgerConfig struct {
	AccountRepo  AccountRepository
	Cipher       CardCipher
	Locker       Locker
	Clock        Clock
	StoreTimeout time.Duration
	Metrics      *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(cfg LedgerConfig) *LedgerUseCase {
	return &LedgerUseCase{
		accountRepo:  cfg.AccountRepo,
		cipher:       cfg.Cipher,
		locker:       cfg.Locker,
		clock:        cfg.Clock,
		storeTimeout: cfg.StoreTimeout,
		metrics:      cfg.Metrics,
	}
}

// GetAccount retrieves an account by user id.
func (uc *LedgerUseCase) GetAccount(ctx context.Context, userID string) (*domain.Account, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return nil, err
	}

	var account *domain.Account
	err := withStoreTimeout(ctx, uc.storeTimeout, func(ctx context.Context) error {
		var err error
		account, err = uc.accountRepo.GetByID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// GetBalance returns the account balance.
func (uc *LedgerUseCase) GetBalance(ctx context.Context, userID string) (domain.Money, error) {
	account, err := uc.GetAccount(ctx, userID)
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

// HasSufficientBalance reports whether the balance covers amount.
func (uc *LedgerUseCase) HasSufficientBalance(ctx context.Context, userID string, amount domain.Money) (bool, error) {
	balance, err := uc.GetBalance(ctx, userID)
	if err != nil {
		return false, err
	}
	return balance >= amount, nil
}

// Debit subtracts amount from the balance. The store rejects the change
// with domain.ErrInsufficientFunds if the balance no longer covers it.
func (uc *LedgerUseCase) Debit(ctx context.Context, userID string, amount domain.Money) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}

	err := withStoreTimeout(ctx, uc.storeTimeout, func(ctx context.Context) error {
		_, err := uc.accountRepo.Debit(ctx, userID, amount, uc.clock.Now())
		return err
	})
	if err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.AccountOperations.WithLabelValues(string(domain.DirectionDebit)).Inc()
	}

	return nil
}

// Credit adds amount to the balance.
func (uc *LedgerUseCase) Credit(ctx context.Context, userID string, amount domain.Money) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}

	err := withStoreTimeout(ctx, uc.storeTimeout, func(ctx context.Context) error {
		_, err := uc.accountRepo.Credit(ctx, userID, amount, uc.clock.Now())
		return err
	})
	if err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.AccountOperations.WithLabelValues(string(domain.DirectionCredit)).Inc()
	}

	return nil
}

// OpenAccountInput represents input for opening an account.
type OpenAccountInput struct {
	UserID     string
	CardNumber string
}

// OpenAccount registers a user with a zero balance and an encrypted card.
func (uc *LedgerUseCase) OpenAccount(ctx context.Context, input OpenAccountInput) (*domain.Account, error) {
	if err := domain.ValidateUserID(input.UserID); err != nil {
		return nil, err
	}
	if err := domain.ValidateCardNumber(input.CardNumber); err != nil {
		return nil, err
	}

	blob, err := uc.cipher.Encrypt(input.UserID, []byte(input.CardNumber))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCipherInit, err)
	}

	now := uc.clock.Now()
	account := &domain.Account{
		UserID:        input.UserID,
		Balance:       0,
		EncryptedCard: blob,
		Version:       0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = withStoreTimeout(ctx, uc.storeTimeout, func(ctx context.Context) error {
		return uc.accountRepo.Create(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsOpened.Inc()
	}

	return account, nil
}

// DepositInput represents input for a card deposit.
type DepositInput struct {
	UserID     string
	CardNumber string
	Amount     domain.Money
}

// Deposit credits the balance after checking the entered card against the
// card on file. Returns the new balance.
func (uc *LedgerUseCase) Deposit(ctx context.Context, input DepositInput) (domain.Money, error) {
	if err := domain.ValidateDepositAmount(input.Amount); err != nil {
		return 0, err
	}
	if err := domain.ValidateCardNumber(input.CardNumber); err != nil {
		return 0, err
	}

	release, err := lockWithTimeout(ctx, uc.locker, uc.storeTimeout, AccountLockKey(input.UserID))
	if err != nil {
		return 0, err
	}
	defer release()

	account, err := uc.GetAccount(ctx, input.UserID)
	if err != nil {
		return 0, err
	}

	match, err := verifyCard(uc.cipher, account, input.CardNumber)
	if err != nil {
		return 0, err
	}
	if !match {
		return 0, domain.ErrCardMismatch
	}

	var balance domain.Money
	err = withStoreTimeout(ctx, uc.storeTimeout, func(ctx context.Context) error {
		var err error
		balance, err = uc.accountRepo.Credit(ctx, input.UserID, input.Amount, uc.clock.Now())
		return err
	})
	if err != nil {
		return 0, err
	}

	if uc.metrics != nil {
		uc.metrics.Deposits.Inc()
	}

	return balance, nil
}

// verifyCard compares card against the account's stored card in constant time.
func verifyCard(cipher CardCipher, account *domain.Account, card string) (bool, error) {
	stored, err := cipher.Decrypt(account.UserID, account.EncryptedCard)
	if err != nil {
		if errors.Is(err, domain.ErrDecryption) {
			return false, err
		}
		return false, fmt.Errorf("%w: %v", domain.ErrDecryption, err)
	}

	return subtle.ConstantTimeCompare(stored, []byte(card)) == 1, nil
}
