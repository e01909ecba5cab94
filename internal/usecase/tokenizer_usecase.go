package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iho/goticket/internal/domain"
	"github.com/iho/goticket/internal/infrastructure/metrics"
)

// TokenizerUseCase swaps cards for single-use settlement tokens.
type TokenizerUseCase struct {
	cipher       CardCipher
	store        TokenStore
	settler      Settler
	tokens       TokenGenerator
	clock        Clock
	ttl          time.Duration
	storeTimeout time.Duration
	metrics      *metrics.Metrics
}

// TokenizerConfig bundles the tokenizer's dependencies.
type TokenizerConfig struct {
	Cipher       CardCipher
	Store        TokenStore
	Settler      Settler
	Tokens       TokenGenerator
	Clock        Clock
	TTL          time.Duration
	StoreTimeout time.Duration
	Metrics      *metrics.Metrics
}

// NewTokenizerUseCase creates a new TokenizerUseCase.
func NewTokenizerUseCase(cfg TokenizerConfig) *TokenizerUseCase {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &TokenizerUseCase{
		cipher:       cfg.Cipher,
		store:        cfg.Store,
		settler:      cfg.Settler,
		tokens:       cfg.Tokens,
		clock:        cfg.Clock,
		ttl:          ttl,
		storeTimeout: cfg.StoreTimeout,
		metrics:      cfg.Metrics,
	}
}

// IssueToken encrypts the card and stores it behind a fresh random token.
func (uc *TokenizerUseCase) IssueToken(ctx context.Context, userID, card string) (string, error) {
	blob, err := uc.cipher.Encrypt(userID, []byte(card))
	if err != nil {
		if errors.Is(err, domain.ErrCipherInit) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", domain.ErrCipherInit, err)
	}

	now := uc.clock.Now()

	// A collision on 256 random bits means a broken generator; one retry
	// covers a store that kept a stale entry.
	for attempt := 0; attempt < 2; attempt++ {
		value, err := uc.tokens.Generate()
		if err != nil {
			return "", err
		}

		token := &domain.Token{
			Value:      value,
			UserID:     userID,
			Ciphertext: blob,
			IssuedAt:   now,
			ExpiresAt:  now.Add(uc.ttl),
		}

		err = withStoreTimeout(ctx, uc.storeTimeout, func(ctx context.Context) error {
			return uc.store.Put(ctx, token)
		})
		if errors.Is(err, domain.ErrTokenExists) {
			continue
		}
		if err != nil {
			return "", err
		}

		if uc.metrics != nil {
			uc.metrics.TokensIssued.Inc()
		}

		return value, nil
	}

	return "", domain.ErrTokenExists
}

// TokenizeStoredCard issues a token for the card on file.
func (uc *TokenizerUseCase) TokenizeStoredCard(ctx context.Context, account *domain.Account) (string, error) {
	card, err := uc.cipher.Decrypt(account.UserID, account.EncryptedCard)
	if err != nil {
		if errors.Is(err, domain.ErrDecryption) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", domain.ErrDecryption, err)
	}

	return uc.IssueToken(ctx, account.UserID, string(card))
}

// ResolveAndSettle consumes the token and, if it is live and bound to
// userID, moves amount in the given direction. A token never settles twice.
func (uc *TokenizerUseCase) ResolveAndSettle(ctx context.Context, token string, amount domain.Money, userID string, direction domain.Direction) error {
	var resolved *domain.Token
	err := withStoreTimeout(ctx, uc.storeTimeout, func(ctx context.Context) error {
		var err error
		resolved, err = uc.store.Consume(ctx, token, uc.clock.Now())
		return err
	})
	if err != nil {
		uc.observeResolve("invalid")
		return err
	}

	if resolved.UserID != userID {
		uc.observeResolve("wrong_user")
		return fmt.Errorf("%w: token is bound to another user", domain.ErrInvalidToken)
	}

	uc.observeResolve("ok")

	switch direction {
	case domain.DirectionDebit:
		return uc.settler.Debit(ctx, userID, amount)
	case domain.DirectionCredit:
		return uc.settler.Credit(ctx, userID, amount)
	default:
		return fmt.Errorf("unknown settlement direction %q", direction)
	}
}

// VerifyCard reports whether card matches the account's stored card.
func (uc *TokenizerUseCase) VerifyCard(_ context.Context, account *domain.Account, card string) (bool, error) {
	return verifyCard(uc.cipher, account, card)
}

func (uc *TokenizerUseCase) observeResolve(result string) {
	if uc.metrics != nil {
		uc.metrics.TokensResolved.WithLabelValues(result).Inc()
	}
}
