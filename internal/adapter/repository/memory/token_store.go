package memory

import (
	"context"
	"sync"
	"time"

	"github.com/iho/goticket/internal/domain"
)

// TokenStore implements usecase.TokenStore as a map with expiry timestamps.
// Expiry is checked and the entry removed under one lock.
type TokenStore struct {
	mu     sync.Mutex
	tokens map[string]domain.Token
}

// NewTokenStore creates a new TokenStore.
func NewTokenStore() *TokenStore {
	return &TokenStore{tokens: make(map[string]domain.Token)}
}

// Put stores token unless a live token already has its value.
func (s *TokenStore) Put(ctx context.Context, token *domain.Token) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep(token.IssuedAt)

	if _, ok := s.tokens[token.Value]; ok {
		return domain.ErrTokenExists
	}

	s.tokens[token.Value] = *token
	return nil
}

// Consume removes the token and returns it if it had not expired at now.
func (s *TokenStore) Consume(ctx context.Context, value string, now time.Time) (*domain.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.tokens[value]
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	delete(s.tokens, value)

	if token.Expired(now) {
		return nil, domain.ErrInvalidToken
	}

	return &token, nil
}

// Len returns the number of stored tokens, expired ones included.
func (s *TokenStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

func (s *TokenStore) sweep(now time.Time) {
	for value, token := range s.tokens {
		if token.Expired(now) {
			delete(s.tokens, value)
		}
	}
}
