package redis

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/redis/go-redis/v9"
	"github.com/zeebo/blake3"

	"github.com/iho/goticket/internal/domain"
	"github.com/iho/goticket/internal/infrastructure/metrics"
)

var (
	tokenEncMode cbor.EncMode
	tokenDecMode cbor.DecMode
)

func init() {
	var err error
	if tokenEncMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic("redis: token encoder: " + err.Error())
	}
	if tokenDecMode, err = (cbor.DecOptions{}).DecMode(); err != nil {
		panic("redis: token decoder: " + err.Error())
	}
}

// TokenStore implements usecase.TokenStore on Redis. Keys are keyed BLAKE3
// hashes of the token, so a dump of the keyspace yields no usable tokens.
// Values are CBOR records; Redis expiry enforces the TTL.
type TokenStore struct {
	client  *redis.Client
	refKey  []byte
	prefix  string
	metrics *metrics.Metrics
}

// NewTokenStore creates a TokenStore. refKey must be 32 bytes.
func NewTokenStore(client *redis.Client, refKey []byte, m *metrics.Metrics) (*TokenStore, error) {
	if _, err := blake3.NewKeyed(refKey); err != nil {
		return nil, fmt.Errorf("token reference key: %w", err)
	}

	return &TokenStore{
		client:  client,
		refKey:  refKey,
		prefix:  "token:",
		metrics: m,
	}, nil
}

// Put stores token with SET NX so a live token is never overwritten.
func (s *TokenStore) Put(ctx context.Context, token *domain.Token) error {
	ttl := token.ExpiresAt.Sub(token.IssuedAt)
	if ttl < time.Millisecond {
		return fmt.Errorf("token ttl %s too short", ttl)
	}

	data, err := tokenEncMode.Marshal(token)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}

	ok, err := s.client.SetNX(ctx, s.key(token.Value), data, ttl).Result()
	observe(s.metrics, "token_put", err)
	if err != nil {
		return storeError(err)
	}
	if !ok {
		return domain.ErrTokenExists
	}

	return nil
}

// Consume deletes and returns the token with GETDEL.
func (s *TokenStore) Consume(ctx context.Context, value string, now time.Time) (*domain.Token, error) {
	data, err := s.client.GetDel(ctx, s.key(value)).Bytes()
	if errors.Is(err, redis.Nil) {
		observe(s.metrics, "token_consume", nil)
		return nil, domain.ErrInvalidToken
	}
	observe(s.metrics, "token_consume", err)
	if err != nil {
		return nil, storeError(err)
	}

	var token domain.Token
	if err := tokenDecMode.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("%w: undecodable record", domain.ErrInvalidToken)
	}
	token.Value = value

	// Redis expiry has millisecond precision; the stored bound is authoritative.
	if token.Expired(now) {
		return nil, domain.ErrInvalidToken
	}

	return &token, nil
}

func (s *TokenStore) key(value string) string {
	h, _ := blake3.NewKeyed(s.refKey)
	_, _ = h.Write([]byte(value))
	return s.prefix + hex.EncodeToString(h.Sum(nil))
}
