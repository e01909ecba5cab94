package cardcrypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// TokenPrefix marks settlement token values.
const TokenPrefix = "tok_"

// tokenBytes is 256 bits of entropy per token.
const tokenBytes = 32

// TokenGenerator implements usecase.TokenGenerator.
type TokenGenerator struct {
	rand io.Reader
}

// NewTokenGenerator creates a generator reading from crypto/rand.
func NewTokenGenerator() *TokenGenerator {
	return &TokenGenerator{rand: rand.Reader}
}

// Generate returns "tok_" followed by 32 random bytes in unpadded base64url.
func (g *TokenGenerator) Generate() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := io.ReadFull(g.rand, buf); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return TokenPrefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

// LooksLikeToken reports whether s has the shape of a generated token.
func LooksLikeToken(s string) bool {
	if !strings.HasPrefix(s, TokenPrefix) {
		return false
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(s, TokenPrefix))
	return err == nil && len(raw) == tokenBytes
}
