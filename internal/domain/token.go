package domain

import "time"

// Token is a single-use settlement handle standing in for a card.
type Token struct {
	Value      string    `cbor:"-"`
	UserID     string    `cbor:"1,keyasint"`
	Ciphertext []byte    `cbor:"2,keyasint"`
	IssuedAt   time.Time `cbor:"3,keyasint"`
	ExpiresAt  time.Time `cbor:"4,keyasint"`
}

// Expired reports whether the token is past its expiry at now.
func (t *Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
