// Package cardcrypto encrypts stored payment cards and derives the keys used
// to obscure settlement tokens at rest.
package cardcrypto

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/iho/goticket/internal/domain"
)

// KeySize is the size in bytes of every derived key.
const KeySize = 32

// MinMasterKeySize is the shortest master key accepted.
const MinMasterKeySize = 16

// BlobVersion is the first byte of every encrypted card blob. It is also
// authenticated as part of the AAD.
const BlobVersion byte = 0x01

// BlobOverhead is version + XChaCha20 nonce + Poly1305 tag.
const BlobOverhead = 1 + chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead

var (
	hkdfInfoCard     = []byte("goticket.card.enc.v1")
	hkdfInfoTokenRef = []byte("goticket.token.ref.v1")
)

// Cipher implements usecase.CardCipher with XChaCha20-Poly1305.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher derives the card encryption key from masterKey.
func NewCipher(masterKey []byte) (*Cipher, error) {
	key, err := DeriveKey(masterKey, hkdfInfoCard)
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCipherInit, err)
	}

	return &Cipher{aead: aead}, nil
}

// Encrypt seals plaintext for userID:
//
//	[version: 1 byte] [nonce: 24 bytes] [ciphertext+tag]
//
// The user id is bound through the AAD so a blob copied onto another
// account fails to open.
func (c *Cipher) Encrypt(userID string, plaintext []byte) ([]byte, error) {
	var nonce [chacha20poly1305.NonceSizeX]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	out := make([]byte, 1+len(nonce), BlobOverhead+len(plaintext))
	out[0] = BlobVersion
	copy(out[1:], nonce[:])

	return c.aead.Seal(out, nonce[:], plaintext, buildAAD(BlobVersion, userID)), nil
}

// Decrypt opens a blob produced by Encrypt. Every failure wraps
// domain.ErrDecryption.
func (c *Cipher) Decrypt(userID string, blob []byte) ([]byte, error) {
	if len(blob) < BlobOverhead {
		return nil, fmt.Errorf("%w: blob is %d bytes, minimum is %d", domain.ErrDecryption, len(blob), BlobOverhead)
	}

	version := blob[0]
	if version != BlobVersion {
		return nil, fmt.Errorf("%w: unsupported blob version %d", domain.ErrDecryption, version)
	}

	nonce := blob[1 : 1+chacha20poly1305.NonceSizeX]
	sealed := blob[1+chacha20poly1305.NonceSizeX:]

	plaintext, err := c.aead.Open(nil, nonce, sealed, buildAAD(version, userID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecryption, err)
	}

	return plaintext, nil
}

// TokenReferenceKey derives the keyed-hash key used to obscure token
// values in external stores.
func TokenReferenceKey(masterKey []byte) ([]byte, error) {
	return DeriveKey(masterKey, hkdfInfoTokenRef)
}

// DeriveKey runs HKDF-SHA256 over masterKey with the given info string.
func DeriveKey(masterKey, info []byte) ([]byte, error) {
	if len(masterKey) < MinMasterKeySize {
		return nil, fmt.Errorf("%w: master key is %d bytes, minimum is %d", domain.ErrCipherInit, len(masterKey), MinMasterKeySize)
	}

	reader := hkdf.New(sha256.New, masterKey, nil, info)
	derived := make([]byte, KeySize)
	if _, err := io.ReadFull(reader, derived); err != nil {
		return nil, fmt.Errorf("%w: key derivation: %v", domain.ErrCipherInit, err)
	}

	return derived, nil
}

func buildAAD(version byte, userID string) []byte {
	aad := make([]byte, 1+len(userID))
	aad[0] = version
	copy(aad[1:], userID)
	return aad
}
