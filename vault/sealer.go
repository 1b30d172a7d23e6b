package vault

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/jonwraymond/accountkit/cache"
	"github.com/jonwraymond/accountkit/secret"
)

const (
	// MinSecretLength is the minimum accepted secret length in bytes.
	MinSecretLength = 16

	sealVersion byte = 1
	hkdfInfo         = "accountkit/entry-seal/v1"
)

// Sealer seals and opens account entries.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives a sealing key from secret.
func NewSealer(secret []byte) (*Sealer, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrSecretTooShort, len(secret), MinSecretLength)
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(hkdfInfo)), key); err != nil {
		return nil, fmt.Errorf("vault: derive key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("vault: new cipher: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// NewSealerFromSecret resolves ref (a literal, ${VAR} or secretref: value)
// through r and derives a sealer from the result.
func NewSealerFromSecret(ctx context.Context, r *secret.Resolver, ref string) (*Sealer, error) {
	value, err := r.ResolveValue(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("vault: resolve secret: %w", err)
	}
	return NewSealer([]byte(value))
}

// Seal encrypts p for accountID.
func (s *Sealer) Seal(accountID string, p []byte) ([]byte, error) {
	nonceSize := s.aead.NonceSize()
	out := make([]byte, 1+nonceSize, 1+nonceSize+len(p)+s.aead.Overhead())
	out[0] = sealVersion
	nonce := out[1:]
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("vault: read nonce: %w", err)
	}
	return s.aead.Seal(out, nonce, p, []byte(accountID)), nil
}

// Open decrypts a blob sealed for accountID.
func (s *Sealer) Open(accountID string, sealed []byte) ([]byte, error) {
	nonceSize := s.aead.NonceSize()
	if len(sealed) < 1+nonceSize+s.aead.Overhead() {
		return nil, ErrMalformed
	}
	if sealed[0] != sealVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, sealed[0])
	}
	nonce, ciphertext := sealed[1:1+nonceSize], sealed[1+nonceSize:]
	plain, err := s.aead.Open(nil, nonce, ciphertext, []byte(accountID))
	if err != nil {
		return nil, ErrOpen
	}
	return plain, nil
}

var _ cache.Sealer = (*Sealer)(nil)
