package cache

import "slices"

// Sealer protects persisted blobs. The cache treats it as an opaque
// capability: it seals after encoding and opens before decoding.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Binding: a blob sealed for one account id must not open for another.
type Sealer interface {
	Seal(accountID string, plaintext []byte) ([]byte, error)
	Open(accountID string, sealed []byte) ([]byte, error)
}

type plaintext struct{}

// Plaintext returns a Sealer that stores data unprotected and unbound.
func Plaintext() Sealer { return plaintext{} }

func (plaintext) Seal(_ string, p []byte) ([]byte, error) { return slices.Clone(p), nil }
func (plaintext) Open(_ string, s []byte) ([]byte, error) { return slices.Clone(s), nil }
