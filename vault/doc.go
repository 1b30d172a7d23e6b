// Package vault seals persisted account entries.
//
// Sealer encrypts each entry with XChaCha20-Poly1305 under a key derived by
// HKDF-SHA256 from an operator secret. The account id is bound as
// additional data, so an entry copied under another account's name fails to
// open. Sealed blobs carry a one-byte format version followed by the 24-byte
// nonce and the ciphertext.
package vault
