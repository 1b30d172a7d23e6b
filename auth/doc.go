// Package auth verifies identity tokens issued by the account authority.
//
// A verified Identity carries the token's claims; the account package maps
// those claims onto account details (see account.DetailsFromIdentity).
package auth
