package cache

import (
	"strings"
	"unicode"
)

// MaxAccountIDLength is the maximum allowed length for an account id.
const MaxAccountIDLength = 256

// ValidateAccountID checks that id can safely name an entry in every store.
func ValidateAccountID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidAccountID
	}
	if len(id) > MaxAccountIDLength {
		return ErrAccountIDTooLong
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return ErrInvalidAccountID
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return ErrInvalidAccountID
		}
	}
	return nil
}
