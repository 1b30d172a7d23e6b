package auth

import "time"

// AuthMethod indicates how authentication was performed.
type AuthMethod string

const (
	AuthMethodJWT AuthMethod = "jwt"
)

// Identity represents an authenticated account holder.
type Identity struct {
	// Principal is the authority's user id.
	Principal string

	// Method indicates how authentication was performed.
	Method AuthMethod

	// Claims contains the raw claims from the token.
	Claims map[string]any

	ExpiresAt time.Time
	IssuedAt  time.Time
}

// IsExpired checks if the identity has expired.
func (id *Identity) IsExpired() bool {
	if id.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(id.ExpiresAt)
}

// StringClaim returns the named claim if it is a non-empty string.
func (id *Identity) StringClaim(name string) (string, bool) {
	s, ok := id.Claims[name].(string)
	return s, ok && s != ""
}

// BoolClaim returns the named claim if it is a boolean.
func (id *Identity) BoolClaim(name string) (bool, bool) {
	b, ok := id.Claims[name].(bool)
	return b, ok
}
