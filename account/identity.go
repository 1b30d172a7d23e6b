package account

import (
	"github.com/jonwraymond/accountkit/auth"
	"github.com/jonwraymond/accountkit/record"
)

// ClaimMapping names the token claims that carry standard attributes.
// An empty name skips the attribute.
type ClaimMapping struct {
	Email         string
	EmailVerified string
	GivenName     string
	FamilyName    string
	Birthdate     string
	Gender        string
}

// DefaultClaimMapping follows the OpenID Connect standard claim names.
func DefaultClaimMapping() ClaimMapping {
	return ClaimMapping{
		Email:         "email",
		EmailVerified: "email_verified",
		GivenName:     "given_name",
		FamilyName:    "family_name",
		Birthdate:     "birthdate",
		Gender:        "gender",
	}
}

// DetailsFromIdentity maps a verified identity onto account details. The
// principal becomes UserID; claims that are absent or malformed are
// skipped.
func DetailsFromIdentity(id *auth.Identity, m ClaimMapping) record.Snapshot {
	b := record.NewBuilder().Set(UserID.Bind(id.Principal))

	if v, ok := id.StringClaim(m.Email); ok {
		b.Set(Email.Bind(normalizeEmail(v)))
	}
	if v, ok := id.BoolClaim(m.EmailVerified); ok {
		b.Set(EmailVerified.Bind(v))
	}

	var name PersonName
	name.Given, _ = id.StringClaim(m.GivenName)
	name.Family, _ = id.StringClaim(m.FamilyName)
	if name != (PersonName{}) {
		b.Set(Name.Bind(name))
	}

	if v, ok := id.StringClaim(m.Birthdate); ok {
		if d, err := ParseDate(v); err == nil {
			b.Set(DateOfBirth.Bind(d))
		}
	}
	if v, ok := id.StringClaim(m.Gender); ok {
		if g, err := ParseGender(v); err == nil {
			b.Set(Gender.Bind(g))
		}
	}
	return b.Build()
}
