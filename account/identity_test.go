package account

import (
	"testing"

	"github.com/jonwraymond/accountkit/auth"
)

func TestDetailsFromIdentity(t *testing.T) {
	id := &auth.Identity{
		Principal: "u1",
		Method:    auth.AuthMethodJWT,
		Claims: map[string]any{
			"email":          "Ada@Example.com",
			"email_verified": true,
			"given_name":     "Ada",
			"family_name":    "Lovelace",
			"birthdate":      "1815-12-10",
			"gender":         "female",
		},
	}

	got := DetailsFromIdentity(id, DefaultClaimMapping())
	if UserID.Value(got) != "u1" {
		t.Errorf("UserID = %q", UserID.Value(got))
	}
	if Email.Value(got) != "ada@example.com" {
		t.Errorf("Email = %q", Email.Value(got))
	}
	if !EmailVerified.Value(got) {
		t.Error("EmailVerified = false")
	}
	if Name.Value(got) != (PersonName{Given: "Ada", Family: "Lovelace"}) {
		t.Errorf("Name = %+v", Name.Value(got))
	}
	if DateOfBirth.Value(got) != (Date{Year: 1815, Month: 12, Day: 10}) {
		t.Errorf("DateOfBirth = %+v", DateOfBirth.Value(got))
	}
	if Gender.Value(got) != GenderFemale {
		t.Errorf("Gender = %v", Gender.Value(got))
	}
}

func TestDetailsFromIdentity_SkipsMissingAndMalformed(t *testing.T) {
	id := &auth.Identity{
		Principal: "u2",
		Claims: map[string]any{
			"email":          "",
			"email_verified": "yes",
			"birthdate":      "December 1815",
			"gender":         "robot",
			"family_name":    "Lovelace",
		},
	}

	got := DetailsFromIdentity(id, DefaultClaimMapping())
	if Email.In(got) || EmailVerified.In(got) || DateOfBirth.In(got) || Gender.In(got) {
		t.Errorf("unexpected keys %v", got.Keys())
	}
	if Name.Value(got) != (PersonName{Family: "Lovelace"}) {
		t.Errorf("Name = %+v", Name.Value(got))
	}

	only := DetailsFromIdentity(id, ClaimMapping{})
	if only.Len() != 1 || !UserID.In(only) {
		t.Errorf("empty mapping = %v", only.Keys())
	}
}
