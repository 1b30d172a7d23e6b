package account

import "github.com/jonwraymond/accountkit/record"

// Standard account attributes.
var (
	UserID = record.NewKey[string]("userId",
		record.Required(), record.WithCategory("identity"), record.WithDisplayName("User ID"))

	AccountID = record.NewKey[string]("accountId",
		record.WithCategory("identity"), record.WithDisplayName("Account ID"))

	Email = record.NewKey[string]("email",
		record.WithCategory("identity"), record.WithDisplayName("Email"), record.WithLegacyIDs("emailAddress"))

	// Password holds a bcrypt hash, never the clear text.
	Password = record.NewKey[string]("password",
		record.WithCategory("credentials"), record.WithDisplayName("Password"))

	Name = record.NewKey[PersonName]("name",
		record.WithCategory("profile"), record.WithDisplayName("Name"))

	DateOfBirth = record.NewKey[Date]("dateOfBirth",
		record.WithCategory("profile"), record.WithDisplayName("Date of birth"))

	Gender = record.NewKey[GenderIdentity]("gender",
		record.WithCategory("profile"), record.WithDisplayName("Gender")).
		WithDefault(GenderPreferNotToState)

	EmailVerified = record.NewKey[bool]("emailVerified",
		record.WithCategory("identity"), record.WithDisplayName("Email verified")).
		WithDefault(false)

	// IsNewUser marks details produced by a sign-up in this process. It is
	// never persisted.
	IsNewUser = record.NewKey[bool]("isNewUser", record.Transient())
)

// Keys returns the standard catalogue.
func Keys() record.KeySet {
	return record.NewKeySet(UserID, AccountID, Email, Password, Name, DateOfBirth, Gender, EmailVerified, IsNewUser)
}

// DefaultValues returns the defaults of the standard catalogue.
func DefaultValues() *record.Defaults {
	return record.DefaultsFor(Keys())
}

// NewBuilder returns a builder that fills standard defaults on Build.
func NewBuilder() *record.Builder {
	return record.NewBuilder(record.WithDefaults(DefaultValues()))
}
