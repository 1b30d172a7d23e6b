package account

import (
	"fmt"
	"strings"
	"time"
)

// PersonName is a structured display name.
type PersonName struct {
	Given  string `json:"given,omitempty" cbor:"given,omitempty"`
	Family string `json:"family,omitempty" cbor:"family,omitempty"`
}

// String joins the non-empty parts with a space.
func (n PersonName) String() string {
	return strings.TrimSpace(n.Given + " " + n.Family)
}

// Date is a calendar date without a time zone.
type Date struct {
	Year  int        `json:"year" cbor:"year"`
	Month time.Month `json:"month" cbor:"month"`
	Day   int        `json:"day" cbor:"day"`
}

const dateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns midnight UTC on d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String formats d as YYYY-MM-DD.
func (d Date) String() string {
	return d.Time().Format(dateLayout)
}

// GenderIdentity is the self-described gender of an account holder.
type GenderIdentity int

const (
	GenderPreferNotToState GenderIdentity = iota
	GenderFemale
	GenderMale
	GenderNonBinary
	GenderOther
)

var genderNames = [...]string{
	GenderPreferNotToState: "prefer_not_to_state",
	GenderFemale:           "female",
	GenderMale:             "male",
	GenderNonBinary:        "non_binary",
	GenderOther:            "other",
}

// String returns the stable name of g.
func (g GenderIdentity) String() string {
	if g < 0 || int(g) >= len(genderNames) {
		return "unknown"
	}
	return genderNames[g]
}

// ParseGender parses a name returned by String.
func ParseGender(s string) (GenderIdentity, error) {
	for g, name := range genderNames {
		if strings.EqualFold(s, name) {
			return GenderIdentity(g), nil
		}
	}
	return GenderPreferNotToState, fmt.Errorf("%w: %q", ErrInvalidGender, s)
}
