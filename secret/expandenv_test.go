package secret

import (
	"errors"
	"strings"
	"testing"
)

func TestExpandEnvStrict_MissingVarErrors(t *testing.T) {
	t.Setenv("ACCOUNTKIT_PRESENT", "ok")

	_, err := ExpandEnvStrict("a=${ACCOUNTKIT_PRESENT} b=${ACCOUNTKIT_MISSING} c=${ACCOUNTKIT_MISSING}")
	if !errors.Is(err, ErrMissingEnv) {
		t.Fatalf("error = %v, want ErrMissingEnv", err)
	}
	if strings.Count(err.Error(), "ACCOUNTKIT_MISSING") != 1 {
		t.Fatalf("expected missing var named once, got: %v", err)
	}
}

func TestExpandEnvStrict(t *testing.T) {
	t.Setenv("X", "y")

	tests := []struct {
		in, want string
	}{
		{in: "plain", want: "plain"},
		{in: "${X}", want: "y"},
		{in: "$X-suffix", want: "y-suffix"},
		{in: "$$${X}", want: "$y"},
		{in: "cost: $$5", want: "cost: $5"},
	}
	for _, tt := range tests {
		got, err := ExpandEnvStrict(tt.in)
		if err != nil {
			t.Fatalf("ExpandEnvStrict(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ExpandEnvStrict(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
