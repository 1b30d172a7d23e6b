package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jonwraymond/accountkit/account"
	"github.com/jonwraymond/accountkit/config"
	"github.com/jonwraymond/accountkit/record"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    Options
		wantErr bool
	}{
		{"show", []string{"show", "u1"}, Options{Command: "show", AccountID: "u1", Timeout: 30 * time.Second}, false},
		{"show json", []string{"-json", "-timeout", "5s", "show", "u1"}, Options{Command: "show", AccountID: "u1", JSON: true, Timeout: 5 * time.Second}, false},
		{"clear", []string{"clear", "u1"}, Options{Command: "clear", AccountID: "u1", Timeout: 30 * time.Second}, false},
		{"health", []string{"health"}, Options{Command: "health", Timeout: 30 * time.Second}, false},
		{"no command", nil, Options{}, true},
		{"show without id", []string{"show"}, Options{}, true},
		{"clear extra args", []string{"clear", "u1", "u2"}, Options{}, true},
		{"health with args", []string{"health", "now"}, Options{}, true},
		{"unknown", []string{"purge", "u1"}, Options{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("accountkit", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			got, err := ParseArgs(fs, tt.args)
			if tt.wantErr {
				if !errors.Is(err, ErrUsage) {
					t.Errorf("ParseArgs() error = %v, want ErrUsage", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseArgs() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseArgs() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func fileConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(map[string]string{
		"ACCOUNTKIT_STORE":                config.StoreFile,
		"ACCOUNTKIT_DATA_DIR":             t.TempDir(),
		"ACCOUNTKIT_LOG_LEVEL":            "error",
		"ACCOUNTKIT_WRITE_RETRY_ATTEMPTS": "1",
	})
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}


func seed(t *testing.T, cfg config.Config) {
	t.Helper()
	ctx := context.Background()
	rt, err := config.Open(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	hash, err := account.HashPassword("secret")
	if err != nil {
		t.Fatal(err)
	}
	details := record.NewBuilder().Set(
		account.UserID.Bind("u1"),
		account.Email.Bind("ada@example.com"),
		account.Password.Bind(hash),
		account.DateOfBirth.Bind(account.Date{Year: 1815, Month: 12, Day: 10}),
	).Build()
	flush, err := rt.Cache.CommunicateRemoteChanges(ctx, "u1", details)
	if err != nil {
		t.Fatal(err)
	}
	if err := flush.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	if err := rt.Close(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestRun_Show(t *testing.T) {
	cfg := fileConfig(t)
	seed(t, cfg)

	var out bytes.Buffer
	if err := Run(context.Background(), cfg, Options{Command: "show", AccountID: "u1"}, &out); err != nil {
		t.Fatalf("Run(show) error = %v", err)
	}
	text := out.String()
	for _, want := range []string{"userId\tu1", "email\tada@example.com", "dateOfBirth\t1815-12-10"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "password") {
		t.Errorf("output leaks the password hash:\n%s", text)
	}
}

func TestRun_ShowJSON(t *testing.T) {
	cfg := fileConfig(t)
	seed(t, cfg)

	var out bytes.Buffer
	if err := Run(context.Background(), cfg, Options{Command: "show", AccountID: "u1", JSON: true}, &out); err != nil {
		t.Fatalf("Run(show -json) error = %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(out.Bytes(), &fields); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if fields["userId"] != "u1" || fields["email"] != "ada@example.com" {
		t.Errorf("fields = %v", fields)
	}
	if _, ok := fields["password"]; ok {
		t.Error("JSON output leaks the password hash")
	}
}

func TestRun_ShowMissing(t *testing.T) {
	cfg := fileConfig(t)
	err := Run(context.Background(), cfg, Options{Command: "show", AccountID: "ghost"}, io.Discard)
	if !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Run(show ghost) error = %v", err)
	}
}

func TestRun_Clear(t *testing.T) {
	cfg := fileConfig(t)
	seed(t, cfg)
	ctx := context.Background()

	var out bytes.Buffer
	if err := Run(ctx, cfg, Options{Command: "clear", AccountID: "u1"}, &out); err != nil {
		t.Fatalf("Run(clear) error = %v", err)
	}
	if out.String() != "cleared u1\n" {
		t.Errorf("output = %q", out.String())
	}
	if err := Run(ctx, cfg, Options{Command: "show", AccountID: "u1"}, io.Discard); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("show after clear error = %v", err)
	}
}

func TestRun_Health(t *testing.T) {
	cfg := fileConfig(t)

	var out bytes.Buffer
	if err := Run(context.Background(), cfg, Options{Command: "health"}, &out); err != nil {
		t.Fatalf("Run(health) error = %v", err)
	}
	var report struct {
		Status string                    `json:"status"`
		Checks map[string]map[string]any `json:"checks"`
	}
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if report.Status != "healthy" {
		t.Errorf("status = %q", report.Status)
	}
	if _, ok := report.Checks["cache"]; !ok {
		t.Errorf("checks = %v", report.Checks)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := fileConfig(t)
	cfg.Store = "tape"
	if err := Run(context.Background(), cfg, Options{Command: "health"}, io.Discard); !errors.Is(err, config.ErrInvalidStore) {
		t.Errorf("Run() error = %v", err)
	}
}
