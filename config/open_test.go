package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonwraymond/accountkit/cache"
	"github.com/jonwraymond/accountkit/health"
	"github.com/jonwraymond/accountkit/record"
)

var (
	userID = record.NewKey[string]("userId", record.Required())
	email  = record.NewKey[string]("email")
	keys   = record.NewKeySet(userID, email)
)

func testConfig(t *testing.T, vars map[string]string) Config {
	t.Helper()
	if _, ok := vars["ACCOUNTKIT_DATA_DIR"]; !ok {
		vars["ACCOUNTKIT_DATA_DIR"] = t.TempDir()
	}
	vars["ACCOUNTKIT_LOG_LEVEL"] = "error"
	vars["ACCOUNTKIT_WRITE_RETRY_ATTEMPTS"] = "1"
	cfg, err := LoadFrom(vars)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	return cfg
}

func openRuntime(t *testing.T, cfg Config) *Runtime {
	t.Helper()
	rt, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = rt.Close(context.Background()) })
	return rt
}

func storeAndReload(t *testing.T, cfg Config) {
	t.Helper()
	ctx := context.Background()

	rt, err := Open(ctx, cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	details := record.NewBuilder().Set(userID.Bind("u1"), email.Bind("ada@example.com")).Build()
	flush, err := rt.Cache.CommunicateRemoteChanges(ctx, "u1", details)
	if err != nil {
		t.Fatal(err)
	}
	if err := flush.Wait(ctx); err != nil {
		t.Fatalf("flush error = %v", err)
	}
	if err := rt.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened := openRuntime(t, cfg)
	snap, ok := reopened.Cache.LoadEntry(ctx, "u1", keys)
	if !ok || email.Value(snap) != "ada@example.com" {
		t.Errorf("LoadEntry() = %v, %v", snap.Keys(), ok)
	}
}

func TestOpen_Stores(t *testing.T) {
	for _, kind := range []string{StoreFile, StoreSQLite} {
		t.Run(kind, func(t *testing.T) {
			cfg := testConfig(t, map[string]string{"ACCOUNTKIT_STORE": kind})
			storeAndReload(t, cfg)
		})
	}
}

func TestOpen_SealedFromEnv(t *testing.T) {
	t.Setenv("TEST_ACCOUNTKIT_SEAL", "a-sufficiently-long-passphrase")
	cfg := testConfig(t, map[string]string{
		"ACCOUNTKIT_STORE":    StoreFile,
		"ACCOUNTKIT_SEAL_KEY": "secretref:env:TEST_ACCOUNTKIT_SEAL",
		"ACCOUNTKIT_CODEC":    "json",
	})
	storeAndReload(t, cfg)

	entries, err := os.ReadDir(cfg.EntriesDir())
	if err != nil || len(entries) != 1 {
		t.Fatalf("entries = %v, %v", entries, err)
	}
	raw, err := os.ReadFile(filepath.Join(cfg.EntriesDir(), entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(raw, []byte("ada@example.com")) {
		t.Error("sealed entry holds plaintext")
	}
}

func TestOpen_SealKeyFromFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "seal"), []byte("file-held-passphrase-0123\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := testConfig(t, map[string]string{
		"ACCOUNTKIT_STORE":      StoreMemory,
		"ACCOUNTKIT_SEAL_KEY":   "secretref:file:seal",
		"ACCOUNTKIT_SECRET_DIR": dir,
	})
	openRuntime(t, cfg)
}

func TestOpen_SealKeyErrors(t *testing.T) {
	tests := map[string]string{
		"too short":      "short",
		"missing env":    "${TEST_ACCOUNTKIT_UNSET_SEAL}",
		"unknown source": "secretref:vault:seal",
	}
	for name, ref := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig(t, map[string]string{"ACCOUNTKIT_STORE": StoreMemory, "ACCOUNTKIT_SEAL_KEY": ref})
			if rt, err := Open(context.Background(), cfg); err == nil {
				_ = rt.Close(context.Background())
				t.Error("Open() should fail")
			}
		})
	}
}

func TestOpen_InvalidConfig(t *testing.T) {
	cfg := testConfig(t, map[string]string{"ACCOUNTKIT_STORE": "tape"})
	if _, err := Open(context.Background(), cfg); err == nil {
		t.Error("Open() should validate the config")
	}
}

func TestOpen_Health(t *testing.T) {
	cfg := testConfig(t, map[string]string{
		"ACCOUNTKIT_STORE":      StoreMemory,
		"ACCOUNTKIT_HEAP_LIMIT": "1099511627776",
	})
	rt := openRuntime(t, cfg)

	if _, ok := rt.Store.(*cache.MemoryStore); !ok {
		t.Errorf("Store = %T", rt.Store)
	}
	report := rt.Health.Report(context.Background())
	if report.Status != health.StatusHealthy {
		t.Errorf("Status = %v, checks = %+v", report.Status, report.Checks)
	}
	for _, name := range []string{"cache", "store", "heap"} {
		if _, ok := report.Checks[name]; !ok {
			t.Errorf("report missing %q", name)
		}
	}
}
