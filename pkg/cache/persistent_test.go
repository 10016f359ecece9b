package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/buildfilter/buildfilter/pkg/logging"
	"github.com/buildfilter/buildfilter/pkg/transformresult"
)

func TestPersistentGetSetRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	logger := logging.RootLogger.Sublogger("cache-test")
	p := NewPersistent(store, "plugin-key", logger)

	result := transformresult.Result{Output: []byte("rendered"), Extra: map[string]interface{}{"lang": "en"}}
	p.Set("page.html", result)

	got, ok := p.Get("page.html")
	if !ok {
		t.Fatalf("expected hit after Set")
	}
	if string(got.Output) != "rendered" || got.Extra["lang"] != "en" {
		t.Fatalf("unexpected round-tripped result: %+v", got)
	}
}

func TestPersistentNamespaceIsolatesPluginKeys(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	logger := logging.RootLogger.Sublogger("cache-test")
	a := NewPersistent(store, "plugin-a", logger)
	b := NewPersistent(store, "plugin-b", logger)

	a.Set("same-name", transformresult.Result{Output: []byte("from-a")})
	if _, ok := b.Get("same-name"); ok {
		t.Fatalf("expected plugin-b to see no entry written by plugin-a")
	}
}

func TestPersistentGetMissMissingKey(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	logger := logging.RootLogger.Sublogger("cache-test")
	p := NewPersistent(store, "plugin-key", logger)
	if _, ok := p.Get("missing"); ok {
		t.Fatalf("expected miss for absent key")
	}
}

func TestPruneRemovesOnlyStaleEntries(t *testing.T) {
	root := t.TempDir()
	stale := filepath.Join(root, "stale.bin")
	fresh := filepath.Join(root, "fresh.bin")
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatalf("unable to write stale file: %v", err)
	}
	if err := os.WriteFile(fresh, []byte("new"), 0o644); err != nil {
		t.Fatalf("unable to write fresh file: %v", err)
	}

	longAgo := time.Now().Add(-30 * 24 * time.Hour)
	if err := os.Chtimes(stale, longAgo, longAgo); err != nil {
		t.Fatalf("unable to backdate stale file: %v", err)
	}

	if err := Prune(root, 24*time.Hour); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("expected stale file to be removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("expected fresh file to survive prune: %v", err)
	}
}
