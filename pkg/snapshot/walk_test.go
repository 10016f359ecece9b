package snapshot

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWalkBasicTree(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "top.txt"), []byte("top"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "sub", "nested.txt"), []byte("nested"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	snap, err := Walk(root)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	entry, ok := snap.Get("sub/nested.txt")
	if !ok {
		t.Fatalf("expected sub/nested.txt in snapshot")
	}
	if entry.IsDirectory() {
		t.Fatalf("sub/nested.txt incorrectly marked as directory")
	}
	if entry.Size != int64(len("nested")) {
		t.Fatalf("unexpected size %d", entry.Size)
	}

	dirEntry, ok := snap.Get("sub/")
	if !ok {
		t.Fatalf("expected sub/ directory entry in snapshot")
	}
	if !dirEntry.IsDirectory() {
		t.Fatalf("sub/ not marked as directory")
	}

	if _, ok := snap.Get("top.txt"); !ok {
		t.Fatalf("expected top.txt in snapshot")
	}
}

func TestWalkEntriesAreSorted(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b.txt", "a.txt", "c.txt"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	snap, err := Walk(root)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	var paths []string
	for _, e := range snap.Entries() {
		paths = append(paths, e.RelativePath)
	}
	for i := 1; i < len(paths); i++ {
		if paths[i-1] >= paths[i] {
			t.Fatalf("entries not sorted: %v", paths)
		}
	}
}
