package transform

import (
	"context"
	"testing"
)

func TestShellPipeUppercasesViaTr(t *testing.T) {
	sp, err := NewShellPipe("/base", "tr", []string{"a-z", "A-Z"})
	if err != nil {
		t.Fatalf("NewShellPipe failed: %v", err)
	}
	output, err := sp.ProcessString(context.Background(), []byte("hello"), "f.txt")
	if err != nil {
		t.Skipf("tr not available in this environment: %v", err)
	}
	result := output.Normalize()
	if string(result.Output) != "HELLO" {
		t.Fatalf("unexpected output: %q", result.Output)
	}
}

func TestShellPipeBaseDir(t *testing.T) {
	sp, err := NewShellPipe("/some/base", "cat", nil)
	if err != nil {
		t.Fatalf("NewShellPipe failed: %v", err)
	}
	baseDir, err := sp.BaseDir()
	if err != nil || baseDir != "/some/base" {
		t.Fatalf("unexpected BaseDir result: %q, %v", baseDir, err)
	}
}

func TestShellPipeCacheKeyVariesByCommandAndArgs(t *testing.T) {
	a, err := NewShellPipe("/base", "cat", []string{"-n"})
	if err != nil {
		t.Fatalf("NewShellPipe failed: %v", err)
	}
	b, err := NewShellPipe("/base", "cat", []string{"-A"})
	if err != nil {
		t.Fatalf("NewShellPipe failed: %v", err)
	}
	if a.CacheKey() == b.CacheKey() {
		t.Fatalf("expected distinct cache keys for distinct arguments")
	}
}

func TestShellPipeFailingCommandReturnsError(t *testing.T) {
	sp, err := NewShellPipe("/base", "false", nil)
	if err != nil {
		t.Fatalf("NewShellPipe failed: %v", err)
	}
	if _, err := sp.ProcessString(context.Background(), []byte("data"), "f.txt"); err == nil {
		t.Fatalf("expected an error from a failing command")
	}
}
