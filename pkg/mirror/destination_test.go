package mirror

import "testing"

func TestDestinationPathNoExtensionsConfigured(t *testing.T) {
	path, ok := DestinationPath("a/b.txt", nil, "")
	if !ok || path != "a/b.txt" {
		t.Fatalf("expected pass-through, got %q, %v", path, ok)
	}
}

func TestDestinationPathDirectoryHasNoDestination(t *testing.T) {
	if _, ok := DestinationPath("a/b/", nil, ""); ok {
		t.Fatalf("expected directories to have no destination path")
	}
}

func TestDestinationPathMatchingExtensionNoRewrite(t *testing.T) {
	path, ok := DestinationPath("page.md", []string{"md"}, "")
	if !ok || path != "page.md" {
		t.Fatalf("expected pass-through for matching extension, got %q, %v", path, ok)
	}
}

func TestDestinationPathMatchingExtensionWithRewrite(t *testing.T) {
	path, ok := DestinationPath("page.md", []string{"md"}, "html")
	if !ok || path != "page.html" {
		t.Fatalf("expected rewritten extension, got %q, %v", path, ok)
	}
}

func TestDestinationPathNonMatchingExtensionExcluded(t *testing.T) {
	if _, ok := DestinationPath("image.png", []string{"md"}, "html"); ok {
		t.Fatalf("expected non-matching extension to be excluded")
	}
}

func TestCanProcessMirrorsDestinationPath(t *testing.T) {
	if !CanProcess("page.md", []string{"md"}, "") {
		t.Fatalf("expected page.md to be processable")
	}
	if CanProcess("image.png", []string{"md"}, "") {
		t.Fatalf("expected image.png to not be processable")
	}
}
