package filemode

import (
	"os"
	"testing"
)

func TestFromOSDirectory(t *testing.T) {
	m := FromOS(os.ModeDir | 0o755)
	if !m.IsDirectory() {
		t.Fatalf("expected directory mode")
	}
	if m.IsSymbolicLink() {
		t.Fatalf("directory mode should not report as symlink")
	}
	if m.Permissions() != 0o755 {
		t.Fatalf("unexpected permissions: %o", m.Permissions())
	}
}

func TestFromOSSymlink(t *testing.T) {
	m := FromOS(os.ModeSymlink | 0o777)
	if !m.IsSymbolicLink() {
		t.Fatalf("expected symlink mode")
	}
	if m.IsDirectory() {
		t.Fatalf("symlink mode should not report as directory")
	}
}

func TestFromOSRegularFile(t *testing.T) {
	m := FromOS(0o644)
	if m.IsDirectory() || m.IsSymbolicLink() {
		t.Fatalf("expected plain regular-file mode")
	}
	if m.Permissions() != 0o644 {
		t.Fatalf("unexpected permissions: %o", m.Permissions())
	}
}
