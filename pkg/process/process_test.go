package process

import (
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

func TestExecutableNameAddsExeSuffixOnWindows(t *testing.T) {
	if got := ExecutableName("tool", "windows"); got != "tool.exe" {
		t.Fatalf("expected tool.exe on windows, got %q", got)
	}
	if got := ExecutableName("tool", "linux"); got != "tool" {
		t.Fatalf("expected no suffix on linux, got %q", got)
	}
}

func TestFindCommandLocatesExecutableOnPath(t *testing.T) {
	path, err := exec.LookPath("ls")
	if err != nil {
		t.Skip("ls not available in this environment")
	}
	found, err := FindCommand("ls", []string{filepath.Dir(path)})
	if err != nil {
		t.Fatalf("FindCommand failed: %v", err)
	}
	if found != path {
		t.Fatalf("expected %q, got %q", path, found)
	}
}

func TestFindCommandReturnsErrorWhenMissing(t *testing.T) {
	if _, err := FindCommand("definitely-not-a-real-command", []string{t.TempDir()}); err == nil {
		t.Fatalf("expected an error for a missing command")
	}
}

func TestOutputIsPOSIXCommandNotFound(t *testing.T) {
	if !OutputIsPOSIXCommandNotFound("bash: foo: command not found") {
		t.Fatalf("expected POSIX command-not-found fragment to be detected")
	}
	if OutputIsPOSIXCommandNotFound("everything is fine") {
		t.Fatalf("expected no false positive")
	}
}

func TestExtractExitErrorMessageNonExitError(t *testing.T) {
	if got := ExtractExitErrorMessage(nil); got != "" {
		t.Fatalf("expected empty string for a non-ExitError, got %q", got)
	}
}

func TestExitCodeForProcessStateOfRealCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX wait status semantics assumed")
	}
	cmd := exec.Command("false")
	err := cmd.Run()
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Skip("\"false\" not available in this environment")
	}
	code, err := ExitCodeForProcessState(exitErr.ProcessState)
	if err != nil {
		t.Fatalf("ExitCodeForProcessState failed: %v", err)
	}
	if code != 1 {
		t.Fatalf("expected exit code 1 from \"false\", got %d", code)
	}
}
