package transform

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/buildfilter/buildfilter/pkg/fingerprint"
	"github.com/buildfilter/buildfilter/pkg/process"
	buildfiltertransform "github.com/buildfilter/buildfilter/pkg/transform"
)

// ShellPipe transforms a file by piping its contents through an external
// command's stdin and capturing its stdout. It is a generic stand-in for
// the many real filters (minifiers, formatters, linters-as-filters) that
// shell out to a separate tool rather than reimplementing it in Go.
type ShellPipe struct {
	baseDir string
	command string
	args    []string
}

// NewShellPipe constructs a ShellPipe that runs command with args,
// resolved via process.FindCommand against PATH if it contains no path
// separator; if the lookup fails, command is used as given.
func NewShellPipe(baseDir, command string, args []string) (*ShellPipe, error) {
	resolved := command
	if !strings.Contains(command, string(os.PathSeparator)) {
		if found, err := process.FindCommand(command, pathDirectories()); err == nil {
			resolved = found
		}
	}
	return &ShellPipe{baseDir: baseDir, command: resolved, args: args}, nil
}

// pathDirectories returns the directories on PATH, the search list that
// process.FindCommand expects.
func pathDirectories() []string {
	return strings.Split(os.Getenv("PATH"), string(os.PathListSeparator))
}

// ProcessString implements transform.Transform.
func (t *ShellPipe) ProcessString(ctx context.Context, contents []byte, relativePath string) (buildfiltertransform.Output, error) {
	cmd := exec.CommandContext(ctx, t.command, t.args...)
	cmd.Stdin = bytes.NewReader(contents)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if message := process.ExtractExitErrorMessage(err); message != "" {
			return buildfiltertransform.Output{}, fmt.Errorf("shell pipe failed for %q: %s", relativePath, message)
		}
		return buildfiltertransform.Output{}, fmt.Errorf("shell pipe failed for %q: %w", relativePath, err)
	}

	return buildfiltertransform.BytesOnly(stdout.Bytes()), nil
}

// BaseDir implements transform.BaseDirer.
func (t *ShellPipe) BaseDir() (string, error) {
	return t.baseDir, nil
}

// CacheKey implements transform.CacheKeyer: the plugin-wide cache key
// depends on the resolved command path and its fixed arguments, so that
// switching to a different binary or flag set invalidates the persistent
// cache rather than silently reusing stale output.
func (t *ShellPipe) CacheKey() string {
	return fingerprint.ComposeKey(append([]string{"shellpipe", t.command}, t.args...)...)
}
