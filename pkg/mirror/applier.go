package mirror

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/buildfilter/buildfilter/pkg/logging"
	"github.com/buildfilter/buildfilter/pkg/must"
)

// Applier writes create/change/unlink/mkdir/rmdir operations to an output
// directory rooted at OutputDir. It tracks which output paths are
// currently materialized as symbolic links so that a later write to one
// of those paths first removes the symlink.
type Applier struct {
	OutputDir string

	mu          sync.Mutex
	outputLinks map[string]bool
	logger      *logging.Logger
}

// New creates an Applier rooted at outputDir.
func New(outputDir string) *Applier {
	return &Applier{
		OutputDir:   outputDir,
		outputLinks: make(map[string]bool),
		logger:      logging.RootLogger.Sublogger("mirror"),
	}
}

func (a *Applier) abs(relativePath string) string {
	return filepath.Join(a.OutputDir, filepath.FromSlash(relativePath))
}

// Mkdir creates a directory (and any missing parents) at relativePath.
func (a *Applier) Mkdir(relativePath string) error {
	if err := os.MkdirAll(a.abs(relativePath), 0o755); err != nil {
		return fmt.Errorf("unable to create directory %q: %w", relativePath, err)
	}
	return nil
}

// Rmdir removes the (assumed-empty, its children having already been
// removed by prior operations in the patch) directory at relativePath.
func (a *Applier) Rmdir(relativePath string) error {
	if err := os.Remove(a.abs(relativePath)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("unable to remove directory %q: %w", relativePath, err)
	}
	a.mu.Lock()
	delete(a.outputLinks, relativePath)
	a.mu.Unlock()
	return nil
}

// Unlink removes the file at relativePath.
func (a *Applier) Unlink(relativePath string) error {
	if err := os.Remove(a.abs(relativePath)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("unable to unlink %q: %w", relativePath, err)
	}
	a.mu.Lock()
	delete(a.outputLinks, relativePath)
	a.mu.Unlock()
	return nil
}

// SymlinkOrCopy materializes relativePath in the output tree as a symbolic
// link to the input file at sourceAbsPath (falling back to a plain copy if
// the platform or filesystem does not support symlinks), used for files
// that can_process_file reports as not processable. If isChange is true,
// any existing file at the destination is removed first.
func (a *Applier) SymlinkOrCopy(sourceAbsPath, relativePath string, isChange bool) error {
	destination := a.abs(relativePath)
	if isChange {
		if err := os.Remove(destination); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("unable to remove previous output for %q: %w", relativePath, err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return fmt.Errorf("unable to create output directory for %q: %w", relativePath, err)
	}

	if err := os.Symlink(sourceAbsPath, destination); err != nil {
		contents, readErr := os.ReadFile(sourceAbsPath)
		if readErr != nil {
			return fmt.Errorf("unable to symlink or copy %q: %w", relativePath, err)
		}
		if writeErr := os.WriteFile(destination, contents, 0o644); writeErr != nil {
			return fmt.Errorf("unable to copy %q: %w", relativePath, writeErr)
		}
		return nil
	}

	a.mu.Lock()
	a.outputLinks[relativePath] = true
	a.mu.Unlock()
	return nil
}

// WriteFile writes data to relativePath, using output_links bookkeeping to
// remove a pre-existing symlink first if necessary, and (when isChange is
// true) skipping the write entirely if the existing output is already
// byte-identical to data, so as to preserve the existing file's
// (mode, size, mtime).
func (a *Applier) WriteFile(relativePath string, data []byte, isChange bool) error {
	destination := a.abs(relativePath)

	a.mu.Lock()
	wasLink := a.outputLinks[relativePath]
	delete(a.outputLinks, relativePath)
	a.mu.Unlock()

	if wasLink {
		if err := os.Remove(destination); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("unable to remove prior symlink at %q: %w", relativePath, err)
		}
	} else if isChange {
		if existing, err := os.ReadFile(destination); err == nil && bytes.Equal(existing, data) {
			return nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return fmt.Errorf("unable to create output directory for %q: %w", relativePath, err)
	}

	temporary := destination + "." + uuid.New().String() + ".tmp"
	if err := os.WriteFile(temporary, data, 0o644); err != nil {
		return fmt.Errorf("unable to write %q: %w", relativePath, err)
	}
	if err := os.Rename(temporary, destination); err != nil {
		must.OSRemove(temporary, a.logger)
		return fmt.Errorf("unable to finalize %q: %w", relativePath, err)
	}
	return nil
}

// Reset discards all output-link bookkeeping and removes the entire
// output tree, used by the engine's self-healing recovery after a
// failed build: since a failed build may have left the output tree and
// this bookkeeping in an inconsistent state, the safest recovery is to
// start the next build from a clean slate.
func (a *Applier) Reset() error {
	a.mu.Lock()
	a.outputLinks = make(map[string]bool)
	a.mu.Unlock()
	if err := os.RemoveAll(a.OutputDir); err != nil {
		return fmt.Errorf("unable to clear output tree: %w", err)
	}
	return os.MkdirAll(a.OutputDir, 0o755)
}
