// Package dependencies implements cross-file dependency declaration and
// invalidation: a transform may declare "file A depends on files B, C",
// and this package correctly reinvalidates A when B or C change, whether
// they live inside the plugin's own input tree or anywhere else on disk.
package dependencies

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/buildfilter/buildfilter/pkg/filemode"
	"github.com/buildfilter/buildfilter/pkg/snapshot"
	"github.com/buildfilter/buildfilter/pkg/treediff"
)

// ErrSealed is returned by SetDependencies once the instance has been
// sealed.
var ErrSealed = errors.New("dependencies: instance is sealed")

// Dependencies tracks declared per-file dependencies for one plugin's
// input tree, plus a reverse index and captured baseline state used to
// compute invalidation on the next build.
type Dependencies struct {
	// rootDir is the absolute base directory of the plugin's input tree.
	rootDir string

	// dependencyMap maps a declaring relative path to the ordered list of
	// absolute paths it depends on.
	dependencyMap map[string][]string

	sealed bool

	// dependentsMap is the reverse index built at seal time: absolute
	// path -> declaring relative paths.
	dependentsMap map[string][]string

	// localPaths and externalPaths are the two fs_roots' path sets, also
	// built at seal time.
	localPaths    map[string]bool // relative to rootDir
	externalPaths map[string]bool // absolute

	// localBaseline and externalBaseline are the captured baseline
	// states for each fs_root, used by GetInvalidatedFiles.
	localBaseline    []snapshot.HashEntry
	externalBaseline []snapshot.Entry
}

// New creates an empty, unsealed Dependencies rooted at rootDir, which
// must be an absolute path.
func New(rootDir string) *Dependencies {
	return &Dependencies{
		rootDir:       rootDir,
		dependencyMap: make(map[string][]string),
	}
}

// RootDir returns the plugin's input tree root.
func (d *Dependencies) RootDir() string { return d.rootDir }

// Sealed reports whether Seal has been called, and therefore whether
// GetInvalidatedFiles may be called.
func (d *Dependencies) Sealed() bool { return d.sealed }

// SetDependencies declares that relativePath depends on the given list of
// paths. Absolute paths are kept as-is; relative paths are resolved
// against the directory containing relativePath within rootDir, so a
// dependency declared by a file in a subdirectory is interpreted
// relative to that subdirectory rather than the tree root.
func (d *Dependencies) SetDependencies(relativePath string, deps []string) error {
	if d.sealed {
		return ErrSealed
	}
	resolved := make([]string, len(deps))
	baseDir := filepath.Join(d.rootDir, filepath.Dir(relativePath))
	for i, dep := range deps {
		if filepath.IsAbs(dep) {
			resolved[i] = filepath.Clean(dep)
		} else {
			resolved[i] = filepath.Clean(filepath.Join(baseDir, dep))
		}
	}
	d.dependencyMap[relativePath] = resolved
	return nil
}

// Dependents returns the relative paths that declared a dependency on
// absolutePath, after sealing.
func (d *Dependencies) Dependents(absolutePath string) []string {
	return d.dependentsMap[absolutePath]
}

// Seal is one-shot and idempotent: it builds the reverse dependents index
// and partitions all declared absolute paths into the local fs_root
// (inside rootDir) and the external fs_root (everywhere else).
func (d *Dependencies) Seal() {
	if d.sealed {
		return
	}
	d.sealed = true

	d.dependentsMap = make(map[string][]string)
	d.localPaths = make(map[string]bool)
	d.externalPaths = make(map[string]bool)

	// Iterate declaring paths in sorted order so that dependentsMap
	// entries (and therefore GetInvalidatedFiles results) are
	// deterministic.
	declarers := make([]string, 0, len(d.dependencyMap))
	for relativePath := range d.dependencyMap {
		declarers = append(declarers, relativePath)
	}
	sort.Strings(declarers)

	for _, relativePath := range declarers {
		for _, dep := range d.dependencyMap[relativePath] {
			d.dependentsMap[dep] = appendUnique(d.dependentsMap[dep], relativePath)
			if rel, ok := d.relativeToRoot(dep); ok {
				d.localPaths[rel] = true
			} else {
				d.externalPaths[dep] = true
			}
		}
	}
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}

// relativeToRoot reports whether absPath lies inside rootDir, returning
// its path relative to rootDir (forward-slash separated) if so.
func (d *Dependencies) relativeToRoot(absPath string) (string, bool) {
	rel, err := filepath.Rel(d.rootDir, absPath)
	if err != nil || strings.HasPrefix(rel, "..") || rel == ".." {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// CaptureBaseline computes the current state of every declared dependency
// path (content hash for local paths, stat triple for external paths) and
// stores it as the baseline against which the next GetInvalidatedFiles
// call will diff. Seal must have been called first.
func (d *Dependencies) CaptureBaseline() error {
	if !d.sealed {
		return errors.New("dependencies: must be sealed before capturing baseline")
	}
	local, err := d.computeLocalState()
	if err != nil {
		return err
	}
	external, err := d.computeExternalState()
	if err != nil {
		return err
	}
	d.localBaseline = local
	d.externalBaseline = external
	return nil
}

func (d *Dependencies) computeLocalState() ([]snapshot.HashEntry, error) {
	paths := make([]string, 0, len(d.localPaths))
	for p := range d.localPaths {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	entries := make([]snapshot.HashEntry, 0, len(paths))
	for _, relPath := range paths {
		absPath := filepath.Join(d.rootDir, filepath.FromSlash(relPath))
		hash, mode, err := hashFile(absPath)
		if err != nil {
			return nil, err
		}
		entries = append(entries, snapshot.HashEntry{
			RelativePath: relPath,
			Hash:         hash,
			Mode:         mode,
		})
	}
	return entries, nil
}

func (d *Dependencies) computeExternalState() ([]snapshot.Entry, error) {
	paths := make([]string, 0, len(d.externalPaths))
	for p := range d.externalPaths {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	entries := make([]snapshot.Entry, 0, len(paths))
	for _, absPath := range paths {
		entry, err := statEntry(absPath)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// hashFile returns the MD5 digest and mode of the file at path, or a
// zero-value ("absent") result if the file does not exist. Missing
// dependency files are tolerated: they are recorded with empty metadata
// and will be treated as a change (and thus invalidate their dependents)
// if they later appear.
func hashFile(path string) (string, filemode.Mode, error) {
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return "", 0, nil
	} else if err != nil {
		return "", 0, nil
	}
	if info.IsDir() {
		return "", filemode.FromOS(info.Mode()), nil
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		return "", 0, nil
	}
	sum := md5.Sum(contents)
	return hex.EncodeToString(sum[:]), filemode.FromOS(info.Mode()), nil
}

// statEntry returns a snapshot.Entry keyed by absPath (stored in
// RelativePath for identity purposes within the external fs_root), or a
// zero-value "absent" entry if the file does not exist.
func statEntry(absPath string) (snapshot.Entry, error) {
	info, err := os.Lstat(absPath)
	if os.IsNotExist(err) || err != nil {
		return snapshot.Entry{RelativePath: absPath}, nil
	}
	return snapshot.Entry{
		RelativePath:           absPath,
		Size:                   info.Size(),
		ModificationTimeMillis: info.ModTime().UnixMilli(),
		Mode:                   filemode.FromOS(info.Mode()),
	}, nil
}

// GetInvalidatedFiles recomputes the current dependency state, diffs it
// against the captured baseline, and returns the unique, sorted list of
// relative paths whose declared dependencies changed. It then atomically
// adopts the recomputed state as the new baseline.
func (d *Dependencies) GetInvalidatedFiles() ([]string, error) {
	if !d.sealed {
		return nil, errors.New("dependencies: must be sealed before querying invalidation")
	}
	currentLocal, err := d.computeLocalState()
	if err != nil {
		return nil, fmt.Errorf("unable to recompute local dependency state: %w", err)
	}
	currentExternal, err := d.computeExternalState()
	if err != nil {
		return nil, fmt.Errorf("unable to recompute external dependency state: %w", err)
	}

	localPatch := treediff.Diff(toHashDiffable(d.localBaseline), toHashDiffable(currentLocal))
	externalPatch := treediff.Diff(toEntryDiffable(d.externalBaseline), toEntryDiffable(currentExternal))

	changed := make(map[string]bool)
	for _, op := range localPatch {
		changed[filepath.Join(d.rootDir, filepath.FromSlash(op.RelativePath))] = true
	}
	for _, op := range externalPatch {
		changed[op.RelativePath] = true
	}

	invalidatedSet := make(map[string]bool)
	for absPath := range changed {
		for _, dependent := range d.dependentsMap[absPath] {
			invalidatedSet[dependent] = true
		}
	}

	invalidated := make([]string, 0, len(invalidatedSet))
	for relativePath := range invalidatedSet {
		invalidated = append(invalidated, relativePath)
	}
	sort.Strings(invalidated)

	// Atomically adopt the recomputed state as the new baseline.
	d.localBaseline = currentLocal
	d.externalBaseline = currentExternal

	return invalidated, nil
}

func toHashDiffable(entries []snapshot.HashEntry) []snapshot.HashEntry { return entries }
func toEntryDiffable(entries []snapshot.Entry) []snapshot.Entry        { return entries }

// CopyWithout produces a fresh, unsealed Dependencies carrying forward
// every declaration except those made by the given relative paths. It is
// used when a build's patch list includes an unlink of a file that had
// declared dependencies. Files that are reprocessed keep their earlier
// declarations in the copy; SetDependencies replaces them when the file
// declares again.
func (d *Dependencies) CopyWithout(files []string) *Dependencies {
	exclude := make(map[string]bool, len(files))
	for _, f := range files {
		exclude[f] = true
	}

	result := New(d.rootDir)
	for relativePath, deps := range d.dependencyMap {
		if exclude[relativePath] {
			continue
		}
		copied := make([]string, len(deps))
		copy(copied, deps)
		result.dependencyMap[relativePath] = copied
	}
	result.localBaseline = d.localBaseline
	result.externalBaseline = d.externalBaseline
	return result
}
