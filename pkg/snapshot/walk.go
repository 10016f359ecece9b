package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/text/unicode/norm"

	"github.com/buildfilter/buildfilter/pkg/filemode"
)

// Walk performs a recursive, lexicographically ordered traversal of dir and
// returns the resulting Snapshot. Errors encountered on individual entries
// are fatal to the walk and propagate to the caller, matching the spec's
// "errors are fatal to the build" rule.
//
// Symbolic links are followed to their target's stat information (so that
// their size/mtime/mode reflect the target), but remain represented at
// their original relative path. A symbolic link to a directory is
// transparently traversed, mirroring the common case of vendored or
// workspace-linked dependency trees; a cycle guard based on resolved
// absolute paths prevents infinite recursion.
func Walk(dir string) (*Snapshot, error) {
	var entries []Entry
	visited := make(map[string]bool)
	if err := walkInto(dir, "", &entries, visited); err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].RelativePath < entries[j].RelativePath
	})
	return New(entries), nil
}

func walkInto(baseDir, relativePrefix string, entries *[]Entry, visited map[string]bool) error {
	absDir := filepath.Join(baseDir, relativePrefix)
	real, err := filepath.EvalSymlinks(absDir)
	if err != nil {
		return fmt.Errorf("unable to resolve %q: %w", absDir, err)
	}
	if visited[real] {
		return nil
	}
	visited[real] = true

	children, err := os.ReadDir(absDir)
	if err != nil {
		return fmt.Errorf("unable to list %q: %w", absDir, err)
	}

	for _, child := range children {
		name := normalizePathComponent(child.Name())
		childRelative := name
		if relativePrefix != "" {
			childRelative = relativePrefix + "/" + name
		}
		childAbs := filepath.Join(baseDir, childRelative)

		info, err := os.Lstat(childAbs)
		if err != nil {
			return fmt.Errorf("unable to stat %q: %w", childAbs, err)
		}

		if info.Mode()&os.ModeSymlink != 0 {
			target, err := os.Stat(childAbs)
			if err != nil {
				return fmt.Errorf("unable to resolve symbolic link %q: %w", childAbs, err)
			}
			if target.IsDir() {
				dirEntryPath := childRelative + "/"
				*entries = append(*entries, Entry{
					RelativePath: dirEntryPath,
					Mode:         filemode.FromOS(target.Mode()) | filemode.TypeDirectory,
				})
				if err := walkInto(baseDir, childRelative, entries, visited); err != nil {
					return err
				}
				continue
			}
			*entries = append(*entries, Entry{
				RelativePath:           childRelative,
				Size:                   target.Size(),
				ModificationTimeMillis: target.ModTime().UnixMilli(),
				Mode:                   filemode.FromOS(target.Mode()) | filemode.TypeSymbolicLink,
			})
			continue
		}

		if info.IsDir() {
			dirEntryPath := childRelative + "/"
			*entries = append(*entries, Entry{
				RelativePath: dirEntryPath,
				Mode:         filemode.FromOS(info.Mode()),
			})
			if err := walkInto(baseDir, childRelative, entries, visited); err != nil {
				return err
			}
			continue
		}

		*entries = append(*entries, Entry{
			RelativePath:           childRelative,
			Size:                   info.Size(),
			ModificationTimeMillis: info.ModTime().UnixMilli(),
			Mode:                   filemode.FromOS(info.Mode()),
		})
	}

	return nil
}

// normalizePathComponent applies NFC Unicode normalization to a single path
// component, so that relative paths compare equal across platforms (notably
// macOS/HFS+) that decompose Unicode differently on disk.
func normalizePathComponent(name string) string {
	return norm.NFC.String(name)
}
