package dependencies

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/buildfilter/buildfilter/pkg/filemode"
	"github.com/buildfilter/buildfilter/pkg/snapshot"
)

// document is the on-disk JSON representation of a Dependencies
// instance: the root directory, the declared dependency map, and the
// captured local/external baseline entries needed to detect
// invalidation on the next load.
type document struct {
	RootDir      string              `json:"rootDir"`
	Dependencies map[string][]string `json:"dependencies"`
	FSTrees      []fsTreeDocument    `json:"fsTrees"`
}

type fsTreeDocument struct {
	FSRoot  string          `json:"fsRoot"` // "local" or "external"
	Entries []entryDocument `json:"entries"`
}

type entryDocument struct {
	RelativePath string `json:"relativePath"`
	Type         string `json:"type"` // "stat" or "hash"
	Size         int64  `json:"size,omitempty"`
	Mtime        int64  `json:"mtime,omitempty"`
	Mode         uint32 `json:"mode,omitempty"`
	Hash         string `json:"hash,omitempty"`
}

// Serialize renders the instance (which must be sealed, with a captured
// baseline) as JSON.
func (d *Dependencies) Serialize() ([]byte, error) {
	if !d.sealed {
		return nil, fmt.Errorf("dependencies: cannot serialize an unsealed instance")
	}

	depMap := make(map[string][]string, len(d.dependencyMap))
	for relativePath, deps := range d.dependencyMap {
		copied := make([]string, len(deps))
		copy(copied, deps)
		depMap[relativePath] = copied
	}

	localEntries := make([]entryDocument, len(d.localBaseline))
	for i, e := range d.localBaseline {
		localEntries[i] = entryDocument{
			RelativePath: e.RelativePath,
			Type:         "hash",
			Mode:         uint32(e.Mode),
			Hash:         e.Hash,
		}
	}
	externalEntries := make([]entryDocument, len(d.externalBaseline))
	for i, e := range d.externalBaseline {
		externalEntries[i] = entryDocument{
			RelativePath: e.RelativePath,
			Type:         "stat",
			Size:         e.Size,
			Mtime:        e.ModificationTimeMillis,
			Mode:         uint32(e.Mode),
		}
	}

	doc := document{
		RootDir:      d.rootDir,
		Dependencies: depMap,
		FSTrees: []fsTreeDocument{
			{FSRoot: "local", Entries: localEntries},
			{FSRoot: "external", Entries: externalEntries},
		},
	}
	return json.Marshal(doc)
}

// Deserialize reconstructs a sealed Dependencies from its JSON
// representation. If newRootDir is non-empty and differs from the
// serialized rootDir, every stored dependency and external-tree path that
// started under the old root is rewritten under the new one; local-tree
// paths are relative to the root and carry over unchanged.
func Deserialize(data []byte, newRootDir string) (*Dependencies, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unable to parse dependency state: %w", err)
	}

	oldRootDir := doc.RootDir
	rootDir := oldRootDir
	rebase := func(absPath string) string { return absPath }
	if newRootDir != "" && newRootDir != oldRootDir {
		rootDir = newRootDir
		rebase = func(absPath string) string {
			rel, err := filepath.Rel(oldRootDir, absPath)
			if err != nil || strings.HasPrefix(rel, "..") {
				return absPath
			}
			return filepath.Join(newRootDir, rel)
		}
	}

	d := New(rootDir)
	for relativePath, deps := range doc.Dependencies {
		rebased := make([]string, len(deps))
		for i, dep := range deps {
			rebased[i] = rebase(dep)
		}
		d.dependencyMap[relativePath] = rebased
	}
	d.Seal()

	for _, tree := range doc.FSTrees {
		switch tree.FSRoot {
		case "local":
			entries := make([]snapshot.HashEntry, len(tree.Entries))
			for i, e := range tree.Entries {
				entries[i] = snapshot.HashEntry{
					RelativePath: e.RelativePath,
					Hash:         e.Hash,
					Mode:         filemode.Mode(e.Mode),
				}
			}
			sort.Slice(entries, func(i, j int) bool {
				return entries[i].RelativePath < entries[j].RelativePath
			})
			d.localBaseline = entries
		case "external":
			entries := make([]snapshot.Entry, len(tree.Entries))
			for i, e := range tree.Entries {
				entries[i] = snapshot.Entry{
					RelativePath:           rebase(e.RelativePath),
					Size:                   e.Size,
					ModificationTimeMillis: e.Mtime,
					Mode:                   filemode.Mode(e.Mode),
				}
			}
			sort.Slice(entries, func(i, j int) bool {
				return entries[i].RelativePath < entries[j].RelativePath
			})
			d.externalBaseline = entries
		}
	}

	return d, nil
}
