package snapshot

import "github.com/buildfilter/buildfilter/pkg/filemode"

// HashEntry is the variant of Entry used for tracking dependencies that
// live inside a plugin's own input tree: stat fields are replaced with a
// content hash, since in-tree paths are observed to change many times per
// build with identical content (host copy operations, for example), and
// hashing avoids false invalidation in that case.
type HashEntry struct {
	RelativePath string
	Hash         string
	Mode         filemode.Mode
}

// IsDirectory reports whether the hash entry represents a directory.
func (e HashEntry) IsDirectory() bool {
	return e.Mode.IsDirectory()
}

// Key implements treediff.Diffable.
func (e HashEntry) Key() string { return e.RelativePath }

// IsDir implements treediff.Diffable.
func (e HashEntry) IsDir() bool { return e.IsDirectory() }

// SameAs implements treediff.Diffable, comparing content hashes rather
// than stat metadata, since in-tree dependency paths may be rewritten with
// identical content many times per build.
func (e HashEntry) SameAs(other HashEntry) bool { return e.sameContent(other) }

func (e HashEntry) sameContent(other HashEntry) bool {
	if e.IsDirectory() || other.IsDirectory() {
		return e.IsDirectory() == other.IsDirectory()
	}
	return e.Hash == other.Hash
}
