package snapshot

import (
	"strings"

	"github.com/buildfilter/buildfilter/pkg/filemode"
)

// Entry represents a single filesystem item visible in an input tree. Within
// a Snapshot, relative paths are unique and sorted lexicographically, and
// every non-root entry's parent directory is also present.
type Entry struct {
	// RelativePath is forward-slash separated and carries no leading slash.
	// Directory entries end in a trailing slash.
	RelativePath string
	// Size is the entry's size in bytes. It is meaningless for directories.
	Size int64
	// ModificationTimeMillis is the entry's modification time, in integer
	// milliseconds since the Unix epoch.
	ModificationTimeMillis int64
	// Mode carries the entry's type and permission bits.
	Mode filemode.Mode
	// FileID is an optional, informational device+inode identifier. Walk
	// does not populate it, and it is never consulted for diff or
	// invalidation decisions.
	FileID string
}

// IsDirectory reports whether the entry represents a directory, derived
// from the trailing slash on its relative path (the authoritative signal
// used by the walker) with the mode bit as a fallback for entries
// constructed directly from stat results.
func (e Entry) IsDirectory() bool {
	if strings.HasSuffix(e.RelativePath, "/") {
		return true
	}
	return e.Mode.IsDirectory()
}

// Key implements treediff.Diffable, identifying the entry by its relative
// path.
func (e Entry) Key() string { return e.RelativePath }

// IsDir implements treediff.Diffable.
func (e Entry) IsDir() bool { return e.IsDirectory() }

// SameAs implements treediff.Diffable, comparing mtime/size for files and
// permission bits for either type, per the spec's change-detection rule.
func (e Entry) SameAs(other Entry) bool { return e.sameContent(other) }

// sameContent reports whether two entries describe the same file state for
// diffing purposes: matching mtime and size for files, matching permission
// bits for either. Callers compare a prev/next pair that are already known
// to share a relative path.
func (e Entry) sameContent(other Entry) bool {
	if e.Mode.Permissions() != other.Mode.Permissions() {
		return false
	}
	if e.IsDirectory() || other.IsDirectory() {
		return e.IsDirectory() == other.IsDirectory()
	}
	return e.ModificationTimeMillis == other.ModificationTimeMillis && e.Size == other.Size
}
