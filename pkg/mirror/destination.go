// Package mirror implements the mirror-tree applier: it turns tree-diff
// operations into create/change/unlink/mkdir/rmdir operations on an
// output directory, symlinking unprocessed files through and preserving
// mtimes when a transform's output is byte-identical to what is already
// on disk.
package mirror

import "strings"

// DestinationPath implements get_dest_file_path: directories have no
// destination path; with no configured extensions the relative path
// passes through unchanged; otherwise a matching extension is replaced
// with targetExtension (if set) or passed through, and a non-matching
// extension yields no destination path at all.
func DestinationPath(relativePath string, extensions []string, targetExtension string) (string, bool) {
	if strings.HasSuffix(relativePath, "/") {
		return "", false
	}
	if extensions == nil {
		return relativePath, true
	}
	for _, ext := range extensions {
		suffix := "." + ext
		if strings.HasSuffix(relativePath, suffix) {
			if targetExtension != "" {
				base := relativePath[:len(relativePath)-len(suffix)]
				return base + "." + targetExtension, true
			}
			return relativePath, true
		}
	}
	return "", false
}

// CanProcess reports whether a file at relativePath should be routed
// through the transform: it is processable exactly when it has a
// destination path.
func CanProcess(relativePath string, extensions []string, targetExtension string) bool {
	_, ok := DestinationPath(relativePath, extensions, targetExtension)
	return ok
}
