package cache

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/buildfilter/buildfilter/pkg/compression"
	"github.com/buildfilter/buildfilter/pkg/logging"
	"github.com/buildfilter/buildfilter/pkg/must"
)

// Store is the disk-backed key/value interface the persistent cache layer
// is built on. It is deliberately tiny: the surrounding pipeline host may
// supply any backend; FileStore is this repository's own reference
// implementation, a flat, compressed-on-disk store rooted at a single
// directory.
type Store interface {
	// Get returns the raw (decompressed) bytes stored under key, or
	// found=false if the key is absent or unreadable.
	Get(key string) (data []byte, found bool)
	// Set stores data under key and returns any failure to the caller,
	// which decides whether to log it.
	Set(key string, data []byte) error
}

// FileStore is a directory-rooted Store that compresses values with the
// pkg/compression DEFLATE wrapper before writing them to disk. DEFLATE
// is used here rather than Zstandard since the latter lives behind an
// SSPL build tag and an SSPL-licensed dependency this module
// intentionally excludes.
type FileStore struct {
	root   string
	logger *logging.Logger
}

// NewFileStore creates a FileStore rooted at root, creating the directory
// if necessary.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create cache root %q: %w", root, err)
	}
	return &FileStore{root: root, logger: logging.RootLogger.Sublogger("cache.filestore")}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.root, key)
}

// Get implements Store.Get.
func (s *FileStore) Get(key string) ([]byte, bool) {
	compressed, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false
	}
	data, err := io.ReadAll(compression.NewDecompressingReader(bytes.NewReader(compressed)))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set implements Store.Set. Writes go through a randomly-named sibling
// file followed by a rename, so that a reader never observes a
// partially-written cache entry, and so that concurrent Set calls for
// the same key never corrupt one another.
func (s *FileStore) Set(key string, data []byte) error {
	destination := s.path(key)
	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return fmt.Errorf("unable to create cache directory: %w", err)
	}

	var buffer bytes.Buffer
	if _, err := compression.NewCompressingWriter(&buffer).Write(data); err != nil {
		return fmt.Errorf("unable to compress cache entry: %w", err)
	}

	temporary := destination + "." + uuid.New().String() + ".tmp"
	if err := os.WriteFile(temporary, buffer.Bytes(), 0o644); err != nil {
		return fmt.Errorf("unable to write temporary cache entry: %w", err)
	}
	if err := os.Rename(temporary, destination); err != nil {
		must.OSRemove(temporary, s.logger)
		return fmt.Errorf("unable to finalize cache entry: %w", err)
	}
	return nil
}
