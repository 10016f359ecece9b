package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/mutagen-io/extstat"

	"github.com/buildfilter/buildfilter/pkg/buildfilterenv"
	"github.com/buildfilter/buildfilter/pkg/logging"
	"github.com/buildfilter/buildfilter/pkg/transformresult"
)

// DefaultRoot computes the default persistent cache root: the
// PERSISTENT_FILTER_CACHE_ROOT environment variable if set, otherwise an
// XDG-compliant cache directory (github.com/adrg/xdg).
func DefaultRoot() string {
	if root, ok := buildfilterenv.PersistentCacheRoot(); ok {
		return root
	}
	return filepath.Join(xdg.CacheHome, "buildfilter")
}

// wireEntry is the on-disk JSON envelope for a cached ProcessResult.
type wireEntry struct {
	Output []byte                 `json:"output"`
	Extra  map[string]interface{} `json:"extra,omitempty"`
}

// Persistent is the optional, disk-backed cache layer. It is namespaced
// by a plugin-wide cache key (stable across runs, changing only when the
// transform's environment or identity changes) so that distinct
// transforms, or distinct versions of the same transform, never collide.
type Persistent struct {
	store     Store
	namespace string
	logger    *logging.Logger
}

// NewPersistent wraps store with a namespace derived from pluginCacheKey.
func NewPersistent(store Store, pluginCacheKey string, logger *logging.Logger) *Persistent {
	return &Persistent{store: store, namespace: pluginCacheKey, logger: logger}
}

func (p *Persistent) namespacedKey(fileCacheKey string) string {
	return filepath.Join(p.namespace, fileCacheKey)
}

// Get never fails observably: on any I/O or decoding error it returns
// cached=false, as though the entry were simply absent.
func (p *Persistent) Get(fileCacheKey string) (transformresult.Result, bool) {
	raw, found := p.store.Get(p.namespacedKey(fileCacheKey))
	if !found {
		return transformresult.Result{}, false
	}
	var entry wireEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		p.logger.Warn(fmt.Errorf("corrupt persistent cache entry for %s: %w", fileCacheKey, err))
		return transformresult.Result{}, false
	}
	return transformresult.Result{Output: entry.Output, Extra: entry.Extra}, true
}

// Set is fire-and-forget: a cache write failure should never fail a
// build, since the build's correctness does not depend on the entry
// having been persisted, only its speed on a future run. Errors are
// logged but never raised to the caller.
func (p *Persistent) Set(fileCacheKey string, result transformresult.Result) {
	entry := wireEntry{Output: result.Output, Extra: result.Extra}
	raw, err := json.Marshal(entry)
	if err != nil {
		p.logger.Warn(fmt.Errorf("unable to encode cache entry for %s: %w", fileCacheKey, err))
		return
	}
	if err := p.store.Set(p.namespacedKey(fileCacheKey), raw); err != nil {
		p.logger.Warn(fmt.Errorf("unable to persist cache entry for %s: %w", fileCacheKey, err))
	}
}

// Prune removes persistent cache entries under root that have not been
// accessed within maxAge, using extstat to read access times the same
// way agent housekeeping elsewhere in this ecosystem prunes stale
// installed agent versions (pkg/agent/housekeeping.go,
// pkg/housekeeping/housekeep.go). This guards against unbounded growth
// of a cache meant to span many independent process runs.
func Prune(root string, maxAge time.Duration) error {
	now := time.Now()
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		stat, statErr := extstat.NewFromFileName(path)
		if statErr != nil {
			return nil
		}
		if now.Sub(stat.AccessTime) > maxAge {
			os.Remove(path)
		}
		return nil
	})
}
