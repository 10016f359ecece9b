package cache

import (
	"sync"

	"github.com/golang/groupcache/lru"

	"github.com/buildfilter/buildfilter/pkg/transformresult"
)

// Memory is the in-memory cache layer: a mapping from file cache key to
// ProcessResult, kept for the duration of a single build. Neither the
// filter nor the processor strategies construct or consult a Memory;
// persistent lookups go straight to the Store.
//
// It is built atop groupcache's lru.Cache (also used elsewhere in this
// codebase's ecosystem for non-recursive filesystem watch descriptor
// caching) configured unbounded by default, since a build-scoped cache
// is expected to be discarded in full between builds rather than
// evicted piecemeal; hosts that want to bound per-build memory can
// supply a positive maxEntries.
type Memory struct {
	mu    sync.Mutex
	inner *lru.Cache
}

// NewMemory creates a new in-memory cache layer. A maxEntries of zero
// means unbounded.
func NewMemory(maxEntries int) *Memory {
	return &Memory{inner: lru.New(maxEntries)}
}

// Get looks up key, returning the cached result and whether it was found.
func (m *Memory) Get(key string) (transformresult.Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.inner.Get(key)
	if !ok {
		return transformresult.Result{}, false
	}
	return value.(transformresult.Result), true
}

// Set stores result under key.
func (m *Memory) Set(key string, result transformresult.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inner.Add(key, result)
}

// Len returns the number of entries currently cached.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inner.Len()
}
