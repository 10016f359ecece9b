package snapshot

import "sort"

// Snapshot is an ordered, immutable sequence of Entry values, sorted
// lexicographically by relative path. It represents a single directory
// walk, or a baseline restored from a prior build.
type Snapshot struct {
	entries []Entry
	index   map[string]int
}

// New constructs a Snapshot from an unordered entry list, sorting
// defensively and building a lookup index. Callers that already have
// entries in sorted order (the walker) may still call New; the sort is a
// no-op in that case.
func New(entries []Entry) *Snapshot {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].RelativePath < sorted[j].RelativePath
	})
	index := make(map[string]int, len(sorted))
	for i, e := range sorted {
		index[e.RelativePath] = i
	}
	return &Snapshot{entries: sorted, index: index}
}

// Empty returns the empty Snapshot.
func Empty() *Snapshot {
	return &Snapshot{}
}

// Entries returns the snapshot's entries in sorted order. The returned
// slice must not be mutated by the caller.
func (s *Snapshot) Entries() []Entry {
	if s == nil {
		return nil
	}
	return s.entries
}

// Get looks up an entry by relative path.
func (s *Snapshot) Get(relativePath string) (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}
	i, ok := s.index[relativePath]
	if !ok {
		return Entry{}, false
	}
	return s.entries[i], true
}

// Len returns the number of entries in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}
