// Package treediff diffs two ordered snapshots of a tree into a minimal,
// ordered sequence of filesystem operations that reconstructs the second
// from the first.
package treediff

import "sort"

// Op identifies the kind of filesystem operation a treediff.Operation
// describes.
type Op int

const (
	// OpMkdir creates a directory.
	OpMkdir Op = iota
	// OpRmdir removes a directory.
	OpRmdir
	// OpUnlink removes a file.
	OpUnlink
	// OpCreate creates a file.
	OpCreate
	// OpChange updates an existing file or directory's metadata.
	OpChange
)

// String renders the operation kind for diagnostics.
func (o Op) String() string {
	switch o {
	case OpMkdir:
		return "mkdir"
	case OpRmdir:
		return "rmdir"
	case OpUnlink:
		return "unlink"
	case OpCreate:
		return "create"
	case OpChange:
		return "change"
	default:
		return "unknown"
	}
}

// Diffable is the constraint satisfied by entry types that can be diffed:
// snapshot.Entry (stat-based) and snapshot.HashEntry (content-hash based).
// Key identifies the entry's position in the tree (its relative, or for
// dependency tracking of external files, absolute, path). IsDir reports
// whether the entry is a directory. SameAs reports whether two entries
// sharing a Key describe unchanged content.
type Diffable[T any] interface {
	Key() string
	IsDir() bool
	SameAs(other T) bool
}

// Operation is a single step of a Patch: a (op, path, entry) triple. Entry
// is the destination state for OpCreate/OpChange/OpMkdir, and is the zero
// value for OpUnlink/OpRmdir.
type Operation[T any] struct {
	Op           Op
	RelativePath string
	Entry        T
}

// Patch is an ordered sequence of operations that reconstructs next from
// prev when applied to a tree already in prev's state.
type Patch[T any] []Operation[T]

// Diff compares two ordered, Key-sorted entry sequences and returns the
// patch required to turn prev into next.
//
// Emission order: all removals (unlink/rmdir) are emitted first, deepest
// paths before their parents, so that a directory's children are always
// removed before the directory itself; then all additions/changes
// (mkdir/create/change) are emitted, shallowest paths before their
// children, so that a directory exists before anything is written beneath
// it. Removals are ordered by reverse lexicographic path order; additions
// keep the lexicographic order of next.
func Diff[T Diffable[T]](prev, next []T) Patch[T] {
	var removals Patch[T]
	var additions Patch[T]

	i, j := 0, 0
	for i < len(prev) && j < len(next) {
		pKey, nKey := prev[i].Key(), next[j].Key()
		switch {
		case pKey < nKey:
			removals = append(removals, removalOp(prev[i]))
			i++
		case pKey > nKey:
			additions = append(additions, additionOp(next[j], true))
			j++
		default:
			if !prev[i].SameAs(next[j]) {
				if prev[i].IsDir() != next[j].IsDir() {
					removals = append(removals, removalOp(prev[i]))
					additions = append(additions, additionOp(next[j], true))
				} else {
					additions = append(additions, additionOp(next[j], false))
				}
			}
			i++
			j++
		}
	}
	for ; i < len(prev); i++ {
		removals = append(removals, removalOp(prev[i]))
	}
	for ; j < len(next); j++ {
		additions = append(additions, additionOp(next[j], true))
	}

	// Removals: deepest/longest paths first, so that a path is always
	// removed before any strict prefix of it (its parent directory).
	sort.SliceStable(removals, func(a, b int) bool {
		return removals[a].RelativePath > removals[b].RelativePath
	})

	result := make(Patch[T], 0, len(removals)+len(additions))
	result = append(result, removals...)
	result = append(result, additions...)
	return result
}

func removalOp[T any](entry Diffable[T]) Operation[T] {
	op := OpUnlink
	if entry.IsDir() {
		op = OpRmdir
	}
	return Operation[T]{Op: op, RelativePath: entry.Key()}
}

func additionOp[T Diffable[T]](entry T, isNew bool) Operation[T] {
	d := entry
	op := OpChange
	if isNew {
		op = OpCreate
		if d.IsDir() {
			op = OpMkdir
		}
	}
	return Operation[T]{Op: op, RelativePath: d.Key(), Entry: entry}
}

// Dedup removes duplicate (op, path) pairs from a patch, keeping the first
// occurrence of each, matching the engine's rule for merging a tree diff
// with synthetic dependency-invalidation operations.
func Dedup[T any](patch Patch[T]) Patch[T] {
	type key struct {
		op   Op
		path string
	}
	seen := make(map[key]bool, len(patch))
	result := make(Patch[T], 0, len(patch))
	for _, op := range patch {
		k := key{op.Op, op.RelativePath}
		if seen[k] {
			continue
		}
		seen[k] = true
		result = append(result, op)
	}
	return result
}
