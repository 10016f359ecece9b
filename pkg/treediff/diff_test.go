package treediff

import (
	"reflect"
	"testing"
)

type fakeEntry struct {
	path  string
	dir   bool
	value int
}

func (e fakeEntry) Key() string { return e.path }
func (e fakeEntry) IsDir() bool { return e.dir }
func (e fakeEntry) SameAs(other fakeEntry) bool {
	return e.dir == other.dir && e.value == other.value
}

func opKinds(patch Patch[fakeEntry]) []Op {
	result := make([]Op, len(patch))
	for i, o := range patch {
		result[i] = o.Op
	}
	return result
}

func opPaths(patch Patch[fakeEntry]) []string {
	result := make([]string, len(patch))
	for i, o := range patch {
		result[i] = o.RelativePath
	}
	return result
}

func TestDiffEmptyToEmpty(t *testing.T) {
	patch := Diff[fakeEntry](nil, nil)
	if len(patch) != 0 {
		t.Fatalf("expected empty patch, got %v", patch)
	}
}

func TestDiffAllAdditions(t *testing.T) {
	next := []fakeEntry{
		{path: "a/", dir: true},
		{path: "a/file.txt", value: 1},
	}
	patch := Diff[fakeEntry](nil, next)
	if got, want := opKinds(patch), []Op{OpMkdir, OpCreate}; !reflect.DeepEqual(got, want) {
		t.Fatalf("op kinds = %v, want %v", got, want)
	}
	if got, want := opPaths(patch), []string{"a/", "a/file.txt"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("op paths = %v, want %v", got, want)
	}
}

func TestDiffAllRemovalsDeepestFirst(t *testing.T) {
	prev := []fakeEntry{
		{path: "a/", dir: true},
		{path: "a/file.txt", value: 1},
	}
	patch := Diff[fakeEntry](prev, nil)
	if got, want := opKinds(patch), []Op{OpUnlink, OpRmdir}; !reflect.DeepEqual(got, want) {
		t.Fatalf("op kinds = %v, want %v", got, want)
	}
	if got, want := opPaths(patch), []string{"a/file.txt", "a/"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("op paths = %v, want %v", got, want)
	}
}

func TestDiffChangeDetection(t *testing.T) {
	prev := []fakeEntry{{path: "file.txt", value: 1}}
	next := []fakeEntry{{path: "file.txt", value: 2}}
	patch := Diff[fakeEntry](prev, next)
	if len(patch) != 1 || patch[0].Op != OpChange {
		t.Fatalf("expected single change op, got %v", patch)
	}
}

func TestDiffUnchangedProducesNoOps(t *testing.T) {
	prev := []fakeEntry{{path: "file.txt", value: 1}}
	next := []fakeEntry{{path: "file.txt", value: 1}}
	patch := Diff[fakeEntry](prev, next)
	if len(patch) != 0 {
		t.Fatalf("expected no ops for unchanged entry, got %v", patch)
	}
}

func TestDiffTypeFlipIsRemoveThenAdd(t *testing.T) {
	prev := []fakeEntry{{path: "thing", dir: false, value: 1}}
	next := []fakeEntry{{path: "thing", dir: true}}
	patch := Diff[fakeEntry](prev, next)
	if got, want := opKinds(patch), []Op{OpUnlink, OpMkdir}; !reflect.DeepEqual(got, want) {
		t.Fatalf("op kinds = %v, want %v", got, want)
	}
}

func TestDedupKeepsFirstOccurrence(t *testing.T) {
	patch := Patch[fakeEntry]{
		{Op: OpChange, RelativePath: "a", Entry: fakeEntry{value: 1}},
		{Op: OpChange, RelativePath: "a", Entry: fakeEntry{value: 2}},
		{Op: OpCreate, RelativePath: "b"},
	}
	deduped := Dedup(patch)
	if len(deduped) != 2 {
		t.Fatalf("expected 2 deduped ops, got %d: %v", len(deduped), deduped)
	}
	if deduped[0].Entry.value != 1 {
		t.Fatalf("expected first occurrence to survive dedup, got value %d", deduped[0].Entry.value)
	}
}
