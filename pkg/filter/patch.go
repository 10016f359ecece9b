package filter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/buildfilter/buildfilter/pkg/dependencies"
	"github.com/buildfilter/buildfilter/pkg/mirror"
	"github.com/buildfilter/buildfilter/pkg/snapshot"
	"github.com/buildfilter/buildfilter/pkg/treediff"
	"github.com/buildfilter/buildfilter/pkg/workerpool"
)

// operation is the engine's internal patch step: either a structural
// change surfaced by diffing two snapshots, or a synthetic change
// surfaced by dependency invalidation (ForceInvalidate set).
type operation struct {
	Kind            treediff.Op
	RelativePath    string
	ForceInvalidate bool
}

// diffSnapshots computes the patch between two (possibly nil) snapshots.
func diffSnapshots(prev, next *snapshot.Snapshot) []operation {
	raw := treediff.Diff(prev.Entries(), next.Entries())
	ops := make([]operation, len(raw))
	for i, o := range raw {
		ops[i] = operation{Kind: o.Op, RelativePath: o.RelativePath}
	}
	return ops
}

// dedupOperations keeps the first occurrence of each (kind, path) pair,
// which is how a tree-diff operation takes precedence over a
// dependency-invalidation operation for the same file appended after it.
func dedupOperations(ops []operation) []operation {
	type key struct {
		kind treediff.Op
		path string
	}
	seen := make(map[key]bool, len(ops))
	result := make([]operation, 0, len(ops))
	for _, op := range ops {
		k := key{op.Kind, op.RelativePath}
		if seen[k] {
			continue
		}
		seen[k] = true
		result = append(result, op)
	}
	return result
}

// invalidatedOperations asks the Dependencies engine which declaring
// files must be reprocessed because something they declared a dependency
// on changed, and turns each surviving one (it may have been deleted in
// the same build) into a forced OpChange. It is a no-op on the very
// first build, before any Dependencies instance has ever been sealed.
func (f *Filter) invalidatedOperations(next *snapshot.Snapshot) ([]operation, error) {
	if !f.deps.Sealed() {
		return nil, nil
	}
	invalidated, err := f.deps.GetInvalidatedFiles()
	if err != nil {
		return nil, fmt.Errorf("unable to compute dependency invalidation: %w", err)
	}
	ops := make([]operation, 0, len(invalidated))
	for _, relativePath := range invalidated {
		if _, ok := next.Get(relativePath); !ok {
			continue
		}
		ops = append(ops, operation{
			Kind:            treediff.OpChange,
			RelativePath:    relativePath,
			ForceInvalidate: true,
		})
	}
	return ops, nil
}

// applyPatch dispatches every operation in order: directory and unlink
// operations are applied immediately (their relative ordering — deepest
// removals first, shallowest additions first — is what makes this safe),
// while file create/change operations are collected and run through the
// WorkerPool, so that Options.Async governs only the file-processing
// fan-out and never directory structure or deletions.
func (f *Filter) applyPatch(ctx context.Context, inputDir string, ops []operation) (int, error) {
	var tasks []workerpool.Task
	var invoked int64

	for _, op := range ops {
		op := op
		switch op.Kind {
		case treediff.OpMkdir:
			if err := f.applier.Mkdir(op.RelativePath); err != nil {
				return 0, err
			}
		case treediff.OpRmdir:
			if err := f.applier.Rmdir(op.RelativePath); err != nil {
				return 0, err
			}
		case treediff.OpUnlink:
			if err := f.applier.Unlink(op.RelativePath); err != nil {
				return 0, err
			}
		case treediff.OpCreate, treediff.OpChange:
			isChange := op.Kind == treediff.OpChange
			tasks = append(tasks, func(ctx context.Context) error {
				processed, err := f.processFile(ctx, inputDir, op.RelativePath, isChange, op.ForceInvalidate)
				if err != nil {
					return err
				}
				if processed {
					atomic.AddInt64(&invoked, 1)
				}
				return nil
			})
		}
	}

	if err := f.pool.Run(ctx, tasks); err != nil {
		return 0, err
	}
	return int(invoked), nil
}

// processFile routes a single file through can_process_file: files that
// are not processable (wrong extension, excluded by glob) are mirrored
// through via symlink (falling back to copy), while processable files
// are read, run through the Processor strategy, and written to their
// destination path. It reports whether the transform was actually
// invoked (as opposed to the file being passed through).
func (f *Filter) processFile(ctx context.Context, inputDir, relativePath string, isChange, forceInvalidate bool) (bool, error) {
	sourceAbsPath := filepath.Join(inputDir, filepath.FromSlash(relativePath))

	destinationPath, extensionOK := mirror.DestinationPath(relativePath, f.options.Extensions, f.options.TargetExtension)
	processable := extensionOK && matchesGlobs(relativePath, f.options.IncludeGlobs, f.options.ExcludeGlobs)

	if !processable {
		if err := f.applier.SymlinkOrCopy(sourceAbsPath, relativePath, isChange); err != nil {
			return false, fmt.Errorf("unable to mirror %q: %w", relativePath, err)
		}
		return false, nil
	}
	if destinationPath == "" {
		return false, &InvariantError{RelativePath: relativePath}
	}

	contents, err := os.ReadFile(sourceAbsPath)
	if err != nil {
		return false, fmt.Errorf("unable to read %q: %w", relativePath, err)
	}

	declareCtx := dependencies.WithDeclarer(ctx, f.deps)
	result, err := f.strategy.Process(declareCtx, f.transform, contents, relativePath, forceInvalidate, f.sink)
	if err != nil {
		return false, &TransformError{RelativePath: relativePath, TreeDir: inputDir, Err: err}
	}

	if err := f.applier.WriteFile(destinationPath, result.Output, isChange); err != nil {
		return false, fmt.Errorf("unable to write %q: %w", destinationPath, err)
	}
	return true, nil
}
