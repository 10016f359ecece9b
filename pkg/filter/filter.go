// Package filter implements the incremental build loop, tying together
// the snapshot/diff engine, dependency invalidation, the two-level
// cache, the worker pool, and the mirror-tree applier into a single
// incremental, per-file transform node.
package filter

import (
	"context"
	"fmt"
	"reflect"

	"github.com/buildfilter/buildfilter/pkg/buildfilterenv"
	"github.com/buildfilter/buildfilter/pkg/cache"
	"github.com/buildfilter/buildfilter/pkg/dependencies"
	"github.com/buildfilter/buildfilter/pkg/fingerprint"
	"github.com/buildfilter/buildfilter/pkg/instrumentation"
	"github.com/buildfilter/buildfilter/pkg/logging"
	"github.com/buildfilter/buildfilter/pkg/mirror"
	"github.com/buildfilter/buildfilter/pkg/processor"
	"github.com/buildfilter/buildfilter/pkg/snapshot"
	"github.com/buildfilter/buildfilter/pkg/transform"
	"github.com/buildfilter/buildfilter/pkg/treediff"
	"github.com/buildfilter/buildfilter/pkg/workerpool"
)

// Filter is one incremental, per-file transform node. It is constructed
// once with a Transform and a set of Options, and driven across
// successive calls to Build, each of which walks a (possibly unchanged)
// input directory and mirrors the minimal necessary set of transform
// results into an output directory.
type Filter struct {
	transform transform.Transform
	options   Options
	logger    *logging.Logger
	sink      instrumentation.Sink

	initialized bool
	strategy    processor.Strategy
	pool        *workerpool.Pool

	needsReset bool

	prevSnapshot *snapshot.Snapshot
	deps         *dependencies.Dependencies
	applier      *mirror.Applier
}

// New constructs a Filter. It fails with *UnimplementedBaseDirError if
// Options.Persist is true but t does not implement transform.BaseDirer:
// the persistent cache namespace is derived from the transform's base
// directory, so persistence cannot be enabled without one.
func New(t transform.Transform, options Options) (*Filter, error) {
	if options.Persist {
		if _, ok := t.(transform.BaseDirer); !ok {
			return nil, &UnimplementedBaseDirError{}
		}
	}

	logger := options.Logger
	if logger == nil {
		name := options.Name
		if name == "" {
			name = "filter"
		}
		logger = logging.RootLogger.Sublogger(name)
	}

	sink := options.Sink
	if sink == nil {
		sink = instrumentation.Noop
	}

	return &Filter{
		transform: t,
		options:   options,
		logger:    logger,
		sink:      sink,
	}, nil
}

// pluginCacheKey derives the stable, cross-run cache namespace: a
// transform's CacheKeyer override if present, otherwise a hash combining
// the injected HashPluginEnv collaborator with the transform's concrete
// type identity, so distinct transform implementations (or the same
// implementation run against a different environment) never share a
// persistent cache namespace.
func (f *Filter) pluginCacheKey() (string, error) {
	if keyer, ok := f.transform.(transform.CacheKeyer); ok {
		return keyer.CacheKey(), nil
	}

	baseDirer, ok := f.transform.(transform.BaseDirer)
	if !ok {
		return "", &UnimplementedBaseDirError{}
	}
	baseDir, err := baseDirer.BaseDir()
	if err != nil {
		return "", fmt.Errorf("unable to determine base directory: %w", err)
	}

	envHash := "default"
	if f.options.HashPluginEnv != nil {
		envHash, err = f.options.HashPluginEnv(baseDir)
		if err != nil {
			return "", fmt.Errorf("unable to hash plugin environment: %w", err)
		}
	}

	typeName := reflect.TypeOf(f.transform).String()
	return fingerprint.ComposeKey(typeName, envHash), nil
}

// ensureInitialized performs the one-time, lazy construction of the
// worker pool and cache strategy, deferred until the first Build call so
// that environment-derived settings (concurrency, persistence) are
// resolved against the environment at build time rather than at
// construction time.
func (f *Filter) ensureInitialized() error {
	if f.initialized {
		return nil
	}

	concurrency := buildfilterenv.Jobs(f.options.Concurrency)
	if !f.options.Async {
		concurrency = 1
	}
	f.pool = workerpool.New(concurrency)

	if buildfilterenv.PersistenceAllowed(f.options.Persist) {
		key, err := f.pluginCacheKey()
		if err != nil {
			return err
		}
		store := f.options.Store
		if store == nil {
			fileStore, err := cache.NewFileStore(cache.DefaultRoot())
			if err != nil {
				return fmt.Errorf("unable to initialize persistent cache: %w", err)
			}
			store = fileStore
		}
		f.strategy = &processor.Persistent{
			Cache: cache.NewPersistent(store, key, f.logger),
		}
	} else {
		f.strategy = processor.Default{}
	}

	f.initialized = true
	return nil
}

// BuildResult summarizes a single Build invocation's outcome.
type BuildResult struct {
	// FilesProcessed is the number of files actually routed through the
	// transform (i.e. process_string invocations), as opposed to those
	// mirrored via symlink/copy.
	FilesProcessed int
	// PatchSize is the total number of operations applied this build.
	PatchSize int
}

// Build runs one incremental build: it walks inputDir, diffs it against
// the snapshot retained from the previous successful build (if any),
// merges in any dependency-invalidated files, applies directory
// operations and unlinks directly, dispatches file transforms (via the
// WorkerPool when Options.Async is set), and on success adopts the new
// snapshot and dependency baseline.
//
func (f *Filter) Build(ctx context.Context, inputDir, outputDir string) (*BuildResult, error) {
	if f.applier == nil {
		f.applier = mirror.New(outputDir)
		if err := f.applier.Mkdir(""); err != nil {
			return nil, err
		}
	}

	// Step 1: self-heal from a prior failed build.
	if f.needsReset {
		if err := f.applier.Reset(); err != nil {
			return nil, err
		}
		f.prevSnapshot = nil
		f.deps = nil
	}
	f.needsReset = true

	// Step 2: lazily initialize the Processor.
	if err := f.ensureInitialized(); err != nil {
		return nil, err
	}

	if f.deps == nil {
		f.deps = dependencies.New(inputDir)
	}

	// Step 3: walk the input tree.
	nextSnapshot, err := snapshot.Walk(inputDir)
	if err != nil {
		return nil, fmt.Errorf("unable to walk input tree: %w", err)
	}

	// Step 4 & 5: compute the tree diff and merge in dependency
	// invalidation, as synthetic create/change operations.
	patch := diffSnapshots(f.prevSnapshot, nextSnapshot)
	if f.options.DependencyInvalidation {
		invalidated, err := f.invalidatedOperations(nextSnapshot)
		if err != nil {
			return nil, err
		}
		patch = append(patch, invalidated...)
	}
	patch = dedupOperations(patch)

	// Step 6: adopt the new snapshot as the baseline (even if empty, so
	// that the next build diffs against this one).
	f.prevSnapshot = nextSnapshot

	// Step 8: an empty merged patch list means nothing to do; leave
	// Dependencies exactly as the previous build sealed it, since nothing
	// changed that could require redeclaration.
	if len(patch) == 0 {
		f.needsReset = false
		return &BuildResult{}, nil
	}

	// Step 7: unseal Dependencies for this build's redeclarations, dropping
	// declarations for any unlinked dependents. This always produces a
	// fresh, unsealed instance since the previous build's Seal left f.deps
	// sealed, and reprocessed files must be able to redeclare their
	// dependencies during this build.
	var unlinked []string
	for _, op := range patch {
		if op.Kind == treediff.OpUnlink {
			unlinked = append(unlinked, op.RelativePath)
		}
	}
	f.deps = f.deps.CopyWithout(unlinked)

	// Step 9 & 10: dispatch every operation, awaiting file tasks.
	processed, err := f.applyPatch(ctx, inputDir, patch)
	if err != nil {
		return nil, err
	}

	// Step 11: seal Dependencies and capture the new baseline.
	f.deps.Seal()
	if f.options.DependencyInvalidation {
		if err := f.deps.CaptureBaseline(); err != nil {
			return nil, fmt.Errorf("unable to capture dependency baseline: %w", err)
		}
	}

	// Step 12: clear the reset flag — this build succeeded.
	f.needsReset = false

	return &BuildResult{FilesProcessed: processed, PatchSize: len(patch)}, nil
}
