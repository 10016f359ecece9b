package filter

import (
	"github.com/buildfilter/buildfilter/pkg/cache"
	"github.com/buildfilter/buildfilter/pkg/instrumentation"
	"github.com/buildfilter/buildfilter/pkg/logging"
)

// Options configures a Filter's construction.
type Options struct {
	// Name and Annotation are purely descriptive. Name names the default
	// Logger's sublogger; Annotation is not read by the engine.
	Name       string
	Annotation string

	// Persist enables the persistent, disk-backed cache layer, subject
	// to buildfilterenv's CI gating policy.
	Persist bool

	// Extensions restricts which files are processed; nil means no
	// restriction (every file is processable). TargetExtension, if set,
	// replaces a matched extension in the destination path.
	Extensions      []string
	TargetExtension string

	// IncludeGlobs and ExcludeGlobs apply doublestar-style glob gating
	// layered on top of Extensions. A file must match at least one
	// include glob (or IncludeGlobs must be empty) and no exclude glob
	// to be processable.
	IncludeGlobs []string
	ExcludeGlobs []string

	// InputEncoding and OutputEncoding are reserved for hosts that need
	// to record the text encoding a transform expects; this
	// implementation reads and writes raw bytes regardless, since Go
	// transforms operate on []byte directly.
	InputEncoding  string
	OutputEncoding string

	// Async selects the WorkerPool for create/change dispatch; when
	// false, files are processed sequentially in patch order.
	Async bool

	// DependencyInvalidation enables the Dependencies engine. When
	// false, a transform's calls to dependencies.Declare are no-ops.
	DependencyInvalidation bool

	// Concurrency overrides WorkerPool concurrency; see
	// buildfilterenv.Jobs for the full resolution order.
	Concurrency int

	// Store is the persistent cache backend. If nil and Persist is true,
	// a cache.FileStore rooted at cache.DefaultRoot() is used.
	Store cache.Store

	// InMemoryCacheLimit is not read by the engine: a Filter constructs no
	// in-memory cache layer (cache.Memory), so every lookup goes directly
	// to the selected processor strategy.
	InMemoryCacheLimit int

	// Sink receives instrumentation events in place of a mutable public
	// call-count field, so callers can observe processing activity
	// without the engine exposing mutable state. Defaults to a
	// discarding Sink if nil.
	Sink instrumentation.Sink

	// Logger receives warnings and errors. Defaults to
	// logging.RootLogger.Sublogger(Name) if nil.
	Logger *logging.Logger

	// HashPluginEnv lets a host fold its own environment (toolchain
	// version, config file contents, anything that should invalidate
	// the persistent cache on change) into the cache namespace. It is
	// only consulted when Persist is true and the transform does not
	// implement transform.CacheKeyer. If nil, a constant placeholder is
	// used, which is sufficient for a single-version, single-environment
	// host but means the cache is never invalidated on a host dependency
	// upgrade: real hosts should always supply this.
	HashPluginEnv func(baseDir string) (string, error)
}
