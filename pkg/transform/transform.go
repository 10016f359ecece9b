// Package transform defines the contract a host must implement to drive
// the engine. The engine is meaningful only when specialized with a
// Transform; it is modeled as an interface the engine is generic over
// rather than a base type with a runtime guard against direct use.
package transform

import (
	"context"

	"github.com/buildfilter/buildfilter/pkg/transformresult"
)

// Output is the tagged-sum return value of ProcessString: a transform may
// return either raw bytes or a fully structured result carrying extra
// fields (a source map, for example). The Processor layer normalizes
// either form to a transformresult.Result before it reaches the cache or
// any post-processing hook.
type Output struct {
	bytesOnly  []byte
	structured *transformresult.Result
	isBytes    bool
}

// BytesOnly constructs an Output carrying only transformed bytes.
func BytesOnly(data []byte) Output {
	return Output{bytesOnly: data, isBytes: true}
}

// Structured constructs an Output carrying a full structured result.
func Structured(result transformresult.Result) Output {
	return Output{structured: &result}
}

// Normalize renders the Output as a transformresult.Result.
func (o Output) Normalize() transformresult.Result {
	if o.structured != nil {
		return *o.structured
	}
	return transformresult.Result{Output: o.bytesOnly}
}

// Transform is the mandatory hook a host must implement: given a file's
// contents and its path relative to the input tree, produce transformed
// output (or a future of the same, expressed here via context
// cancellation rather than an explicit future type, the idiomatic Go
// equivalent).
type Transform interface {
	ProcessString(ctx context.Context, contents []byte, relativePath string) (Output, error)
}

// PostProcessor is an optional hook: if a transform implements it,
// PostProcess runs after every ProcessString invocation and after every
// cache hit (including persistent-cache hits), so that hosts can run
// side-effecting post-processing (rewriting a source map's embedded
// paths, for example) even when the primary transform was skipped. The
// return value of PostProcess is never written back into the cache.
type PostProcessor interface {
	PostProcess(result transformresult.Result, relativePath string) (transformresult.Result, error)
}

// CacheKeyer is an optional hook overriding the default plugin cache key
// (which otherwise defaults to a hash of the plugin's environment and the
// transform's type identity).
type CacheKeyer interface {
	CacheKey() string
}

// FileCacheKeyer is an optional hook overriding the default per-file cache
// key (which otherwise defaults to fingerprint.FileCacheKey).
type FileCacheKeyer interface {
	FileCacheKey(contents []byte, relativePath string) string
}

// BaseDirer is mandatory when Options.Persist is true; it supplies the
// absolute directory used to derive the default plugin cache key's
// environment hash.
type BaseDirer interface {
	BaseDir() (string, error)
}
