// Package processor implements the strategy indirection behind a single
// transform invocation: a uniform interface behind which either the
// default (memoryless) strategy or the persistent-cache strategy drives
// the call, always normalizing the result and always running any
// post-process hook.
package processor

import (
	"context"
	"fmt"

	"github.com/buildfilter/buildfilter/pkg/fingerprint"
	"github.com/buildfilter/buildfilter/pkg/instrumentation"
	"github.com/buildfilter/buildfilter/pkg/transform"
	"github.com/buildfilter/buildfilter/pkg/transformresult"
)

// Strategy is the uniform interface behind which Default and Persistent
// sit: given the contents and path of a single file, produce the
// transformed result, optionally bypassing any cache when
// forceInvalidate is set.
type Strategy interface {
	Process(
		ctx context.Context,
		t transform.Transform,
		contents []byte,
		relativePath string,
		forceInvalidate bool,
		sink instrumentation.Sink,
	) (transformresult.Result, error)
}

// fileCacheKey computes the per-file cache key, honoring a transform's
// FileCacheKeyer override if present.
func fileCacheKey(t transform.Transform, contents []byte, relativePath string) string {
	if keyer, ok := t.(transform.FileCacheKeyer); ok {
		return keyer.FileCacheKey(contents, relativePath)
	}
	return fingerprint.FileCacheKey(contents, relativePath)
}

// runPostProcess invokes a transform's PostProcess hook if it implements
// transform.PostProcessor, otherwise returns result unchanged. Its return
// value is never written back to any cache: this is what allows a
// post-process hook to run on every build, including cache hits, without
// corrupting what is cached.
func runPostProcess(
	t transform.Transform,
	result transformresult.Result,
	relativePath string,
	sink instrumentation.Sink,
) (transformresult.Result, error) {
	postProcessor, ok := t.(transform.PostProcessor)
	if !ok {
		return result, nil
	}
	sink.PostProcessInvoked(relativePath)
	processed, err := postProcessor.PostProcess(result, relativePath)
	if err != nil {
		return transformresult.Result{}, fmt.Errorf("post-process failed for %q: %w", relativePath, err)
	}
	return processed, nil
}
