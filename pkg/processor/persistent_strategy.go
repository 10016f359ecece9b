package processor

import (
	"context"

	"github.com/buildfilter/buildfilter/pkg/cache"
	"github.com/buildfilter/buildfilter/pkg/instrumentation"
	"github.com/buildfilter/buildfilter/pkg/transform"
	"github.com/buildfilter/buildfilter/pkg/transformresult"
)

// Persistent is the persistent-cache strategy: it consults a disk-backed
// cache before invoking the transform, and still runs any post-process
// hook on a hit, since post-processing is meant to run on every build
// regardless of whether the underlying transform itself was skipped.
type Persistent struct {
	Cache *cache.Persistent
}

// Process implements Strategy.
func (p *Persistent) Process(
	ctx context.Context,
	t transform.Transform,
	contents []byte,
	relativePath string,
	forceInvalidate bool,
	sink instrumentation.Sink,
) (transformresult.Result, error) {
	key := fileCacheKey(t, contents, relativePath)

	if !forceInvalidate {
		if cached, ok := p.Cache.Get(key); ok {
			sink.PersistentCacheHit(relativePath)
			return runPostProcess(t, cached, relativePath, sink)
		}
	}

	output, err := t.ProcessString(ctx, contents, relativePath)
	if err != nil {
		return transformresult.Result{}, err
	}
	sink.ProcessStringInvoked(relativePath)

	result := output.Normalize()
	p.Cache.Set(key, result)
	sink.PersistentCachePrime(relativePath)

	return runPostProcess(t, result, relativePath, sink)
}
