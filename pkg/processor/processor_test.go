package processor

import (
	"context"
	"testing"

	"github.com/buildfilter/buildfilter/pkg/cache"
	"github.com/buildfilter/buildfilter/pkg/instrumentation"
	"github.com/buildfilter/buildfilter/pkg/logging"
	"github.com/buildfilter/buildfilter/pkg/transform"
	"github.com/buildfilter/buildfilter/pkg/transformresult"
)

type echoTransform struct{}

func (echoTransform) ProcessString(ctx context.Context, contents []byte, relativePath string) (transform.Output, error) {
	return transform.BytesOnly(contents), nil
}

type postProcessingTransform struct {
	suffix string
}

func (p postProcessingTransform) ProcessString(ctx context.Context, contents []byte, relativePath string) (transform.Output, error) {
	return transform.BytesOnly(contents), nil
}

func (p postProcessingTransform) PostProcess(result transformresult.Result, relativePath string) (transformresult.Result, error) {
	return transformresult.Result{Output: append(result.Output, []byte(p.suffix)...)}, nil
}

func TestDefaultStrategyInvokesEveryTime(t *testing.T) {
	counters := &instrumentation.Counters{}
	strategy := Default{}

	for i := 0; i < 3; i++ {
		result, err := strategy.Process(context.Background(), echoTransform{}, []byte("data"), "f.txt", false, counters)
		if err != nil {
			t.Fatalf("Process failed: %v", err)
		}
		if string(result.Output) != "data" {
			t.Fatalf("unexpected output: %q", result.Output)
		}
	}
	if counters.ProcessStringCount() != 3 {
		t.Fatalf("expected process_string invoked 3 times, got %d", counters.ProcessStringCount())
	}
}

func TestDefaultStrategyRunsPostProcessHook(t *testing.T) {
	counters := &instrumentation.Counters{}
	strategy := Default{}
	result, err := strategy.Process(context.Background(), postProcessingTransform{suffix: "!"}, []byte("data"), "f.txt", false, counters)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if string(result.Output) != "data!" {
		t.Fatalf("expected post-process hook to run, got %q", result.Output)
	}
	if counters.PostProcessCount() != 1 {
		t.Fatalf("expected 1 post-process invocation, got %d", counters.PostProcessCount())
	}
}

func TestPersistentStrategyCachesAfterFirstInvocation(t *testing.T) {
	store, err := cache.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	logger := logging.RootLogger.Sublogger("processor-test")
	strategy := &Persistent{Cache: cache.NewPersistent(store, "plugin-key", logger)}
	counters := &instrumentation.Counters{}

	if _, err := strategy.Process(context.Background(), echoTransform{}, []byte("data"), "f.txt", false, counters); err != nil {
		t.Fatalf("first Process failed: %v", err)
	}
	if _, err := strategy.Process(context.Background(), echoTransform{}, []byte("data"), "f.txt", false, counters); err != nil {
		t.Fatalf("second Process failed: %v", err)
	}

	if counters.ProcessStringCount() != 1 {
		t.Fatalf("expected process_string invoked once (second call served from cache), got %d", counters.ProcessStringCount())
	}
	if counters.PersistentCacheHitCount() != 1 {
		t.Fatalf("expected 1 cache hit, got %d", counters.PersistentCacheHitCount())
	}
}

func TestPersistentStrategyRunsPostProcessOnCacheHit(t *testing.T) {
	store, err := cache.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	logger := logging.RootLogger.Sublogger("processor-test")
	strategy := &Persistent{Cache: cache.NewPersistent(store, "plugin-key", logger)}
	counters := &instrumentation.Counters{}
	tr := postProcessingTransform{suffix: "!"}

	first, err := strategy.Process(context.Background(), tr, []byte("data"), "f.txt", false, counters)
	if err != nil {
		t.Fatalf("first Process failed: %v", err)
	}
	second, err := strategy.Process(context.Background(), tr, []byte("data"), "f.txt", false, counters)
	if err != nil {
		t.Fatalf("second Process failed: %v", err)
	}

	if string(first.Output) != "data!" || string(second.Output) != "data!" {
		t.Fatalf("expected both calls to carry the post-process suffix, got %q and %q", first.Output, second.Output)
	}
	if counters.ProcessStringCount() != 1 {
		t.Fatalf("expected process_string invoked once (second call served from cache), got %d", counters.ProcessStringCount())
	}
	if counters.PostProcessCount() != 2 {
		t.Fatalf("expected post_process to run on both the miss and the cache hit, got %d", counters.PostProcessCount())
	}
	if counters.PersistentCacheHitCount() != 1 {
		t.Fatalf("expected 1 cache hit, got %d", counters.PersistentCacheHitCount())
	}
}

func TestPersistentStrategyDoesNotCachePostProcessedOutput(t *testing.T) {
	store, err := cache.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	logger := logging.RootLogger.Sublogger("processor-test")
	persistent := cache.NewPersistent(store, "plugin-key", logger)
	strategy := &Persistent{Cache: persistent}
	counters := &instrumentation.Counters{}
	tr := postProcessingTransform{suffix: "!"}

	if _, err := strategy.Process(context.Background(), tr, []byte("data"), "f.txt", false, counters); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	key := fileCacheKey(tr, []byte("data"), "f.txt")
	cached, ok := persistent.Get(key)
	if !ok {
		t.Fatalf("expected a cache entry after the first Process call")
	}
	if string(cached.Output) != "data" {
		t.Fatalf("expected the cache to hold the pre-post-process output, got %q", cached.Output)
	}
}

func TestPersistentStrategyForceInvalidateBypassesCache(t *testing.T) {
	store, err := cache.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	logger := logging.RootLogger.Sublogger("processor-test")
	strategy := &Persistent{Cache: cache.NewPersistent(store, "plugin-key", logger)}
	counters := &instrumentation.Counters{}

	if _, err := strategy.Process(context.Background(), echoTransform{}, []byte("data"), "f.txt", false, counters); err != nil {
		t.Fatalf("first Process failed: %v", err)
	}
	if _, err := strategy.Process(context.Background(), echoTransform{}, []byte("data"), "f.txt", true, counters); err != nil {
		t.Fatalf("forced Process failed: %v", err)
	}

	if counters.ProcessStringCount() != 2 {
		t.Fatalf("expected force_invalidate to bypass the cache, got %d invocations", counters.ProcessStringCount())
	}
}
