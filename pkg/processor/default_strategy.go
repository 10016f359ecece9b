package processor

import (
	"context"

	"github.com/buildfilter/buildfilter/pkg/instrumentation"
	"github.com/buildfilter/buildfilter/pkg/transform"
	"github.com/buildfilter/buildfilter/pkg/transformresult"
)

// Default is the memoryless strategy: it simply invokes the transform,
// normalizes its return value, and runs any post-process hook. The filter
// selects it whenever persistence is not allowed: Options.Persist is
// false, or the CI gate in buildfilterenv blocks it.
type Default struct{}

// Process implements Strategy.
func (Default) Process(
	ctx context.Context,
	t transform.Transform,
	contents []byte,
	relativePath string,
	forceInvalidate bool,
	sink instrumentation.Sink,
) (transformresult.Result, error) {
	output, err := t.ProcessString(ctx, contents, relativePath)
	if err != nil {
		return transformresult.Result{}, err
	}
	sink.ProcessStringInvoked(relativePath)
	return runPostProcess(t, output.Normalize(), relativePath, sink)
}
