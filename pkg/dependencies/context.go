package dependencies

import "context"

// declarerKey is the context key under which the engine stores the
// Dependencies instance a transform should declare against while its
// ProcessString call is in flight.
type declarerKey struct{}

// WithDeclarer returns a context carrying d as the active dependency
// declaration target.
func WithDeclarer(ctx context.Context, d *Dependencies) context.Context {
	return context.WithValue(ctx, declarerKey{}, d)
}

// Declare lets a transform, from within its ProcessString implementation,
// declare that relativePath depends on deps. It is a no-op (returning nil)
// if the context carries no active Dependencies instance, which is the
// case when dependency invalidation is disabled for the build.
func Declare(ctx context.Context, relativePath string, deps []string) error {
	d, ok := ctx.Value(declarerKey{}).(*Dependencies)
	if !ok || d == nil {
		return nil
	}
	return d.SetDependencies(relativePath, deps)
}
