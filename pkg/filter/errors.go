package filter

import "fmt"

// NotImplementedError indicates that a required subclass hook is missing.
// In this Go expression of the spec, the Transform interface makes
// ProcessString mandatory at compile time, and nothing in this module
// returns NotImplementedError; it is available to hosts that wrap a
// dynamic transform and invoke optional hooks by name.
type NotImplementedError struct {
	Hook string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("filter: required hook %q is not implemented", e.Hook)
}

// UnimplementedBaseDirError indicates that Options.Persist was true but
// the transform does not implement transform.BaseDirer.
type UnimplementedBaseDirError struct{}

func (e *UnimplementedBaseDirError) Error() string {
	return "filter: persistent caching requires the transform to implement BaseDir()"
}

// InvariantError indicates that the engine's internal invariants were
// violated: CanProcessFile reported true for a path but
// DestinationPath returned none for it.
type InvariantError struct {
	RelativePath string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("filter: invariant violated: %q is processable but has no destination path", e.RelativePath)
}

// TransformError wraps any error raised from ProcessString or
// PostProcess, annotating it with the file and input tree it occurred in.
type TransformError struct {
	RelativePath string
	TreeDir      string
	Err          error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("filter: transform failed for %q in %q: %v", e.RelativePath, e.TreeDir, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }
