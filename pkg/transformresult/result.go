// Package transformresult defines the normalized shape of a transform's
// output, shared between the processor and cache layers so that a cache
// entry can hold the full structured result (not just the output bytes),
// allowing a post-process hook to run even on a persistent-cache hit.
package transformresult

// Result is the normalized return value of a transform invocation: the
// transformed bytes, plus any custom fields the transform attached (for
// example, a source map). Extra is nil unless the transform actually
// returned custom fields.
type Result struct {
	Output []byte
	Extra  map[string]interface{}
}

// Clone returns a deep-enough copy of the result: the byte slice and the
// extras map are both copied so that a cached Result can be handed out
// repeatedly without one caller's mutation of Extra corrupting another's.
func (r Result) Clone() Result {
	output := make([]byte, len(r.Output))
	copy(output, r.Output)

	var extra map[string]interface{}
	if r.Extra != nil {
		extra = make(map[string]interface{}, len(r.Extra))
		for k, v := range r.Extra {
			extra[k] = v
		}
	}

	return Result{Output: output, Extra: extra}
}
