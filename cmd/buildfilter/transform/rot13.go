// Package transform provides a small registry of example Transform
// implementations used to exercise a Filter end to end from the command
// line: a byte-for-byte deterministic ROT-13 transform and a generic
// shell-pipe transform.
package transform

import (
	"context"
	"strings"

	buildfiltertransform "github.com/buildfilter/buildfilter/pkg/transform"
)

// ROT13 applies the classic ROT-13 substitution cipher to file contents.
// It is deterministic and reversible, which makes it convenient for
// exercising cache-hit and invalidation behavior from the command line:
// running it twice over unchanged input produces byte-identical output.
type ROT13 struct {
	baseDir string
}

// NewROT13 constructs a ROT13 transform rooted at baseDir, used to derive
// its persistent cache key.
func NewROT13(baseDir string) *ROT13 {
	return &ROT13{baseDir: baseDir}
}

// ProcessString implements transform.Transform.
func (t *ROT13) ProcessString(_ context.Context, contents []byte, _ string) (buildfiltertransform.Output, error) {
	return buildfiltertransform.BytesOnly(rot13(contents)), nil
}

// BaseDir implements transform.BaseDirer.
func (t *ROT13) BaseDir() (string, error) {
	return t.baseDir, nil
}

func rot13(data []byte) []byte {
	result := make([]byte, len(data))
	for i, b := range data {
		switch {
		case b >= 'a' && b <= 'z':
			result[i] = 'a' + (b-'a'+13)%26
		case b >= 'A' && b <= 'Z':
			result[i] = 'A' + (b-'A'+13)%26
		default:
			result[i] = b
		}
	}
	return result
}

// rot13String is a convenience used by tests to compute the expected
// output of ROT13 without constructing a Filter.
func rot13String(s string) string {
	return string(rot13([]byte(strings.Clone(s))))
}
