// Package must provides best-effort cleanup helpers for operations whose
// failure is worth logging but never worth propagating as an error -
// typically cleanup of a resource that is already being abandoned after
// a more important operation failed.
package must

import (
	"fmt"
	"io"
	"os"

	"github.com/buildfilter/buildfilter/pkg/logging"
)

// Close closes c, logging (rather than returning) any failure.
func Close(c io.Closer, logger *logging.Logger) {
	if err := c.Close(); err != nil {
		logger.Warn(fmt.Errorf("unable to close: %w", err))
	}
}

// OSRemove removes the file at name, logging (rather than returning) any
// failure other than the file already being absent.
func OSRemove(name string, logger *logging.Logger) {
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		logger.Warn(fmt.Errorf("unable to remove %q: %w", name, err))
	}
}

// IOCopy copies from src to dst, logging (rather than returning) any
// failure.
func IOCopy(dst io.Writer, src io.Reader, logger *logging.Logger) {
	if _, err := io.Copy(dst, src); err != nil {
		logger.Warn(fmt.Errorf("unable to copy: %w", err))
	}
}
