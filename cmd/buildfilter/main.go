// Command buildfilter is a reference host for the incremental, per-file
// transform engine in github.com/buildfilter/buildfilter/pkg/filter: it
// drives one or more builds of a Filter against a real directory tree,
// using a small registry of example transforms.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/buildfilter/buildfilter/pkg/logging"
)

var logger = logging.RootLogger.Sublogger("buildfilter")

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "buildfilter",
		Short:         "Drive an incremental, per-file transform build",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCommand())
	return root
}
