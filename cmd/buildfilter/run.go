package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	buildfiltertransform "github.com/buildfilter/buildfilter/cmd/buildfilter/transform"
	"github.com/buildfilter/buildfilter/pkg/filter"
	"github.com/buildfilter/buildfilter/pkg/logging"
	"github.com/buildfilter/buildfilter/pkg/transform"
)

type runFlags struct {
	extensions             []string
	targetExtension        string
	include                []string
	exclude                []string
	persist                bool
	async                  bool
	jobs                   int
	dependencyInvalidation bool
	configPath             string
	envFile                string
	transformName          string
	shellCommand           string
	shellArgs              []string
	watchCount             int
	logLevel               string
}

func newRunCommand() *cobra.Command {
	flags := &runFlags{}

	command := &cobra.Command{
		Use:   "run <src> <dst>",
		Short: "Run one or more incremental builds from src to dst",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, flags, args[0], args[1])
		},
	}

	f := command.Flags()
	f.StringSliceVar(&flags.extensions, "ext", nil, "restrict processing to these extensions (comma-separated, no leading dot); default is all files")
	f.StringVar(&flags.targetExtension, "target-ext", "", "rewrite a matched extension to this one in the output path")
	f.StringSliceVar(&flags.include, "include", nil, "doublestar include glob (repeatable); a file must match at least one")
	f.StringSliceVar(&flags.exclude, "exclude", nil, "doublestar exclude glob (repeatable)")
	f.BoolVar(&flags.persist, "persist", false, "enable the persistent, disk-backed cache (gated off in CI unless FORCE_PERSISTENCE_IN_CI is set)")
	f.BoolVar(&flags.async, "async", false, "process files concurrently via the worker pool")
	f.IntVar(&flags.jobs, "jobs", 0, "worker pool concurrency (0 resolves JOBS env var or NumCPU-1)")
	f.BoolVar(&flags.dependencyInvalidation, "dependency-invalidation", false, "enable cross-file dependency invalidation")
	f.StringVar(&flags.configPath, "config", "", "YAML configuration overlay file")
	f.StringVar(&flags.envFile, "env-file", "", "load environment variable overrides from this .env file")
	f.StringVar(&flags.transformName, "transform", "rot13", "transform to run: rot13 or shellpipe")
	f.StringVar(&flags.shellCommand, "shell-command", "", "command to run for --transform shellpipe")
	f.StringSliceVar(&flags.shellArgs, "shell-arg", nil, "argument to pass to --shell-command (repeatable)")
	f.IntVar(&flags.watchCount, "watch-count", 1, "number of successive builds to run (for demonstrating incremental rebuilds)")
	f.StringVar(&flags.logLevel, "log-level", "", "override the active log level (disabled, error, warn, info, debug, trace)")

	return command
}

func runBuild(cmd *cobra.Command, flags *runFlags, src, dst string) error {
	if flags.envFile != "" {
		if err := godotenv.Load(flags.envFile); err != nil {
			return fmt.Errorf("unable to load env file: %w", err)
		}
	}

	if flags.configPath != "" {
		cfg, err := loadFileConfig(flags.configPath)
		if err != nil {
			return err
		}
		applyFileConfig(cmd, flags, cfg)
	}

	if flags.logLevel != "" {
		level, ok := logging.NameToLevel(flags.logLevel)
		if !ok {
			return fmt.Errorf("invalid --log-level %q", flags.logLevel)
		}
		logging.SetLevel(level)
	}

	absSrc, err := filepath.Abs(src)
	if err != nil {
		return fmt.Errorf("unable to resolve source directory: %w", err)
	}

	t, err := buildTransform(flags, absSrc)
	if err != nil {
		return err
	}

	options := filter.Options{
		Name:                   "buildfilter-cli",
		Persist:                flags.persist,
		Extensions:             flags.extensions,
		TargetExtension:        flags.targetExtension,
		IncludeGlobs:           flags.include,
		ExcludeGlobs:           flags.exclude,
		Async:                  flags.async,
		DependencyInvalidation: flags.dependencyInvalidation,
		Concurrency:            flags.jobs,
	}

	f, err := filter.New(t, options)
	if err != nil {
		return fmt.Errorf("unable to construct filter: %w", err)
	}

	count := flags.watchCount
	if count < 1 {
		count = 1
	}

	ctx, stop := withSignalCancellation(context.Background())
	defer stop()
	for i := 0; i < count; i++ {
		start := time.Now()
		result, err := f.Build(ctx, absSrc, dst)
		if err != nil {
			return fmt.Errorf("build failed: %w", err)
		}
		printBuildResult(i, result.FilesProcessed, result.PatchSize, time.Since(start))
	}
	return nil
}

func applyFileConfig(cmd *cobra.Command, flags *runFlags, cfg *fileConfig) {
	changed := cmd.Flags().Changed
	if !changed("ext") && len(cfg.Extensions) > 0 {
		flags.extensions = cfg.Extensions
	}
	if !changed("target-ext") && cfg.TargetExtension != "" {
		flags.targetExtension = cfg.TargetExtension
	}
	if !changed("include") && len(cfg.IncludeGlobs) > 0 {
		flags.include = cfg.IncludeGlobs
	}
	if !changed("exclude") && len(cfg.ExcludeGlobs) > 0 {
		flags.exclude = cfg.ExcludeGlobs
	}
	if !changed("persist") && cfg.Persist {
		flags.persist = cfg.Persist
	}
	if !changed("async") && cfg.Async {
		flags.async = cfg.Async
	}
	if !changed("jobs") && cfg.Jobs != 0 {
		flags.jobs = cfg.Jobs
	}
	if !changed("dependency-invalidation") && cfg.DependencyInvalidation {
		flags.dependencyInvalidation = cfg.DependencyInvalidation
	}
	if !changed("log-level") && cfg.LogLevel != "" {
		flags.logLevel = cfg.LogLevel
	}
}

func buildTransform(flags *runFlags, absSrc string) (transform.Transform, error) {
	switch flags.transformName {
	case "", "rot13":
		return buildfiltertransform.NewROT13(absSrc), nil
	case "shellpipe":
		if flags.shellCommand == "" {
			return nil, fmt.Errorf("--shell-command is required for --transform shellpipe")
		}
		return buildfiltertransform.NewShellPipe(absSrc, flags.shellCommand, flags.shellArgs)
	default:
		return nil, fmt.Errorf("unknown transform %q (expected rot13 or shellpipe)", flags.transformName)
	}
}

func printBuildResult(iteration, filesProcessed, patchSize int, elapsed time.Duration) {
	useColor := isatty.IsTerminal(os.Stdout.Fd())
	line := fmt.Sprintf(
		"build %d: %s file(s) processed, %s patch op(s), %s elapsed",
		iteration+1,
		humanize.Comma(int64(filesProcessed)),
		humanize.Comma(int64(patchSize)),
		elapsed.Round(time.Millisecond),
	)
	if useColor && filesProcessed > 0 {
		fmt.Fprintln(os.Stdout, color.GreenString(line))
	} else {
		fmt.Fprintln(os.Stdout, line)
	}
}
