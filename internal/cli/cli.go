package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pkgage/pkg/buildinfo"
	"github.com/matzehuels/pkgage/pkg/observability"
	"github.com/matzehuels/pkgage/pkg/pipeline"
	"github.com/matzehuels/pkgage/pkg/report"
	"github.com/matzehuels/pkgage/pkg/staleness"
)

// appName is the application name used for directories and display.
const appName = "pkgage"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for the command.
type CLI struct {
	Logger *log.Logger

	// checkerOpts are passed to every Checker; tests use them to point the
	// checker at a fake registry and a fixed clock.
	checkerOpts []staleness.Option
}

// New creates a new CLI instance logging to w at the given level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// EnableDebug switches the logger to debug level and logs every registry
// request.
func (c *CLI) EnableDebug() {
	c.SetLogLevel(LogDebug)
	observability.SetHTTPHooks(&httpLogHooks{logger: c.Logger})
}

// RootCommand creates the pkgage command.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "pkgage [manifest...]",
		Short: "Report how outdated the pinned Python packages of a project are",
		Long: `pkgage reads requirements.txt, pyproject.toml or poetry.lock files, looks up
every pinned package on PyPI and lists the packages of each file from the
oldest pinned release to the newest.`,
		Example: `  pkgage requirements.txt
  pkgage requirements.txt requirements-dev.txt
  pkgage --debug poetry.lock`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.check(ctx, cmd.OutOrStdout(), args)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	return root
}

// check runs the pipeline over paths and prints the report to out.
func (c *CLI) check(ctx context.Context, out io.Writer, paths []string) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(logger)
	if err != nil {
		return err
	}
	logger.Debug("loaded config",
		"timeout", cfg.Timeout,
		"concurrency", cfg.Concurrency,
		"user_agent", cfg.UserAgent)

	prog := newProgress(logger)
	checker := staleness.NewChecker(cfg.checkerConfig(), logger, c.checkerOpts...)
	results, err := pipeline.NewRunner(checker, logger).Run(ctx, paths)
	if err != nil {
		return err
	}

	if err := report.New(out).Print(results); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	prog.done(fmt.Sprintf("Checked %d manifest(s)", len(results)))

	if failed := pipeline.FailedFiles(results); failed > 0 {
		return fmt.Errorf("%d manifest(s) could not be parsed", failed)
	}
	return nil
}
