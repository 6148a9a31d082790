package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Runner checks manifests concurrently.
//
// The Runner keeps no state between runs; multiple goroutines can safely
// call Run on the same Runner.
type Runner struct {
	Checker FileChecker
	Logger  *log.Logger
}

// NewRunner creates a runner. If logger is nil, log.Default() is used.
func NewRunner(checker FileChecker, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Checker: checker,
		Logger:  logger,
	}
}

// Run checks every existing manifest in paths and returns their results in
// input order. Paths that do not exist are logged and left out of the
// results. A manifest that fails to parse is reported in its FileResult.Err
// and does not affect the other files.
//
// Run returns ErrNoManifests if paths is empty, and ctx.Err() if the run was
// cancelled before every file finished.
func (r *Runner) Run(ctx context.Context, paths []string) ([]FileResult, error) {
	if len(paths) == 0 {
		return nil, ErrNoManifests
	}

	logger := r.Logger.With("run", uuid.NewString()[:8])
	start := time.Now()

	scheduled := r.existing(logger, paths)
	logger.Debug("checking manifests", "files", len(scheduled), "skipped", len(paths)-len(scheduled))

	results := make([]FileResult, len(scheduled))
	var g errgroup.Group
	for i, path := range scheduled {
		i, path := i, path
		g.Go(func() error {
			res, err := r.Checker.CheckFile(ctx, path)
			if err != nil {
				logger.Error("manifest check failed", "path", path, "err", err)
			}
			results[i] = FileResult{Path: path, Results: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	packages, failed := 0, 0
	for _, fr := range results {
		packages += len(fr.Results)
		failed += fr.Failed()
	}
	logger.Info("checked manifests",
		"files", len(results),
		"packages", packages,
		"failed", failed,
		"duration", time.Since(start).Round(time.Millisecond))

	return results, nil
}

func (r *Runner) existing(logger *log.Logger, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logger.Error("manifest not found, skipping", "path", p)
			} else {
				logger.Error("cannot read manifest, skipping", "path", p, "err", err)
			}
			continue
		}
		out = append(out, p)
	}
	return out
}
