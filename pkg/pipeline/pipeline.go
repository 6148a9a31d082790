// Package pipeline runs manifest checks for a set of files.
//
// The CLI hands the Runner the manifest paths it was given. The Runner drops
// paths that do not exist, checks the remaining files concurrently through a
// [staleness.Checker], and returns one [FileResult] per checked file in input
// order, ready for the report printer.
//
// # Usage
//
//	checker := staleness.NewChecker(staleness.Config{Timeout: 10 * time.Second}, logger)
//	runner := pipeline.NewRunner(checker, logger)
//	results, err := runner.Run(ctx, []string{"requirements.txt"})
//	if err != nil {
//	    return err
//	}
//	report.New(os.Stdout).Print(results)
package pipeline

import (
	"context"

	pkgerrors "github.com/matzehuels/pkgage/pkg/errors"
	"github.com/matzehuels/pkgage/pkg/staleness"
)

// ErrNoManifests is returned by [Runner.Run] when it is given no paths.
var ErrNoManifests = pkgerrors.New(pkgerrors.ErrCodeNoInput, "no manifest files given")

// FileChecker checks every requirement of one manifest.
//
// [staleness.Checker] is the production implementation.
type FileChecker interface {
	CheckFile(ctx context.Context, path string) ([]staleness.Result, error)
}

// FileResult is the outcome of checking one manifest.
type FileResult struct {
	Path    string
	Results []staleness.Result // One per requirement, in manifest order
	Err     error              // Set when the manifest could not be read or parsed
}

// Statuses returns the statuses of the successful lookups, in manifest order.
func (f FileResult) Statuses() []staleness.Status {
	out := make([]staleness.Status, 0, len(f.Results))
	for _, r := range f.Results {
		if r.OK() {
			out = append(out, *r.Status)
		}
	}
	return out
}

// Failed returns the number of lookups that produced no status.
func (f FileResult) Failed() int {
	n := 0
	for _, r := range f.Results {
		if !r.OK() {
			n++
		}
	}
	return n
}

// FailedFiles returns the number of manifests that could not be read or
// parsed.
func FailedFiles(results []FileResult) int {
	n := 0
	for _, fr := range results {
		if fr.Err != nil {
			n++
		}
	}
	return n
}
