// Package pkg provides the libraries behind pkgage, a tool that reports how
// outdated the pinned Python packages of a project are.
//
// # Overview
//
// pkgage reads dependency manifests, looks up each pinned release on PyPI and
// lists the packages of every manifest from the oldest pinned release to the
// newest. The pkg directory is organized into three areas:
//
//  1. Domain logic ([manifest], [staleness])
//  2. External integrations ([integrations], [integrations/pypi])
//  3. Orchestration and output ([pipeline], [report])
//
// # Architecture
//
// The data flow through pkgage:
//
//	requirements.txt / pyproject.toml / poetry.lock
//	         ↓
//	    [manifest] package (parse requirements)
//	         ↓
//	    [staleness] package (one PyPI lookup per requirement, concurrently)
//	         ↓
//	    [pipeline] package (all manifests, concurrently, in input order)
//	         ↓
//	    [report] package (sorted text report)
//
// # Quick Start
//
// Check a manifest and print the report:
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/matzehuels/pkgage/pkg/pipeline"
//	    "github.com/matzehuels/pkgage/pkg/report"
//	    "github.com/matzehuels/pkgage/pkg/staleness"
//	)
//
//	checker := staleness.NewChecker(staleness.Config{Concurrency: 15}, nil)
//	results, err := pipeline.NewRunner(checker, nil).Run(context.Background(),
//	    []string{"requirements.txt"})
//	if err != nil {
//	    return err
//	}
//	report.New(os.Stdout).Print(results)
//
// # Main Packages
//
// [manifest] - Parsers for requirements.txt, pyproject.toml (PEP 621 and
// Poetry tables) and poetry.lock, producing name and version-specifier pairs.
//
// [staleness] - Resolves requirements against PyPI. Computes the age of the
// pinned release in whole days and whether it is the latest version. Failed
// lookups become failure markers that never abort sibling lookups.
//
// [integrations] - Shared JSON-over-HTTP client with per-request timeouts,
// content-type checks and status code mapping.
//
// [integrations/pypi] - Typed client for the PyPI JSON API.
//
// [pipeline] - Runs the checks for a set of manifests concurrently.
//
// [report] - Prints the results, most outdated first.
//
// ## Infrastructure
//
// [errors] - Coded errors and input validation.
//
// [observability] - Hooks for HTTP and check events, no-ops by default.
//
// [buildinfo] - Version information injected at build time.
package pkg
