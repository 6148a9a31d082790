package staleness

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	pkgerrors "github.com/matzehuels/pkgage/pkg/errors"
	"github.com/matzehuels/pkgage/pkg/integrations/pypi"
	"github.com/matzehuels/pkgage/pkg/manifest"
	"github.com/matzehuels/pkgage/pkg/observability"
)

// DefaultConcurrency is the number of registry lookups run at once per file.
const DefaultConcurrency = 15

// Config holds the registry settings used by a Checker.
type Config struct {
	Timeout     time.Duration // Per-request timeout (<= 0 for the client default)
	UserAgent   string        // User-Agent sent to the registry
	Concurrency int           // Parallel lookups per file (0 = unlimited)
}

// Registry is the part of the PyPI client a lookup needs.
type Registry interface {
	FetchProject(ctx context.Context, pkg string) (*pypi.Project, error)
}

// Checker resolves the requirements of manifests against PyPI.
//
// A Checker holds no per-run state and is safe for concurrent use.
type Checker struct {
	cfg        Config
	logger     *log.Logger
	now        func() time.Time
	clientOpts []pypi.Option
}

// Option configures a Checker.
type Option func(*Checker)

// WithNow replaces the clock used to compute ages.
func WithNow(now func() time.Time) Option {
	return func(c *Checker) { c.now = now }
}

// WithClientOptions passes options to every PyPI client the Checker creates.
func WithClientOptions(opts ...pypi.Option) Option {
	return func(c *Checker) { c.clientOpts = append(c.clientOpts, opts...) }
}

// NewChecker creates a Checker. A nil logger selects log.Default().
func NewChecker(cfg Config, logger *log.Logger, opts ...Option) *Checker {
	if logger == nil {
		logger = log.Default()
	}
	c := &Checker{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchStatus looks up the first declared version of req.
//
// The returned error carries a code from [pkgerrors]: UNPINNED_REQUIREMENT
// when req has no specifier, PACKAGE_NOT_FOUND, VERSION_NOT_FOUND,
// INVALID_RESPONSE (including non-JSON responses), NETWORK_ERROR or TIMEOUT.
func (c *Checker) FetchStatus(ctx context.Context, reg Registry, req manifest.Requirement) (*Status, error) {
	version := req.Pinned()
	if version == "" {
		return nil, pkgerrors.New(pkgerrors.ErrCodeUnpinned, "%s has no version specifier", req.Name)
	}

	c.logger.Debug("fetching release", "package", req.Name, "version", version)
	project, err := reg.FetchProject(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	return StatusFor(project, req.Name, version, c.now())
}

// Check looks up all requirements concurrently through reg and returns one
// Result per requirement in the same order. Failed lookups are logged and
// returned as Results without a Status; they never cancel other lookups.
func (c *Checker) Check(ctx context.Context, reg Registry, reqs []manifest.Requirement) []Result {
	results := make([]Result, len(reqs))

	var g errgroup.Group
	if c.cfg.Concurrency > 0 {
		g.SetLimit(c.cfg.Concurrency)
	}
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			results[i] = c.lookup(ctx, reg, req)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (c *Checker) lookup(ctx context.Context, reg Registry, req manifest.Requirement) (res Result) {
	res.Requirement = req
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res.Status = nil
			res.Err = pkgerrors.New(pkgerrors.ErrCodeInternal, "lookup of %s panicked: %v", req.Name, r)
		}
		observability.Check().OnLookup(ctx, req.Name, req.Pinned(), time.Since(start), res.Err)
		if res.Err != nil {
			c.logFailure(req, res.Err)
		}
	}()

	res.Status, res.Err = c.FetchStatus(ctx, reg, req)
	return res
}

func (c *Checker) logFailure(req manifest.Requirement, err error) {
	switch pkgerrors.GetCode(err) {
	case pkgerrors.ErrCodeUnpinned:
		c.logger.Warn("skipping unpinned requirement", "package", req.Name, "line", req.Line)
	case pkgerrors.ErrCodeVersionNotFound:
		c.logger.Error("version not found on registry", "package", req.Name, "version", req.Pinned())
	default:
		c.logger.Error("lookup failed", "package", req.Name, "version", req.Pinned(), "err", err)
	}
}

// CheckFile parses the manifest at path and checks all of its requirements.
//
// All lookups for the file share one registry client, which is closed once
// every lookup has finished. A manifest that cannot be read or parsed is
// returned as an error and no lookups are made.
func (c *Checker) CheckFile(ctx context.Context, path string) ([]Result, error) {
	hooks := observability.Check()
	hooks.OnFileStart(ctx, path)
	start := time.Now()

	c.logger.Info("parsing manifest", "path", path)
	reqs, err := parseAsync(ctx, path)
	if err != nil {
		hooks.OnFileComplete(ctx, path, 0, 0, time.Since(start), err)
		return nil, err
	}
	c.logger.Debug("parsed manifest", "path", path, "requirements", len(reqs))

	client := pypi.NewClient(c.cfg.Timeout, c.cfg.UserAgent, c.clientOpts...)
	defer client.Close()

	results := c.Check(ctx, client, reqs)

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	hooks.OnFileComplete(ctx, path, len(results), failed, time.Since(start), nil)
	return results, nil
}

// parseAsync reads the manifest on its own goroutine and gives up waiting
// for it once ctx is done.
func parseAsync(ctx context.Context, path string) ([]manifest.Requirement, error) {
	type parsed struct {
		reqs []manifest.Requirement
		err  error
	}
	ch := make(chan parsed, 1)
	go func() {
		reqs, err := manifest.ParseFile(path)
		ch <- parsed{reqs, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case p := <-ch:
		return p.reqs, p.err
	}
}
