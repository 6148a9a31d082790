package pypi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/matzehuels/pkgage/pkg/errors"
	"github.com/matzehuels/pkgage/pkg/integrations"
)

// DefaultBaseURL is the PyPI JSON API root.
const DefaultBaseURL = "https://pypi.org/pypi"

// UploadTimeLayout is the layout of release upload_time values.
const UploadTimeLayout = "2006-01-02T15:04:05"

// ErrVersionNotFound is returned when a project has no release for a version.
var ErrVersionNotFound = errors.New("version not found")

// Project holds the parts of a PyPI project document this package needs.
//
// Releases maps each version string to its published files in registry order.
// A Project is safe for concurrent reads after construction.
type Project struct {
	Name          string                   // Name as requested
	LatestVersion string                   // info.version, never empty in a valid Project
	Releases      map[string][]ReleaseFile // Published files by version
}

// ReleaseFile is one published artifact of a release.
type ReleaseFile struct {
	Filename   string `json:"filename"`
	UploadTime string `json:"upload_time"`
}

// UploadedAt parses UploadTime as a naive local timestamp.
func (f ReleaseFile) UploadedAt() (time.Time, error) {
	t, err := time.ParseInLocation(UploadTimeLayout, f.UploadTime, time.Local)
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidResponse,
			fmt.Errorf("%w: %v", integrations.ErrInvalidResponse, err), "upload_time of %s", f.Filename)
	}
	return t, nil
}

// Release returns the last listed file of the given version.
//
// Registries may publish several artifacts per version (sdist, wheels); the
// last one listed is used, which is not necessarily the latest upload across
// all versions. Returns [ErrVersionNotFound] if the version is absent or has
// no files.
func (p *Project) Release(version string) (ReleaseFile, error) {
	files, ok := p.Releases[version]
	if !ok || len(files) == 0 {
		return ReleaseFile{}, pkgerrors.Wrap(pkgerrors.ErrCodeVersionNotFound, ErrVersionNotFound,
			"pypi package %s version %s", p.Name, version)
	}
	return files[len(files)-1], nil
}

// IsLatest reports whether version is the project's current version.
func (p *Project) IsLatest(version string) bool {
	return version == p.LatestVersion
}

// Client provides access to the PyPI JSON API.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another PyPI-compatible JSON API root.
// It exists for tests; invalid URLs are ignored.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if pkgerrors.ValidateURL(u) == nil {
			c.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

// NewClient creates a PyPI client.
//
// Parameters:
//   - timeout: Per-request timeout (<= 0 selects [integrations.DefaultTimeout])
//   - userAgent: User-Agent header sent with each request (empty for Go's default)
//
// Close the client once all lookups using it have finished.
func NewClient(timeout time.Duration, userAgent string, opts ...Option) *Client {
	var headers map[string]string
	if userAgent != "" {
		headers = map[string]string{"User-Agent": userAgent}
	}
	c := &Client{
		Client:  integrations.NewClient(timeout, headers),
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProjectURL returns the JSON metadata URL for pkg.
func (c *Client) ProjectURL(pkg string) string {
	return fmt.Sprintf("%s/%s/json", c.baseURL, url.PathEscape(integrations.NormalizePkgName(pkg)))
}

// FetchProject retrieves the project document for pkg.
//
// Returns:
//   - Project populated with the latest version and release files on success
//   - [integrations.ErrNotFound] if the package doesn't exist
//   - [integrations.ErrNotJSON] if PyPI answered with a non-JSON document
//   - [integrations.ErrInvalidResponse] if required fields are missing
//   - [integrations.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
func (c *Client) FetchProject(ctx context.Context, pkg string) (*Project, error) {
	var data apiResponse
	if err := c.GetJSON(ctx, c.ProjectURL(pkg), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("pypi package %s: %w", pkg, err)
		}
		return nil, err
	}

	if strings.TrimSpace(data.Info.Version) == "" {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidResponse, integrations.ErrInvalidResponse,
			"pypi package %s: missing info.version", pkg)
	}
	if data.Releases == nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidResponse, integrations.ErrInvalidResponse,
			"pypi package %s: missing releases", pkg)
	}

	return &Project{
		Name:          pkg,
		LatestVersion: data.Info.Version,
		Releases:      data.Releases,
	}, nil
}

type apiResponse struct {
	Info     apiInfo                  `json:"info"`
	Releases map[string][]ReleaseFile `json:"releases"`
}

type apiInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}
