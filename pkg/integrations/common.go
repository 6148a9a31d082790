package integrations

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single registry request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a package or resource doesn't exist in the registry.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, non-200 responses).
	ErrNetwork = errors.New("network error")

	// ErrNotJSON is returned when the registry answers with a non-JSON content type.
	ErrNotJSON = errors.New("response is not JSON")

	// ErrInvalidResponse is returned when a JSON body does not match the expected schema.
	ErrInvalidResponse = errors.New("invalid response")
)

// NewHTTPClient creates an HTTP client with its own connection pool and the
// given per-request timeout. A timeout <= 0 selects DefaultTimeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: http.DefaultTransport.(*http.Transport).Clone(),
	}
}

// NormalizePkgName converts a package name to its canonical form.
// Applies lowercase and replaces underscores and dots with hyphens, following
// PEP 503 normalization rules used by PyPI.
func NormalizePkgName(name string) string {
	return pkgNameReplacer.Replace(strings.ToLower(strings.TrimSpace(name)))
}

var pkgNameReplacer = strings.NewReplacer("_", "-", ".", "-")
