package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/matzehuels/pkgage/pkg/errors"
	"github.com/matzehuels/pkgage/pkg/observability"
)

// Client provides shared HTTP functionality for registry API clients.
// It owns one connection pool; create one per unit of work and Close it
// when that work is done.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	http    *http.Client
	headers map[string]string
}

// NewClient creates a Client with the given per-request timeout and default
// headers. Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed.
func NewClient(timeout time.Duration, headers map[string]string) *Client {
	return &Client{
		http:    NewHTTPClient(timeout),
		headers: headers,
	}
}

// Close releases idle pooled connections. The client remains usable.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// GetJSON performs an HTTP GET request and JSON-decodes the response into v.
//
// Returns:
//   - [ErrNotFound] for 404 responses
//   - [ErrNetwork] for transport failures and other non-200 responses
//   - [ErrNotJSON] when the response content type is not JSON
//   - [ErrInvalidResponse] when the body cannot be decoded into v
//
// Every error also carries a [pkgerrors.Code].
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrCodeInternal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	for k, val := range c.headers {
		req.Header.Set(k, val)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		code := pkgerrors.ErrCodeNetwork
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			code = pkgerrors.ErrCodeTimeout
		}
		return pkgerrors.Wrap(code, fmt.Errorf("%w: %v", ErrNetwork, err), "GET %s", url)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		return err
	}
	if ct := resp.Header.Get("Content-Type"); !isJSON(ct) {
		return pkgerrors.Wrap(pkgerrors.ErrCodeInvalidResponse, ErrNotJSON, "GET %s: content type %q", url, ct)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrCodeInvalidResponse, fmt.Errorf("%w: %v", ErrInvalidResponse, err), "decode %s", url)
	}
	return nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return pkgerrors.Wrap(pkgerrors.ErrCodePackageNotFound, ErrNotFound, "status %d", code)
	default:
		return pkgerrors.Wrap(pkgerrors.ErrCodeNetwork, ErrNetwork, "status %d", code)
	}
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
