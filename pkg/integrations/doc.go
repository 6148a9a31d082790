// Package integrations provides the shared HTTP layer for package registry APIs.
//
// # Overview
//
// Registry clients live in subpackages and embed [Client]:
//
//   - [pypi]: Python Package Index
//
// # Client Pattern
//
//	client := pypi.NewClient(10*time.Second, "pkgage/dev")
//	defer client.Close()
//	project, err := client.FetchProject(ctx, "requests")
//
// [Client] handles:
//   - An explicit per-request timeout
//   - Default request headers (User-Agent)
//   - Status and content-type checks with typed sentinel errors
//   - HTTP events for [observability.HTTPHooks]
//
// Requests are never retried and responses are never cached.
//
// [pypi]: github.com/matzehuels/pkgage/pkg/integrations/pypi
// [observability.HTTPHooks]: github.com/matzehuels/pkgage/pkg/observability.HTTPHooks
package integrations
