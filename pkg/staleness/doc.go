// Package staleness computes how old the pinned versions of a manifest are.
//
// A [Checker] parses one manifest, looks every requirement up on PyPI
// concurrently and returns one [Result] per requirement, in manifest order.
// Lookups that fail (unknown package, unknown version, non-JSON response,
// unpinned requirement, network error) yield a Result without a Status and
// are logged; they never abort the other lookups of the file.
//
//	checker := staleness.NewChecker(staleness.Config{Timeout: 10 * time.Second}, logger)
//	results, err := checker.CheckFile(ctx, "requirements.txt")
//	if err != nil {
//	    // the manifest could not be read or parsed
//	}
//	for _, r := range results {
//	    if r.OK() {
//	        fmt.Println(r.Status.Name, r.Status.ReleasedDaysAgo)
//	    }
//	}
package staleness
