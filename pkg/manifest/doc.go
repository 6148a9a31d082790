// Package manifest reads Python dependency manifests into requirement lists.
//
// # Supported Formats
//
//   - requirements.txt (and any file not matched by another parser)
//   - pyproject.toml: PEP 621 [project].dependencies and Poetry's
//     [tool.poetry.dependencies]
//   - poetry.lock: every locked [[package]] as an exact pin
//
// Only simple name/version-specifier pairs are understood. Editable installs,
// option lines, URL and VCS references are skipped, extras and environment
// markers are dropped.
//
// # Usage
//
//	reqs, err := manifest.ParseFile("requirements.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, r := range reqs {
//	    fmt.Println(r.Name, r.Pinned())
//	}
//
// Syntax errors are returned as [errors.ErrCodeInvalidManifest] and name the
// offending line where one is known.
//
// [errors.ErrCodeInvalidManifest]: github.com/matzehuels/pkgage/pkg/errors.ErrCodeInvalidManifest
package manifest
