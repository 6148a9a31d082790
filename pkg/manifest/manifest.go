package manifest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/matzehuels/pkgage/pkg/errors"
)

// Spec is one (operator, version) pair of a version specifier,
// e.g. {"==", "2.18.4"} or {">=", "1.0"}.
type Spec struct {
	Op      string
	Version string
}

func (s Spec) String() string { return s.Op + s.Version }

// Requirement is one declared dependency.
//
// Specs holds the specifier pairs in declaration order and is empty for an
// unconstrained dependency. Line is the 1-based source line, or 0 when the
// format has no meaningful line numbers.
type Requirement struct {
	Name  string
	Specs []Spec
	Line  int
}

// Pinned returns the version of the first declared specifier, or "" when the
// requirement is unconstrained.
func (r Requirement) Pinned() string {
	if len(r.Specs) == 0 {
		return ""
	}
	return r.Specs[0].Version
}

// String renders the requirement in requirements.txt form.
func (r Requirement) String() string {
	parts := make([]string, len(r.Specs))
	for i, s := range r.Specs {
		parts[i] = s.String()
	}
	return r.Name + strings.Join(parts, ",")
}

// Parser reads requirements from one manifest format.
type Parser interface {
	// Type returns the manifest type identifier (e.g., "requirements.txt").
	Type() string
	// Supports reports whether this parser handles the given filename.
	Supports(filename string) bool
	// Parse reads the manifest content and returns its requirements.
	Parse(r io.Reader) ([]Requirement, error)
}

// Parsers lists the format-specific parsers consulted by Detect, in order.
// Requirements is the fallback and is not listed.
var Parsers = []Parser{
	&PoetryLock{},
	&Pyproject{},
}

// Detect returns the parser for path based on its base name. Files that no
// specific parser claims are read as requirements files.
func Detect(path string) Parser {
	name := filepath.Base(path)
	for _, p := range Parsers {
		if p.Supports(name) {
			return p
		}
	}
	return &Requirements{}
}

// ParseFile opens path and parses it with the detected parser.
func ParseFile(path string) ([]Requirement, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pkgerrors.Wrap(pkgerrors.ErrCodeFileNotFound, err, "manifest %s", path)
		}
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	reqs, err := Detect(path).Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reqs, nil
}
