package manifest

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	pkgerrors "github.com/matzehuels/pkgage/pkg/errors"
)

var (
	reqNameRE = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)\s*(\[[^\]]*\])?\s*(.*)$`)
	specRE    = regexp.MustCompile(`^(===|==|~=|!=|<=|>=|<|>)\s*([A-Za-z0-9*][A-Za-z0-9.*+!_-]*)$`)
	commentRE = regexp.MustCompile(`(^|\s)#.*$`)
)

// Requirements parses pip requirements files.
type Requirements struct{}

func (r *Requirements) Type() string { return "requirements.txt" }

func (r *Requirements) Supports(name string) bool {
	return name == "requirements.txt" ||
		(strings.HasPrefix(name, "requirements") && strings.HasSuffix(name, ".txt"))
}

func (r *Requirements) Parse(rd io.Reader) ([]Requirement, error) {
	var (
		result  []Requirement
		pending strings.Builder
		start   int
		lineNo  int
	)

	scanner := bufio.NewScanner(rd)
	for scanner.Scan() {
		lineNo++
		text := scanner.Text()
		if pending.Len() == 0 {
			start = lineNo
		}
		if strings.HasSuffix(text, `\`) {
			pending.WriteString(strings.TrimSuffix(text, `\`))
			continue
		}
		pending.WriteString(text)
		line := pending.String()
		pending.Reset()

		req, ok, err := parseLine(line)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidManifest, err, "line %d", start)
		}
		if ok {
			req.Line = start
			result = append(result, req)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidManifest, err, "read requirements")
	}
	if pending.Len() > 0 {
		req, ok, err := parseLine(pending.String())
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidManifest, err, "line %d", start)
		}
		if ok {
			req.Line = start
			result = append(result, req)
		}
	}
	return result, nil
}

// parseLine parses a single logical requirements line. ok is false for lines
// that declare nothing this package understands (blank, comments, options,
// URL references).
func parseLine(line string) (req Requirement, ok bool, err error) {
	line = strings.TrimSpace(commentRE.ReplaceAllString(line, ""))
	if line == "" || line[0] == '-' {
		return req, false, nil
	}
	if strings.Contains(line, "://") || strings.HasPrefix(line, "git+") {
		return req, false, nil
	}
	// Per-requirement options such as --hash follow the specifiers.
	if i := strings.Index(line, " --"); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	return parseRequirement(line)
}

// parseRequirement parses a PEP 508 style "name[extras] specifiers" string
// without markers.
func parseRequirement(s string) (Requirement, bool, error) {
	m := reqNameRE.FindStringSubmatch(s)
	if m == nil {
		return Requirement{}, false, pkgerrors.New(pkgerrors.ErrCodeInvalidManifest, "invalid requirement %q", s)
	}
	name := m[1]
	if err := pkgerrors.ValidatePythonPackageName(name); err != nil {
		return Requirement{}, false, err
	}

	rest := strings.TrimSpace(m[3])
	if strings.HasPrefix(rest, "@") {
		// Direct reference (name @ url): no version to look up.
		return Requirement{}, false, nil
	}
	rest = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(rest, "("), ")"))

	specs, err := parseSpecs(rest)
	if err != nil {
		return Requirement{}, false, err
	}
	return Requirement{Name: name, Specs: specs}, true, nil
}

func parseSpecs(s string) ([]Spec, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	specs := make([]Spec, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		m := specRE.FindStringSubmatch(p)
		if m == nil {
			return nil, pkgerrors.New(pkgerrors.ErrCodeInvalidManifest, "invalid version specifier %q", p)
		}
		specs = append(specs, Spec{Op: m[1], Version: m[2]})
	}
	return specs, nil
}
