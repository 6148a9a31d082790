package manifest

import (
	"io"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	pkgerrors "github.com/matzehuels/pkgage/pkg/errors"
)

// Pyproject parses the dependency tables of pyproject.toml: PEP 621
// [project].dependencies followed by Poetry's [tool.poetry.dependencies].
//
// Poetry constraints such as "^1.2" or "~1.2" do not name a single release
// and are reported as unconstrained.
type Pyproject struct{}

func (p *Pyproject) Type() string              { return "pyproject.toml" }
func (p *Pyproject) Supports(name string) bool { return name == "pyproject.toml" }

type pyprojectFile struct {
	Project struct {
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Dependencies map[string]any `toml:"dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

func (p *Pyproject) Parse(r io.Reader) ([]Requirement, error) {
	var doc pyprojectFile
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidManifest, err, "decode pyproject.toml")
	}

	var reqs []Requirement
	for i, dep := range doc.Project.Dependencies {
		if j := strings.IndexByte(dep, ';'); j >= 0 {
			dep = dep[:j]
		}
		req, ok, err := parseRequirement(strings.TrimSpace(dep))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidManifest, err, "project.dependencies[%d]", i)
		}
		if ok {
			reqs = append(reqs, req)
		}
	}

	// Map iteration order is random; keep output stable.
	names := make([]string, 0, len(doc.Tool.Poetry.Dependencies))
	for name := range doc.Tool.Poetry.Dependencies {
		if strings.EqualFold(name, "python") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := pkgerrors.ValidatePythonPackageName(name); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidManifest, err, "tool.poetry.dependencies")
		}
		req := Requirement{Name: name}
		if v := poetryPin(doc.Tool.Poetry.Dependencies[name]); v != "" {
			req.Specs = []Spec{{Op: "==", Version: v}}
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// poetryPin returns the exact version named by a Poetry constraint, which is
// either a string or a table with a "version" key.
func poetryPin(v any) string {
	var c string
	switch t := v.(type) {
	case string:
		c = t
	case map[string]any:
		c, _ = t["version"].(string)
	}
	c = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(c), "=="))
	if c == "" || strings.ContainsAny(c, "^~*<>=!, |") {
		return ""
	}
	if specRE.MatchString("==" + c) {
		return c
	}
	return ""
}
