package manifest

import (
	"io"
	"strings"

	"github.com/BurntSushi/toml"

	pkgerrors "github.com/matzehuels/pkgage/pkg/errors"
)

// PoetryLock parses poetry.lock files. Every locked package is reported as an
// exact pin on its locked version.
type PoetryLock struct{}

func (p *PoetryLock) Type() string              { return "poetry.lock" }
func (p *PoetryLock) Supports(name string) bool { return name == "poetry.lock" }

type lockFile struct {
	Packages []lockPackage `toml:"package"`
}

type lockPackage struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

func (p *PoetryLock) Parse(r io.Reader) ([]Requirement, error) {
	var lock lockFile
	if _, err := toml.NewDecoder(r).Decode(&lock); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidManifest, err, "decode poetry.lock")
	}

	reqs := make([]Requirement, 0, len(lock.Packages))
	for i, pkg := range lock.Packages {
		if err := pkgerrors.ValidatePythonPackageName(pkg.Name); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidManifest, err, "package #%d", i+1)
		}
		req := Requirement{Name: pkg.Name}
		if v := strings.TrimSpace(pkg.Version); v != "" {
			req.Specs = []Spec{{Op: "==", Version: v}}
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}
