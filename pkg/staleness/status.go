package staleness

import (
	"time"

	"github.com/matzehuels/pkgage/pkg/integrations/pypi"
	"github.com/matzehuels/pkgage/pkg/manifest"
)

// Status describes one resolved package version.
type Status struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	IsLatest        bool   `json:"is_latest"`
	ReleasedDaysAgo int    `json:"released_days_ago"`
	UploadTime      string `json:"upload_time"`
}

// Result is the outcome of looking up one requirement. Exactly one of Status
// and Err is set.
type Result struct {
	Requirement manifest.Requirement
	Status      *Status
	Err         error
}

// OK reports whether the lookup produced a status.
func (r Result) OK() bool { return r.Status != nil && r.Err == nil }

// DaysBetween returns the whole days elapsed from then to now, never negative.
// Both times are compared by their wall clock readings, so zone offsets and
// daylight saving changes between them do not shift the result.
func DaysBetween(then, now time.Time) int {
	d := wall(now).Sub(wall(then))
	if d < 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

func wall(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// StatusFor builds the status of version from a fetched project.
func StatusFor(project *pypi.Project, name, version string, now time.Time) (*Status, error) {
	file, err := project.Release(version)
	if err != nil {
		return nil, err
	}
	uploaded, err := file.UploadedAt()
	if err != nil {
		return nil, err
	}
	return &Status{
		Name:            name,
		Version:         version,
		IsLatest:        project.IsLatest(version),
		ReleasedDaysAgo: DaysBetween(uploaded, now),
		UploadTime:      file.UploadTime,
	}, nil
}
