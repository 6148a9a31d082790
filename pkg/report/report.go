// Package report prints the outcome of a pipeline run as text.
//
// For every checked manifest the printer writes a header followed by one
// line per package that could be resolved, most outdated first:
//
//	Packages from requirements.txt
//	 - requests 2.18.4: 30 days old
//	 - click 7.0: LATEST
//
// Packages whose lookup failed are left out; the failure has already been
// logged by the checker. Colors are applied only when the writer is a
// terminal.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/pkgage/pkg/pipeline"
	"github.com/matzehuels/pkgage/pkg/staleness"
)

// StaleAfterDays is the age from which a package's age is highlighted as stale.
const StaleAfterDays = 365

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorDim    = lipgloss.Color("240")
)

// Printer writes reports to a writer.
type Printer struct {
	w io.Writer

	title  lipgloss.Style
	dim    lipgloss.Style
	latest lipgloss.Style
	aging  lipgloss.Style
	stale  lipgloss.Style
}

// New creates a Printer writing to w. Styles are resolved against w, so a
// pipe or file receives plain text.
func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:      w,
		title:  r.NewStyle().Bold(true).Foreground(colorCyan),
		dim:    r.NewStyle().Foreground(colorDim),
		latest: r.NewStyle().Foreground(colorGreen),
		aging:  r.NewStyle().Foreground(colorYellow),
		stale:  r.NewStyle().Foreground(colorRed),
	}
}

// Print writes one section per file result, in the given order.
func (p *Printer) Print(results []pipeline.FileResult) error {
	for _, fr := range results {
		if err := p.PrintFile(fr); err != nil {
			return err
		}
	}
	return nil
}

// PrintFile writes the header and package lines of a single manifest.
func (p *Printer) PrintFile(fr pipeline.FileResult) error {
	if _, err := fmt.Fprintf(p.w, "%s %s\n", p.title.Render("Packages from"), p.title.Render(fr.Path)); err != nil {
		return err
	}
	for _, s := range Sort(fr.Statuses()) {
		if _, err := fmt.Fprintln(p.w, p.line(s)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) line(s staleness.Status) string {
	prefix := fmt.Sprintf(" - %s %s:", s.Name, s.Version)
	if s.IsLatest {
		return prefix + " " + p.latest.Render("LATEST")
	}
	age := fmt.Sprintf("%d days old", s.ReleasedDaysAgo)
	switch {
	case s.ReleasedDaysAgo >= StaleAfterDays:
		age = p.stale.Render(age)
	case s.ReleasedDaysAgo > 0:
		age = p.aging.Render(age)
	default:
		age = p.dim.Render(age)
	}
	return prefix + " " + age
}

// Sort orders statuses from most to least outdated. Statuses with equal
// ages keep their manifest order. The input slice is not modified.
func Sort(statuses []staleness.Status) []staleness.Status {
	out := make([]staleness.Status, len(statuses))
	copy(out, statuses)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReleasedDaysAgo > out[j].ReleasedDaysAgo
	})
	return out
}
