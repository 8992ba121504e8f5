package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/zjy-dev/gcovlens/internal/coverage"
)

// MarkdownReporter implements the Reporter interface by saving reports as markdown files.
type MarkdownReporter struct {
	fs   afero.Fs
	opts Options
}

// NewMarkdownReporter creates a new MarkdownReporter.
func NewMarkdownReporter(fs afero.Fs, opts Options) *MarkdownReporter {
	return &MarkdownReporter{
		fs:   fs,
		opts: opts,
	}
}

// WriteSingle saves the single-run report.
func (r *MarkdownReporter) WriteSingle(rep *SingleReport) (*Result, error) {
	if err := writeFile(r.fs, r.opts.Output, []byte(SingleMarkdown(rep))); err != nil {
		return nil, err
	}
	return &Result{Output: r.opts.Output}, nil
}

// WriteDiff saves the diff report.
func (r *MarkdownReporter) WriteDiff(rep *DiffReport) (*Result, error) {
	if err := writeFile(r.fs, r.opts.Output, []byte(DiffMarkdown(rep, r.opts.ShowLines))); err != nil {
		return nil, err
	}
	return &Result{Output: r.opts.Output}, nil
}

// SingleMarkdown renders a single-run report. Files are listed from the
// least to the most covered.
func SingleMarkdown(rep *SingleReport) string {
	var b strings.Builder
	b.WriteString("# gcovlens Report\n\n")
	fmt.Fprintf(&b, "**Coverage:** %s (%d/%d)\n\n", formatPercent(rep.Totals.Percent()), rep.Totals.Covered, rep.Totals.Total)
	b.WriteString("## File Summary\n\n")
	b.WriteString("| File | % Covered | Covered | Total | Uncovered |\n")
	b.WriteString("|---|---:|---:|---:|---:|\n")
	for _, fc := range rep.ByPercent() {
		fmt.Fprintf(&b, "| `%s` | %s | %d | %d | %d |\n",
			fc.Source, formatPercent(fc.Percent()), fc.Covered.Len(), fc.Total(), fc.Uncovered.Len())
	}
	return b.String()
}

// DiffMarkdown renders a diff report. With showLines, the line numbers that
// changed state are listed per file.
func DiffMarkdown(rep *DiffReport, showLines bool) string {
	t := rep.Totals

	var b strings.Builder
	b.WriteString("# gcovlens Diff Report\n\n")
	fmt.Fprintf(&b, "**Run A:** %s (%d/%d)  \n", formatPercent(t.A.Percent()), t.A.Covered, t.A.Total)
	fmt.Fprintf(&b, "**Run B:** %s (%d/%d)  \n", formatPercent(t.B.Percent()), t.B.Covered, t.B.Total)
	fmt.Fprintf(&b, "**Delta:** %s\n\n", formatDelta(t.Delta()))
	b.WriteString("## File Summary (changed only)\n\n")
	b.WriteString("| File | A % | B % | Δ % | +covered | +uncovered |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|\n")
	for _, d := range rep.Changed {
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s | %d | %d |\n",
			d.Source,
			formatPercent(d.A.Percent()),
			formatPercent(d.B.Percent()),
			formatDelta(d.Delta()),
			d.BecameCovered.Len(),
			d.BecameUncovered.Len(),
		)
	}

	if !showLines || len(rep.Changed) == 0 {
		return b.String()
	}

	b.WriteString("\n## Line-level Changes\n")
	for _, d := range rep.Changed {
		if d.BecameCovered.Len() == 0 && d.BecameUncovered.Len() == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n### `%s`\n\n", d.Source)
		if d.BecameCovered.Len() > 0 {
			fmt.Fprintf(&b, "**Became covered:** %s\n", joinLines(d.BecameCovered))
		}
		if d.BecameUncovered.Len() > 0 {
			if d.BecameCovered.Len() > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "**Became uncovered:** %s\n", joinLines(d.BecameUncovered))
		}
	}
	return b.String()
}

func joinLines(s coverage.LineSet) string {
	lines := s.Sorted()
	parts := make([]string, len(lines))
	for i, n := range lines {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
