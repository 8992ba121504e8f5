// Package report turns coverage runs into Markdown or HTML reports.
package report

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/zjy-dev/gcovlens/internal/coverage"
)

// Format selects the report renderer.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "md"
)

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatHTML:
		return FormatHTML, nil
	case FormatMarkdown:
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown report format %q (want html or md)", s)
}

// Options control rendering and output placement.
type Options struct {
	Format Format
	// Output is the summary file path. Required.
	Output string
	// DetailsDir holds per-file HTML pages; DefaultDetailsDir(Output) if empty.
	DetailsDir string

	ShowLines     bool
	DisplayBlank  bool
	StripComments bool

	Syntax         Syntax
	Theme          string
	UIFontSize     int
	CodeFontSize   float64
	CodeLineHeight float64
}

// DefaultOptions returns the presentation defaults.
func DefaultOptions() Options {
	return Options{
		Format:         FormatHTML,
		Syntax:         SyntaxHLJS,
		Theme:          "github",
		UIFontSize:     12,
		CodeFontSize:   13,
		CodeLineHeight: 1.25,
	}
}

// SingleReport is the snapshot of one run.
type SingleReport struct {
	// Files are ordered by source path.
	Files  []*coverage.FileCoverage
	Totals coverage.Totals
}

// NewSingleReport aggregates a run.
func NewSingleReport(run coverage.Run) *SingleReport {
	files := run.Files()
	return &SingleReport{
		Files:  files,
		Totals: coverage.Aggregate(files),
	}
}

// ByPercent returns the files ordered by coverage ascending, then by source.
func (r *SingleReport) ByPercent() []*coverage.FileCoverage {
	out := append([]*coverage.FileCoverage(nil), r.Files...)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Percent(), out[j].Percent()
		if pi != pj {
			return pi < pj
		}
		return out[i].Source < out[j].Source
	})
	return out
}

// DiffReport compares two runs. Changed holds only the files passing the
// change threshold while Totals cover every file of both runs.
type DiffReport struct {
	Changed []coverage.FileDiff
	Totals  coverage.PairTotals
}

// NewDiffReport compares run a against run b.
func NewDiffReport(a, b coverage.Run, threshold float64) *DiffReport {
	diffs := coverage.CompareRuns(a, b)
	return &DiffReport{
		Changed: coverage.ChangedOnly(diffs, threshold),
		Totals:  coverage.AggregatePairs(diffs),
	}
}

// Result describes what a Reporter wrote.
type Result struct {
	Output string
	// DetailsDir is empty when no detail pages were written.
	DetailsDir string
	Pages      int
}

// Reporter writes a report to the configured output.
type Reporter interface {
	WriteSingle(r *SingleReport) (*Result, error)
	WriteDiff(r *DiffReport) (*Result, error)
}

// New returns the Reporter for opts.Format writing through fs.
func New(fs afero.Fs, opts Options) (Reporter, error) {
	if opts.Output == "" {
		return nil, fmt.Errorf("report output path is empty")
	}
	switch opts.Format {
	case FormatMarkdown:
		return NewMarkdownReporter(fs, opts), nil
	case FormatHTML:
		return NewHTMLReporter(fs, opts), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", opts.Format)
	}
}

// formatPercent renders a percentage with one decimal.
func formatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// formatDelta renders a signed percentage-point change.
func formatDelta(d float64) string {
	return fmt.Sprintf("%+.1f%%", d)
}

// writeFile creates the parent directory of path and writes data.
func writeFile(fs afero.Fs, path string, data []byte) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
