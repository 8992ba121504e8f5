package report

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/zjy-dev/gcovlens/internal/coverage"
)

// IndexPage is the copy of the summary written into the details directory.
const IndexPage = "index.html"

const pageTemplateText = `
{{define "head"}}<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title>
{{.Assets}}
</head>{{end}}

{{define "filelink"}}{{if .Link}}<a class="filelink" href="{{.Link}}"><code>{{.Source}}</code></a>{{else}}<code>{{.Source}}</code>{{end}}{{end}}

{{define "single"}}{{template "head" .}}
<body>
<h1>gcovlens Report</h1>
<div class="grid">
  <div class="badge">Coverage: {{pct .Totals.Percent}} ({{.Totals.Covered}}/{{.Totals.Total}})</div>
  <div class="badge">Files: {{len .Rows}}</div>
</div>
<h2>File Summary</h2>
<table class="sortable"><thead><tr>
<th data-sort="alpha" aria-sort="asc">File<span class="caret"></span></th>
<th class="num" data-sort="percent" aria-sort="none">% Covered<span class="caret"></span></th>
<th class="num" data-sort="num" aria-sort="none">Covered<span class="caret"></span></th>
<th class="num" data-sort="num" aria-sort="none">Total<span class="caret"></span></th>
<th class="num" data-sort="num" aria-sort="none">Uncovered<span class="caret"></span></th>
</tr></thead><tbody>
{{range .Rows}}<tr><td>{{template "filelink" .}}</td><td class="num">{{pct .Percent}}</td><td class="num">{{.Covered}}</td><td class="num">{{.Total}}</td><td class="num">{{.Uncovered}}</td></tr>
{{else}}<tr><td colspan="5" class="empty">No executable lines found</td></tr>
{{end}}</tbody></table>
</body></html>
{{end}}

{{define "diff"}}{{template "head" .}}
<body>
<h1>gcovlens Diff Report</h1>
<div class="grid">
  <div class="badge">Run A: {{pct .Totals.A.Percent}} ({{.Totals.A.Covered}}/{{.Totals.A.Total}})</div>
  <div class="badge">Run B: {{pct .Totals.B.Percent}} ({{.Totals.B.Covered}}/{{.Totals.B.Total}})</div>
  <div class="badge">Δ: <span class="{{deltaClass .Totals.Delta}}">{{delta .Totals.Delta}}</span></div>
</div>
<h2>File Summary (changed only)</h2>
<table class="sortable"><thead><tr>
<th data-sort="alpha" aria-sort="asc">File<span class="caret"></span></th>
<th class="num" data-sort="percent" aria-sort="none">A %<span class="caret"></span></th>
<th class="num" data-sort="percent" aria-sort="none">B %<span class="caret"></span></th>
<th class="num" data-sort="percent" aria-sort="none">Δ %<span class="caret"></span></th>
<th class="num" data-sort="num" aria-sort="none">+covered<span class="caret"></span></th>
<th class="num" data-sort="num" aria-sort="none">+uncovered<span class="caret"></span></th>
</tr></thead><tbody>
{{range .Rows}}<tr><td>{{template "filelink" .}}</td><td class="num">{{pct .APercent}}</td><td class="num">{{pct .BPercent}}</td><td class="num {{deltaClass .Delta}}">{{delta .Delta}}</td><td class="num">{{.BecameCovered}}</td><td class="num">{{.BecameUncovered}}</td></tr>
{{else}}<tr><td colspan="6" class="empty">No coverage changes detected</td></tr>
{{end}}</tbody></table>
</body></html>
{{end}}

{{define "detail"}}{{template "head" .}}
<body>
<h1>gcovlens Detail — {{.Source}}</h1>
<div class="header">
  <div class="breadcrumbs"><a href="{{.Breadcrumb}}">gcovlens Report</a> / <strong>{{.Source}}</strong></div>
  <div>{{range .Pills}}<span class="pill">{{.}}</span>{{end}}</div>
</div>
<div id="minimap" class="minimap" title="Click or drag to navigate"></div>
<table class="sortable"><thead><tr>
{{range .Columns}}<th{{if .Num}} class="num"{{end}} data-sort="{{.Sort}}" aria-sort="{{if .Initial}}asc{{else}}none{{end}}">{{.Title}}<span class="caret"></span></th>
{{end}}</tr></thead><tbody>
{{range .Rows}}<tr id="L{{.Number}}" data-line="{{.Number}}" data-state="{{.DataState}}" class="{{.Class}}">{{range .Cells}}<td{{if .Num}} class="num"{{end}}>{{.Text}}</td>{{end}}<td><pre><code class="{{$.CodeClass}}">{{.Code}}</code></pre></td></tr>
{{end}}</tbody></table>
</body></html>
{{end}}
`

var pageTemplates = template.Must(template.New("pages").Funcs(template.FuncMap{
	"pct":   formatPercent,
	"delta": formatDelta,
	"deltaClass": func(d float64) string {
		if d >= 0 {
			return "delta-pos"
		}
		return "delta-neg"
	},
}).Parse(pageTemplateText))

type page struct {
	Title  string
	Assets template.HTML
}

type singleRow struct {
	Source    string
	Link      string
	Percent   float64
	Covered   int
	Total     int
	Uncovered int
}

type singlePage struct {
	page
	Totals coverage.Totals
	Rows   []singleRow
}

type diffRow struct {
	Source          string
	Link            string
	APercent        float64
	BPercent        float64
	Delta           float64
	BecameCovered   int
	BecameUncovered int
}

type diffPage struct {
	page
	Totals coverage.PairTotals
	Rows   []diffRow
}

type column struct {
	Title   string
	Sort    string
	Num     bool
	Initial bool
}

type cell struct {
	Text string
	Num  bool
}

type detailRow struct {
	Number    int
	DataState string
	Class     string
	Cells     []cell
	Code      template.HTML

	text string
}

type detailPage struct {
	page
	Source     string
	Breadcrumb string
	Pills      []string
	Columns    []column
	Rows       []detailRow
	CodeClass  string
}

var singleColumns = []column{
	{Title: "Line", Sort: "num", Num: true, Initial: true},
	{Title: "Count", Sort: "num", Num: true},
	{Title: "State", Sort: "alpha"},
	{Title: "Code", Sort: "alpha"},
}

var diffColumns = []column{
	{Title: "Line", Sort: "num", Num: true, Initial: true},
	{Title: "A count", Sort: "num", Num: true},
	{Title: "B count", Sort: "num", Num: true},
	{Title: "A state", Sort: "alpha"},
	{Title: "B state", Sort: "alpha"},
	{Title: "Code", Sort: "alpha"},
}

// HTMLReporter writes an HTML summary, one detail page per reported file and
// a copy of the summary inside the details directory.
type HTMLReporter struct {
	fs          afero.Fs
	opts        Options
	highlighter Highlighter
}

// NewHTMLReporter creates an HTMLReporter. An empty DetailsDir defaults to
// DefaultDetailsDir(opts.Output).
func NewHTMLReporter(fs afero.Fs, opts Options) *HTMLReporter {
	if opts.DetailsDir == "" {
		opts.DetailsDir = DefaultDetailsDir(opts.Output)
	}
	return &HTMLReporter{
		fs:          fs,
		opts:        opts,
		highlighter: NewHighlighter(opts.Syntax, opts.Theme),
	}
}

// WriteSingle writes the single-run summary and a detail page for every file.
func (r *HTMLReporter) WriteSingle(rep *SingleReport) (*Result, error) {
	if err := r.prepareDetailsDir(); err != nil {
		return nil, err
	}

	detailPaths := make(map[string]string, len(rep.Files))
	for _, fc := range rep.Files {
		path := filepath.Join(r.opts.DetailsDir, DetailPageName(fc.Source))
		if err := r.render("detail", r.singleDetail(fc), path); err != nil {
			return nil, err
		}
		detailPaths[fc.Source] = path
	}

	build := func(fromDir string) any {
		p := singlePage{
			page:   page{Title: "gcovlens Report", Assets: pageAssets(r.opts, false)},
			Totals: rep.Totals,
		}
		for _, fc := range rep.Files {
			p.Rows = append(p.Rows, singleRow{
				Source:    fc.Source,
				Link:      linkFrom(fromDir, detailPaths[fc.Source]),
				Percent:   fc.Percent(),
				Covered:   fc.Covered.Len(),
				Total:     fc.Total(),
				Uncovered: fc.Uncovered.Len(),
			})
		}
		sort.SliceStable(p.Rows, func(i, j int) bool {
			return strings.ToLower(p.Rows[i].Source) < strings.ToLower(p.Rows[j].Source)
		})
		return p
	}

	if err := r.writeSummaries("single", build); err != nil {
		return nil, err
	}
	return r.result(len(rep.Files)), nil
}

// WriteDiff writes the diff summary and a detail page for every changed file.
func (r *HTMLReporter) WriteDiff(rep *DiffReport) (*Result, error) {
	if err := r.prepareDetailsDir(); err != nil {
		return nil, err
	}

	detailPaths := make(map[string]string, len(rep.Changed))
	for _, d := range rep.Changed {
		path := filepath.Join(r.opts.DetailsDir, DetailPageName(d.Source))
		if err := r.render("detail", r.diffDetail(d), path); err != nil {
			return nil, err
		}
		detailPaths[d.Source] = path
	}

	build := func(fromDir string) any {
		p := diffPage{
			page:   page{Title: "gcovlens Diff Report", Assets: pageAssets(r.opts, false)},
			Totals: rep.Totals,
		}
		for _, d := range rep.Changed {
			p.Rows = append(p.Rows, diffRow{
				Source:          d.Source,
				Link:            linkFrom(fromDir, detailPaths[d.Source]),
				APercent:        d.A.Percent(),
				BPercent:        d.B.Percent(),
				Delta:           d.Delta(),
				BecameCovered:   d.BecameCovered.Len(),
				BecameUncovered: d.BecameUncovered.Len(),
			})
		}
		sort.SliceStable(p.Rows, func(i, j int) bool {
			return strings.ToLower(p.Rows[i].Source) < strings.ToLower(p.Rows[j].Source)
		})
		return p
	}

	if err := r.writeSummaries("diff", build); err != nil {
		return nil, err
	}
	return r.result(len(rep.Changed)), nil
}

// writeSummaries renders the summary twice: into the details directory with
// links relative to it, then to the output path.
func (r *HTMLReporter) writeSummaries(name string, build func(fromDir string) any) error {
	index := filepath.Join(r.opts.DetailsDir, IndexPage)
	if err := r.render(name, build(r.opts.DetailsDir), index); err != nil {
		return err
	}
	return r.render(name, build(filepath.Dir(r.opts.Output)), r.opts.Output)
}

func (r *HTMLReporter) prepareDetailsDir() error {
	if err := r.fs.MkdirAll(r.opts.DetailsDir, 0755); err != nil {
		return fmt.Errorf("failed to create details directory %s: %w", r.opts.DetailsDir, err)
	}
	return nil
}

func (r *HTMLReporter) result(pages int) *Result {
	return &Result{
		Output:     r.opts.Output,
		DetailsDir: r.opts.DetailsDir,
		Pages:      pages,
	}
}

func (r *HTMLReporter) render(name string, data any, path string) error {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	return writeFile(r.fs, path, buf.Bytes())
}

func (r *HTMLReporter) singleDetail(fc *coverage.FileCoverage) detailPage {
	p := r.detailPage(fc.Source)
	p.Columns = singleColumns
	p.Pills = []string{
		"Coverage: " + formatPercent(fc.Percent()),
		"Covered: " + strconv.Itoa(fc.Covered.Len()),
		"Total: " + strconv.Itoa(fc.Total()),
	}

	for _, rec := range fc.SortedLines() {
		if !rec.State.Executable() && r.hidden(rec.Text) {
			continue
		}
		p.Rows = append(p.Rows, detailRow{
			Number:    rec.Number,
			DataState: string(rec.State),
			Class:     singleRowClass(rec.State),
			Cells: []cell{
				{Text: strconv.Itoa(rec.Number), Num: true},
				{Text: countText(rec), Num: true},
				{Text: stateLabel(rec.State)},
			},
			text: rec.Text,
		})
	}
	r.highlight(&p)
	return p
}

func (r *HTMLReporter) diffDetail(d coverage.FileDiff) detailPage {
	p := r.detailPage(d.Source)
	p.Columns = diffColumns
	p.Pills = []string{
		"A: " + formatPercent(d.A.Percent()),
		"B: " + formatPercent(d.B.Percent()),
		"Δ: " + formatDelta(d.Delta()),
	}

	for _, n := range d.LineNumbers() {
		la, okA := d.A.Lines[n]
		lb, okB := d.B.Lines[n]
		sa, sb := d.A.State(n), d.B.State(n)
		text := pickText(la, okA, lb, okB)

		if !sa.Executable() && !sb.Executable() && r.hidden(text) {
			continue
		}

		p.Rows = append(p.Rows, detailRow{
			Number:    n,
			DataState: diffDataState(sa, sb),
			Class:     diffRowClass(sa, sb),
			Cells: []cell{
				{Text: strconv.Itoa(n), Num: true},
				{Text: countText(la), Num: true},
				{Text: countText(lb), Num: true},
				{Text: string(sa)},
				{Text: string(sb)},
			},
			text: text,
		})
	}
	r.highlight(&p)
	return p
}

func (r *HTMLReporter) detailPage(source string) detailPage {
	return detailPage{
		page: page{
			Title:  "gcovlens Detail — " + source,
			Assets: pageAssets(r.opts, true),
		},
		Source:     source,
		Breadcrumb: linkFrom(r.opts.DetailsDir, r.opts.Output),
		CodeClass:  r.highlighter.CodeClass(source),
	}
}

func (r *HTMLReporter) highlight(p *detailPage) {
	texts := make([]string, len(p.Rows))
	for i, row := range p.Rows {
		texts[i] = row.text
	}
	for i, code := range r.highlighter.Lines(p.Source, texts) {
		p.Rows[i].Code = code
	}
}

// hidden applies the blank and comment filters. Callers only ask for lines
// that are not executable.
func (r *HTMLReporter) hidden(text string) bool {
	return (!r.opts.DisplayBlank && IsBlank(text)) || (r.opts.StripComments && IsComment(text))
}

// pickText prefers the non-blank text of run B, then of run A.
func pickText(a coverage.LineRecord, okA bool, b coverage.LineRecord, okB bool) string {
	switch {
	case okB && !IsBlank(b.Text):
		return b.Text
	case okA && !IsBlank(a.Text):
		return a.Text
	case okB:
		return b.Text
	default:
		return a.Text
	}
}

func countText(rec coverage.LineRecord) string {
	if !rec.HasCount() {
		return ""
	}
	return strconv.Itoa(rec.Count)
}

func stateLabel(s coverage.LineState) string {
	switch s {
	case coverage.StateNonExec:
		return "non-exec"
	case coverage.StateNoData:
		return "no-data"
	default:
		return string(s)
	}
}

func singleRowClass(s coverage.LineState) string {
	if s.Executable() {
		return "row-" + string(s)
	}
	return string(s)
}

// diffDataState is the minimap state of a diff row: the transition for lines
// that changed coverage, nonexec or nodata for lines never executable, and
// same otherwise.
func diffDataState(a, b coverage.LineState) string {
	switch t := coverage.ClassifyTransition(a, b); t {
	case coverage.TransitionBecameCovered, coverage.TransitionBecameUncovered:
		return string(t)
	}
	if !a.Executable() && !b.Executable() {
		if a == coverage.StateNonExec || b == coverage.StateNonExec {
			return string(coverage.StateNonExec)
		}
		return string(coverage.StateNoData)
	}
	return string(coverage.TransitionSame)
}

func diffRowClass(a, b coverage.LineState) string {
	var classes []string
	if a == coverage.StateNonExec || b == coverage.StateNonExec {
		classes = append(classes, string(coverage.StateNonExec))
	}
	if a == coverage.StateNoData || b == coverage.StateNoData {
		classes = append(classes, string(coverage.StateNoData))
	}
	switch t := coverage.ClassifyTransition(a, b); t {
	case coverage.TransitionBecameCovered, coverage.TransitionBecameUncovered:
		classes = append(classes, "row-"+string(t))
	}
	return strings.Join(classes, " ")
}

// linkFrom returns target relative to dir with forward slashes, or target
// itself when no relative path exists. Both paths are made absolute first so
// a relative dir and an absolute target still resolve.
func linkFrom(dir, target string) string {
	if target == "" {
		return ""
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	if abs, err := filepath.Abs(target); err == nil {
		target = abs
	}
	rel, err := filepath.Rel(dir, target)
	if err != nil {
		return filepath.ToSlash(target)
	}
	return filepath.ToSlash(rel)
}
