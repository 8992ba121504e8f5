package report

import (
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjy-dev/gcovlens/internal/coverage"
)

var hrefRegex = regexp.MustCompile(`href="([^"]+)"`)

// hrefPointsTo reports whether any href in doc has base name file.
func hrefPointsTo(doc, file string) bool {
	for _, m := range hrefRegex.FindAllStringSubmatch(doc, -1) {
		if path.Base(m[1]) == file {
			return true
		}
	}
	return false
}

// rowState returns the data-state of the detail row for line, or "" when the
// row is absent.
func rowState(doc string, line int) string {
	re := regexp.MustCompile(`<tr id="L` + strconv.Itoa(line) + `"[^>]*data-state="([^"]+)"`)
	m := re.FindStringSubmatch(doc)
	if m == nil {
		return ""
	}
	return m[1]
}

func readFile(t *testing.T, fs afero.Fs, p string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, p)
	require.NoError(t, err)
	return string(data)
}

func htmlOptions(output string) Options {
	opts := DefaultOptions()
	opts.Output = output
	return opts
}

func TestHTMLReporter_Single(t *testing.T) {
	fs := afero.NewMemMapFs()
	run := runOf(fileCoverage(t, "src/file1.c",
		rec{"-", 1, "// header"},
		rec{"1", 2, "int a = 1;"},
		rec{"#####", 3, "abort();"},
	))

	res, err := NewHTMLReporter(fs, htmlOptions("/out/cov.html")).WriteSingle(NewSingleReport(run))
	require.NoError(t, err)
	assert.Equal(t, "/out/cov.html", res.Output)
	assert.Equal(t, "/out/cov_files", res.DetailsDir)
	assert.Equal(t, 1, res.Pages)

	summary := readFile(t, fs, "/out/cov.html")
	assert.Contains(t, summary, "<h1>gcovlens Report</h1>")
	assert.Contains(t, summary, `aria-sort="asc"`)
	assert.Contains(t, summary, "Coverage: 50.0% (1/2)")

	page := DetailPageName("src/file1.c")
	assert.Contains(t, summary, `href="cov_files/`+page+`"`)

	detail := readFile(t, fs, "/out/cov_files/"+page)
	assert.Contains(t, detail, `id="minimap"`)
	assert.Contains(t, detail, "gcovlens Detail — src/file1.c")
	assert.True(t, hrefPointsTo(detail, "cov.html"), "breadcrumb links back to the summary")
	assert.Contains(t, detail, `href="../cov.html"`)
	assert.Contains(t, detail, "#e6ffed")
	assert.Contains(t, detail, "#ffebee")
	assert.Equal(t, "nonexec", rowState(detail, 1))
	assert.Equal(t, "covered", rowState(detail, 2))
	assert.Equal(t, "uncovered", rowState(detail, 3))
	assert.Contains(t, detail, `class="row-covered"`)
	assert.Contains(t, detail, "non-exec")
}

func TestHTMLReporter_IndexLinksAreRebased(t *testing.T) {
	fs := afero.NewMemMapFs()
	run := runOf(fileCoverage(t, "src/x.c", rec{"1", 1, "x"}))

	_, err := NewHTMLReporter(fs, htmlOptions("/out/cov.html")).WriteSingle(NewSingleReport(run))
	require.NoError(t, err)

	index := readFile(t, fs, "/out/cov_files/"+IndexPage)
	page := DetailPageName("src/x.c")
	assert.Contains(t, index, `href="`+page+`"`)
	assert.NotContains(t, index, "cov_files/")
}

func TestHTMLReporter_CustomDetailsDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	opts := htmlOptions("/site/report/index.html")
	opts.DetailsDir = "/site/pages"

	_, err := NewHTMLReporter(fs, opts).WriteSingle(NewSingleReport(runOf(fileCoverage(t, "a.c", rec{"1", 1, "x"}))))
	require.NoError(t, err)

	summary := readFile(t, fs, "/site/report/index.html")
	assert.Contains(t, summary, `href="../pages/`+DetailPageName("a.c")+`"`)

	detail := readFile(t, fs, "/site/pages/"+DetailPageName("a.c"))
	assert.Contains(t, detail, `href="../report/index.html"`)
}

func TestHTMLReporter_SingleEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	res, err := NewHTMLReporter(fs, htmlOptions("/out/empty.html")).WriteSingle(NewSingleReport(coverage.Run{}))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Pages)

	summary := readFile(t, fs, "/out/empty.html")
	assert.Contains(t, summary, "No executable lines found")
	assert.Contains(t, summary, "Coverage: 100.0% (0/0)")
}

func TestHTMLReporter_Diff(t *testing.T) {
	fs := afero.NewMemMapFs()
	a := runOf(
		fileCoverage(t, "src/f.c", rec{"#####", 5, "f();"}, rec{"1", 6, "g();"}, rec{"1", 7, "h();"}),
		fileCoverage(t, "src/same.c", rec{"1", 1, "x"}),
	)
	b := runOf(
		fileCoverage(t, "src/f.c", rec{"1", 5, "f();"}, rec{"2", 6, "g();"}, rec{"0", 7, "h();"}),
		fileCoverage(t, "src/same.c", rec{"1", 1, "x"}),
	)

	res, err := NewHTMLReporter(fs, htmlOptions("/out/diff.html")).WriteDiff(NewDiffReport(a, b, coverage.DefaultChangeThreshold))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pages, "only changed files get a page")

	summary := readFile(t, fs, "/out/diff.html")
	assert.Contains(t, summary, "<h1>gcovlens Diff Report</h1>")
	assert.Contains(t, summary, "File Summary (changed only)")
	assert.Contains(t, summary, "src/f.c")
	assert.NotContains(t, summary, "src/same.c")
	assert.Contains(t, summary, "Run A: 75.0% (3/4)")

	detail := readFile(t, fs, "/out/diff_files/"+DetailPageName("src/f.c"))
	assert.Contains(t, detail, `id="minimap"`)
	assert.Equal(t, "became_covered", rowState(detail, 5))
	assert.Equal(t, "same", rowState(detail, 6))
	assert.Equal(t, "became_uncovered", rowState(detail, 7))
	assert.Contains(t, detail, "#e6ffed")
	assert.True(t, hrefPointsTo(detail, "diff.html"))
	assert.Contains(t, detail, "Δ: +0.0%")
}

func TestHTMLReporter_DiffEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	run := runOf(fileCoverage(t, "src/a.c", rec{"1", 1, "x"}))

	_, err := NewHTMLReporter(fs, htmlOptions("/out/d.html")).WriteDiff(NewDiffReport(run, run, coverage.DefaultChangeThreshold))
	require.NoError(t, err)
	assert.Contains(t, readFile(t, fs, "/out/d.html"), "No coverage changes detected")
}

func TestHTMLReporter_DeltaClass(t *testing.T) {
	fs := afero.NewMemMapFs()
	a := runOf(fileCoverage(t, "src/down.c", rec{"1", 1, "x"}))
	b := runOf(fileCoverage(t, "src/down.c", rec{"0", 1, "x"}))

	_, err := NewHTMLReporter(fs, htmlOptions("/out/d.html")).WriteDiff(NewDiffReport(a, b, coverage.DefaultChangeThreshold))
	require.NoError(t, err)

	summary := readFile(t, fs, "/out/d.html")
	assert.Contains(t, summary, `class="num delta-neg">-100.0%`)
	assert.Contains(t, summary, `<span class="delta-neg">-100.0%</span>`)
}

func TestHTMLReporter_LineFilters(t *testing.T) {
	fc := fileCoverage(t, "src/f.f90",
		rec{"-", 1, "! comment"},
		rec{"-", 2, "   "},
		rec{"1", 3, "x = 1"},
		rec{"#####", 4, "   "},
		rec{"=====", 5, "// disabled"},
	)

	tests := []struct {
		name          string
		displayBlank  bool
		stripComments bool
		want          []int
	}{
		{"defaults hide blanks", false, false, []int{1, 3, 4, 5}},
		{"display blank", true, false, []int{1, 2, 3, 4, 5}},
		{"strip comments", false, true, []int{3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := htmlOptions("/out/r.html")
			opts.DisplayBlank = tt.displayBlank
			opts.StripComments = tt.stripComments

			page := NewHTMLReporter(afero.NewMemMapFs(), opts).singleDetail(fc)
			var got []int
			for _, row := range page.Rows {
				got = append(got, row.Number)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHTMLReporter_DiffFiltersOnlyNonExecutableOnBothSides(t *testing.T) {
	a := fileCoverage(t, "src/c.c", rec{"-", 1, "// was comment"}, rec{"1", 2, "// odd but executable"})
	b := fileCoverage(t, "src/c.c", rec{"=====", 1, "// still comment"}, rec{"-", 2, "// now a comment"})

	opts := htmlOptions("/out/r.html")
	opts.StripComments = true
	page := NewHTMLReporter(afero.NewMemMapFs(), opts).diffDetail(coverage.NewFileDiff(a, b))

	require.Len(t, page.Rows, 1)
	assert.Equal(t, 2, page.Rows[0].Number)
	assert.Equal(t, "same", page.Rows[0].DataState)
}

func TestHTMLReporter_DiffTextPrefersRunB(t *testing.T) {
	a := fileCoverage(t, "src/t.c", rec{"1", 1, "old();"}, rec{"1", 2, "kept();"})
	b := fileCoverage(t, "src/t.c", rec{"1", 1, "new();"}, rec{"1", 2, "   "})

	opts := htmlOptions("/out/r.html")
	opts.Syntax = SyntaxOff
	page := NewHTMLReporter(afero.NewMemMapFs(), opts).diffDetail(coverage.NewFileDiff(a, b))

	require.Len(t, page.Rows, 2)
	assert.Equal(t, "new();", string(page.Rows[0].Code))
	assert.Equal(t, "kept();", string(page.Rows[1].Code))
}

func TestHTMLReporter_HLJSAssets(t *testing.T) {
	fs := afero.NewMemMapFs()
	opts := htmlOptions("/out/r.html")
	opts.Theme = "github-dark"

	_, err := NewHTMLReporter(fs, opts).WriteSingle(NewSingleReport(runOf(fileCoverage(t, "src/k.cpp", rec{"1", 1, "int x;"}))))
	require.NoError(t, err)

	detail := readFile(t, fs, "/out/r_files/"+DetailPageName("src/k.cpp"))
	assert.Contains(t, detail, "highlight.js/11.9.0/styles/github-dark.min.css")
	assert.Contains(t, detail, `class="hljs language-cpp"`)

	summary := readFile(t, fs, "/out/r.html")
	assert.NotContains(t, summary, "highlight.min.js")
}

func TestHTMLReporter_FontKnobs(t *testing.T) {
	opts := htmlOptions("/out/r.html")
	opts.UIFontSize = 15
	opts.CodeFontSize = 11.5
	opts.CodeLineHeight = 1.4

	assets := string(pageAssets(opts, true))
	assert.Contains(t, assets, "font-size: 15px;")
	assert.Contains(t, assets, "font-size: 11.5px;")
	assert.Contains(t, assets, "line-height: 1.4;")
	assert.False(t, strings.Contains(assets, "{{"), "placeholders are replaced")
}

func TestHTMLReporter_WriteFailure(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	_, err := NewHTMLReporter(fs, htmlOptions("/out/r.html")).WriteSingle(NewSingleReport(coverage.Run{}))
	assert.Error(t, err)
}

func TestHTMLReporter_EscapesSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	run := runOf(fileCoverage(t, "src/<evil>.c", rec{"1", 1, "if (a < b && c) {}"}))

	_, err := NewHTMLReporter(fs, htmlOptions("/out/r.html")).WriteSingle(NewSingleReport(run))
	require.NoError(t, err)

	summary := readFile(t, fs, "/out/r.html")
	assert.Contains(t, summary, "src/&lt;evil&gt;.c")
	assert.NotContains(t, summary, "<evil>")

	detail := readFile(t, fs, "/out/r_files/"+DetailPageName("src/<evil>.c"))
	assert.Contains(t, detail, "a &lt; b &amp;&amp; c")
}

func TestHTMLReporter_AbsoluteOutputRelativeDetailsDir(t *testing.T) {
	cwd := t.TempDir()
	t.Chdir(cwd)

	fs := afero.NewOsFs()
	opts := htmlOptions(filepath.Join(cwd, "out.html"))
	opts.DetailsDir = "rel_files"

	_, err := NewHTMLReporter(fs, opts).WriteSingle(NewSingleReport(runOf(fileCoverage(t, "m.c", rec{"1", 1, "x"}))))
	require.NoError(t, err)

	page := DetailPageName("m.c")
	summary := readFile(t, fs, filepath.Join(cwd, "out.html"))
	assert.Contains(t, summary, `href="rel_files/`+page+`"`)

	detail := readFile(t, fs, filepath.Join(cwd, "rel_files", page))
	assert.Contains(t, detail, `href="../out.html"`)
}

func TestLinkFrom(t *testing.T) {
	cwd := t.TempDir()
	t.Chdir(cwd)

	assert.Equal(t, "../out.html", linkFrom("rel_files", filepath.Join(cwd, "out.html")))
	assert.Equal(t, "rel_files/p.html", linkFrom(cwd, "rel_files/p.html"))
	assert.Equal(t, "../b/c.html", linkFrom("/x/a", "/x/b/c.html"))
	assert.Equal(t, "", linkFrom("/x", ""))
}
