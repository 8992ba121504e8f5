package report

import (
	"crypto/sha256"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// detailHashLen is the number of hex characters of the source hash kept in a
// detail page name.
const detailHashLen = 16

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// DetailPageName returns a stable, filesystem-safe file name for the detail
// page of source. The format is <sanitised base name>__<hash>.html, where the
// hash is the first 16 hex characters of the SHA-256 of the full source path,
// so two sources sharing a base name still get distinct pages.
func DetailPageName(source string) string {
	tail := path.Base(filepath.ToSlash(source))
	if tail == "." || tail == "/" {
		tail = ""
	}
	safe := unsafeNameChars.ReplaceAllString(tail, "_")
	return fmt.Sprintf("%s__%s.html", safe, sourceHash(source))
}

func sourceHash(source string) string {
	h := sha256.Sum256([]byte(source))
	return fmt.Sprintf("%x", h[:])[:detailHashLen]
}

// DefaultOutputName derives the report file name from the run directories:
// coverage_<A>.<ext> for a single run, coverage_diff_<A>_V_<B>.<ext> for a
// diff. runB is empty in single-run mode.
func DefaultOutputName(runA, runB string, format Format) string {
	base := "coverage_" + dirBase(runA)
	if runB != "" {
		base = fmt.Sprintf("coverage_diff_%s_V_%s", dirBase(runA), dirBase(runB))
	}
	return base + "." + format.Extension()
}

// DefaultDetailsDir is <output without extension>_files next to output.
func DefaultDetailsDir(output string) string {
	stem := strings.TrimSuffix(output, filepath.Ext(output))
	return stem + "_files"
}

func dirBase(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return filepath.Base(dir)
}
