package report

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjy-dev/gcovlens/internal/coverage"
)

// rec is one gcov record: count token, line number, source text.
type rec struct {
	tok  string
	line int
	text string
}

func fileCoverage(t *testing.T, source string, recs ...rec) *coverage.FileCoverage {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "Source: %s\n", source)
	for _, r := range recs {
		fmt.Fprintf(&b, "%9s:%5d:%s\n", r.tok, r.line, r.text)
	}
	fc, err := coverage.Parse(strings.NewReader(b.String()), source+".gcov")
	require.NoError(t, err)
	return fc
}

func runOf(files ...*coverage.FileCoverage) coverage.Run {
	run := make(coverage.Run, len(files))
	for _, fc := range files {
		run[fc.Source] = fc
	}
	return run
}
