package coverage

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_MixedStates(t *testing.T) {
	dump := gcovDump("src/foo.f90",
		gcovRecord{"-", 1, "! comment"},
		gcovRecord{"#####", 2, "x = 0"},
		gcovRecord{"0", 3, "y = 0"},
		gcovRecord{"5", 4, "print *, 'hi'"},
		gcovRecord{"=====", 5, "pragma"},
	)

	fc, err := Parse(strings.NewReader(dump), "a.gcov")
	require.NoError(t, err)

	assert.Equal(t, "src/foo.f90", fc.Source)
	assert.Equal(t, []int{4}, fc.Covered.Sorted())
	assert.Equal(t, []int{2, 3}, fc.Uncovered.Sorted())
	assert.Equal(t, StateNonExec, fc.Lines[1].State)
	assert.Equal(t, StateNoData, fc.Lines[5].State)
	assert.Equal(t, 5, fc.Lines[4].Count)
	covered, ok := fc.Lines[4].Covered()
	assert.True(t, ok)
	assert.True(t, covered)
	assert.Equal(t, 0, fc.Lines[2].Count)
	assert.Equal(t, 0, fc.Lines[3].Count)
	assert.Equal(t, "! comment", fc.Lines[1].Text)
	assert.Len(t, fc.Lines, 5)
	assert.InDelta(t, 100.0/3.0, fc.Percent(), 1e-9)
}

func TestParse_Idempotent(t *testing.T) {
	dump := gcovDump("src/foo.c",
		gcovRecord{"-", 1, "#include <stdio.h>"},
		gcovRecord{"3", 2, "int main() {"},
		gcovRecord{"#####", 3, "  never();"},
	)

	first, err := Parse(strings.NewReader(dump), "foo.c.gcov")
	require.NoError(t, err)
	second, err := Parse(strings.NewReader(dump), "foo.c.gcov")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, first.Covered.Equal(second.Covered))
	assert.True(t, first.Uncovered.Equal(second.Uncovered))
}

func TestParse_FallbackSourceName(t *testing.T) {
	dump := gcovDump("", gcovRecord{"1", 1, "x();"})

	fc, err := Parse(strings.NewReader(dump), "/tmp/build/foo.c.gcov")
	require.NoError(t, err)
	assert.Equal(t, "foo.c", fc.Source)
}

func TestParse_RealGcovHeaders(t *testing.T) {
	dump := strings.Join([]string{
		"        -:    0:Source:./src/../src/bar.c",
		"        -:    0:Graph:bar.gcno",
		"        -:    0:Data:bar.gcda",
		"        -:    0:Runs:1",
		"        -:    1:#include <stdlib.h>",
		"        2:    2:int f(void) {",
		"    #####:    3:  abort();",
		"",
		"function f called 2 returned 100% blocks executed 50%",
	}, "\n")

	fc, err := Parse(strings.NewReader(dump), "bar.c.gcov")
	require.NoError(t, err)

	assert.Equal(t, "src/bar.c", fc.Source)
	assert.NotContains(t, fc.Lines, 0, "line 0 headers are not records")
	assert.Len(t, fc.Lines, 3)
	assert.Equal(t, []int{2}, fc.Covered.Sorted())
	assert.Equal(t, []int{3}, fc.Uncovered.Sorted())
}

func TestParse_HeadersDoNotPerturbModel(t *testing.T) {
	dump := "Source: src/a.c\nGraph: a.gcno\nData: a.gcda\nRuns: 4\n\n" +
		gcovDump("", gcovRecord{"1", 1, "a();"})

	fc, err := Parse(strings.NewReader(dump), "a.gcov")
	require.NoError(t, err)
	assert.Equal(t, "src/a.c", fc.Source)
	assert.Len(t, fc.Lines, 1)
}

func TestParse_DuplicateLineLastWins(t *testing.T) {
	dump := gcovDump("src/dup.c",
		gcovRecord{"#####", 4, "first"},
		gcovRecord{"7", 4, "second"},
	)

	fc, err := Parse(strings.NewReader(dump), "dup.gcov")
	require.NoError(t, err)

	assert.Equal(t, "second", fc.Lines[4].Text)
	assert.Equal(t, []int{4}, fc.Covered.Sorted())
	assert.Empty(t, fc.Uncovered.Sorted())
}

func TestParse_MalformedRecordsDropped(t *testing.T) {
	dump := gcovDump("src/m.c",
		gcovRecord{"$$$$$", 1, "throw;"},
		gcovRecord{"2*", 2, "odd();"},
		gcovRecord{"1", 3, "ok();"},
	)

	fc, err := Parse(strings.NewReader(dump), "m.gcov")
	require.NoError(t, err)
	assert.Len(t, fc.Lines, 1)
	assert.Equal(t, []int{3}, fc.Covered.Sorted())
}

func TestParse_InvalidUTF8IsReplaced(t *testing.T) {
	dump := "Source: src/enc.c\n        1:    1:caf\xe9 = 1;\n"

	fc, err := Parse(strings.NewReader(dump), "enc.gcov")
	require.NoError(t, err)
	assert.Equal(t, "caf� = 1;", fc.Lines[1].Text)
	assert.Equal(t, []int{1}, fc.Covered.Sorted())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestParse_ReadError(t *testing.T) {
	_, err := Parse(failingReader{}, "broken.gcov")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.gcov")
}

func TestParseFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/run/x.gcov", []byte(gcovDump("src/x.c", gcovRecord{"1", 1, "x"})), 0644))

	fc, err := ParseFile(fs, "/run/x.gcov")
	require.NoError(t, err)
	assert.Equal(t, "src/x.c", fc.Source)

	_, err = ParseFile(fs, "/run/missing.gcov")
	assert.Error(t, err)
}
