package coverage

import (
	"math"
	"sort"
)

// DefaultChangeThreshold is the minimum percentage-point movement that marks
// a file as changed when none of its lines changed state.
const DefaultChangeThreshold = 0.05

// Diff returns the lines that became covered and became uncovered going from
// run a to run b. Only lines that are executable in at least one of the runs
// can appear in either set.
func Diff(a, b *FileCoverage) (becameCovered, becameUncovered LineSet) {
	allExec := a.Covered.Union(a.Uncovered, b.Covered, b.Uncovered)
	becameCovered = b.Covered.Difference(a.Covered).Intersect(allExec)
	becameUncovered = b.Uncovered.Difference(a.Uncovered).Intersect(allExec)
	return becameCovered, becameUncovered
}

// FileDiff pairs the models of one source from two runs. A side that does not
// exist in its run is an empty model.
type FileDiff struct {
	Source          string
	A               *FileCoverage
	B               *FileCoverage
	BecameCovered   LineSet
	BecameUncovered LineSet
}

// NewFileDiff compares a and b, which must describe the same source.
func NewFileDiff(a, b *FileCoverage) FileDiff {
	covered, uncovered := Diff(a, b)
	return FileDiff{
		Source:          b.Source,
		A:               a,
		B:               b,
		BecameCovered:   covered,
		BecameUncovered: uncovered,
	}
}

// Delta is the coverage change in percentage points.
func (d FileDiff) Delta() float64 {
	return d.B.Percent() - d.A.Percent()
}

// Changed reports whether the file belongs in a diff summary: its percentage
// moved by at least threshold points or any line changed state.
func (d FileDiff) Changed(threshold float64) bool {
	return math.Abs(d.Delta()) >= threshold ||
		d.BecameCovered.Len() > 0 ||
		d.BecameUncovered.Len() > 0
}

// CompareRuns diffs every source present in either run, in source order.
func CompareRuns(a, b Run) []FileDiff {
	sources := make(map[string]struct{}, len(a)+len(b))
	for src := range a {
		sources[src] = struct{}{}
	}
	for src := range b {
		sources[src] = struct{}{}
	}

	keys := make([]string, 0, len(sources))
	for src := range sources {
		keys = append(keys, src)
	}
	sort.Strings(keys)

	diffs := make([]FileDiff, 0, len(keys))
	for _, src := range keys {
		diffs = append(diffs, NewFileDiff(a.Get(src), b.Get(src)))
	}
	return diffs
}

// ChangedOnly keeps the diffs that pass Changed(threshold).
func ChangedOnly(diffs []FileDiff, threshold float64) []FileDiff {
	var out []FileDiff
	for _, d := range diffs {
		if d.Changed(threshold) {
			out = append(out, d)
		}
	}
	return out
}

// Transition describes how one line moved between two runs.
type Transition string

const (
	TransitionSame            Transition = "same"
	TransitionBecameCovered   Transition = "became_covered"
	TransitionBecameUncovered Transition = "became_uncovered"
	TransitionChanged         Transition = "changed"
)

// ClassifyTransition compares the state of one line in run a and run b.
// The result agrees with Diff: a line is became_covered exactly when it is in
// the becameCovered set, and likewise for became_uncovered.
func ClassifyTransition(a, b LineState) Transition {
	switch {
	case a == b:
		return TransitionSame
	case b == StateCovered:
		return TransitionBecameCovered
	case b == StateUncovered:
		return TransitionBecameUncovered
	default:
		return TransitionChanged
	}
}

// LineNumbers returns every line number either side has a record for, in
// ascending order.
func (d FileDiff) LineNumbers() []int {
	set := make(LineSet, len(d.A.Lines)+len(d.B.Lines))
	for n := range d.A.Lines {
		set.Add(n)
	}
	for n := range d.B.Lines {
		set.Add(n)
	}
	return set.Sorted()
}
