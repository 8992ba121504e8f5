// Package coverage parses gcov line dumps into per-source coverage models and
// compares the models of two runs.
package coverage

import (
	"sort"
)

// LineState classifies a single annotated source line.
type LineState string

const (
	StateCovered   LineState = "covered"
	StateUncovered LineState = "uncovered"
	StateNonExec   LineState = "nonexec"
	StateNoData    LineState = "nodata"

	// StateMissing is never stored in a record. It describes a line number that
	// one run does not know about when two runs are compared.
	StateMissing LineState = "missing"
)

// Executable reports whether the state belongs to an instrumented line.
func (s LineState) Executable() bool {
	return s == StateCovered || s == StateUncovered
}

// LineRecord is the coverage state of one physical source line.
type LineRecord struct {
	Number int
	// Count is the execution count. It is only meaningful when the line is
	// executable; see HasCount.
	Count int
	Text  string
	State LineState
}

// HasCount reports whether Count carries data.
func (r LineRecord) HasCount() bool {
	return r.State.Executable()
}

// Covered returns whether the line was hit. ok is false for lines that are
// not executable or carry no data.
func (r LineRecord) Covered() (covered bool, ok bool) {
	if !r.State.Executable() {
		return false, false
	}
	return r.State == StateCovered, true
}

// LineSet is a set of line numbers.
type LineSet map[int]struct{}

// NewLineSet returns a set holding lines.
func NewLineSet(lines ...int) LineSet {
	s := make(LineSet, len(lines))
	for _, l := range lines {
		s[l] = struct{}{}
	}
	return s
}

// Add inserts a line number.
func (s LineSet) Add(line int) { s[line] = struct{}{} }

// Has reports membership.
func (s LineSet) Has(line int) bool {
	_, ok := s[line]
	return ok
}

// Len returns the number of members.
func (s LineSet) Len() int { return len(s) }

// Sorted returns the members in ascending order.
func (s LineSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	sort.Ints(out)
	return out
}

// Union returns a new set holding the members of s and every other set.
func (s LineSet) Union(others ...LineSet) LineSet {
	out := make(LineSet, len(s))
	for l := range s {
		out[l] = struct{}{}
	}
	for _, o := range others {
		for l := range o {
			out[l] = struct{}{}
		}
	}
	return out
}

// Difference returns the members of s that are not in o.
func (s LineSet) Difference(o LineSet) LineSet {
	out := make(LineSet)
	for l := range s {
		if !o.Has(l) {
			out[l] = struct{}{}
		}
	}
	return out
}

// Intersect returns the members present in both s and o.
func (s LineSet) Intersect(o LineSet) LineSet {
	out := make(LineSet)
	for l := range s {
		if o.Has(l) {
			out[l] = struct{}{}
		}
	}
	return out
}

// Equal reports whether both sets hold the same members.
func (s LineSet) Equal(o LineSet) bool {
	if len(s) != len(o) {
		return false
	}
	for l := range s {
		if !o.Has(l) {
			return false
		}
	}
	return true
}

// FileCoverage is the coverage model of one source file.
//
// Covered and Uncovered are disjoint and both are subsets of the keys of
// Lines. Lines also holds non-executable and no-data records, which are kept
// for display only and never count towards totals.
type FileCoverage struct {
	Source    string
	Covered   LineSet
	Uncovered LineSet
	Lines     map[int]LineRecord
}

// NewFileCoverage returns an empty model for source.
func NewFileCoverage(source string) *FileCoverage {
	return &FileCoverage{
		Source:    source,
		Covered:   make(LineSet),
		Uncovered: make(LineSet),
		Lines:     make(map[int]LineRecord),
	}
}

// Total returns the number of executable lines.
func (f *FileCoverage) Total() int {
	return f.Covered.Len() + f.Uncovered.Len()
}

// Percent returns the covered share of executable lines. A file without
// executable lines is fully covered.
func (f *FileCoverage) Percent() float64 {
	return Percent(f.Covered.Len(), f.Total())
}

// Executable returns the union of covered and uncovered lines.
func (f *FileCoverage) Executable() LineSet {
	return f.Covered.Union(f.Uncovered)
}

// State returns the state of a line, or StateMissing when the file has no
// record for it.
func (f *FileCoverage) State(line int) LineState {
	if rec, ok := f.Lines[line]; ok {
		return rec.State
	}
	return StateMissing
}

// SortedLines returns all records ordered by line number.
func (f *FileCoverage) SortedLines() []LineRecord {
	out := make([]LineRecord, 0, len(f.Lines))
	for _, rec := range f.Lines {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// set stores rec, replacing any earlier record for the same line and keeping
// the covered/uncovered sets disjoint. It reports whether a record was replaced.
func (f *FileCoverage) set(rec LineRecord) bool {
	_, replaced := f.Lines[rec.Number]
	delete(f.Covered, rec.Number)
	delete(f.Uncovered, rec.Number)

	switch rec.State {
	case StateCovered:
		f.Covered.Add(rec.Number)
	case StateUncovered:
		f.Uncovered.Add(rec.Number)
	}
	f.Lines[rec.Number] = rec
	return replaced
}

// Percent computes 100*covered/total, defined as 100 when total is zero.
func Percent(covered, total int) float64 {
	if total == 0 {
		return 100.0
	}
	return 100.0 * float64(covered) / float64(total)
}

// Run maps normalized source paths to their coverage model. One Run is
// produced per scanned directory tree.
type Run map[string]*FileCoverage

// Sources returns the source paths in lexicographic order.
func (r Run) Sources() []string {
	out := make([]string, 0, len(r))
	for src := range r {
		out = append(out, src)
	}
	sort.Strings(out)
	return out
}

// Files returns the models ordered by source path.
func (r Run) Files() []*FileCoverage {
	out := make([]*FileCoverage, 0, len(r))
	for _, src := range r.Sources() {
		out = append(out, r[src])
	}
	return out
}

// Get returns the model for source, or an empty model when the run does not
// contain it.
func (r Run) Get(source string) *FileCoverage {
	if f, ok := r[source]; ok {
		return f
	}
	return NewFileCoverage(source)
}
