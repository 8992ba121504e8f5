package coverage

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// SourceFilter keeps sources matching any include pattern (all sources when
// there are none) and no exclude pattern. Patterns use doublestar syntax, so
// "**" spans directories.
type SourceFilter struct {
	include []string
	exclude []string
}

// NewSourceFilter validates the patterns and returns a filter.
func NewSourceFilter(include, exclude []string) (*SourceFilter, error) {
	for _, p := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid source pattern %q", p)
		}
	}
	return &SourceFilter{include: include, exclude: exclude}, nil
}

// Empty reports whether the filter keeps every source.
func (f *SourceFilter) Empty() bool {
	return f == nil || (len(f.include) == 0 && len(f.exclude) == 0)
}

// Match reports whether source passes the filter.
func (f *SourceFilter) Match(source string) bool {
	if f.Empty() {
		return true
	}
	if len(f.include) > 0 && !matchAny(f.include, source) {
		return false
	}
	return !matchAny(f.exclude, source)
}

// Apply returns the subset of run that passes the filter. The input is not
// modified.
func (f *SourceFilter) Apply(run Run) Run {
	if f.Empty() {
		return run
	}
	out := make(Run, len(run))
	for src, fc := range run {
		if f.Match(src) {
			out[src] = fc
		}
	}
	return out
}

func matchAny(patterns []string, source string) bool {
	for _, p := range patterns {
		// Patterns were validated, so Match cannot fail.
		if ok, _ := doublestar.Match(p, source); ok {
			return true
		}
	}
	return false
}
