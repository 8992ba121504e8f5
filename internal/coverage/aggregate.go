package coverage

// Totals sums executable and covered lines over many files.
type Totals struct {
	Covered int
	Total   int
}

// Percent applies the same zero-total policy as FileCoverage.Percent.
func (t Totals) Percent() float64 {
	return Percent(t.Covered, t.Total)
}

// Uncovered returns the number of executable lines that were not hit.
func (t Totals) Uncovered() int {
	return t.Total - t.Covered
}

// Aggregate sums a single run's files.
func Aggregate(files []*FileCoverage) Totals {
	var t Totals
	for _, f := range files {
		t.Covered += f.Covered.Len()
		t.Total += f.Total()
	}
	return t
}

// PairTotals holds the independent totals of two runs.
type PairTotals struct {
	A Totals
	B Totals
}

// Delta is the change of the overall percentage from run A to run B.
func (p PairTotals) Delta() float64 {
	return p.B.Percent() - p.A.Percent()
}

// AggregatePairs sums both sides of every diff, changed or not.
func AggregatePairs(diffs []FileDiff) PairTotals {
	as := make([]*FileCoverage, 0, len(diffs))
	bs := make([]*FileCoverage, 0, len(diffs))
	for _, d := range diffs {
		as = append(as, d.A)
		bs = append(bs, d.B)
	}
	return PairTotals{A: Aggregate(as), B: Aggregate(bs)}
}
