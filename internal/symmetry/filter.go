// Package symmetry removes combinations that are redundant under a declared
// swap of two fields.
package symmetry

import (
	"github.com/fjglira/sweepgen/internal/domain"
)

// Pair declares two interchangeable fields. Combinations keep First <= Second.
type Pair struct {
	First  string
	Second string
}

// PairsFromConfig converts [[a, b], ...] declarations into pairs.
// Malformed entries are skipped; config validation reports them.
func PairsFromConfig(raw [][]string) []Pair {
	var pairs []Pair
	for _, p := range raw {
		if len(p) == 2 {
			pairs = append(pairs, Pair{First: p[0], Second: p[1]})
		}
	}
	return pairs
}

// Filter applies each pair in turn and reports before/after counts. A pair
// is a no-op unless both fields are scanned. The input slice is not modified.
func Filter(names []string, combos []domain.Combination, pairs []Pair) ([]domain.Combination, []domain.FilterReport) {
	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}

	out := combos
	reports := make([]domain.FilterReport, 0, len(pairs))
	for _, p := range pairs {
		report := domain.FilterReport{First: p.First, Second: p.Second, Before: len(out), After: len(out)}
		i1, ok1 := index[p.First]
		i2, ok2 := index[p.Second]
		if ok1 && ok2 {
			kept := make([]domain.Combination, 0, len(out))
			for _, c := range out {
				if c[i1].Compare(c[i2]) <= 0 {
					kept = append(kept, c)
				}
			}
			out = kept
			report.Applied = true
			report.After = len(out)
		}
		reports = append(reports, report)
	}

	return out, reports
}
