package domain

import (
	"slices"
	"sort"
)

// NormalizeUnits returns a sorted copy of units with duplicates and empty
// identifiers removed.
func NormalizeUnits(units []string) []string {
	out := make([]string, 0, len(units))
	for _, u := range units {
		if u != "" {
			out = append(out, u)
		}
	}
	sort.Strings(out)
	return slices.Compact(out)
}

// UnitsEqual reports whether a and b contain the same units.
func UnitsEqual(a, b []string) bool {
	return slices.Equal(NormalizeUnits(a), NormalizeUnits(b))
}

// UnitsSubtract returns the units of a that are not in b.
func UnitsSubtract(a, b []string) []string {
	drop := make(map[string]bool, len(b))
	for _, u := range b {
		drop[u] = true
	}
	var out []string
	for _, u := range NormalizeUnits(a) {
		if !drop[u] {
			out = append(out, u)
		}
	}
	return out
}

// UnitsUnion returns the sorted union of a and b.
func UnitsUnion(a, b []string) []string {
	return NormalizeUnits(append(slices.Clone(a), b...))
}

// UnitsIntersect returns the units present in both a and b.
func UnitsIntersect(a, b []string) []string {
	keep := make(map[string]bool, len(b))
	for _, u := range b {
		keep[u] = true
	}
	var out []string
	for _, u := range NormalizeUnits(a) {
		if keep[u] {
			out = append(out, u)
		}
	}
	return out
}

// UnitsContainAll reports whether every unit of sub is in set.
func UnitsContainAll(set, sub []string) bool {
	return len(UnitsSubtract(sub, set)) == 0
}
