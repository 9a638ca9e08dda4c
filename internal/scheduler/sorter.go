package scheduler

import (
	"sort"

	"github.com/alexanderramin/odontos/internal/domain"
)

// PrioritySort orders items for automatic placement:
// 1. Condition priority (unknown codes last)
// 2. Lineage, in order of first appearance in items
// 3. Step index ascending
func PrioritySort(items []*domain.WorkItem, rules Rules) {
	groupRank := make(map[string]int)
	for _, w := range items {
		if _, ok := groupRank[w.GroupID]; !ok {
			groupRank[w.GroupID] = len(groupRank)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]

		pa, pb := rules.Priority(a.Condition), rules.Priority(b.Condition)
		if pa != pb {
			return pa < pb
		}

		ga, gb := groupRank[a.GroupID], groupRank[b.GroupID]
		if ga != gb {
			return ga < gb
		}

		return a.StepIndex < b.StepIndex
	})
}
