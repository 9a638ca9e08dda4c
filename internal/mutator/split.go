// Package mutator restructures lineages in place: split extracts units into
// a sibling lineage, merge folds one lineage into another and branch swaps
// the remaining steps to another treatment option. Every operation
// validates first and leaves the state untouched on error.
package mutator

import (
	"fmt"
	"time"

	"github.com/alexanderramin/odontos/internal/domain"
	"github.com/alexanderramin/odontos/internal/plan"
)

// Split moves units out of a lineage into a new sibling lineage with the
// same option and steps, returning the new group id. Siblings land in the
// backlog, or with targetDate set, step 1 goes onto that day (created when
// missing) and later steps stay in the backlog.
func Split(state *plan.State, groupID string, units []string, targetDate *time.Time, newID func() string) (string, error) {
	group := state.Group(groupID)
	if len(group) == 0 {
		return "", domain.UnknownRef("lineage", groupID)
	}
	extract := domain.NormalizeUnits(units)
	if len(extract) == 0 {
		return "", domain.InvalidInputf("split needs at least one unit")
	}
	current := group[0].Units
	for _, u := range extract {
		if !domain.UnitsContainAll(current, []string{u}) {
			return "", domain.UnknownRef("unit in lineage "+groupID, u)
		}
	}
	remaining := domain.UnitsSubtract(current, extract)
	if len(remaining) == 0 {
		return "", fmt.Errorf("lineage %s: %w", groupID, domain.ErrWouldEmptyLineage)
	}

	newGroup := newID()
	var first *domain.WorkItem
	for _, w := range group {
		sib := w.Clone()
		sib.ID = newID()
		sib.Seq = 0
		sib.GroupID = newGroup
		sib.SetUnits(extract)
		state.Add(sib)
		if first == nil || sib.StepIndex < first.StepIndex {
			first = sib
		}

		w.SetUnits(remaining)
	}

	if targetDate != nil {
		state.PlaceAt(first.ID, state.AddDay(*targetDate))
	}
	return newGroup, nil
}
