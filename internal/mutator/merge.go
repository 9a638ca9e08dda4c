package mutator

import (
	"fmt"

	"github.com/alexanderramin/odontos/internal/domain"
	"github.com/alexanderramin/odontos/internal/plan"
)

// Merge folds the source lineage into the target. Units are unioned onto
// the target's items, which keep their placement; source items are retired.
// A source step the target lacks is regrouped into the target.
func Merge(state *plan.State, sourceGroupID, targetGroupID string) error {
	if sourceGroupID == targetGroupID {
		return domain.InvalidInputf("cannot merge lineage %s into itself", sourceGroupID)
	}
	src := state.Group(sourceGroupID)
	if len(src) == 0 {
		return domain.UnknownRef("lineage", sourceGroupID)
	}
	dst := state.Group(targetGroupID)
	if len(dst) == 0 {
		return domain.UnknownRef("lineage", targetGroupID)
	}

	s, d := src[0], dst[0]
	if s.Condition != d.Condition || s.Option != d.Option || s.TotalSteps != d.TotalSteps {
		return fmt.Errorf("%s/%s/%d vs %s/%s/%d: %w",
			s.Condition, s.Option, s.TotalSteps, d.Condition, d.Option, d.TotalSteps,
			domain.ErrIncompatibleLineages)
	}
	if dup := domain.UnitsIntersect(s.Units, d.Units); len(dup) > 0 {
		return fmt.Errorf("units %v: %w", dup, domain.ErrDuplicateUnit)
	}

	union := domain.UnitsUnion(s.Units, d.Units)
	for _, w := range dst {
		w.SetUnits(union)
	}
	for _, w := range src {
		if _, ok := state.Step(targetGroupID, w.StepIndex); ok {
			state.Delete(w.ID)
			continue
		}
		w.GroupID = targetGroupID
		w.SetUnits(union)
	}
	return nil
}
