package scheduler

import (
	"fmt"
	"time"

	"github.com/alexanderramin/odontos/internal/domain"
	"github.com/alexanderramin/odontos/internal/plan"
)

// CanPlace checks that step k of a lineage may go on date: step k-1 must
// already be placed on a strictly earlier day. Steps 1 and single-step
// items are always allowed.
func CanPlace(state *plan.State, w *domain.WorkItem, date time.Time) error {
	if w.StepIndex <= 1 || !w.Sequential() {
		return nil
	}
	prev, ok := state.Step(w.GroupID, w.StepIndex-1)
	if !ok {
		return fmt.Errorf("step %d of lineage %s has no predecessor: %w", w.StepIndex, w.GroupID, domain.ErrPrecedenceUnmet)
	}
	prevDate, placed := state.PlacedDate(prev.ID)
	if !placed {
		return fmt.Errorf("step %d is not scheduled yet: %w", prev.StepIndex, domain.ErrPrecedenceUnmet)
	}
	if !domain.DateOnly(date).After(prevDate) {
		return fmt.Errorf("step %d is scheduled on %s: %w", prev.StepIndex, domain.FormatDate(prevDate), domain.ErrPrecedenceUnmet)
	}
	return nil
}

// CheckSuccessors rejects a date on or after the day of any later placed
// step of the same lineage.
func CheckSuccessors(state *plan.State, w *domain.WorkItem, date time.Time) error {
	date = domain.DateOnly(date)
	for _, other := range state.Group(w.GroupID) {
		if other.StepIndex <= w.StepIndex {
			continue
		}
		if d, ok := state.PlacedDate(other.ID); ok && !date.Before(d) {
			return fmt.Errorf("step %d is scheduled on %s: %w", other.StepIndex, domain.FormatDate(d), domain.ErrWouldViolateSuccessor)
		}
	}
	return nil
}

// CanDrag reports whether w's precedence is currently satisfied, i.e. its
// previous step is placed somewhere.
func CanDrag(state *plan.State, w *domain.WorkItem) bool {
	if w.StepIndex <= 1 || !w.Sequential() {
		return true
	}
	prev, ok := state.Step(w.GroupID, w.StepIndex-1)
	return ok && state.IsPlaced(prev.ID)
}
