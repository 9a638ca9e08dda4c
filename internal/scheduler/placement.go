package scheduler

import (
	"time"

	"github.com/alexanderramin/odontos/internal/domain"
	"github.com/alexanderramin/odontos/internal/plan"
)

// PlaceOptions tunes manual placement.
type PlaceOptions struct {
	// Cascade places the later steps of a lineage one calendar slot apart
	// when its first step is moved.
	Cascade      bool
	IntervalDays int
	Today        time.Time
}

// Place moves one item onto an existing calendar day. It validates before
// mutating, so a rejected move leaves state untouched.
func Place(state *plan.State, itemID string, date time.Time, opts PlaceOptions) error {
	w, ok := state.Item(itemID)
	if !ok {
		return domain.UnknownRef("work item", itemID)
	}
	target := state.DayIndex(date)
	if target < 0 {
		return domain.UnknownRef("day", domain.FormatDate(date))
	}
	if err := CanPlace(state, w, date); err != nil {
		return err
	}
	cascade := opts.Cascade && w.Sequential() && w.StepIndex == 1
	if cascade && opts.IntervalDays < 1 {
		return domain.InvalidInputf("cascade needs an interval of at least one day")
	}
	if !cascade {
		if err := CheckSuccessors(state, w, date); err != nil {
			return err
		}
	}

	state.PlaceAt(w.ID, target)
	if !cascade {
		return nil
	}

	cur := target
	for _, next := range state.Group(w.GroupID) {
		if next.StepIndex <= w.StepIndex {
			continue
		}
		cur++
		for cur >= state.DayCount() {
			state.AppendDay(opts.IntervalDays, opts.Today)
		}
		state.PlaceAt(next.ID, cur)
	}
	return nil
}

// Remove returns an item to the backlog. For a sequential lineage every
// step at or after it is unscheduled too, since their precondition is gone.
// It returns the ids that were taken off the calendar.
func Remove(state *plan.State, itemID string) ([]string, error) {
	w, ok := state.Item(itemID)
	if !ok {
		return nil, domain.UnknownRef("work item", itemID)
	}
	targets := []*domain.WorkItem{w}
	if w.Sequential() {
		targets = targets[:0]
		for _, other := range state.Group(w.GroupID) {
			if other.StepIndex >= w.StepIndex {
				targets = append(targets, other)
			}
		}
	}

	var removed []string
	for _, t := range targets {
		if state.IsPlaced(t.ID) {
			state.Detach(t.ID)
			removed = append(removed, t.ID)
		}
	}
	return removed, nil
}
