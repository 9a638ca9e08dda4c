package scheduler

import (
	"time"

	"github.com/alexanderramin/odontos/internal/domain"
	"github.com/alexanderramin/odontos/internal/plan"
)

// AllocationResult summarises one automatic placement run.
type AllocationResult struct {
	Placed       int
	Total        int
	AppendedDays int
	// Unpinned counts completed items moved off their day because an
	// earlier step of the same lineage could not be placed before them.
	Unpinned int
}

// allocation is the per-run day capacity ledger.
type allocation struct {
	state *plan.State
	rules Rules
	dayOf map[string]int
	count []int
	acute []int
}

func (a *allocation) add(w *domain.WorkItem, day int) {
	a.dayOf[w.ID] = day
	a.count[day]++
	if a.rules.IsAcute(w.Condition) {
		a.acute[day]++
	}
}

func (a *allocation) release(w *domain.WorkItem) {
	day, ok := a.dayOf[w.ID]
	if !ok {
		return
	}
	delete(a.dayOf, w.ID)
	a.count[day]--
	if a.rules.IsAcute(w.Condition) {
		a.acute[day]--
	}
	a.state.Detach(w.ID)
}

func (a *allocation) fits(w *domain.WorkItem, day int) bool {
	if a.count[day] >= a.rules.MaxPerDay {
		return false
	}
	return !a.rules.IsAcute(w.Condition) || a.acute[day] < a.rules.AcuteMaxPerDay
}

// AutoPlace is a full replan: it returns every non-completed item to the
// backlog and places them greedily in priority order. Completed items stay
// pinned and count toward day capacity, even when the user overfilled a
// day by hand. A pinned completed step is released only when the earlier
// steps of its lineage cannot all go on days before it.
//
// Each item re-scans the calendar from day 0, so later items can fill gaps
// left by precedence-blocked ones. Cost is O(items × days). There is no
// backtracking; an item no existing day admits goes alone onto a new day
// intervalDays after the last one.
func AutoPlace(state *plan.State, rules Rules, today time.Time) (AllocationResult, error) {
	if err := rules.Validate(); err != nil {
		return AllocationResult{}, err
	}
	state.ClearPlacements(func(w *domain.WorkItem) bool { return w.Completed })

	a := &allocation{
		state: state,
		rules: rules,
		dayOf: make(map[string]int, state.Len()),
		count: make([]int, state.DayCount()),
		acute: make([]int, state.DayCount()),
	}
	for i := 0; i < state.DayCount(); i++ {
		for _, w := range state.DayItems(i) {
			a.add(w, i)
		}
	}

	res := AllocationResult{Total: state.Len()}
	res.Unpinned = releaseCrowdedPins(a)

	var queue []*domain.WorkItem
	for _, w := range state.Items() {
		if _, pinned := a.dayOf[w.ID]; !pinned {
			queue = append(queue, w)
		}
	}
	PrioritySort(queue, rules)

	for i := 0; i < len(queue); i++ {
		w := queue[i]
		earliest, blocked := earliestDay(state, w, a.dayOf)

		target := -1
		if !blocked {
			target = a.scan(w, earliest, min(latestDay(state, w, a.dayOf), len(a.count)-1))
			if target < 0 {
				target = a.scan(w, earliest, len(a.count)-1)
			}
		}
		if target < 0 {
			target = state.AppendDay(rules.IntervalDays, today)
			a.count = append(a.count, 0)
			a.acute = append(a.acute, 0)
			res.AppendedDays++
		}

		if released := a.releaseCrowded(w, target); len(released) > 0 {
			res.Unpinned += len(released)
			queue = append(queue, released...)
			PrioritySort(queue[i+1:], rules)
		}
		state.PlaceAt(w.ID, target)
		a.add(w, target)
		res.Placed++
	}
	return res, nil
}

// scan returns the first day in [from, to] with room for w, or -1.
func (a *allocation) scan(w *domain.WorkItem, from, to int) int {
	for i := from; i <= to; i++ {
		if a.fits(w, i) {
			return i
		}
	}
	return -1
}

// releaseCrowded unpins the placed later steps of w's lineage that would
// not keep a day for every step between w on day and themselves.
func (a *allocation) releaseCrowded(w *domain.WorkItem, day int) []*domain.WorkItem {
	if !w.Sequential() {
		return nil
	}
	var out []*domain.WorkItem
	pos := -1
	for q, s := range a.state.Group(w.GroupID) {
		if s.ID == w.ID {
			pos = q
			continue
		}
		if pos < 0 {
			continue
		}
		if d, placed := a.dayOf[s.ID]; placed && d-(q-pos) < day {
			a.release(s)
			out = append(out, s)
		}
	}
	return out
}

// releaseCrowdedPins unpins completed steps that sit too close to an
// earlier pinned step of the same lineage to leave a day for each step
// between them.
func releaseCrowdedPins(a *allocation) int {
	n := 0
	for _, g := range a.state.GroupIDs() {
		steps := a.state.Group(g)
		last, lastPos := -1, -1
		for pos, s := range steps {
			if !s.Sequential() {
				break
			}
			day, placed := a.dayOf[s.ID]
			if !placed {
				continue
			}
			if last >= 0 && day-last < pos-lastPos {
				a.release(s)
				n++
				continue
			}
			last, lastPos = day, pos
		}
	}
	return n
}

// earliestDay returns the first calendar index w may use. blocked is set
// when the previous step exists but is not placed.
func earliestDay(state *plan.State, w *domain.WorkItem, dayOf map[string]int) (int, bool) {
	if w.StepIndex <= 1 || !w.Sequential() {
		return 0, false
	}
	prev, ok := state.Step(w.GroupID, w.StepIndex-1)
	if !ok {
		return 0, false
	}
	i, placed := dayOf[prev.ID]
	if !placed {
		return 0, true
	}
	return i + 1, false
}

// latestDay returns the last calendar index w may use so that every
// placed later step of its lineage keeps a strictly later day, with one
// day left for each step in between. Unbounded items get a large index.
func latestDay(state *plan.State, w *domain.WorkItem, dayOf map[string]int) int {
	latest := int(^uint(0) >> 1)
	if !w.Sequential() {
		return latest
	}
	pos := -1
	for q, s := range state.Group(w.GroupID) {
		if s.ID == w.ID {
			pos = q
			continue
		}
		if pos < 0 {
			continue
		}
		if day, placed := dayOf[s.ID]; placed {
			latest = min(latest, day-(q-pos))
		}
	}
	return latest
}
