package scheduler

import (
	"github.com/alexanderramin/odontos/internal/domain"
	"github.com/alexanderramin/odontos/internal/plan"
	"github.com/alexanderramin/odontos/internal/testutil"
)

// newState builds a state with nDays weekly days starting at testutil.Today.
func newState(nDays int, items ...*domain.WorkItem) *plan.State {
	s := plan.New()
	for _, w := range items {
		s.Add(w)
	}
	for i := 0; i < nDays; i++ {
		s.AddDay(testutil.Day(i))
	}
	return s
}

func testRules() Rules {
	return Rules{
		PriorityOrder:   []string{"X", "A", "B"},
		MaxPerDay:       3,
		AcuteConditions: []string{"X"},
		AcuteMaxPerDay:  1,
		IntervalDays:    7,
	}
}

func dayOf(s *plan.State, id string) int {
	return s.Locate(id)
}
