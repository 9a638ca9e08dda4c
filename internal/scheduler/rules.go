package scheduler

import (
	"slices"

	"github.com/alexanderramin/odontos/internal/domain"
)

// Rules is the global rule set of automatic placement.
type Rules struct {
	PriorityOrder   []string
	MaxPerDay       int
	AcuteConditions []string
	AcuteMaxPerDay  int
	IntervalDays    int
}

// DefaultRules mirrors the clinic defaults: acute conditions first, three
// visits per day, one acute visit per day, weekly appointments.
func DefaultRules() Rules {
	return Rules{
		PriorityOrder:   []string{"per", "pul", "C4", "C3", "C2", "P2", "P1", "C1"},
		MaxPerDay:       3,
		AcuteConditions: []string{"per", "pul", "C4"},
		AcuteMaxPerDay:  1,
		IntervalDays:    7,
	}
}

func (r Rules) Validate() error {
	if r.MaxPerDay < 1 {
		return domain.InvalidInputf("max per day must be at least 1, got %d", r.MaxPerDay)
	}
	if r.AcuteMaxPerDay < 1 {
		return domain.InvalidInputf("acute max per day must be at least 1, got %d", r.AcuteMaxPerDay)
	}
	if r.IntervalDays < 1 {
		return domain.InvalidInputf("interval must be at least one day, got %d", r.IntervalDays)
	}
	return nil
}

// IsAcute reports whether code is one of the acute conditions.
func (r Rules) IsAcute(code string) bool {
	return slices.Contains(r.AcuteConditions, code)
}

// Priority returns the index of code in the priority order. Unknown codes
// sort after every listed code.
func (r Rules) Priority(code string) int {
	if i := slices.Index(r.PriorityOrder, code); i >= 0 {
		return i
	}
	return len(r.PriorityOrder)
}
