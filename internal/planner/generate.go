// Package planner expands condition assignments and catalog treatment rules
// into the work items of a plan.
package planner

import (
	"time"

	"github.com/alexanderramin/odontos/internal/domain"
	"github.com/alexanderramin/odontos/internal/plan"
	"github.com/google/uuid"
)

// MinInitialDays is the smallest calendar synthesised for a fresh plan.
const MinInitialDays = 8

// Assignments is the read side of the assignment store.
type Assignments interface {
	UnitsWith(code string) []string
}

// Catalog is the subset of catalog lookups generation needs.
type Catalog interface {
	GenerationOrder() []string
	TreatmentOptions(code string) []domain.TreatmentOption
}

// Input bundles everything Generate reads. Previous may be nil.
type Input struct {
	Assignments  Assignments
	Catalog      Catalog
	Selections   map[domain.SelectionKey]int
	Grouping     domain.GroupingMode
	Previous     *plan.State
	Today        time.Time
	IntervalDays int

	// NewID overrides id generation; defaults to random UUIDs.
	NewID func() string
}

type placementKey struct {
	lineage domain.LineageKey
	step    int
}

// Generate builds a fresh plan state. Items whose (lineage key, step index)
// was placed in Previous are placed on the same date again; the rest go to
// the backlog. Completion carries over by the same key.
func Generate(in Input) (*plan.State, error) {
	if in.Grouping != domain.GroupPerUnit && in.Grouping != domain.GroupMerged {
		return nil, domain.InvalidInputf("unknown grouping mode %q", in.Grouping)
	}
	if in.IntervalDays < 1 {
		return nil, domain.InvalidInputf("interval must be at least one day, got %d", in.IntervalDays)
	}
	newID := in.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	state := plan.New()
	for _, code := range in.Catalog.GenerationOrder() {
		units := in.Assignments.UnitsWith(code)
		if len(units) == 0 {
			continue
		}
		options := in.Catalog.TreatmentOptions(code)
		if len(options) == 0 {
			continue
		}

		var lineages [][]string
		if in.Grouping == domain.GroupPerUnit {
			for _, u := range units {
				lineages = append(lineages, []string{u})
			}
		} else {
			lineages = append(lineages, units)
		}

		for _, lu := range lineages {
			idx := in.Selections[domain.NewSelectionKey(code, lu)]
			if idx < 0 || idx >= len(options) {
				idx = 0
			}
			for _, w := range ExpandOption(code, options[idx], lu, newID()) {
				w.ID = newID()
				state.Add(w)
			}
		}
	}

	if in.Previous != nil {
		carryCompletion(state, in.Previous)
	}
	if in.Previous != nil && in.Previous.DayCount() > 0 {
		for _, d := range in.Previous.Days() {
			state.AddDay(d.Date)
		}
		placeFromPrior(state, in.Previous)
	} else {
		n := max(MinInitialDays, (state.Len()+1)/2)
		start := domain.DateOnly(in.Today)
		for i := 0; i < n; i++ {
			state.AddDay(start.AddDate(0, 0, i*in.IntervalDays))
		}
	}
	return state, nil
}

// ExpandOption emits one item per step of option for a single lineage. Item
// ids are left empty for the caller to assign.
func ExpandOption(code string, option domain.TreatmentOption, units []string, groupID string) []*domain.WorkItem {
	units = domain.NormalizeUnits(units)
	out := make([]*domain.WorkItem, 0, option.StepCount())
	for i := 1; i <= option.StepCount(); i++ {
		step := option.Step(i)
		w := &domain.WorkItem{
			GroupID:         groupID,
			Condition:       code,
			ActualCondition: code,
			Option:          option.Name,
			StepIndex:       i,
			TotalSteps:      option.StepCount(),
			StepName:        step.Name,
			ProcedureCode:   step.ProcedureCode,
			Points:          step.Points,
		}
		w.SetUnits(units)
		out = append(out, w)
	}
	return out
}

// carryCompletion marks every item completed whose (lineage key, step
// index) was completed in prev, placed or not.
func carryCompletion(state, prev *plan.State) {
	completed := map[placementKey]bool{}
	for _, old := range prev.Items() {
		if old.Completed {
			completed[placementKey{lineage: old.Lineage, step: old.StepIndex}] = true
		}
	}
	for _, w := range state.Items() {
		w.Completed = completed[placementKey{lineage: w.Lineage, step: w.StepIndex}]
	}
}

// placeFromPrior walks the previous calendar in day order so that items keep
// their relative order within a day.
func placeFromPrior(state, prev *plan.State) {
	byKey := map[placementKey]*domain.WorkItem{}
	for _, w := range state.Items() {
		k := placementKey{lineage: w.Lineage, step: w.StepIndex}
		if _, dup := byKey[k]; !dup {
			byKey[k] = w
		}
	}
	for _, d := range prev.Days() {
		for _, oldID := range d.ItemIDs {
			old, ok := prev.Item(oldID)
			if !ok {
				continue
			}
			w, ok := byKey[placementKey{lineage: old.Lineage, step: old.StepIndex}]
			if !ok || state.IsPlaced(w.ID) {
				continue
			}
			state.PlaceAt(w.ID, state.AddDay(d.Date))
		}
	}
}
