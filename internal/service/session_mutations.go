package service

import (
	"context"
	"maps"
	"time"

	"github.com/alexanderramin/odontos/internal/assignment"
	"github.com/alexanderramin/odontos/internal/domain"
	"github.com/alexanderramin/odontos/internal/mutator"
	"github.com/alexanderramin/odontos/internal/plan"
)

// Split extracts units from a lineage into a new one and returns its group id.
func (s *Session) Split(groupID string, units []string, targetDate *time.Time) (string, error) {
	var newGroup string
	fields := map[string]any{"group_id": groupID, "units": len(units)}
	err := s.mutate("split", fields, func(next *plan.State) error {
		g, err := mutator.Split(next, groupID, units, targetDate, s.newID)
		newGroup = g
		fields["new_group_id"] = g
		return err
	})
	return newGroup, err
}

// Merge folds the source lineage into the target.
func (s *Session) Merge(sourceGroupID, targetGroupID string) error {
	fields := map[string]any{"source": sourceGroupID, "target": targetGroupID}
	return s.mutate("merge", fields, func(next *plan.State) error {
		return mutator.Merge(next, sourceGroupID, targetGroupID)
	})
}

// Branch switches the item's lineage to another option after the item and
// records the choice so later regenerations keep it.
func (s *Session) Branch(itemID string, newOptionIndex int) ([]domain.WorkItem, error) {
	var added []domain.WorkItem
	fields := map[string]any{"item_id": itemID, "option": newOptionIndex}
	err := s.mutate("branch", fields, func(next *plan.State) error {
		items, err := mutator.Branch(next, s.catalog, itemID, newOptionIndex, s.newID)
		if err != nil {
			return err
		}
		w, _ := next.Item(itemID)
		s.selections[w.Lineage.Selection()] = newOptionIndex
		added = copyItems(items)
		fields["added"] = len(added)
		return nil
	})
	return added, err
}

// Assign adds a condition to a unit and regenerates the plan. A conflict
// with an exclusivity rule fails with *domain.ExclusivityConflictError
// unless override is set, in which case the conflicting codes are dropped.
func (s *Session) Assign(unit, code string, override bool) error {
	fields := map[string]any{"unit": unit, "code": code, "override": override}
	return s.changeAssignments("assign", fields, func(store *assignment.Store) error {
		return store.Assign(unit, code, override)
	})
}

// Unassign removes a condition from a unit and regenerates the plan.
func (s *Session) Unassign(unit, code string) error {
	fields := map[string]any{"unit": unit, "code": code}
	return s.changeAssignments("unassign", fields, func(store *assignment.Store) error {
		store.Unassign(unit, code)
		return nil
	})
}

// Toggle adds the condition when absent, removes it otherwise, and reports
// whether it was added.
func (s *Session) Toggle(unit, code string, override bool) (bool, error) {
	var added bool
	fields := map[string]any{"unit": unit, "code": code, "override": override}
	err := s.changeAssignments("toggle", fields, func(store *assignment.Store) error {
		var err error
		added, err = store.Toggle(unit, code, override)
		fields["added"] = added
		return err
	})
	return added, err
}

// ClearUnit removes every condition of one unit.
func (s *Session) ClearUnit(unit string) error {
	return s.changeAssignments("clear-unit", map[string]any{"unit": unit}, func(store *assignment.Store) error {
		store.ClearUnit(unit)
		return nil
	})
}

// ClearAll empties the assignments, selections, items and calendar.
func (s *Session) ClearAll() error {
	return s.run(context.Background(), "clear-all", map[string]any{}, func() error {
		s.assignments.Clear()
		clear(s.selections)
		s.state = plan.New()
		return nil
	})
}

func (s *Session) changeAssignments(name string, fields map[string]any, fn func(*assignment.Store) error) error {
	return s.run(context.Background(), name, fields, func() error {
		store := s.assignments.Clone()
		if err := fn(store); err != nil {
			return err
		}
		next, err := s.regenerate(store, s.selections, s.grouping)
		if err != nil {
			return err
		}
		s.assignments = store
		s.state = next
		return nil
	})
}

// Assignments returns a copy of the unit to condition map.
func (s *Session) Assignments() map[string][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assignments.Snapshot()
}

// Conflicts lists the codes on unit that code would displace.
func (s *Session) Conflicts(unit, code string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assignments.Conflicts(unit, code)
}

// SelectOption chooses the treatment option for a lineage and regenerates.
func (s *Session) SelectOption(key domain.SelectionKey, index int) error {
	fields := map[string]any{"lineage": key.String(), "option": index}
	return s.run(context.Background(), "select-option", fields, func() error {
		if _, err := s.catalog.Option(key.Condition, index); err != nil {
			return err
		}
		selections := maps.Clone(s.selections)
		selections[key] = index
		next, err := s.regenerate(s.assignments, selections, s.grouping)
		if err != nil {
			return err
		}
		s.selections = selections
		s.state = next
		return nil
	})
}

// Alternatives lists the options of the item's condition and the index of
// the one it currently follows.
func (s *Session) Alternatives(itemID string) ([]domain.TreatmentOption, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.state.Item(itemID)
	if !ok {
		return nil, 0, domain.UnknownRef("work item", itemID)
	}
	return s.catalog.TreatmentOptions(w.Condition), s.catalog.OptionIndex(w.Condition, w.Option), nil
}

// Selections returns a copy of the option selections.
func (s *Session) Selections() map[domain.SelectionKey]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.selections)
}
