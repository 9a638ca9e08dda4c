// Package assignment keeps the unit → condition set mapping of one plan and
// enforces the catalog's exclusivity rules on every change.
package assignment

import (
	"maps"
	"slices"
	"sort"

	"github.com/alexanderramin/odontos/internal/domain"
)

// RuleSource supplies the catalog data the store validates against.
type RuleSource interface {
	Condition(code string) (domain.Condition, bool)
	ExclusivityRules() []domain.ExclusivityRule
}

// Store maps each unit to the set of condition codes affecting it. Units
// whose set becomes empty are dropped.
type Store struct {
	rules RuleSource
	units map[string][]string
}

func NewStore(rules RuleSource) *Store {
	return &Store{rules: rules, units: make(map[string][]string)}
}

// Conflicts returns the codes currently on unit that may not coexist with code.
func (s *Store) Conflicts(unit, code string) []string {
	current := s.units[unit]
	if len(current) == 0 {
		return nil
	}
	var out []string
	for _, rule := range s.rules.ExclusivityRules() {
		g := rule.GroupOf(code)
		if g < 0 {
			continue
		}
		for _, existing := range current {
			if existing == code {
				continue
			}
			if eg := rule.GroupOf(existing); eg >= 0 && eg != g {
				out = append(out, existing)
			}
		}
	}
	return domain.NormalizeUnits(out)
}

// Assign adds code to unit. A conflicting assignment fails with an
// *domain.ExclusivityConflictError unless override is set, in which case the
// conflicting codes are removed first.
func (s *Store) Assign(unit, code string, override bool) error {
	if err := s.validate(unit, code); err != nil {
		return err
	}
	conflicts := s.Conflicts(unit, code)
	if len(conflicts) > 0 && !override {
		return &domain.ExclusivityConflictError{Unit: unit, Code: code, Conflicts: conflicts}
	}
	next := domain.UnitsSubtract(s.units[unit], conflicts)
	s.units[unit] = domain.NormalizeUnits(append(next, code))
	return nil
}

// Unassign removes code from unit. Removing an absent code is a no-op.
func (s *Store) Unassign(unit, code string) {
	next := domain.UnitsSubtract(s.units[unit], []string{code})
	if len(next) == 0 {
		delete(s.units, unit)
		return
	}
	s.units[unit] = next
}

// Toggle removes code when present, otherwise assigns it.
func (s *Store) Toggle(unit, code string, override bool) (bool, error) {
	if slices.Contains(s.units[unit], code) {
		s.Unassign(unit, code)
		return false, nil
	}
	if err := s.Assign(unit, code, override); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) ClearUnit(unit string) {
	delete(s.units, unit)
}

func (s *Store) Clear() {
	s.units = make(map[string][]string)
}

// Conditions returns the sorted codes on unit.
func (s *Store) Conditions(unit string) []string {
	return slices.Clone(s.units[unit])
}

// Units returns every unit with at least one condition, sorted.
func (s *Store) Units() []string {
	out := slices.Collect(maps.Keys(s.units))
	sort.Strings(out)
	return out
}

// UnitsWith returns the sorted units affected by code.
func (s *Store) UnitsWith(code string) []string {
	var out []string
	for unit, codes := range s.units {
		if slices.Contains(codes, code) {
			out = append(out, unit)
		}
	}
	sort.Strings(out)
	return out
}

func (s *Store) Len() int {
	return len(s.units)
}

// Snapshot returns a copy of the mapping.
func (s *Store) Snapshot() map[string][]string {
	out := make(map[string][]string, len(s.units))
	for unit, codes := range s.units {
		out[unit] = slices.Clone(codes)
	}
	return out
}

// Restore replaces the mapping, validating every entry as a fresh assignment.
// On error the store is left unchanged.
func (s *Store) Restore(m map[string][]string) error {
	next := &Store{rules: s.rules, units: make(map[string][]string, len(m))}
	for _, unit := range slices.Sorted(maps.Keys(m)) {
		for _, code := range m[unit] {
			if err := next.Assign(unit, code, false); err != nil {
				return err
			}
		}
	}
	s.units = next.units
	return nil
}

// Clone returns an independent copy sharing the rule source.
func (s *Store) Clone() *Store {
	return &Store{rules: s.rules, units: s.Snapshot()}
}

func (s *Store) validate(unit, code string) error {
	if unit == "" {
		return domain.InvalidInputf("unit is required")
	}
	if _, ok := s.rules.Condition(code); !ok {
		return domain.UnknownRef("condition", code)
	}
	return nil
}
