package service

import (
	"context"
	"maps"

	"github.com/alexanderramin/odontos/internal/domain"
	"github.com/alexanderramin/odontos/internal/plan"
)

// Snapshot is the complete persisted form of a session.
type Snapshot struct {
	Grouping    domain.GroupingMode
	Assignments map[string][]string
	Selections  map[domain.SelectionKey]int
	Items       []domain.WorkItem
	Days        []domain.ScheduleDay
}

// Snapshot copies the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Grouping:    s.grouping,
		Assignments: s.assignments.Snapshot(),
		Selections:  maps.Clone(s.selections),
		Items:       copyItems(s.state.Items()),
		Days:        s.state.Days(),
	}
}

// Restore replaces the session state with snap. Nothing changes unless the
// whole snapshot is valid.
func (s *Session) Restore(snap Snapshot) error {
	fields := map[string]any{"items": len(snap.Items), "days": len(snap.Days)}
	return s.run(context.Background(), "restore", fields, func() error {
		grouping, err := domain.ParseGroupingMode(string(snap.Grouping))
		if err != nil {
			return err
		}
		store := s.assignments.Clone()
		if err := store.Restore(snap.Assignments); err != nil {
			return err
		}
		state, err := plan.Restore(snap.Items, snap.Days)
		if err != nil {
			return err
		}
		s.grouping = grouping
		s.assignments = store
		s.selections = maps.Clone(snap.Selections)
		if s.selections == nil {
			s.selections = make(map[domain.SelectionKey]int)
		}
		s.state = state
		return nil
	})
}
