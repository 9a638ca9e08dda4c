// Package plan holds the mutable state of one treatment plan: every work
// item in creation order and the calendar of schedule days. Items not
// placed on any day form the backlog.
package plan

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/alexanderramin/odontos/internal/domain"
)

// State is not safe for concurrent use; the owning session serialises access.
type State struct {
	items   map[string]*domain.WorkItem
	order   []string
	days    []domain.ScheduleDay
	lastSeq int
}

func New() *State {
	return &State{items: make(map[string]*domain.WorkItem)}
}

// Clone returns a deep copy. Mutating operations work on a clone and commit
// it only when they succeed.
func (s *State) Clone() *State {
	c := &State{
		items:   make(map[string]*domain.WorkItem, len(s.items)),
		order:   slices.Clone(s.order),
		days:    make([]domain.ScheduleDay, len(s.days)),
		lastSeq: s.lastSeq,
	}
	for id, w := range s.items {
		c.items[id] = w.Clone()
	}
	for i, d := range s.days {
		c.days[i] = d.Clone()
	}
	return c
}

// Add registers a new item in the backlog, assigning its Seq when unset.
func (s *State) Add(w *domain.WorkItem) {
	if w.Seq == 0 {
		s.lastSeq++
		w.Seq = s.lastSeq
	} else if w.Seq > s.lastSeq {
		s.lastSeq = w.Seq
	}
	s.items[w.ID] = w
	s.order = append(s.order, w.ID)
}

// Delete retires an item, removing it from wherever it is placed.
func (s *State) Delete(id string) {
	if _, ok := s.items[id]; !ok {
		return
	}
	s.Detach(id)
	delete(s.items, id)
	s.order = slices.DeleteFunc(s.order, func(x string) bool { return x == id })
}

func (s *State) Item(id string) (*domain.WorkItem, bool) {
	w, ok := s.items[id]
	return w, ok
}

// ItemBySeq resolves the session-scoped sequential ID.
func (s *State) ItemBySeq(seq int) (*domain.WorkItem, bool) {
	for _, id := range s.order {
		if w := s.items[id]; w.Seq == seq {
			return w, true
		}
	}
	return nil, false
}

// Items returns every item in creation order.
func (s *State) Items() []*domain.WorkItem {
	out := make([]*domain.WorkItem, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

func (s *State) Len() int {
	return len(s.order)
}

// Group returns the items of one lineage ordered by step index.
func (s *State) Group(groupID string) []*domain.WorkItem {
	var out []*domain.WorkItem
	for _, id := range s.order {
		if w := s.items[id]; w.GroupID == groupID {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StepIndex < out[j].StepIndex })
	return out
}

// Step returns the item of a lineage with the given step index.
func (s *State) Step(groupID string, stepIndex int) (*domain.WorkItem, bool) {
	for _, id := range s.order {
		if w := s.items[id]; w.GroupID == groupID && w.StepIndex == stepIndex {
			return w, true
		}
	}
	return nil, false
}

// GroupIDs lists lineages in order of first appearance.
func (s *State) GroupIDs() []string {
	seen := map[string]bool{}
	var out []string
	for _, id := range s.order {
		g := s.items[id].GroupID
		if !seen[g] {
			seen[g] = true
			out = append(out, g)
		}
	}
	return out
}

// Days returns a copy of the calendar.
func (s *State) Days() []domain.ScheduleDay {
	out := make([]domain.ScheduleDay, len(s.days))
	for i, d := range s.days {
		out[i] = d.Clone()
	}
	return out
}

func (s *State) DayCount() int {
	return len(s.days)
}

// Day returns the day at index i.
func (s *State) Day(i int) domain.ScheduleDay {
	return s.days[i].Clone()
}

// DayIndex returns the calendar index of date, or -1.
func (s *State) DayIndex(date time.Time) int {
	date = domain.DateOnly(date)
	for i, d := range s.days {
		if d.Date.Equal(date) {
			return i
		}
	}
	return -1
}

// AddDay inserts an empty day keeping the calendar sorted and returns its
// index. An existing day is left untouched.
func (s *State) AddDay(date time.Time) int {
	date = domain.DateOnly(date)
	if i := s.DayIndex(date); i >= 0 {
		return i
	}
	i := sort.Search(len(s.days), func(i int) bool { return s.days[i].Date.After(date) })
	s.days = slices.Insert(s.days, i, domain.ScheduleDay{Date: date})
	return i
}

// NextDate is intervalDays past the last day, or from when the calendar is empty.
func (s *State) NextDate(intervalDays int, from time.Time) time.Time {
	if len(s.days) == 0 {
		return domain.DateOnly(from)
	}
	return s.days[len(s.days)-1].Date.AddDate(0, 0, intervalDays)
}

// AppendDay adds a day intervalDays after the last one and returns its index.
func (s *State) AppendDay(intervalDays int, from time.Time) int {
	return s.AddDay(s.NextDate(intervalDays, from))
}

// RemoveDay deletes an empty day.
func (s *State) RemoveDay(date time.Time) error {
	i := s.DayIndex(date)
	if i < 0 {
		return domain.UnknownRef("day", domain.FormatDate(date))
	}
	if len(s.days[i].ItemIDs) > 0 {
		return domain.InvalidInputf("day %s still holds %d item(s)", domain.FormatDate(date), len(s.days[i].ItemIDs))
	}
	s.days = slices.Delete(s.days, i, i+1)
	return nil
}

// MoveDay re-dates a whole day, keeping the calendar sorted.
func (s *State) MoveDay(from, to time.Time) error {
	i := s.DayIndex(from)
	if i < 0 {
		return domain.UnknownRef("day", domain.FormatDate(from))
	}
	if s.DayIndex(to) >= 0 {
		return domain.InvalidInputf("day %s already exists", domain.FormatDate(to))
	}
	day := s.days[i]
	s.days = slices.Delete(s.days, i, i+1)
	j := s.AddDay(to)
	s.days[j].ItemIDs = day.ItemIDs
	return nil
}

// Locate returns the calendar index holding id, or -1 when it is in the backlog.
func (s *State) Locate(id string) int {
	for i, d := range s.days {
		if slices.Contains(d.ItemIDs, id) {
			return i
		}
	}
	return -1
}

// PlacedDate returns the date id is placed on.
func (s *State) PlacedDate(id string) (time.Time, bool) {
	if i := s.Locate(id); i >= 0 {
		return s.days[i].Date, true
	}
	return time.Time{}, false
}

func (s *State) IsPlaced(id string) bool {
	return s.Locate(id) >= 0
}

// Detach returns id to the backlog.
func (s *State) Detach(id string) {
	for i := range s.days {
		s.days[i].ItemIDs = slices.DeleteFunc(s.days[i].ItemIDs, func(x string) bool { return x == id })
	}
}

// PlaceAt moves id to the end of the day at index dayIdx.
func (s *State) PlaceAt(id string, dayIdx int) {
	s.Detach(id)
	s.days[dayIdx].ItemIDs = append(s.days[dayIdx].ItemIDs, id)
}

// DayItems returns the items placed on the day at index i.
func (s *State) DayItems(i int) []*domain.WorkItem {
	out := make([]*domain.WorkItem, 0, len(s.days[i].ItemIDs))
	for _, id := range s.days[i].ItemIDs {
		out = append(out, s.items[id])
	}
	return out
}

// Backlog returns unplaced items in creation order.
func (s *State) Backlog() []*domain.WorkItem {
	placed := map[string]bool{}
	for _, d := range s.days {
		for _, id := range d.ItemIDs {
			placed[id] = true
		}
	}
	var out []*domain.WorkItem
	for _, id := range s.order {
		if !placed[id] {
			out = append(out, s.items[id])
		}
	}
	return out
}

// PlacedCount counts items on the calendar.
func (s *State) PlacedCount() int {
	n := 0
	for _, d := range s.days {
		n += len(d.ItemIDs)
	}
	return n
}

// ClearPlacements returns every item for which keep is false to the backlog.
// A nil keep clears everything.
func (s *State) ClearPlacements(keep func(*domain.WorkItem) bool) {
	for i := range s.days {
		s.days[i].ItemIDs = slices.DeleteFunc(s.days[i].ItemIDs, func(id string) bool {
			return keep == nil || !keep(s.items[id])
		})
	}
}

// ReplaceDays swaps in a new calendar. Callers validate it first.
func (s *State) ReplaceDays(days []domain.ScheduleDay) {
	s.days = make([]domain.ScheduleDay, len(days))
	for i, d := range days {
		s.days[i] = domain.ScheduleDay{Date: domain.DateOnly(d.Date), ItemIDs: slices.Clone(d.ItemIDs)}
	}
	sort.SliceStable(s.days, func(i, j int) bool { return s.days[i].Date.Before(s.days[j].Date) })
}

// Restore rebuilds a state from persisted items and days.
func Restore(items []domain.WorkItem, days []domain.ScheduleDay) (*State, error) {
	s := New()
	for i := range items {
		w := items[i]
		if _, dup := s.items[w.ID]; dup {
			return nil, domain.InvalidInputf("duplicate work item %q", w.ID)
		}
		s.Add(w.Clone())
	}
	s.ReplaceDays(days)
	if err := s.CheckPartition(); err != nil {
		return nil, err
	}
	return s, nil
}

// CheckPartition verifies that every placed id is a known item placed exactly
// once and that day dates are unique.
func (s *State) CheckPartition() error {
	seen := map[string]bool{}
	for i, d := range s.days {
		if i > 0 && !s.days[i-1].Date.Before(d.Date) {
			return fmt.Errorf("day %s is out of order or duplicated: %w", domain.FormatDate(d.Date), domain.ErrInvalidInput)
		}
		for _, id := range d.ItemIDs {
			if _, ok := s.items[id]; !ok {
				return domain.UnknownRef("work item", id)
			}
			if seen[id] {
				return domain.InvalidInputf("work item %q placed twice", id)
			}
			seen[id] = true
		}
	}
	return nil
}

// CheckPrecedence verifies that every placed step k > 1 has step k-1 of its
// lineage placed on a strictly earlier day.
func (s *State) CheckPrecedence() error {
	for i, d := range s.days {
		for _, id := range d.ItemIDs {
			w := s.items[id]
			if w.StepIndex <= 1 || !w.Sequential() {
				continue
			}
			prev, ok := s.Step(w.GroupID, w.StepIndex-1)
			if !ok {
				continue
			}
			if j := s.Locate(prev.ID); j < 0 || j >= i {
				return fmt.Errorf("work item %d step %d on %s: %w", w.Seq, w.StepIndex, domain.FormatDate(d.Date), domain.ErrPrecedenceUnmet)
			}
		}
	}
	return nil
}
