package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/alexanderramin/odontos/internal/assignment"
	"github.com/alexanderramin/odontos/internal/catalog"
	"github.com/alexanderramin/odontos/internal/domain"
	"github.com/alexanderramin/odontos/internal/plan"
	"github.com/alexanderramin/odontos/internal/planner"
	"github.com/alexanderramin/odontos/internal/scheduler"
	"github.com/google/uuid"
)

// SessionConfig wires a session to its collaborators. Zero-valued fields
// fall back to the embedded catalog, default rules, per-unit grouping,
// the deterministic strategy, the wall clock and random UUIDs.
type SessionConfig struct {
	Catalog     *catalog.Catalog
	Rules       scheduler.Rules
	Grouping    domain.GroupingMode
	AutoCascade bool
	Strategy    scheduler.Strategy
	Clock       func() time.Time
	NewID       func() string
}

// Session owns one patient's plan: the assignment store, option
// selections, work items and calendar. Every operation holds the session
// lock for its whole run, so calls are applied one at a time. Mutations
// work on a clone and commit only on success.
type Session struct {
	mu sync.Mutex

	catalog     *catalog.Catalog
	rules       scheduler.Rules
	grouping    domain.GroupingMode
	autoCascade bool
	strategy    scheduler.Strategy
	clock       func() time.Time
	newID       func() string
	observer    UseCaseObserver

	assignments *assignment.Store
	selections  map[domain.SelectionKey]int
	state       *plan.State
}

func NewSession(cfg SessionConfig, observers ...UseCaseObserver) *Session {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	if cfg.Rules.MaxPerDay == 0 && cfg.Rules.IntervalDays == 0 {
		cfg.Rules = scheduler.DefaultRules()
	}
	if cfg.Grouping == "" {
		cfg.Grouping = domain.GroupPerUnit
	}
	if cfg.Strategy == nil {
		cfg.Strategy = scheduler.Deterministic{}
	}
	if cfg.Clock == nil {
		cfg.Clock = func() time.Time { return time.Now().UTC() }
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &Session{
		catalog:     cfg.Catalog,
		rules:       cfg.Rules,
		grouping:    cfg.Grouping,
		autoCascade: cfg.AutoCascade,
		strategy:    cfg.Strategy,
		clock:       cfg.Clock,
		newID:       cfg.NewID,
		observer:    useCaseObserverOrNoop(observers),
		assignments: assignment.NewStore(cfg.Catalog),
		selections:  make(map[domain.SelectionKey]int),
		state:       plan.New(),
	}
}

// DayView is a calendar day with its items resolved.
type DayView struct {
	Date  time.Time
	Items []domain.WorkItem
}

// GenerateResult is the plan produced by Generate.
type GenerateResult struct {
	Items    []domain.WorkItem
	Calendar []DayView
}

// AutoScheduleResult reports one automatic placement run.
type AutoScheduleResult struct {
	PlacedCount  int
	TotalCount   int
	AppendedDays int
	// Unpinned counts completed items moved so earlier steps fit before them.
	Unpinned int
	Strategy string
}

// Summary counts the plan's items and days.
type Summary struct {
	Total     int
	Placed    int
	Backlog   int
	Completed int
	Days      int
	Lineages  int
	Units     int
}

func (s *Session) Catalog() *catalog.Catalog {
	return s.catalog
}

func (s *Session) Rules() scheduler.Rules {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules
}

func (s *Session) Grouping() domain.GroupingMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grouping
}

// run wraps an operation with locking and telemetry.
func (s *Session) run(ctx context.Context, name string, fields map[string]any, fn func() error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.observe(ctx, name, fields, fn)
}

func (s *Session) observe(ctx context.Context, name string, fields map[string]any, fn func() error) (err error) {
	startedAt := time.Now()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      name,
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()
	return fn()
}

// mutate applies fn to a clone of the plan state and commits the clone
// only when fn succeeds.
func (s *Session) mutate(name string, fields map[string]any, fn func(next *plan.State) error) error {
	return s.run(context.Background(), name, fields, func() error {
		next := s.state.Clone()
		if err := fn(next); err != nil {
			return err
		}
		s.state = next
		return nil
	})
}

func (s *Session) regenerate(store *assignment.Store, selections map[domain.SelectionKey]int, grouping domain.GroupingMode) (*plan.State, error) {
	return planner.Generate(planner.Input{
		Assignments:  store,
		Catalog:      s.catalog,
		Selections:   selections,
		Grouping:     grouping,
		Previous:     s.state,
		Today:        s.clock(),
		IntervalDays: s.rules.IntervalDays,
		NewID:        s.newID,
	})
}

// Backlog returns copies of the unplaced items in creation order.
func (s *Session) Backlog() []domain.WorkItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyItems(s.state.Backlog())
}

// Items returns copies of every item in creation order.
func (s *Session) Items() []domain.WorkItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyItems(s.state.Items())
}

// Calendar returns the schedule days with their items.
func (s *Session) Calendar() []DayView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return calendarOf(s.state)
}

// Item returns a copy of one item.
func (s *Session) Item(itemID string) (domain.WorkItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.state.Item(itemID)
	if !ok {
		return domain.WorkItem{}, domain.UnknownRef("work item", itemID)
	}
	return *w.Clone(), nil
}

// ResolveItem accepts either an item id or its sequential number.
func (s *Session) ResolveItem(ref string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.Item(ref); ok {
		return ref, nil
	}
	if seq, err := strconv.Atoi(ref); err == nil {
		if w, ok := s.state.ItemBySeq(seq); ok {
			return w.ID, nil
		}
	}
	return "", domain.UnknownRef("work item", ref)
}

// ResolveGroup accepts a group id or the sequential number of any of its items.
func (s *Session) ResolveGroup(ref string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.state.Group(ref)) > 0 {
		return ref, nil
	}
	if seq, err := strconv.Atoi(ref); err == nil {
		if w, ok := s.state.ItemBySeq(seq); ok {
			return w.GroupID, nil
		}
	}
	return "", domain.UnknownRef("lineage", ref)
}

// Generate rebuilds the plan from the current assignments and selections
// with the given grouping. Prior placements are carried over by lineage key.
func (s *Session) Generate(grouping domain.GroupingMode) (*GenerateResult, error) {
	var res *GenerateResult
	fields := map[string]any{"grouping": string(grouping)}
	err := s.run(context.Background(), "generate", fields, func() error {
		next, err := s.regenerate(s.assignments, s.selections, grouping)
		if err != nil {
			return err
		}
		s.state = next
		s.grouping = grouping
		fields["items"] = next.Len()
		res = &GenerateResult{Items: copyItems(next.Items()), Calendar: calendarOf(next)}
		return nil
	})
	return res, err
}

// AutoSchedule replans every non-completed item with the session's strategy.
func (s *Session) AutoSchedule(ctx context.Context, rules scheduler.Rules) (*AutoScheduleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoSchedule(ctx, rules)
}

// TryAutoSchedule is AutoSchedule that fails with ErrSessionBusy instead of
// waiting for an operation already in flight.
func (s *Session) TryAutoSchedule(ctx context.Context, rules scheduler.Rules) (*AutoScheduleResult, error) {
	if !s.mu.TryLock() {
		return nil, domain.ErrSessionBusy
	}
	defer s.mu.Unlock()
	return s.autoSchedule(ctx, rules)
}

func (s *Session) autoSchedule(ctx context.Context, rules scheduler.Rules) (*AutoScheduleResult, error) {
	var res *AutoScheduleResult
	fields := map[string]any{"strategy": s.strategy.Name()}
	err := s.observe(ctx, "auto-schedule", fields, func() error {
		if err := rules.Validate(); err != nil {
			return err
		}
		proposal, err := s.strategy.Propose(ctx, scheduler.Request{
			State: s.state.Clone(),
			Rules: rules,
			Today: s.clock(),
		})
		if err != nil {
			return err
		}
		next, err := scheduler.ValidateProposal(s.state, proposal, rules)
		if err != nil {
			return err
		}
		pinned, unpinned := 0, 0
		for _, w := range s.state.Items() {
			before, placed := s.state.PlacedDate(w.ID)
			if !w.Completed || !placed {
				continue
			}
			if after, _ := next.PlacedDate(w.ID); after.Equal(before) {
				pinned++
			} else {
				unpinned++
			}
		}
		res = &AutoScheduleResult{
			PlacedCount:  next.PlacedCount() - pinned,
			Unpinned:     unpinned,
			TotalCount:   next.Len(),
			AppendedDays: max(0, next.DayCount()-s.state.DayCount()),
			Strategy:     proposal.Strategy,
		}
		s.state = next
		fields["placed"] = res.PlacedCount
		fields["total"] = res.TotalCount
		if unpinned > 0 {
			fields["unpinned"] = unpinned
		}
		fields["strategy"] = res.Strategy
		return nil
	})
	return res, err
}

// ManualPlace moves an item onto an existing day. With auto-cascade on,
// moving step 1 re-places the later steps on the following days.
func (s *Session) ManualPlace(itemID string, date time.Time) error {
	fields := map[string]any{"item_id": itemID, "date": domain.FormatDate(date)}
	return s.mutate("manual-place", fields, func(next *plan.State) error {
		return scheduler.Place(next, itemID, date, scheduler.PlaceOptions{
			Cascade:      s.autoCascade,
			IntervalDays: s.rules.IntervalDays,
			Today:        s.clock(),
		})
	})
}

// Remove returns an item and its later steps to the backlog.
func (s *Session) Remove(itemID string) error {
	fields := map[string]any{"item_id": itemID}
	return s.mutate("remove", fields, func(next *plan.State) error {
		removed, err := scheduler.Remove(next, itemID)
		fields["removed"] = len(removed)
		return err
	})
}

// CanDrag reports whether the item's previous step is placed. Unknown ids
// report false.
func (s *Session) CanDrag(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.state.Item(itemID)
	return ok && scheduler.CanDrag(s.state, w)
}

// AddDay inserts an empty day. Adding an existing date is a no-op.
func (s *Session) AddDay(date time.Time) error {
	if date.IsZero() {
		return domain.InvalidInputf("day needs a date")
	}
	return s.mutate("add-day", map[string]any{"date": domain.FormatDate(date)}, func(next *plan.State) error {
		next.AddDay(date)
		return nil
	})
}

// AppendDay adds a day one interval past the last day, or today when the
// calendar is empty, and returns its date.
func (s *Session) AppendDay() (time.Time, error) {
	var date time.Time
	err := s.mutate("append-day", map[string]any{}, func(next *plan.State) error {
		date = next.Day(next.AppendDay(s.rules.IntervalDays, s.clock())).Date
		return nil
	})
	return date, err
}

// MoveDay re-dates a whole day. The move is rejected when it would put a
// step on or before its previous step's day.
func (s *Session) MoveDay(from, to time.Time) error {
	fields := map[string]any{"from": domain.FormatDate(from), "to": domain.FormatDate(to)}
	return s.mutate("move-day", fields, func(next *plan.State) error {
		if err := next.MoveDay(from, to); err != nil {
			return err
		}
		return next.CheckPrecedence()
	})
}

// RemoveDay deletes an empty day.
func (s *Session) RemoveDay(date time.Time) error {
	return s.mutate("remove-day", map[string]any{"date": domain.FormatDate(date)}, func(next *plan.State) error {
		return next.RemoveDay(date)
	})
}

// ClearSchedule returns every non-completed item to the backlog, keeping days.
func (s *Session) ClearSchedule() error {
	return s.mutate("clear-schedule", map[string]any{}, func(next *plan.State) error {
		next.ClearPlacements(func(w *domain.WorkItem) bool { return w.Completed })
		return nil
	})
}

// ToggleCompletion flips an item's completed flag and returns the new value.
func (s *Session) ToggleCompletion(itemID string) (bool, error) {
	var completed bool
	fields := map[string]any{"item_id": itemID}
	err := s.mutate("toggle-completion", fields, func(next *plan.State) error {
		w, ok := next.Item(itemID)
		if !ok {
			return domain.UnknownRef("work item", itemID)
		}
		w.Completed = !w.Completed
		completed = w.Completed
		fields["completed"] = completed
		return nil
	})
	return completed, err
}

// Summary counts the current plan.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := Summary{
		Total:    s.state.Len(),
		Placed:   s.state.PlacedCount(),
		Days:     s.state.DayCount(),
		Lineages: len(s.state.GroupIDs()),
		Units:    s.assignments.Len(),
	}
	sum.Backlog = sum.Total - sum.Placed
	for _, w := range s.state.Items() {
		if w.Completed {
			sum.Completed++
		}
	}
	return sum
}

func copyItems(items []*domain.WorkItem) []domain.WorkItem {
	out := make([]domain.WorkItem, 0, len(items))
	for _, w := range items {
		out = append(out, *w.Clone())
	}
	return out
}

func calendarOf(state *plan.State) []DayView {
	out := make([]DayView, 0, state.DayCount())
	for i := 0; i < state.DayCount(); i++ {
		out = append(out, DayView{
			Date:  state.Day(i).Date,
			Items: copyItems(state.DayItems(i)),
		})
	}
	return out
}
