package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/odontos/internal/domain"
	"github.com/alexanderramin/odontos/internal/plan"
)

// StrategyDeterministic names the built-in greedy placement.
const StrategyDeterministic = "deterministic"

// Request is the read-only input of a placement strategy.
type Request struct {
	State *plan.State
	Rules Rules
	Today time.Time
}

// Proposal is a complete calendar suggested by a strategy.
type Proposal struct {
	Strategy string
	Days     []domain.ScheduleDay
}

// Strategy produces a full calendar for every item in the request. External
// planners implement it; their proposals are validated before use.
type Strategy interface {
	Name() string
	Propose(ctx context.Context, req Request) (*Proposal, error)
}

// Deterministic wraps AutoPlace.
type Deterministic struct{}

func (Deterministic) Name() string { return StrategyDeterministic }

func (Deterministic) Propose(ctx context.Context, req Request) (*Proposal, error) {
	s := req.State.Clone()
	if _, err := AutoPlace(s, req.Rules, req.Today); err != nil {
		return nil, err
	}
	return &Proposal{Strategy: StrategyDeterministic, Days: s.Days()}, nil
}

type fallbackStrategy struct {
	primary Strategy
	logger  *slog.Logger
}

// WithFallback runs primary and falls back to the deterministic algorithm
// when it fails or proposes an invalid calendar. A nil logger discards.
func WithFallback(primary Strategy, logger *slog.Logger) Strategy {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &fallbackStrategy{primary: primary, logger: logger}
}

func (f *fallbackStrategy) Name() string { return f.primary.Name() }

func (f *fallbackStrategy) Propose(ctx context.Context, req Request) (*Proposal, error) {
	p, err := f.primary.Propose(ctx, req)
	if err == nil {
		if _, err = ValidateProposal(req.State, p, req.Rules); err == nil {
			return p, nil
		}
	}
	f.logger.WarnContext(ctx, "strategy_fallback",
		"strategy", f.primary.Name(),
		"error", err.Error(),
	)
	return Deterministic{}.Propose(ctx, req)
}

// ValidateProposal applies p to a clone of state and checks every
// placement invariant: known ids placed exactly once, no backlog left,
// completed items kept on their day, day capacity and precedence.
//
// Completed items already on a day count toward its limits, but a day the
// user overfilled by hand stays valid as long as nothing new joins it. A
// completed item may move only when an earlier step of its lineage now
// sits on or after its old date.
func ValidateProposal(state *plan.State, p *Proposal, rules Rules) (*plan.State, error) {
	if p == nil {
		return nil, domain.InvalidInputf("empty proposal")
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	next := state.Clone()
	next.ReplaceDays(p.Days)
	if err := next.CheckPartition(); err != nil {
		return nil, err
	}
	if n := len(next.Backlog()); n > 0 {
		return nil, domain.InvalidInputf("proposal leaves %d item(s) unscheduled", n)
	}
	pinned := map[string]int{}
	pinnedAcute := map[string]int{}
	for _, w := range state.Items() {
		if !w.Completed {
			continue
		}
		before, placed := state.PlacedDate(w.ID)
		if !placed {
			continue
		}
		after, _ := next.PlacedDate(w.ID)
		if !before.Equal(after) {
			if !displacedByPredecessor(next, w, before) {
				return nil, domain.InvalidInputf("completed item %d moved from %s", w.Seq, domain.FormatDate(before))
			}
			continue
		}
		key := domain.FormatDate(before)
		pinned[key]++
		if rules.IsAcute(w.Condition) {
			pinnedAcute[key]++
		}
	}
	for i := 0; i < next.DayCount(); i++ {
		items := next.DayItems(i)
		acute := 0
		for _, w := range items {
			if rules.IsAcute(w.Condition) {
				acute++
			}
		}
		date := domain.FormatDate(next.Day(i).Date)
		if limit := max(rules.MaxPerDay, pinned[date]); len(items) > limit {
			return nil, fmt.Errorf("day %s holds %d items, max %d: %w", date, len(items), limit, domain.ErrInvalidInput)
		}
		if limit := max(rules.AcuteMaxPerDay, pinnedAcute[date]); acute > limit {
			return nil, fmt.Errorf("day %s holds %d acute items, max %d: %w", date, acute, limit, domain.ErrInvalidInput)
		}
	}
	if err := next.CheckPrecedence(); err != nil {
		return nil, err
	}
	return next, nil
}

// displacedByPredecessor reports whether an earlier step of w's lineage is
// placed in next on or after the date w used to hold.
func displacedByPredecessor(next *plan.State, w *domain.WorkItem, before time.Time) bool {
	if !w.Sequential() {
		return false
	}
	for _, s := range next.Group(w.GroupID) {
		if s.StepIndex >= w.StepIndex {
			break
		}
		if d, ok := next.PlacedDate(s.ID); ok && !d.Before(before) {
			return true
		}
	}
	return false
}
