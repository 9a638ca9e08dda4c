package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/alexanderramin/odontos/internal/domain"
	"github.com/alexanderramin/odontos/internal/scheduler"
	"github.com/alexanderramin/odontos/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mergedLineage assigns A to units 11 and 12 and generates a merged plan.
func mergedLineage(t *testing.T, s *Session) []domain.WorkItem {
	t.Helper()
	require.NoError(t, s.Assign("11", "A", false))
	require.NoError(t, s.Assign("12", "A", false))
	res, err := s.Generate(domain.GroupMerged)
	require.NoError(t, err)
	return res.Items
}

func TestSession_GenerateMergedLineage(t *testing.T) {
	s := newTestSession(t)
	items := mergedLineage(t, s)

	require.Len(t, items, 3)
	for i, w := range items {
		assert.Equal(t, items[0].GroupID, w.GroupID)
		assert.Equal(t, i+1, w.StepIndex)
		assert.Equal(t, 3, w.TotalSteps)
		assert.Equal(t, []string{"11", "12"}, w.Units)
	}
	assert.Len(t, s.Calendar(), 8)
	assert.Len(t, s.Backlog(), 3)
}

func TestSession_AutoScheduleSequentialDays(t *testing.T) {
	s := newTestSession(t)
	items := mergedLineage(t, s)

	res, err := s.AutoSchedule(context.Background(), testRules())
	require.NoError(t, err)

	assert.Equal(t, 3, res.PlacedCount)
	assert.Equal(t, 3, res.TotalCount)
	assert.Equal(t, "deterministic", res.Strategy)
	for i, w := range items {
		assert.Equal(t, i, dayIndexOf(s, w.ID), "step %d", w.StepIndex)
	}
	cal := s.Calendar()
	for i := 0; i < 3; i++ {
		assert.Len(t, cal[i].Items, 1)
	}
	assert.Empty(t, s.Backlog())
}

func TestSession_ManualPlaceBeforePredecessorLeavesStateUnchanged(t *testing.T) {
	s := newTestSession(t)
	items := mergedLineage(t, s)
	before := s.Snapshot()

	err := s.ManualPlace(items[1].ID, testutil.Day(0))
	require.ErrorIs(t, err, domain.ErrPrecedenceUnmet)
	assert.Equal(t, before, s.Snapshot())
}

func TestSession_ManualPlaceCascades(t *testing.T) {
	cfg := testCatalogConfig(t)
	cfg.AutoCascade = true
	s := NewSession(cfg)
	items := mergedLineage(t, s)

	require.NoError(t, s.ManualPlace(items[0].ID, testutil.Day(6)))

	assert.Equal(t, 6, dayIndexOf(s, items[0].ID))
	assert.Equal(t, 7, dayIndexOf(s, items[1].ID))
	assert.Equal(t, 8, dayIndexOf(s, items[2].ID))
	assert.Len(t, s.Calendar(), 9)
}

func TestSession_RemoveCascades(t *testing.T) {
	s := newTestSession(t)
	items := mergedLineage(t, s)
	_, err := s.AutoSchedule(context.Background(), testRules())
	require.NoError(t, err)

	require.NoError(t, s.Remove(items[1].ID))

	assert.Equal(t, 0, dayIndexOf(s, items[0].ID))
	assert.Equal(t, -1, dayIndexOf(s, items[1].ID))
	assert.Equal(t, -1, dayIndexOf(s, items[2].ID))
	assert.False(t, s.CanDrag(items[2].ID))
	assert.True(t, s.CanDrag(items[1].ID))

	assert.ErrorIs(t, s.Remove("missing"), domain.ErrUnknownReference)
}

func TestSession_SplitScenario(t *testing.T) {
	s := newTestSession(t)
	items := mergedLineage(t, s)

	g2, err := s.Split(items[0].GroupID, []string{"12"}, nil)
	require.NoError(t, err)

	assert.Len(t, s.Items(), 6)
	sib := groupOf(s, g2)
	require.Len(t, sib, 3)
	for _, w := range sib {
		assert.Equal(t, []string{"12"}, w.Units)
		assert.Equal(t, -1, dayIndexOf(s, w.ID))
	}
	for _, w := range groupOf(s, items[0].GroupID) {
		assert.Equal(t, []string{"11"}, w.Units)
	}

	require.NoError(t, s.Merge(g2, items[0].GroupID))
	assert.Len(t, s.Items(), 3)
}

func TestSession_SplitRejectionLeavesStateUnchanged(t *testing.T) {
	s := newTestSession(t)
	items := mergedLineage(t, s)
	before := s.Snapshot()

	_, err := s.Split(items[0].GroupID, []string{"11", "12"}, nil)
	require.ErrorIs(t, err, domain.ErrWouldEmptyLineage)
	assert.Equal(t, before, s.Snapshot())
}

func TestSession_BranchRecordsSelection(t *testing.T) {
	s := newTestSession(t)
	items := mergedLineage(t, s)
	_, err := s.AutoSchedule(context.Background(), testRules())
	require.NoError(t, err)

	added, err := s.Branch(items[0].ID, 1)
	require.NoError(t, err)
	require.Len(t, added, 4)
	assert.Equal(t, 1, added[0].Branch.BranchedFromStep)

	key := domain.NewSelectionKey("A", []string{"11", "12"})
	assert.Equal(t, 1, s.Selections()[key])

	// A regeneration follows the branched option and keeps step 1's day.
	res, err := s.Generate(domain.GroupMerged)
	require.NoError(t, err)
	require.Len(t, res.Items, 5)
	for _, w := range res.Items {
		assert.Equal(t, "A-opt1", w.Option)
	}
	assert.Equal(t, 0, dayIndexOf(s, res.Items[0].ID))
}

func TestSession_ExclusivityConflict(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.Assign("11", "C1", false))

	err := s.Assign("11", "C2", false)
	require.ErrorIs(t, err, domain.ErrExclusivityConflict)
	var conflict *domain.ExclusivityConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, []string{"C1"}, conflict.Conflicts)
	assert.Equal(t, map[string][]string{"11": {"C1"}}, s.Assignments())

	require.NoError(t, s.Assign("11", "C2", true))
	assert.Equal(t, map[string][]string{"11": {"C2"}}, s.Assignments())
	for _, w := range s.Items() {
		assert.Equal(t, "C2", w.Condition)
	}
}

func TestSession_RegenerationKeepsPlacement(t *testing.T) {
	s := newTestSession(t)
	mergedLineage(t, s)
	_, err := s.AutoSchedule(context.Background(), testRules())
	require.NoError(t, err)
	before := placementByLineage(s)

	require.NoError(t, s.Assign("21", "C1", false))
	after := placementByLineage(s)

	for k, date := range before {
		assert.Equal(t, date, after[k], k)
	}
	assert.Len(t, after, len(before)+1)

	_, err = s.Generate(domain.GroupMerged)
	require.NoError(t, err)
	assert.Equal(t, after, placementByLineage(s), "regeneration is idempotent")
}

func TestSession_ToggleAndClear(t *testing.T) {
	s := newTestSession(t)

	added, err := s.Toggle("11", "C1", false)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Len(t, s.Items(), 1)

	added, err = s.Toggle("11", "C1", false)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Empty(t, s.Items())
	assert.Empty(t, s.Assignments())

	mergedLineage(t, s)
	require.NoError(t, s.ClearAll())
	assert.Empty(t, s.Items())
	assert.Empty(t, s.Calendar())
	assert.Equal(t, Summary{}, s.Summary())
}

func TestSession_SelectOption(t *testing.T) {
	s := newTestSession(t)
	mergedLineage(t, s)
	key := domain.NewSelectionKey("A", []string{"11", "12"})

	require.NoError(t, s.SelectOption(key, 2))
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "A-opt2", items[0].Option)

	opts, current, err := s.Alternatives(items[0].ID)
	require.NoError(t, err)
	assert.Len(t, opts, 3)
	assert.Equal(t, 2, current)

	assert.ErrorIs(t, s.SelectOption(key, 9), domain.ErrUnknownReference)
	assert.Len(t, s.Items(), 1)
}

func TestSession_CompletionAndClearSchedule(t *testing.T) {
	s := newTestSession(t)
	items := mergedLineage(t, s)
	_, err := s.AutoSchedule(context.Background(), testRules())
	require.NoError(t, err)

	done, err := s.ToggleCompletion(items[0].ID)
	require.NoError(t, err)
	assert.True(t, done)

	require.NoError(t, s.ClearSchedule())
	assert.Equal(t, 0, dayIndexOf(s, items[0].ID))
	assert.Len(t, s.Backlog(), 2)

	res, err := s.AutoSchedule(context.Background(), testRules())
	require.NoError(t, err)
	assert.Equal(t, 2, res.PlacedCount)
	assert.Equal(t, 1, dayIndexOf(s, items[1].ID))

	sum := s.Summary()
	assert.Equal(t, Summary{Total: 3, Placed: 3, Completed: 1, Days: 8, Lineages: 1, Units: 2}, sum)
}

func TestSession_DayOperations(t *testing.T) {
	s := newTestSession(t)
	items := mergedLineage(t, s)
	_, err := s.AutoSchedule(context.Background(), testRules())
	require.NoError(t, err)

	date, err := s.AppendDay()
	require.NoError(t, err)
	assert.True(t, date.Equal(testutil.Day(8)))

	require.NoError(t, s.RemoveDay(date))
	assert.ErrorIs(t, s.RemoveDay(testutil.Day(0)), domain.ErrInvalidInput)

	before := s.Snapshot()
	err = s.MoveDay(testutil.Day(1), testutil.Day(-1))
	require.ErrorIs(t, err, domain.ErrPrecedenceUnmet)
	assert.Equal(t, before, s.Snapshot())

	require.NoError(t, s.MoveDay(testutil.Day(2), testutil.Day(12)))
	assert.Equal(t, 7, dayIndexOf(s, items[2].ID))

	require.NoError(t, s.AddDay(testutil.Day(20)))
	assert.Len(t, s.Calendar(), 9)
}

func TestSession_TryAutoScheduleBusy(t *testing.T) {
	s := newTestSession(t)
	mergedLineage(t, s)

	s.mu.Lock()
	_, err := s.TryAutoSchedule(context.Background(), testRules())
	s.mu.Unlock()
	require.ErrorIs(t, err, domain.ErrSessionBusy)

	res, err := s.TryAutoSchedule(context.Background(), testRules())
	require.NoError(t, err)
	assert.Equal(t, 3, res.PlacedCount)
}

func TestSession_ObserverLogsOperations(t *testing.T) {
	var buf bytes.Buffer
	s := newTestSession(t, NewLogUseCaseObserver(&buf))
	items := mergedLineage(t, s)

	_ = s.ManualPlace(items[1].ID, testutil.Day(0))

	out := buf.String()
	assert.Contains(t, out, "use_case=generate")
	assert.Contains(t, out, "use_case=manual-place")
	assert.Contains(t, out, "level=WARN")
}

func TestSession_ResolveItemBySeq(t *testing.T) {
	s := newTestSession(t)
	items := mergedLineage(t, s)

	id, err := s.ResolveItem("2")
	require.NoError(t, err)
	assert.Equal(t, items[1].ID, id)

	g, err := s.ResolveGroup("3")
	require.NoError(t, err)
	assert.Equal(t, items[0].GroupID, g)

	_, err = s.ResolveItem("99")
	assert.ErrorIs(t, err, domain.ErrUnknownReference)
}

type failingStrategy struct{}

func (failingStrategy) Name() string { return "remote" }

func (failingStrategy) Propose(context.Context, scheduler.Request) (*scheduler.Proposal, error) {
	return nil, errors.New("planner unavailable")
}

func TestSession_AutoScheduleFallsBack(t *testing.T) {
	var logs bytes.Buffer
	cfg := testCatalogConfig(t)
	cfg.Strategy = scheduler.WithFallback(failingStrategy{}, slog.New(slog.NewTextHandler(&logs, nil)))
	s := NewSession(cfg)
	items := mergedLineage(t, s)

	res, err := s.AutoSchedule(context.Background(), testRules())
	require.NoError(t, err)

	assert.Equal(t, scheduler.StrategyDeterministic, res.Strategy)
	assert.Equal(t, 3, res.PlacedCount)
	assert.Equal(t, 2, dayIndexOf(s, items[2].ID))
	assert.Contains(t, logs.String(), "strategy_fallback")
	assert.Contains(t, logs.String(), "planner unavailable")
}

func itemsWithCondition(s *Session, code string) []domain.WorkItem {
	var out []domain.WorkItem
	for _, w := range s.Items() {
		if w.Condition == code {
			out = append(out, w)
		}
	}
	return out
}

func TestSession_AutoScheduleKeepsHandFilledCompletedDay(t *testing.T) {
	s := newTestSession(t)
	for _, unit := range []string{"11", "21", "31"} {
		require.NoError(t, s.Assign(unit, "X", false))
	}
	_, err := s.Generate(domain.GroupPerUnit)
	require.NoError(t, err)
	acute := itemsWithCondition(s, "X")
	require.Len(t, acute, 3)
	for _, w := range acute[:2] {
		require.NoError(t, s.ManualPlace(w.ID, testutil.Day(0)))
		_, err := s.ToggleCompletion(w.ID)
		require.NoError(t, err)
	}

	res, err := s.AutoSchedule(context.Background(), testRules())
	require.NoError(t, err)

	assert.Empty(t, s.Backlog())
	assert.Equal(t, 1, res.PlacedCount)
	assert.Zero(t, res.Unpinned)
	assert.Equal(t, 0, dayIndexOf(s, acute[0].ID))
	assert.Equal(t, 0, dayIndexOf(s, acute[1].ID))
	assert.Equal(t, 1, dayIndexOf(s, acute[2].ID))
}

func TestSession_AutoScheduleMovesCompletedStepAfterItsPredecessor(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.Assign("11", "C2", false))
	_, err := s.Generate(domain.GroupPerUnit)
	require.NoError(t, err)
	caries := itemsWithCondition(s, "C2")
	require.Len(t, caries, 2)
	require.NoError(t, s.ManualPlace(caries[0].ID, testutil.Day(0)))
	require.NoError(t, s.ManualPlace(caries[1].ID, testutil.Day(1)))
	_, err = s.ToggleCompletion(caries[1].ID)
	require.NoError(t, err)

	for _, unit := range []string{"11", "12", "13"} {
		require.NoError(t, s.Assign(unit, "A", false))
	}

	caries = itemsWithCondition(s, "C2")
	require.True(t, caries[1].Completed)
	require.Equal(t, 1, dayIndexOf(s, caries[1].ID))

	res, err := s.AutoSchedule(context.Background(), testRules())
	require.NoError(t, err)

	assert.Empty(t, s.Backlog())
	assert.Equal(t, 1, res.Unpinned)
	step1, step2 := dayIndexOf(s, caries[0].ID), dayIndexOf(s, caries[1].ID)
	assert.Less(t, step1, step2)
	w, err := s.Item(caries[1].ID)
	require.NoError(t, err)
	assert.True(t, w.Completed)
}
