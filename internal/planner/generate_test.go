package planner

import (
	"testing"

	"github.com/alexanderramin/odontos/internal/assignment"
	"github.com/alexanderramin/odontos/internal/catalog"
	"github.com/alexanderramin/odontos/internal/domain"
	"github.com/alexanderramin/odontos/internal/plan"
	"github.com/alexanderramin/odontos/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, opts ...testutil.CatalogOption) (*catalog.Catalog, *assignment.Store) {
	t.Helper()
	cat := testutil.NewTestCatalog(t, opts...)
	return cat, assignment.NewStore(cat)
}

func input(cat *catalog.Catalog, store *assignment.Store, grouping domain.GroupingMode, prev *plan.State) Input {
	return Input{
		Assignments:  store,
		Catalog:      cat,
		Selections:   map[domain.SelectionKey]int{},
		Grouping:     grouping,
		Previous:     prev,
		Today:        testutil.Today,
		IntervalDays: 7,
	}
}

func TestGenerate_MergedLineage(t *testing.T) {
	cat, store := setup(t, testutil.WithCondition("A", false, 3))
	require.NoError(t, store.Assign("11", "A", false))
	require.NoError(t, store.Assign("12", "A", false))

	state, err := Generate(input(cat, store, domain.GroupMerged, nil))
	require.NoError(t, err)

	items := state.Items()
	require.Len(t, items, 3)
	for i, w := range items {
		assert.Equal(t, items[0].GroupID, w.GroupID, "one lineage")
		assert.Equal(t, i+1, w.StepIndex)
		assert.Equal(t, 3, w.TotalSteps)
		assert.Equal(t, []string{"11", "12"}, w.Units)
		assert.True(t, w.Sequential())
		assert.Equal(t, "A-o0-s"+string(rune('0'+i+1)), w.StepName)
	}
	assert.Len(t, state.Backlog(), 3)
	assert.Equal(t, MinInitialDays, state.DayCount())
	assert.Equal(t, testutil.Today, state.Day(0).Date)
	assert.Equal(t, testutil.Day(1), state.Day(1).Date, "days spaced by the interval")
}

func TestGenerate_PerUnitLineages(t *testing.T) {
	cat, store := setup(t, testutil.WithCondition("A", false, 2))
	require.NoError(t, store.Assign("11", "A", false))
	require.NoError(t, store.Assign("12", "A", false))

	state, err := Generate(input(cat, store, domain.GroupPerUnit, nil))
	require.NoError(t, err)

	require.Len(t, state.Items(), 4)
	groups := state.GroupIDs()
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"11"}, state.Group(groups[0])[0].Units)
	assert.Equal(t, []string{"12"}, state.Group(groups[1])[0].Units)
}

func TestGenerate_FollowsGenerationOrder(t *testing.T) {
	cat, store := setup(t,
		testutil.WithCondition("routine", false, 1),
		testutil.WithCondition("urgent", true, 1),
		testutil.WithGenerationOrder("urgent", "routine"),
	)
	require.NoError(t, store.Assign("11", "routine", false))
	require.NoError(t, store.Assign("12", "urgent", false))

	state, err := Generate(input(cat, store, domain.GroupPerUnit, nil))
	require.NoError(t, err)

	items := state.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "urgent", items[0].Condition)
	assert.Equal(t, "routine", items[1].Condition)
}

func TestGenerate_SelectionPicksOption(t *testing.T) {
	cat, store := setup(t, testutil.WithCondition("A", false, 3, 1))
	require.NoError(t, store.Assign("11", "A", false))

	in := input(cat, store, domain.GroupPerUnit, nil)
	in.Selections[domain.NewSelectionKey("A", []string{"11"})] = 1
	state, err := Generate(in)
	require.NoError(t, err)

	items := state.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "A-opt1", items[0].Option)
	assert.False(t, items[0].Sequential())
}

func TestGenerate_OutOfRangeSelectionFallsBackToDefault(t *testing.T) {
	cat, store := setup(t, testutil.WithCondition("A", false, 2))
	require.NoError(t, store.Assign("11", "A", false))

	in := input(cat, store, domain.GroupPerUnit, nil)
	in.Selections[domain.NewSelectionKey("A", []string{"11"})] = 9
	state, err := Generate(in)
	require.NoError(t, err)
	assert.Equal(t, "A-opt0", state.Items()[0].Option)
}

func TestGenerate_ConditionWithoutOptionsContributesNothing(t *testing.T) {
	cat, store := setup(t, testutil.WithCondition("A", false), testutil.WithCondition("B", false, 1))
	require.NoError(t, store.Assign("11", "A", false))

	state, err := Generate(input(cat, store, domain.GroupPerUnit, nil))
	require.NoError(t, err)
	assert.Equal(t, 0, state.Len())
	assert.Equal(t, MinInitialDays, state.DayCount())
}

func TestGenerate_LargePlanGrowsInitialCalendar(t *testing.T) {
	cat, store := setup(t, testutil.WithCondition("A", false, 3))
	for _, u := range []string{"11", "12", "13", "14", "15", "16"} {
		require.NoError(t, store.Assign(u, "A", false))
	}
	state, err := Generate(input(cat, store, domain.GroupPerUnit, nil))
	require.NoError(t, err)
	assert.Equal(t, 18, state.Len())
	assert.Equal(t, 9, state.DayCount(), "ceil(18/2) days")
}

func TestGenerate_PreservesPriorPlacement(t *testing.T) {
	cat, store := setup(t, testutil.WithCondition("A", false, 3), testutil.WithCondition("B", false, 1))
	require.NoError(t, store.Assign("11", "A", false))
	require.NoError(t, store.Assign("12", "B", false))

	first, err := Generate(input(cat, store, domain.GroupPerUnit, nil))
	require.NoError(t, err)
	a := first.Items()[0]
	b := first.Items()[3]
	first.PlaceAt(a.ID, 1)
	first.PlaceAt(b.ID, 1)
	a.Completed = true
	first.AddDay(testutil.Day(20))

	second, err := Generate(input(cat, store, domain.GroupPerUnit, first))
	require.NoError(t, err)

	assert.Equal(t, first.DayCount(), second.DayCount(), "calendar days are kept")
	day := second.DayItems(1)
	require.Len(t, day, 2)
	assert.Equal(t, a.Lineage, day[0].Lineage)
	assert.Equal(t, 1, day[0].StepIndex)
	assert.True(t, day[0].Completed, "completion carries over")
	assert.Equal(t, b.Lineage, day[1].Lineage)
	assert.NotEqual(t, a.ID, day[0].ID, "regeneration issues fresh ids")
	assert.Len(t, second.Backlog(), 2)
}

func TestGenerate_CompletionCarriesOverForBacklogItems(t *testing.T) {
	cat, store := setup(t, testutil.WithCondition("A", false, 3))
	require.NoError(t, store.Assign("11", "A", false))

	first, err := Generate(input(cat, store, domain.GroupPerUnit, nil))
	require.NoError(t, err)
	done := first.Items()[1]
	done.Completed = true

	second, err := Generate(input(cat, store, domain.GroupPerUnit, first))
	require.NoError(t, err)

	require.Len(t, second.Backlog(), 3)
	for _, w := range second.Items() {
		assert.Equal(t, w.StepIndex == 2, w.Completed, "step %d", w.StepIndex)
	}

	empty := plan.New()
	for _, w := range first.Items() {
		empty.Add(w.Clone())
	}
	third, err := Generate(input(cat, store, domain.GroupPerUnit, empty))
	require.NoError(t, err)
	assert.True(t, third.Items()[1].Completed, "carries over without a calendar")
}

func TestGenerate_Idempotent(t *testing.T) {
	cat, store := setup(t, testutil.WithCondition("A", false, 3), testutil.WithCondition("B", false, 2))
	require.NoError(t, store.Assign("11", "A", false))
	require.NoError(t, store.Assign("12", "A", false))
	require.NoError(t, store.Assign("12", "B", false))

	first, err := Generate(input(cat, store, domain.GroupMerged, nil))
	require.NoError(t, err)
	items := first.Items()
	first.PlaceAt(items[0].ID, 0)
	first.PlaceAt(items[3].ID, 2)

	second, err := Generate(input(cat, store, domain.GroupMerged, first))
	require.NoError(t, err)
	third, err := Generate(input(cat, store, domain.GroupMerged, second))
	require.NoError(t, err)

	assert.Equal(t, partition(second), partition(third))
	assert.Equal(t, partition(first), partition(second))
}

func TestGenerate_RejectsBadInput(t *testing.T) {
	cat, store := setup(t, testutil.WithCondition("A", false, 1))

	_, err := Generate(input(cat, store, "diagonal", nil))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in := input(cat, store, domain.GroupMerged, nil)
	in.IntervalDays = 0
	_, err = Generate(in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGenerate_CustomIDs(t *testing.T) {
	cat, store := setup(t, testutil.WithCondition("A", false, 2))
	require.NoError(t, store.Assign("11", "A", false))

	in := input(cat, store, domain.GroupMerged, nil)
	in.NewID = testutil.SequentialIDs("x")
	state, err := Generate(in)
	require.NoError(t, err)

	items := state.Items()
	assert.Equal(t, "x-1", items[0].GroupID)
	assert.Equal(t, "x-2", items[0].ID)
	assert.Equal(t, "x-3", items[1].ID)
	assert.Equal(t, 1, items[0].Seq)
	assert.Equal(t, 2, items[1].Seq)
}

// partition maps each (lineage, step) to its placed date, or "" for backlog.
func partition(s *plan.State) map[string]string {
	out := map[string]string{}
	for _, w := range s.Items() {
		key := w.Lineage.String() + "#" + string(rune('0'+w.StepIndex))
		date := ""
		if d, ok := s.PlacedDate(w.ID); ok {
			date = domain.FormatDate(d)
		}
		out[key] = date
	}
	return out
}
