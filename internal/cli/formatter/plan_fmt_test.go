package formatter

import (
	"testing"
	"time"

	"github.com/alexanderramin/odontos/internal/catalog"
	"github.com/alexanderramin/odontos/internal/domain"
	"github.com/alexanderramin/odontos/internal/service"
	"github.com/stretchr/testify/assert"
)

var today = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func sampleItem(seq, step, total int) domain.WorkItem {
	w := domain.WorkItem{
		ID:            "item-1234567890",
		Seq:           seq,
		GroupID:       "group-abcdefgh",
		Condition:     "C3",
		Option:        "endo",
		StepIndex:     step,
		TotalSteps:    total,
		StepName:      "Trepanation",
		ProcedureCode: "D3310",
	}
	w.SetUnits([]string{"16", "15"})
	return w
}

func TestRenderTable_AlignsStyledCells(t *testing.T) {
	out := RenderTable([]string{"A", "B"}, [][]string{
		{StyleRed.Render("x"), "1"},
		{"longer", "2"},
		{"short"},
	})
	lines := splitLines(out)
	assert.Len(t, lines, 5)
	assert.Contains(t, out, "longer  2")
}

func TestRenderTable_NoHeaders(t *testing.T) {
	assert.Empty(t, RenderTable(nil, [][]string{{"a"}}))
}

func TestFormatBacklog(t *testing.T) {
	out := FormatBacklog([]domain.WorkItem{sampleItem(4, 2, 3)}, func(string) bool { return false })

	assert.Contains(t, out, "BACKLOG (1)")
	assert.Contains(t, out, "#4")
	assert.Contains(t, out, "15,16")
	assert.Contains(t, out, "2/3")
	assert.Contains(t, out, "D3310")

	assert.Contains(t, FormatBacklog(nil, nil), "Nothing left to schedule.")
}

func TestFormatCalendar(t *testing.T) {
	branched := sampleItem(7, 3, 3)
	branched.Branch = &domain.BranchInfo{BranchedFromStep: 1}
	branched.Completed = true
	days := []service.DayView{
		{Date: today, Items: []domain.WorkItem{sampleItem(1, 1, 3)}},
		{Date: today.AddDate(0, 0, 7)},
		{Date: today.AddDate(0, 0, 14), Items: []domain.WorkItem{branched}},
	}

	out := FormatCalendar(days, today, func(code string) bool { return code == "C3" })

	assert.Contains(t, out, "2025-06-02")
	assert.Contains(t, out, "(today)")
	assert.Contains(t, out, "(in 7d)")
	assert.Contains(t, out, "(in 2w)")
	assert.Contains(t, out, "empty")
	assert.Contains(t, out, "C3!")
	assert.Contains(t, out, "⑂1")
	assert.Contains(t, out, "✔")

	assert.Contains(t, FormatCalendar(nil, today, nil), "No days yet.")
}

func TestRelativeDay(t *testing.T) {
	tests := []struct {
		offset int
		want   string
	}{
		{0, "today"},
		{1, "tomorrow"},
		{-1, "yesterday"},
		{5, "in 5d"},
		{21, "in 3w"},
		{-3, "3d ago"},
		{-28, "4w ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RelativeDay(today.AddDate(0, 0, tt.offset), today), "offset %d", tt.offset)
	}
}

func TestFormatSummaryAndAutoSchedule(t *testing.T) {
	sum := FormatSummary(service.Summary{Total: 5, Placed: 3, Backlog: 2, Days: 8, Lineages: 2, Units: 2})
	assert.Contains(t, sum, "3 placed")
	assert.Contains(t, sum, "2 backlog")
	assert.Contains(t, sum, "8 days")

	out := FormatAutoSchedule(&service.AutoScheduleResult{PlacedCount: 4, TotalCount: 5, AppendedDays: 2, Strategy: "deterministic"})
	assert.Contains(t, out, "Scheduled 4 of 5 items")
	assert.Contains(t, out, "Appended 2 day(s).")
	assert.NotContains(t, out, "completed item")

	out = FormatAutoSchedule(&service.AutoScheduleResult{PlacedCount: 3, TotalCount: 3, Unpinned: 1, Strategy: "deterministic"})
	assert.Contains(t, out, "Moved 1 completed item(s)")
}

func TestFormatAssignments(t *testing.T) {
	out := FormatAssignments(map[string][]string{"21": {"C1"}, "11": {"per", "C2"}}, func(code string) bool { return code == "per" })
	assert.Contains(t, out, "per!")
	assert.Less(t, indexOf(out, "11"), indexOf(out, "21"))

	assert.Equal(t, Dim("No conditions assigned."), FormatAssignments(nil, nil))
}

func TestFormatAlternatives(t *testing.T) {
	opts := []domain.TreatmentOption{
		{Name: "filling", Steps: []domain.StepDescriptor{{Name: "Fill"}}},
		{Name: "crown", Steps: []domain.StepDescriptor{{Name: "Prep"}, {Name: "Seat"}}},
	}
	out := FormatAlternatives(opts, 1)
	assert.Contains(t, out, "crown")
	assert.Contains(t, out, "Prep → Seat")
	assert.Contains(t, out, "●")

	assert.Equal(t, "filling (1 step)", OptionLabel(opts[0]))
	assert.Equal(t, "crown (2 steps)", OptionLabel(opts[1]))
}

func TestFormatCatalog(t *testing.T) {
	out := FormatCatalog(catalog.Default())
	assert.Contains(t, out, "CATALOG")
	assert.Contains(t, out, "EXCLUSIVITY")
}

func TestFormatPatients(t *testing.T) {
	out := FormatPatients([]*domain.Patient{{Name: "ada", Grouping: domain.GroupMerged, UpdatedAt: today}})
	assert.Contains(t, out, "ada")
	assert.Contains(t, out, "merged")
	assert.Equal(t, Dim("No patients yet."), FormatPatients(nil))
}
