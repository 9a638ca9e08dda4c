package formatter

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/alexanderramin/odontos/internal/domain"
	"github.com/alexanderramin/odontos/internal/service"
)

// AcuteFunc reports whether a condition code is acute.
type AcuteFunc func(code string) bool

func itemRow(w domain.WorkItem, isAcute AcuteFunc) []string {
	step := w.StepName
	if w.ProcedureCode != "" {
		step += " " + Dim("["+w.ProcedureCode+"]")
	}
	cond := ConditionBadge(w.Condition, isAcute != nil && isAcute(w.Condition))
	if w.Branch != nil {
		cond += " " + StyleYellow.Render(fmt.Sprintf("⑂%d", w.Branch.BranchedFromStep))
	}
	return []string{
		fmt.Sprintf("#%d", w.Seq),
		CompletionMark(w.Completed),
		cond,
		Units(w.Units),
		StepBadge(w.StepIndex, w.TotalSteps),
		step,
		Dim(w.Option),
		TruncID(w.GroupID),
	}
}

var itemHeaders = []string{"#", "", "COND", "UNITS", "STEP", "PROCEDURE", "OPTION", "GROUP"}

// FormatBacklog renders unplaced items as a table.
func FormatBacklog(items []domain.WorkItem, isAcute AcuteFunc) string {
	if len(items) == 0 {
		return RenderBox("Backlog", Dim("Nothing left to schedule."))
	}
	rows := make([][]string, 0, len(items))
	for _, w := range items {
		rows = append(rows, itemRow(w, isAcute))
	}
	return RenderBox(fmt.Sprintf("Backlog (%d)", len(items)), strings.TrimRight(RenderTable(itemHeaders, rows), "\n"))
}

// FormatCalendar renders each day followed by its items. Empty days show a
// placeholder line.
func FormatCalendar(days []service.DayView, today time.Time, isAcute AcuteFunc) string {
	if len(days) == 0 {
		return RenderBox("Calendar", Dim("No days yet. Run 'generate' or 'day append'."))
	}
	var b strings.Builder
	for i, d := range days {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(DayLabel(d.Date, today))
		b.WriteString(Dim(fmt.Sprintf("  %d item(s)", len(d.Items))))
		b.WriteString("\n")
		if len(d.Items) == 0 {
			b.WriteString("  " + Dim("empty") + "\n")
			continue
		}
		rows := make([][]string, 0, len(d.Items))
		for _, w := range d.Items {
			rows = append(rows, itemRow(w, isAcute))
		}
		for _, line := range strings.Split(strings.TrimRight(RenderTable(itemHeaders, rows), "\n"), "\n") {
			b.WriteString("  " + line + "\n")
		}
	}
	return RenderBox("Calendar", strings.TrimRight(b.String(), "\n"))
}

// FormatSummary renders plan counters on one line.
func FormatSummary(sum service.Summary) string {
	parts := []string{
		Bold(fmt.Sprintf("%d items", sum.Total)),
		StyleGreen.Render(fmt.Sprintf("%d placed", sum.Placed)),
		StyleYellow.Render(fmt.Sprintf("%d backlog", sum.Backlog)),
		fmt.Sprintf("%d completed", sum.Completed),
		fmt.Sprintf("%d days", sum.Days),
		fmt.Sprintf("%d lineages", sum.Lineages),
		fmt.Sprintf("%d units", sum.Units),
	}
	return strings.Join(parts, Dim(" · "))
}

// FormatAutoSchedule reports an automatic placement run.
func FormatAutoSchedule(res *service.AutoScheduleResult) string {
	msg := fmt.Sprintf("Scheduled %d of %d items with the %s strategy.",
		res.PlacedCount, res.TotalCount, Bold(res.Strategy))
	if res.AppendedDays > 0 {
		msg += Dim(fmt.Sprintf(" Appended %d day(s).", res.AppendedDays))
	}
	if res.Unpinned > 0 {
		msg += StyleYellow.Render(fmt.Sprintf(" Moved %d completed item(s) after their earlier steps.", res.Unpinned))
	}
	return msg
}

// FormatAssignments renders the unit to condition mapping sorted by unit.
func FormatAssignments(assignments map[string][]string, isAcute AcuteFunc) string {
	if len(assignments) == 0 {
		return Dim("No conditions assigned.")
	}
	units := make([]string, 0, len(assignments))
	for u := range assignments {
		units = append(units, u)
	}
	slices.Sort(units)

	rows := make([][]string, 0, len(units))
	for _, u := range units {
		badges := make([]string, 0, len(assignments[u]))
		for _, code := range assignments[u] {
			badges = append(badges, ConditionBadge(code, isAcute != nil && isAcute(code)))
		}
		rows = append(rows, []string{Bold(u), strings.Join(badges, " ")})
	}
	return RenderBox("Assignments", strings.TrimRight(RenderTable([]string{"UNIT", "CONDITIONS"}, rows), "\n"))
}

// FormatAlternatives lists treatment options, marking the current one.
func FormatAlternatives(options []domain.TreatmentOption, current int) string {
	rows := make([][]string, 0, len(options))
	for i, o := range options {
		mark := " "
		if i == current {
			mark = StyleGreen.Render("●")
		}
		steps := make([]string, 0, len(o.Steps))
		for _, s := range o.Steps {
			steps = append(steps, s.Name)
		}
		rows = append(rows, []string{mark, fmt.Sprint(i), Bold(o.Name), fmt.Sprint(o.StepCount()), Dim(strings.Join(steps, " → "))})
	}
	return strings.TrimRight(RenderTable([]string{"", "IDX", "OPTION", "STEPS", "SEQUENCE"}, rows), "\n")
}

// OptionLabel is a one-line description of a treatment option for pickers.
func OptionLabel(o domain.TreatmentOption) string {
	return fmt.Sprintf("%s (%s)", o.Name, pluralSteps(o.StepCount()))
}

func pluralSteps(n int) string {
	if n == 1 {
		return "1 step"
	}
	return fmt.Sprintf("%d steps", n)
}

// FormatPatients lists stored patients.
func FormatPatients(patients []*domain.Patient) string {
	if len(patients) == 0 {
		return Dim("No patients yet.")
	}
	rows := make([][]string, 0, len(patients))
	for _, p := range patients {
		rows = append(rows, []string{Bold(p.Name), string(p.Grouping), Dim(p.UpdatedAt.Format("2006-01-02 15:04"))})
	}
	return RenderBox("Patients", strings.TrimRight(RenderTable([]string{"NAME", "GROUPING", "UPDATED"}, rows), "\n"))
}

// FormatItemLine renders one item compactly, e.g. for confirmations.
func FormatItemLine(w domain.WorkItem) string {
	return fmt.Sprintf("#%d %s %s %s %s", w.Seq, w.Condition, Units(w.Units), StepBadge(w.StepIndex, w.TotalSteps), w.StepName)
}
