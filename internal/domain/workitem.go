package domain

import "slices"

// BranchInfo marks items whose lineage diverged to another treatment option.
type BranchInfo struct {
	BranchedFromStep int
}

// WorkItem is one step of one lineage, the atomic schedulable unit.
type WorkItem struct {
	ID        string
	Seq       int // session-scoped sequential ID
	GroupID   string
	Lineage   LineageKey
	Condition string

	// ActualCondition records the diagnosis the lineage was created for.
	ActualCondition string
	Option          string
	StepIndex       int
	TotalSteps      int
	Units           []string
	Completed       bool
	Branch          *BranchInfo

	// Step detail
	StepName      string
	ProcedureCode string
	Points        int
}

// Sequential reports whether the item belongs to a multi-step lineage.
func (w *WorkItem) Sequential() bool {
	return w.TotalSteps > 1
}

// Clone returns a deep copy of the work item.
func (w *WorkItem) Clone() *WorkItem {
	c := *w
	c.Units = slices.Clone(w.Units)
	if w.Branch != nil {
		b := *w.Branch
		c.Branch = &b
	}
	return &c
}

// SetUnits replaces the unit set and re-derives the lineage key.
func (w *WorkItem) SetUnits(units []string) {
	w.Units = NormalizeUnits(units)
	w.Lineage = NewLineageKey(w.Condition, w.Option, w.Units)
}
