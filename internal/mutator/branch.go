package mutator

import (
	"fmt"

	"github.com/alexanderramin/odontos/internal/domain"
	"github.com/alexanderramin/odontos/internal/plan"
	"github.com/alexanderramin/odontos/internal/planner"
)

// OptionSource resolves treatment options by condition and index.
type OptionSource interface {
	Option(code string, index int) (domain.TreatmentOption, error)
}

// Branch switches a lineage to another treatment option from the given
// item onward. Later steps are deleted wherever they sit and replaced by
// the new option's remaining steps in the backlog. Steps up to and
// including the item keep their placement and step detail but take the new
// option's name and step count so the lineage stays uniform. It returns the
// new items.
func Branch(state *plan.State, options OptionSource, itemID string, optionIndex int, newID func() string) ([]*domain.WorkItem, error) {
	w, ok := state.Item(itemID)
	if !ok {
		return nil, domain.UnknownRef("work item", itemID)
	}
	opt, err := options.Option(w.Condition, optionIndex)
	if err != nil {
		return nil, err
	}
	if opt.StepCount() < w.StepIndex {
		return nil, fmt.Errorf("option %q has %d step(s), item is step %d: %w",
			opt.Name, opt.StepCount(), w.StepIndex, domain.ErrInvalidBranch)
	}

	for _, other := range state.Group(w.GroupID) {
		if other.StepIndex > w.StepIndex {
			state.Delete(other.ID)
			continue
		}
		other.Option = opt.Name
		other.TotalSteps = opt.StepCount()
		other.SetUnits(other.Units)
	}

	var added []*domain.WorkItem
	for _, n := range planner.ExpandOption(w.Condition, opt, w.Units, w.GroupID) {
		if n.StepIndex <= w.StepIndex {
			continue
		}
		n.ID = newID()
		n.ActualCondition = w.ActualCondition
		n.Branch = &domain.BranchInfo{BranchedFromStep: w.StepIndex}
		state.Add(n)
		added = append(added, n)
	}
	return added, nil
}
