package domain

// Condition is an immutable catalog entry describing a diagnosis that can
// affect a unit. Only Code is load-bearing; the rest is display metadata.
type Condition struct {
	Code        string
	Name        string
	Symbol      string
	DiseaseCode string
	Acute       bool
}

// StepDescriptor is one step of a treatment option.
type StepDescriptor struct {
	ID            string
	Name          string
	ProcedureCode string
	Points        int
}

// TreatmentOption is one way of treating a condition: a fixed ordered
// list of steps.
type TreatmentOption struct {
	ConditionCode string
	Name          string
	Steps         []StepDescriptor
}

func (o TreatmentOption) StepCount() int {
	return len(o.Steps)
}

// Step returns the descriptor of the 1-based step index, or a synthetic
// descriptor named after the option when the index is out of range.
func (o TreatmentOption) Step(index int) StepDescriptor {
	if index >= 1 && index <= len(o.Steps) {
		return o.Steps[index-1]
	}
	return StepDescriptor{Name: o.Name}
}

// ExclusivityRule partitions condition codes into disjoint groups. Codes in
// different groups of the same rule may not coexist on one unit.
type ExclusivityRule struct {
	Name   string
	Groups [][]string
}

// GroupOf returns the index of the group containing code, or -1.
func (r ExclusivityRule) GroupOf(code string) int {
	for i, g := range r.Groups {
		for _, c := range g {
			if c == code {
				return i
			}
		}
	}
	return -1
}
