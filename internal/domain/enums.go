package domain

// GroupingMode controls how affected units are grouped into lineages when
// a plan is generated.
type GroupingMode string

const (
	GroupPerUnit GroupingMode = "per-unit"
	GroupMerged  GroupingMode = "merged"
)

// OrDefault returns m, or per-unit when m is unset.
func (m GroupingMode) OrDefault() GroupingMode {
	if m == "" {
		return GroupPerUnit
	}
	return m
}

// ValidGroupingModes is the canonical set of accepted grouping mode strings.
var ValidGroupingModes = map[string]bool{
	string(GroupPerUnit): true,
	string(GroupMerged):  true,
}

// ParseGroupingMode maps a user supplied string to a GroupingMode.
// "individual" is accepted as an alias of per-unit.
func ParseGroupingMode(s string) (GroupingMode, error) {
	switch s {
	case "", string(GroupPerUnit), "individual":
		return GroupPerUnit, nil
	case string(GroupMerged), "grouped":
		return GroupMerged, nil
	default:
		return "", InvalidInputf("unknown grouping mode %q", s)
	}
}
