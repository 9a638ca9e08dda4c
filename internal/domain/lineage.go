package domain

import "fmt"

// SelectionKey identifies the lineage a treatment-option choice applies to.
// It deliberately omits the option so that the choice survives switching
// options.
type SelectionKey struct {
	Condition string
	Units     string
}

// LineageKey is the stable identity of a lineage across regenerations.
// Units holds the Go-quoted sorted unit list, so identifiers containing
// separators cannot collide.
type LineageKey struct {
	Condition string
	Option    string
	Units     string
}

// EncodeUnits renders a unit set into its canonical key form.
func EncodeUnits(units []string) string {
	return fmt.Sprintf("%q", NormalizeUnits(units))
}

func NewSelectionKey(condition string, units []string) SelectionKey {
	return SelectionKey{Condition: condition, Units: EncodeUnits(units)}
}

func NewLineageKey(condition, option string, units []string) LineageKey {
	return LineageKey{Condition: condition, Option: option, Units: EncodeUnits(units)}
}

// Selection drops the option component.
func (k LineageKey) Selection() SelectionKey {
	return SelectionKey{Condition: k.Condition, Units: k.Units}
}

func (k LineageKey) String() string {
	return k.Condition + "/" + k.Option + "/" + k.Units
}

func (k SelectionKey) String() string {
	return k.Condition + "/" + k.Units
}
