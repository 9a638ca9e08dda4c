package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPrecedenceUnmet is returned when a step is placed before its
	// previous step has been placed on a strictly earlier day.
	ErrPrecedenceUnmet = errors.New("previous step is not placed on an earlier day")

	// ErrWouldViolateSuccessor is returned when a move would put a step on or
	// after the day of a later step of the same lineage.
	ErrWouldViolateSuccessor = errors.New("move would place step on or after a later step")

	// ErrWouldEmptyLineage is returned when a split would leave no units behind.
	ErrWouldEmptyLineage = errors.New("split would leave the lineage without units")

	// ErrIncompatibleLineages is returned when merging lineages that differ in
	// condition, treatment option or step count.
	ErrIncompatibleLineages = errors.New("lineages are not compatible")

	// ErrDuplicateUnit is returned when two unit sets that must be disjoint overlap.
	ErrDuplicateUnit = errors.New("unit already belongs to the lineage")

	// ErrExclusivityConflict is returned when an assignment violates an
	// exclusivity rule. Callers may retry with an explicit override.
	ErrExclusivityConflict = errors.New("condition conflicts with an exclusivity rule")

	// ErrUnknownReference is returned when an operation names a missing item,
	// day, lineage, condition or treatment option.
	ErrUnknownReference = errors.New("unknown reference")

	// ErrInvalidBranch is returned when the selected option has fewer steps
	// than the step being branched from.
	ErrInvalidBranch = errors.New("treatment option is shorter than the branching step")

	// ErrInvalidInput is returned for malformed arguments.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSessionBusy is returned when a session is already running an operation
	// and the caller asked not to wait.
	ErrSessionBusy = errors.New("session is busy")
)

// ExclusivityConflictError describes which existing codes block an assignment.
type ExclusivityConflictError struct {
	Unit      string
	Code      string
	Conflicts []string
}

func (e *ExclusivityConflictError) Error() string {
	return fmt.Sprintf("unit %s: %s conflicts with %s", e.Unit, e.Code, strings.Join(e.Conflicts, ", "))
}

func (e *ExclusivityConflictError) Is(target error) bool {
	return target == ErrExclusivityConflict
}

// InvalidInputf wraps ErrInvalidInput with a formatted message.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidInput)
}

// UnknownRef wraps ErrUnknownReference with the kind and id of the missing entity.
func UnknownRef(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrUnknownReference)
}
