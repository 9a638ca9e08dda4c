package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexanderramin/odontos/internal/catalog"
	"github.com/alexanderramin/odontos/internal/domain"
	"github.com/google/uuid"
)

// Today is the fixed reference date used across tests.
var Today = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

// Day returns Today plus n weeks.
func Day(n int) time.Time {
	return Today.AddDate(0, 0, 7*n)
}

var testSeqCounter atomic.Int64

// SequentialIDs returns an id generator producing "prefix-1", "prefix-2", ...
func SequentialIDs(prefix string) func() string {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("%s-%d", prefix, n.Add(1))
	}
}

// Catalog options
type CatalogOption func(*catalog.CatalogSchema)

// WithCondition adds a condition with one option per step count. Options
// are named "<code>-opt<i>" and steps "<code>-o<i>-s<k>".
func WithCondition(code string, acute bool, stepCounts ...int) CatalogOption {
	return func(s *catalog.CatalogSchema) {
		s.Conditions = append(s.Conditions, catalog.ConditionConfig{Code: code, Name: code, Acute: acute})
		for i, n := range stepCounts {
			opt := catalog.OptionConfig{Name: fmt.Sprintf("%s-opt%d", code, i)}
			for k := 1; k <= n; k++ {
				id := fmt.Sprintf("%s-o%d-s%d", code, i, k)
				s.Steps = append(s.Steps, catalog.StepConfig{ID: id, Name: id, Points: 10 * k})
				opt.StepIDs = append(opt.StepIDs, id)
			}
			if s.Treatments == nil {
				s.Treatments = map[string][]catalog.OptionConfig{}
			}
			s.Treatments[code] = append(s.Treatments[code], opt)
		}
	}
}

func WithExclusivity(name string, groups ...[]string) CatalogOption {
	return func(s *catalog.CatalogSchema) {
		s.Exclusivity = append(s.Exclusivity, catalog.ExclusivityConfig{Name: name, Groups: groups})
	}
}

func WithGenerationOrder(codes ...string) CatalogOption {
	return func(s *catalog.CatalogSchema) {
		s.GenerationOrder = codes
	}
}

// NewTestCatalog builds a validated catalog from options.
func NewTestCatalog(t *testing.T, opts ...CatalogOption) *catalog.Catalog {
	t.Helper()
	schema := &catalog.CatalogSchema{Version: 1}
	for _, opt := range opts {
		opt(schema)
	}
	c, err := catalog.FromSchema(schema)
	if err != nil {
		t.Fatalf("building test catalog: %v", err)
	}
	return c
}

// WorkItem options
type WorkItemOption func(*domain.WorkItem)

func WithItemUnits(units ...string) WorkItemOption {
	return func(w *domain.WorkItem) {
		w.SetUnits(units)
	}
}

func WithItemCondition(code string) WorkItemOption {
	return func(w *domain.WorkItem) {
		w.Condition = code
		w.ActualCondition = code
		w.SetUnits(w.Units)
	}
}

func WithItemID(id string) WorkItemOption {
	return func(w *domain.WorkItem) {
		w.ID = id
	}
}

func WithCompleted() WorkItemOption {
	return func(w *domain.WorkItem) {
		w.Completed = true
	}
}

// NewTestWorkItem creates step stepIndex of totalSteps for a lineage.
func NewTestWorkItem(groupID string, stepIndex, totalSteps int, opts ...WorkItemOption) *domain.WorkItem {
	w := &domain.WorkItem{
		ID:              uuid.New().String(),
		GroupID:         groupID,
		Condition:       "A",
		ActualCondition: "A",
		Option:          "A-opt0",
		StepIndex:       stepIndex,
		TotalSteps:      totalSteps,
		StepName:        fmt.Sprintf("step %d", stepIndex),
	}
	w.SetUnits([]string{fmt.Sprintf("%d", 10+testSeqCounter.Add(1)%40)})
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// NewTestLineage creates every step of a lineage.
func NewTestLineage(groupID string, totalSteps int, opts ...WorkItemOption) []*domain.WorkItem {
	units := []string{fmt.Sprintf("%d", 10+testSeqCounter.Add(1)%40)}
	out := make([]*domain.WorkItem, 0, totalSteps)
	for k := 1; k <= totalSteps; k++ {
		all := append([]WorkItemOption{WithItemUnits(units...)}, opts...)
		out = append(out, NewTestWorkItem(groupID, k, totalSteps, all...))
	}
	return out
}

// NewTestPatient creates a patient with per-unit grouping.
func NewTestPatient(name string) *domain.Patient {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.Patient{
		ID:        uuid.New().String(),
		Name:      name,
		Grouping:  domain.GroupPerUnit,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
