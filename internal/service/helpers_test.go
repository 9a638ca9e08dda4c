package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/alexanderramin/odontos/internal/domain"
	"github.com/alexanderramin/odontos/internal/scheduler"
	"github.com/alexanderramin/odontos/internal/testutil"
)

func testCatalogConfig(t *testing.T) SessionConfig {
	t.Helper()
	cat := testutil.NewTestCatalog(t,
		testutil.WithCondition("A", false, 3, 5, 1),
		testutil.WithCondition("X", true, 1),
		testutil.WithCondition("C1", false, 1),
		testutil.WithCondition("C2", false, 2),
		testutil.WithExclusivity("caries", []string{"C1"}, []string{"C2"}),
	)
	return SessionConfig{
		Catalog:  cat,
		Rules:    testRules(),
		Grouping: domain.GroupPerUnit,
		Clock:    func() time.Time { return testutil.Today },
		NewID:    testutil.SequentialIDs("id"),
	}
}

func testRules() scheduler.Rules {
	return scheduler.Rules{
		PriorityOrder:   []string{"X", "A", "C2", "C1"},
		MaxPerDay:       3,
		AcuteConditions: []string{"X"},
		AcuteMaxPerDay:  1,
		IntervalDays:    7,
	}
}

func newTestSession(t *testing.T, observers ...UseCaseObserver) *Session {
	t.Helper()
	return NewSession(testCatalogConfig(t), observers...)
}

// placementByLineage maps "lineage#step" to the placed date, or "" for the backlog.
func placementByLineage(s *Session) map[string]string {
	out := map[string]string{}
	for _, w := range s.Backlog() {
		out[lineageStep(w)] = ""
	}
	for _, d := range s.Calendar() {
		for _, w := range d.Items {
			out[lineageStep(w)] = domain.FormatDate(d.Date)
		}
	}
	return out
}

func lineageStep(w domain.WorkItem) string {
	return fmt.Sprintf("%s#%d", w.Lineage, w.StepIndex)
}

func dayIndexOf(s *Session, itemID string) int {
	for i, d := range s.Calendar() {
		for _, w := range d.Items {
			if w.ID == itemID {
				return i
			}
		}
	}
	return -1
}

func groupOf(s *Session, groupID string) []domain.WorkItem {
	var out []domain.WorkItem
	for _, w := range s.Items() {
		if w.GroupID == groupID {
			out = append(out, w)
		}
	}
	return out
}
