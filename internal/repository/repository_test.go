package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/odontos/internal/domain"
	"github.com/alexanderramin/odontos/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createPatient(t *testing.T, repo *SQLitePatientRepo, name string) *domain.Patient {
	t.Helper()
	p := testutil.NewTestPatient(name)
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestPatientRepo_CreateAndGet(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLitePatientRepo(db)
	ctx := context.Background()

	p := createPatient(t, repo, "Tanaka")

	byID, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tanaka", byID.Name)
	assert.Equal(t, domain.GroupPerUnit, byID.Grouping)
	assert.True(t, p.CreatedAt.Equal(byID.CreatedAt))

	byName, err := repo.GetByName(ctx, "Tanaka")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byName.ID)
}

func TestPatientRepo_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLitePatientRepo(db)

	_, err := repo.GetByName(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrUnknownReference)

	err = repo.Update(context.Background(), testutil.NewTestPatient("ghost"))
	assert.ErrorIs(t, err, domain.ErrUnknownReference)
}

func TestPatientRepo_DuplicateName(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLitePatientRepo(db)

	createPatient(t, repo, "Sato")
	err := repo.Create(context.Background(), testutil.NewTestPatient("Sato"))
	assert.Error(t, err)
}

func TestPatientRepo_ListUpdateDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLitePatientRepo(db)
	ctx := context.Background()

	b := createPatient(t, repo, "B")
	createPatient(t, repo, "A")

	b.Grouping = domain.GroupMerged
	require.NoError(t, repo.Update(ctx, b))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].Name)
	assert.Equal(t, domain.GroupMerged, list[1].Grouping)

	require.NoError(t, repo.Delete(ctx, b.ID))
	list, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAssignmentRepo_ReplaceAndLoad(t *testing.T) {
	db := testutil.NewTestDB(t)
	p := createPatient(t, NewSQLitePatientRepo(db), "P")
	repo := NewSQLiteAssignmentRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Replace(ctx, p.ID, map[string][]string{"11": {"C2", "P1"}, "36": {"per"}}))
	require.NoError(t, repo.Replace(ctx, p.ID, map[string][]string{"11": {"C1"}}))

	got, err := repo.Load(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"11": {"C1"}}, got)
}

func TestSelectionRepo_ReplaceAndLoad(t *testing.T) {
	db := testutil.NewTestDB(t)
	p := createPatient(t, NewSQLitePatientRepo(db), "P")
	repo := NewSQLiteSelectionRepo(db)
	ctx := context.Background()

	sel := map[domain.SelectionKey]int{
		domain.NewSelectionKey("C3", []string{"11"}):       2,
		domain.NewSelectionKey("C2", []string{"12", "21"}): 1,
	}
	require.NoError(t, repo.Replace(ctx, p.ID, sel))

	got, err := repo.Load(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, sel, got)
}

func TestWorkItemRepo_RoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	p := createPatient(t, NewSQLitePatientRepo(db), "P")
	repo := NewSQLiteWorkItemRepo(db)
	ctx := context.Background()

	lineage := testutil.NewTestLineage("g1", 2, testutil.WithItemUnits("11", "12"))
	lineage[0].Completed = true
	lineage[0].Seq = 1
	lineage[1].Seq = 2
	lineage[1].Branch = &domain.BranchInfo{BranchedFromStep: 1}
	lineage[1].ProcedureCode = "J0001"
	lineage[1].Points = 120
	items := []domain.WorkItem{*lineage[1], *lineage[0]}

	require.NoError(t, repo.ReplaceAll(ctx, p.ID, items))
	got, err := repo.ListByPatient(ctx, p.ID)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, items, got, "items keep insertion order and every field")
}

func TestScheduleRepo_RoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	p := createPatient(t, NewSQLitePatientRepo(db), "P")
	items := NewSQLiteWorkItemRepo(db)
	repo := NewSQLiteScheduleRepo(db)
	ctx := context.Background()

	a := testutil.NewTestWorkItem("g1", 1, 1)
	b := testutil.NewTestWorkItem("g2", 1, 1)
	require.NoError(t, items.ReplaceAll(ctx, p.ID, []domain.WorkItem{*a, *b}))

	days := []domain.ScheduleDay{
		{Date: testutil.Day(0), ItemIDs: []string{b.ID, a.ID}},
		{Date: testutil.Day(1)},
	}
	require.NoError(t, repo.Replace(ctx, p.ID, days))

	got, err := repo.Load(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{b.ID, a.ID}, got[0].ItemIDs)
	assert.True(t, got[0].Date.Equal(testutil.Day(0)))
	assert.Empty(t, got[1].ItemIDs)
}

func TestScheduleRepo_RejectsUnknownItem(t *testing.T) {
	db := testutil.NewTestDB(t)
	p := createPatient(t, NewSQLitePatientRepo(db), "P")
	repo := NewSQLiteScheduleRepo(db)

	err := repo.Replace(context.Background(), p.ID, []domain.ScheduleDay{
		{Date: testutil.Day(0), ItemIDs: []string{"ghost"}},
	})
	assert.Error(t, err)
}
