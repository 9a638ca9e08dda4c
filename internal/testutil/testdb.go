package testutil

import (
	"database/sql"
	"testing"

	"github.com/alexanderramin/odontos/internal/db"
)

// NewTestDB opens an in-memory plan database with the patient, assignment,
// work item and schedule tables migrated. It is closed when t finishes.
// In-memory databases hold a single connection, so reads outside an open
// transaction block until it ends.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("opening plan database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

// NewTestPlanStore returns a test database and the unit of work plan saves
// run through.
func NewTestPlanStore(t *testing.T) (*sql.DB, db.UnitOfWork) {
	t.Helper()
	database := NewTestDB(t)
	return database, db.NewSQLiteUnitOfWork(database)
}
