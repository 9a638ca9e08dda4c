package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent and re-run
// on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillPatientGrouping(db); err != nil {
		return fmt.Errorf("backfilling patient grouping: %w", err)
	}
	return nil
}

// migrateBackfillPatientGrouping rewrites legacy grouping names to the
// canonical modes.
func migrateBackfillPatientGrouping(db *sql.DB) error {
	ctx := context.Background()
	_, err := db.ExecContext(ctx, `UPDATE patients SET grouping_mode = 'per-unit'
		WHERE grouping_mode IN ('', 'individual')`)
	if err != nil {
		return fmt.Errorf("updating per-unit grouping: %w", err)
	}
	_, err = db.ExecContext(ctx, `UPDATE patients SET grouping_mode = 'merged'
		WHERE grouping_mode = 'grouped'`)
	if err != nil {
		return fmt.Errorf("updating merged grouping: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS patients (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		grouping_mode TEXT NOT NULL DEFAULT 'per-unit',
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_patients_name ON patients(name)`,

	`CREATE TABLE IF NOT EXISTS assignments (
		patient_id     TEXT NOT NULL REFERENCES patients(id) ON DELETE CASCADE,
		unit           TEXT NOT NULL,
		condition_code TEXT NOT NULL,
		PRIMARY KEY (patient_id, unit, condition_code)
	)`,

	`CREATE TABLE IF NOT EXISTS option_selections (
		patient_id     TEXT NOT NULL REFERENCES patients(id) ON DELETE CASCADE,
		condition_code TEXT NOT NULL,
		units          TEXT NOT NULL,
		option_index   INTEGER NOT NULL CHECK(option_index >= 0),
		PRIMARY KEY (patient_id, condition_code, units)
	)`,

	`CREATE TABLE IF NOT EXISTS work_items (
		id                    TEXT PRIMARY KEY,
		patient_id            TEXT NOT NULL REFERENCES patients(id) ON DELETE CASCADE,
		seq                   INTEGER NOT NULL,
		group_id              TEXT NOT NULL,
		condition_code        TEXT NOT NULL,
		actual_condition_code TEXT NOT NULL,
		option_name           TEXT NOT NULL,
		step_index            INTEGER NOT NULL CHECK(step_index >= 1),
		total_steps           INTEGER NOT NULL CHECK(total_steps >= 1),
		units                 TEXT NOT NULL,
		completed             INTEGER NOT NULL DEFAULT 0,
		branched_from_step    INTEGER,
		step_name             TEXT NOT NULL DEFAULT '',
		created_order         INTEGER NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_work_items_patient ON work_items(patient_id)`,
	`CREATE INDEX IF NOT EXISTS idx_work_items_group ON work_items(group_id)`,

	`CREATE TABLE IF NOT EXISTS schedule_days (
		patient_id TEXT NOT NULL REFERENCES patients(id) ON DELETE CASCADE,
		date       TEXT NOT NULL,
		PRIMARY KEY (patient_id, date)
	)`,

	`CREATE TABLE IF NOT EXISTS placements (
		patient_id   TEXT NOT NULL,
		date         TEXT NOT NULL,
		position     INTEGER NOT NULL,
		work_item_id TEXT NOT NULL UNIQUE REFERENCES work_items(id) ON DELETE CASCADE,
		PRIMARY KEY (patient_id, date, position),
		FOREIGN KEY (patient_id, date) REFERENCES schedule_days(patient_id, date) ON DELETE CASCADE
	)`,

	// Step master data added after the first release.
	`ALTER TABLE work_items ADD COLUMN procedure_code TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE work_items ADD COLUMN points INTEGER NOT NULL DEFAULT 0`,
}
