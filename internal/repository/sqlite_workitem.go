package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/odontos/internal/db"
	"github.com/alexanderramin/odontos/internal/domain"
)

// workItemColumns is the canonical SELECT column list for work_items.
const workItemColumns = `id, seq, group_id, condition_code, actual_condition_code,
		option_name, step_index, total_steps, units, completed, branched_from_step,
		step_name, procedure_code, points`

// SQLiteWorkItemRepo implements WorkItemRepo using a SQLite database.
type SQLiteWorkItemRepo struct {
	db db.DBTX
}

func NewSQLiteWorkItemRepo(db db.DBTX) *SQLiteWorkItemRepo {
	return &SQLiteWorkItemRepo{db: db}
}

// ReplaceAll deletes the patient's items, and with them their placements,
// then inserts items keeping their order.
func (r *SQLiteWorkItemRepo) ReplaceAll(ctx context.Context, patientID string, items []domain.WorkItem) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM work_items WHERE patient_id = ?`, patientID); err != nil {
		return fmt.Errorf("clearing work items: %w", err)
	}
	query := `INSERT INTO work_items (patient_id, created_order, ` + workItemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i, w := range items {
		units, err := encodeUnits(w.Units)
		if err != nil {
			return err
		}
		var branched *int
		if w.Branch != nil {
			branched = &w.Branch.BranchedFromStep
		}
		_, err = r.db.ExecContext(ctx, query,
			patientID,
			i,
			w.ID,
			w.Seq,
			w.GroupID,
			w.Condition,
			w.ActualCondition,
			w.Option,
			w.StepIndex,
			w.TotalSteps,
			units,
			boolToInt(w.Completed),
			nullableIntToValue(branched),
			w.StepName,
			w.ProcedureCode,
			w.Points,
		)
		if err != nil {
			return fmt.Errorf("inserting work item %s: %w", w.ID, err)
		}
	}
	return nil
}

func (r *SQLiteWorkItemRepo) ListByPatient(ctx context.Context, patientID string) ([]domain.WorkItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+workItemColumns+` FROM work_items WHERE patient_id = ? ORDER BY created_order`,
		patientID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing work items: %w", err)
	}
	defer rows.Close()

	var items []domain.WorkItem
	for rows.Next() {
		w, err := scanWorkItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating work items: %w", err)
	}
	return items, nil
}

func scanWorkItem(row rowScanner) (domain.WorkItem, error) {
	var w domain.WorkItem
	var units string
	var completed int
	var branched sql.NullInt64
	err := row.Scan(
		&w.ID, &w.Seq, &w.GroupID, &w.Condition, &w.ActualCondition,
		&w.Option, &w.StepIndex, &w.TotalSteps, &units, &completed, &branched,
		&w.StepName, &w.ProcedureCode, &w.Points,
	)
	if err != nil {
		return domain.WorkItem{}, fmt.Errorf("scanning work item: %w", err)
	}

	list, err := decodeUnits(units)
	if err != nil {
		return domain.WorkItem{}, err
	}
	w.SetUnits(list)
	w.Completed = intToBool(completed)
	if step := parseNullableInt(branched); step != nil {
		w.Branch = &domain.BranchInfo{BranchedFromStep: *step}
	}
	return w, nil
}
