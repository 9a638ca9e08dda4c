package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/odontos/internal/db"
)

// SQLiteAssignmentRepo implements AssignmentRepo using a SQLite database.
type SQLiteAssignmentRepo struct {
	db db.DBTX
}

func NewSQLiteAssignmentRepo(db db.DBTX) *SQLiteAssignmentRepo {
	return &SQLiteAssignmentRepo{db: db}
}

func (r *SQLiteAssignmentRepo) Replace(ctx context.Context, patientID string, units map[string][]string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE patient_id = ?`, patientID); err != nil {
		return fmt.Errorf("clearing assignments: %w", err)
	}
	for unit, codes := range units {
		for _, code := range codes {
			_, err := r.db.ExecContext(ctx,
				`INSERT INTO assignments (patient_id, unit, condition_code) VALUES (?, ?, ?)`,
				patientID, unit, code,
			)
			if err != nil {
				return fmt.Errorf("inserting assignment %s/%s: %w", unit, code, err)
			}
		}
	}
	return nil
}

func (r *SQLiteAssignmentRepo) Load(ctx context.Context, patientID string) (map[string][]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT unit, condition_code FROM assignments WHERE patient_id = ? ORDER BY unit, condition_code`,
		patientID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading assignments: %w", err)
	}
	defer rows.Close()

	units := make(map[string][]string)
	for rows.Next() {
		var unit, code string
		if err := rows.Scan(&unit, &code); err != nil {
			return nil, fmt.Errorf("scanning assignment: %w", err)
		}
		units[unit] = append(units[unit], code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assignments: %w", err)
	}
	return units, nil
}
