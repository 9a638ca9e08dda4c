package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/odontos/internal/db"
	"github.com/alexanderramin/odontos/internal/domain"
)

// SQLiteSelectionRepo implements SelectionRepo using a SQLite database.
// Unit sets are stored in their canonical key encoding.
type SQLiteSelectionRepo struct {
	db db.DBTX
}

func NewSQLiteSelectionRepo(db db.DBTX) *SQLiteSelectionRepo {
	return &SQLiteSelectionRepo{db: db}
}

func (r *SQLiteSelectionRepo) Replace(ctx context.Context, patientID string, selections map[domain.SelectionKey]int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM option_selections WHERE patient_id = ?`, patientID); err != nil {
		return fmt.Errorf("clearing option selections: %w", err)
	}
	for key, idx := range selections {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO option_selections (patient_id, condition_code, units, option_index) VALUES (?, ?, ?, ?)`,
			patientID, key.Condition, key.Units, idx,
		)
		if err != nil {
			return fmt.Errorf("inserting option selection %s: %w", key, err)
		}
	}
	return nil
}

func (r *SQLiteSelectionRepo) Load(ctx context.Context, patientID string) (map[domain.SelectionKey]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT condition_code, units, option_index FROM option_selections WHERE patient_id = ?`,
		patientID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading option selections: %w", err)
	}
	defer rows.Close()

	selections := make(map[domain.SelectionKey]int)
	for rows.Next() {
		var key domain.SelectionKey
		var idx int
		if err := rows.Scan(&key.Condition, &key.Units, &idx); err != nil {
			return nil, fmt.Errorf("scanning option selection: %w", err)
		}
		selections[key] = idx
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating option selections: %w", err)
	}
	return selections, nil
}
