package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/odontos/internal/db"
	"github.com/alexanderramin/odontos/internal/domain"
)

// SQLiteScheduleRepo implements ScheduleRepo using a SQLite database.
type SQLiteScheduleRepo struct {
	db db.DBTX
}

func NewSQLiteScheduleRepo(db db.DBTX) *SQLiteScheduleRepo {
	return &SQLiteScheduleRepo{db: db}
}

// Replace rewrites the patient's calendar. The referenced work items must
// already be stored.
func (r *SQLiteScheduleRepo) Replace(ctx context.Context, patientID string, days []domain.ScheduleDay) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM schedule_days WHERE patient_id = ?`, patientID); err != nil {
		return fmt.Errorf("clearing schedule days: %w", err)
	}
	for _, d := range days {
		date := domain.FormatDate(d.Date)
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO schedule_days (patient_id, date) VALUES (?, ?)`, patientID, date,
		); err != nil {
			return fmt.Errorf("inserting schedule day %s: %w", date, err)
		}
		for pos, id := range d.ItemIDs {
			if _, err := r.db.ExecContext(ctx,
				`INSERT INTO placements (patient_id, date, position, work_item_id) VALUES (?, ?, ?, ?)`,
				patientID, date, pos, id,
			); err != nil {
				return fmt.Errorf("placing work item %s on %s: %w", id, date, err)
			}
		}
	}
	return nil
}

func (r *SQLiteScheduleRepo) Load(ctx context.Context, patientID string) ([]domain.ScheduleDay, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT d.date, p.work_item_id
		FROM schedule_days d
		LEFT JOIN placements p ON p.patient_id = d.patient_id AND p.date = d.date
		WHERE d.patient_id = ?
		ORDER BY d.date, p.position`,
		patientID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading schedule: %w", err)
	}
	defer rows.Close()

	var days []domain.ScheduleDay
	for rows.Next() {
		var dateStr string
		var itemID *string
		if err := rows.Scan(&dateStr, &itemID); err != nil {
			return nil, fmt.Errorf("scanning schedule row: %w", err)
		}
		date, err := domain.ParseDate(dateStr)
		if err != nil {
			return nil, err
		}
		if n := len(days); n == 0 || !days[n-1].Date.Equal(date) {
			days = append(days, domain.ScheduleDay{Date: date})
		}
		if itemID != nil {
			last := &days[len(days)-1]
			last.ItemIDs = append(last.ItemIDs, *itemID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating schedule: %w", err)
	}
	return days, nil
}
