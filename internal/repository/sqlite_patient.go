package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/odontos/internal/db"
	"github.com/alexanderramin/odontos/internal/domain"
)

const patientColumns = `id, name, grouping_mode, created_at, updated_at`

// SQLitePatientRepo implements PatientRepo using a SQLite database.
type SQLitePatientRepo struct {
	db db.DBTX
}

func NewSQLitePatientRepo(db db.DBTX) *SQLitePatientRepo {
	return &SQLitePatientRepo{db: db}
}

func (r *SQLitePatientRepo) Create(ctx context.Context, p *domain.Patient) error {
	query := `INSERT INTO patients (` + patientColumns + `) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		string(p.Grouping),
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting patient: %w", err)
	}
	return nil
}

func (r *SQLitePatientRepo) GetByID(ctx context.Context, id string) (*domain.Patient, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = ?`, id)
	p, err := scanPatient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.UnknownRef("patient", id)
	}
	return p, err
}

func (r *SQLitePatientRepo) GetByName(ctx context.Context, name string) (*domain.Patient, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+patientColumns+` FROM patients WHERE name = ?`, name)
	p, err := scanPatient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.UnknownRef("patient", name)
	}
	return p, err
}

func (r *SQLitePatientRepo) List(ctx context.Context) ([]*domain.Patient, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+patientColumns+` FROM patients ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing patients: %w", err)
	}
	defer rows.Close()

	var patients []*domain.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating patients: %w", err)
	}
	return patients, nil
}

func (r *SQLitePatientRepo) Update(ctx context.Context, p *domain.Patient) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE patients SET name = ?, grouping_mode = ?, updated_at = ? WHERE id = ?`,
		p.Name, string(p.Grouping), p.UpdatedAt.Format(time.RFC3339), p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating patient: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.UnknownRef("patient", p.ID)
	}
	return nil
}

func (r *SQLitePatientRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting patient: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatient(row rowScanner) (*domain.Patient, error) {
	var p domain.Patient
	var grouping, createdAtStr, updatedAtStr string
	if err := row.Scan(&p.ID, &p.Name, &grouping, &createdAtStr, &updatedAtStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning patient: %w", err)
	}
	p.Grouping = domain.GroupingMode(grouping)

	var err error
	if p.CreatedAt, err = parseTimestamp("created_at", createdAtStr); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTimestamp("updated_at", updatedAtStr); err != nil {
		return nil, err
	}
	return &p, nil
}
