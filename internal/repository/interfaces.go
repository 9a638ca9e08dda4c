package repository

import (
	"context"

	"github.com/alexanderramin/odontos/internal/domain"
)

type PatientRepo interface {
	Create(ctx context.Context, p *domain.Patient) error
	GetByID(ctx context.Context, id string) (*domain.Patient, error)
	GetByName(ctx context.Context, name string) (*domain.Patient, error)
	List(ctx context.Context) ([]*domain.Patient, error)
	Update(ctx context.Context, p *domain.Patient) error
	Delete(ctx context.Context, id string) error
}

// AssignmentRepo stores the unit → condition set map of a patient.
type AssignmentRepo interface {
	Replace(ctx context.Context, patientID string, units map[string][]string) error
	Load(ctx context.Context, patientID string) (map[string][]string, error)
}

type SelectionRepo interface {
	Replace(ctx context.Context, patientID string, selections map[domain.SelectionKey]int) error
	Load(ctx context.Context, patientID string) (map[domain.SelectionKey]int, error)
}

// WorkItemRepo stores a patient's items; ListByPatient returns them in
// creation order.
type WorkItemRepo interface {
	ReplaceAll(ctx context.Context, patientID string, items []domain.WorkItem) error
	ListByPatient(ctx context.Context, patientID string) ([]domain.WorkItem, error)
}

// ScheduleRepo stores calendar days and the ordered placements on them.
type ScheduleRepo interface {
	Replace(ctx context.Context, patientID string, days []domain.ScheduleDay) error
	Load(ctx context.Context, patientID string) ([]domain.ScheduleDay, error)
}
