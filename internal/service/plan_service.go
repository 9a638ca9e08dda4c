package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/odontos/internal/db"
	"github.com/alexanderramin/odontos/internal/domain"
	"github.com/alexanderramin/odontos/internal/repository"
	"github.com/google/uuid"
)

// PlanService loads and stores patient sessions.
type PlanService interface {
	// Open returns the patient's session, creating the patient on first use.
	Open(ctx context.Context, patientName string) (*Session, *domain.Patient, error)
	Save(ctx context.Context, patient *domain.Patient, session *Session) error
	List(ctx context.Context) ([]*domain.Patient, error)
	Delete(ctx context.Context, patientName string) error
}

type planService struct {
	patients repository.PatientRepo
	uow      db.UnitOfWork
	cfg      SessionConfig
	observer UseCaseObserver
}

func NewPlanService(
	patients repository.PatientRepo,
	uow db.UnitOfWork,
	cfg SessionConfig,
	observers ...UseCaseObserver,
) PlanService {
	return &planService{
		patients: patients,
		uow:      uow,
		cfg:      cfg,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *planService) Open(ctx context.Context, patientName string) (session *Session, patient *domain.Patient, err error) {
	startedAt := time.Now()
	fields := map[string]any{"patient": patientName}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "open-plan",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	if patientName == "" {
		return nil, nil, domain.InvalidInputf("patient name is required")
	}

	var snap Snapshot
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		patients := repository.NewSQLitePatientRepo(tx)
		p, err := patients.GetByName(ctx, patientName)
		if errors.Is(err, domain.ErrUnknownReference) {
			now := time.Now().UTC().Truncate(time.Second)
			p = &domain.Patient{
				ID:        uuid.New().String(),
				Name:      patientName,
				Grouping:  s.cfg.Grouping.OrDefault(),
				CreatedAt: now,
				UpdatedAt: now,
			}
			fields["created"] = true
			if err := patients.Create(ctx, p); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		patient = p

		snap.Grouping = p.Grouping
		if snap.Assignments, err = repository.NewSQLiteAssignmentRepo(tx).Load(ctx, p.ID); err != nil {
			return err
		}
		if snap.Selections, err = repository.NewSQLiteSelectionRepo(tx).Load(ctx, p.ID); err != nil {
			return err
		}
		if snap.Items, err = repository.NewSQLiteWorkItemRepo(tx).ListByPatient(ctx, p.ID); err != nil {
			return err
		}
		if snap.Days, err = repository.NewSQLiteScheduleRepo(tx).Load(ctx, p.ID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	session = NewSession(s.cfg, s.observer)
	if err = session.Restore(snap); err != nil {
		return nil, nil, fmt.Errorf("restoring plan of %s: %w", patientName, err)
	}
	fields["items"] = len(snap.Items)
	return session, patient, nil
}

// Save replaces every stored row of the patient's plan in one transaction.
func (s *planService) Save(ctx context.Context, patient *domain.Patient, session *Session) (err error) {
	startedAt := time.Now()
	fields := map[string]any{"patient": patient.Name}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "save-plan",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	snap := session.Snapshot()
	fields["items"] = len(snap.Items)
	fields["days"] = len(snap.Days)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		updated := *patient
		updated.Grouping = snap.Grouping
		updated.UpdatedAt = time.Now().UTC().Truncate(time.Second)
		if err := repository.NewSQLitePatientRepo(tx).Update(ctx, &updated); err != nil {
			return err
		}
		if err := repository.NewSQLiteAssignmentRepo(tx).Replace(ctx, patient.ID, snap.Assignments); err != nil {
			return err
		}
		if err := repository.NewSQLiteSelectionRepo(tx).Replace(ctx, patient.ID, snap.Selections); err != nil {
			return err
		}
		if err := repository.NewSQLiteWorkItemRepo(tx).ReplaceAll(ctx, patient.ID, snap.Items); err != nil {
			return err
		}
		return repository.NewSQLiteScheduleRepo(tx).Replace(ctx, patient.ID, snap.Days)
	})
}

func (s *planService) List(ctx context.Context) ([]*domain.Patient, error) {
	return s.patients.List(ctx)
}

func (s *planService) Delete(ctx context.Context, patientName string) error {
	p, err := s.patients.GetByName(ctx, patientName)
	if err != nil {
		return err
	}
	return s.patients.Delete(ctx, p.ID)
}
