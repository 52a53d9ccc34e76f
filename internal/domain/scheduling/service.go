package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/carelink/carelink/internal/domain/identity"
	"github.com/carelink/carelink/internal/platform/apperr"
	"github.com/carelink/carelink/internal/platform/auth"
)

// DoctorDirectory resolves doctors for booking and status changes.
type DoctorDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*identity.Doctor, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*identity.Doctor, error)
}

// PatientDirectory resolves the caller's patient profile.
type PatientDirectory interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*identity.Patient, error)
}

type Service struct {
	repo     Repository
	doctors  DoctorDirectory
	patients PatientDirectory
	now      func() time.Time
}

func NewService(repo Repository, doctors DoctorDirectory, patients PatientDirectory) *Service {
	return &Service{repo: repo, doctors: doctors, patients: patients, now: time.Now}
}

// BookInput is the patient's booking request.
type BookInput struct {
	DoctorID    uuid.UUID `json:"doctor_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Reason      string    `json:"reason,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

// Book creates a scheduled appointment. The caller must be a patient with a
// profile, the doctor must exist and the time must be in the future.
func (s *Service) Book(ctx context.Context, ident auth.Identity, in *BookInput) (*Appointment, error) {
	if ident.Role != auth.RolePatient {
		return nil, apperr.New(apperr.Forbidden, "only patients can book appointments")
	}
	patient, err := s.patients.GetByUserID(ctx, ident.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "patient profile not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "load patient profile")
	}

	if _, err := s.doctors.GetByID(ctx, in.DoctorID); errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "doctor not found")
	} else if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "load doctor")
	}

	if !in.ScheduledAt.After(s.now()) {
		return nil, apperr.New(apperr.ValidationFailed, "scheduled_at must be in the future")
	}

	a := &Appointment{
		PatientID:   patient.ID,
		DoctorID:    in.DoctorID,
		ScheduledAt: in.ScheduledAt,
		Reason:      in.Reason,
		Notes:       in.Notes,
		Status:      StatusScheduled,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "create appointment")
	}
	return s.repo.GetByID(ctx, a.ID)
}

func (s *Service) get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "appointment not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "load appointment")
	}
	return a, nil
}

// Cancel marks an appointment cancelled. Patients cancel their own bookings,
// doctors those addressed to them.
func (s *Service) Cancel(ctx context.Context, ident auth.Identity, id uuid.UUID) (*Appointment, error) {
	a, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch ident.Role {
	case auth.RolePatient:
		patient, err := s.patients.GetByUserID(ctx, ident.UserID)
		if err != nil || patient.ID != a.PatientID {
			return nil, apperr.New(apperr.Forbidden, "appointment belongs to another patient")
		}
	case auth.RoleDoctor:
		doctor, err := s.doctors.GetByUserID(ctx, ident.UserID)
		if err != nil || doctor.ID != a.DoctorID {
			return nil, apperr.New(apperr.Forbidden, "appointment belongs to another doctor")
		}
	default:
		return nil, apperr.New(apperr.Forbidden, "only patients and doctors can cancel appointments")
	}

	if a.Status == StatusCancelled || a.Status == StatusCompleted {
		return nil, apperr.New(apperr.InvalidTransition, "appointment is already %s", a.Status)
	}
	if err := s.repo.SetStatus(ctx, id, StatusCancelled); err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "cancel appointment")
	}
	return s.repo.GetByID(ctx, id)
}

// SetStatus lets the appointment's doctor confirm or complete it.
func (s *Service) SetStatus(ctx context.Context, ident auth.Identity, id uuid.UUID, status AppointmentStatus) (*Appointment, error) {
	if ident.Role != auth.RoleDoctor {
		return nil, apperr.New(apperr.Forbidden, "only doctors can update appointment status")
	}
	if status != StatusConfirmed && status != StatusCompleted {
		return nil, apperr.New(apperr.ValidationFailed, "status must be confirmed or completed")
	}

	a, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	doctor, err := s.doctors.GetByUserID(ctx, ident.UserID)
	if err != nil || doctor.ID != a.DoctorID {
		return nil, apperr.New(apperr.Forbidden, "appointment belongs to another doctor")
	}
	if a.Status == StatusCancelled {
		return nil, apperr.New(apperr.InvalidTransition, "appointment is cancelled")
	}

	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "update appointment status")
	}
	return s.repo.GetByID(ctx, id)
}

// ListFor returns the caller's appointments newest-first.
func (s *Service) ListFor(ctx context.Context, ident auth.Identity, limit, offset int) ([]*Appointment, int, error) {
	switch ident.Role {
	case auth.RolePatient:
		patient, err := s.patients.GetByUserID(ctx, ident.UserID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, apperr.New(apperr.NotFound, "patient profile not found")
		}
		if err != nil {
			return nil, 0, apperr.Wrap(apperr.Internal, err, "load patient profile")
		}
		return s.repo.ListByPatient(ctx, patient.ID, limit, offset)
	case auth.RoleDoctor:
		doctor, err := s.doctors.GetByUserID(ctx, ident.UserID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, apperr.New(apperr.NotFound, "doctor profile not found")
		}
		if err != nil {
			return nil, 0, apperr.Wrap(apperr.Internal, err, "load doctor profile")
		}
		return s.repo.ListByDoctor(ctx, doctor.ID, limit, offset)
	default:
		return nil, 0, apperr.New(apperr.Forbidden, "pharmacies have no appointments")
	}
}

// UpcomingForPatient returns the patient's next appointments, soonest first.
func (s *Service) UpcomingForPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*Appointment, error) {
	return s.repo.UpcomingByPatient(ctx, patientID, s.now(), limit)
}

// UpcomingForDoctor returns the doctor's next appointments, soonest first.
func (s *Service) UpcomingForDoctor(ctx context.Context, doctorID uuid.UUID, limit int) ([]*Appointment, error) {
	return s.repo.UpcomingByDoctor(ctx, doctorID, s.now(), limit)
}

// TodayForDoctor returns the doctor's appointments for the current day.
func (s *Service) TodayForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.repo.BetweenByDoctor(ctx, doctorID, dayStart, dayStart.AddDate(0, 0, 1))
}
