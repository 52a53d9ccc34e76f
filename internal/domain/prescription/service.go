package prescription

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/carelink/carelink/internal/domain/identity"
	"github.com/carelink/carelink/internal/platform/apperr"
	"github.com/carelink/carelink/internal/platform/auth"
)

// DoctorDirectory resolves the caller's doctor profile.
type DoctorDirectory interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*identity.Doctor, error)
}

// PatientDirectory resolves prescribed-for patients.
type PatientDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*identity.Patient, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*identity.Patient, error)
}

// PharmacyDirectory resolves pharmacies for assignment and dispensing.
type PharmacyDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*identity.Pharmacy, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*identity.Pharmacy, error)
}

type Service struct {
	repo       Repository
	doctors    DoctorDirectory
	patients   PatientDirectory
	pharmacies PharmacyDirectory
}

func NewService(repo Repository, doctors DoctorDirectory, patients PatientDirectory, pharmacies PharmacyDirectory) *Service {
	return &Service{repo: repo, doctors: doctors, patients: patients, pharmacies: pharmacies}
}

// CreateInput is the doctor's request to issue a prescription.
type CreateInput struct {
	PatientID     uuid.UUID         `json:"patient_id"`
	AppointmentID *uuid.UUID        `json:"appointment_id,omitempty"`
	PharmacyID    *uuid.UUID        `json:"pharmacy_id,omitempty"`
	Medications   []MedicationEntry `json:"medications"`
	Instructions  string            `json:"instructions,omitempty"`
	ValidUntil    *string           `json:"valid_until,omitempty"`
}

// Create issues a new prescription. The caller must act as a doctor with a
// profile, the patient must exist, and the medication list must be non-empty
// with name, dosage and frequency on every entry. The prescription always
// starts pending.
func (s *Service) Create(ctx context.Context, ident auth.Identity, in *CreateInput) (*Prescription, error) {
	if ident.Role != auth.RoleDoctor {
		return nil, apperr.New(apperr.Forbidden, "only doctors can create prescriptions")
	}
	doctor, err := s.doctors.GetByUserID(ctx, ident.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "doctor profile not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "load doctor profile")
	}

	if len(in.Medications) == 0 {
		return nil, apperr.New(apperr.ValidationFailed, "medications must not be empty")
	}
	for i, m := range in.Medications {
		if strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.Dosage) == "" || strings.TrimSpace(m.Frequency) == "" {
			return nil, apperr.New(apperr.ValidationFailed,
				"medication %d must have name, dosage and frequency", i+1)
		}
	}

	if _, err := s.patients.GetByID(ctx, in.PatientID); errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "patient not found")
	} else if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "load patient")
	}

	if in.PharmacyID != nil {
		if _, err := s.pharmacies.GetByID(ctx, *in.PharmacyID); errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "pharmacy not found")
		} else if err != nil {
			return nil, apperr.Wrap(apperr.Internal, err, "load pharmacy")
		}
	}

	p := &Prescription{
		DoctorID:      doctor.ID,
		PatientID:     in.PatientID,
		AppointmentID: in.AppointmentID,
		PharmacyID:    in.PharmacyID,
		Medications:   in.Medications,
		Instructions:  in.Instructions,
		Status:        StatusPending,
	}
	if in.ValidUntil != nil {
		t, err := parseDate(*in.ValidUntil)
		if err != nil {
			return nil, apperr.New(apperr.ValidationFailed, "valid_until must be a date (YYYY-MM-DD)")
		}
		p.ValidUntil = &t
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "create prescription")
	}
	return s.repo.GetByID(ctx, p.ID)
}

// SetStatus moves a prescription one step along its lifecycle on behalf of a
// pharmacy. An unassigned prescription is claimed by the acting pharmacy on
// its first action; one assigned elsewhere is off limits.
func (s *Service) SetStatus(ctx context.Context, ident auth.Identity, id uuid.UUID, to Status) (*Prescription, error) {
	if ident.Role != auth.RolePharmacy {
		return nil, apperr.New(apperr.Forbidden, "only pharmacies can update prescription status")
	}
	pharmacy, err := s.pharmacies.GetByUserID(ctx, ident.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "pharmacy profile not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "load pharmacy profile")
	}

	current, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "prescription not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "load prescription")
	}

	if current.PharmacyID != nil && *current.PharmacyID != pharmacy.ID {
		return nil, apperr.New(apperr.Forbidden, "prescription is assigned to another pharmacy")
	}
	if !current.Status.CanTransitionTo(to) {
		return nil, apperr.New(apperr.InvalidTransition,
			"cannot move prescription from %s to %s", current.Status, to)
	}

	applied, err := s.repo.SetStatus(ctx, id, current.Status, to, pharmacy.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "update prescription status")
	}
	if !applied {
		// Someone else changed the row between read and update.
		return nil, apperr.New(apperr.InvalidTransition,
			"prescription status changed concurrently, retry")
	}
	return s.repo.GetByID(ctx, id)
}

// ListFor returns the caller's role-scoped view: patients see their own
// prescriptions, doctors what they authored, pharmacies their actionable
// queue. All newest-first.
func (s *Service) ListFor(ctx context.Context, ident auth.Identity, limit, offset int) ([]*Prescription, int, error) {
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
	case auth.RolePharmacy:
		pharmacy, err := s.pharmacies.GetByUserID(ctx, ident.UserID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, apperr.New(apperr.NotFound, "pharmacy profile not found")
		}
		if err != nil {
			return nil, 0, apperr.Wrap(apperr.Internal, err, "load pharmacy profile")
		}
		return s.repo.ListQueue(ctx, pharmacy.ID, limit, offset)
	default:
		return nil, 0, apperr.New(apperr.Forbidden, "unknown role")
	}
}
