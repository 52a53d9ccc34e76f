package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/carelink/carelink/internal/platform/apperr"
	"github.com/carelink/carelink/internal/platform/auth"
)

// Service implements profile management for the three actor roles. Each
// profile belongs to exactly one user and the user's role must match the
// profile kind.
type Service struct {
	patients   PatientRepository
	doctors    DoctorRepository
	pharmacies PharmacyRepository
}

func NewService(patients PatientRepository, doctors DoctorRepository, pharmacies PharmacyRepository) *Service {
	return &Service{patients: patients, doctors: doctors, pharmacies: pharmacies}
}

// CreatePatientInput carries the profile fields plus the account email.
type CreatePatientInput struct {
	Email string `json:"email"`
	Patient
}

func (s *Service) CreatePatient(ctx context.Context, ident auth.Identity, in *CreatePatientInput) (*Patient, error) {
	if ident.Role != auth.RolePatient {
		return nil, apperr.New(apperr.Forbidden, "only patients can create a patient profile")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.New(apperr.ValidationFailed, "name is required")
	}
	if _, err := s.patients.GetByUserID(ctx, ident.UserID); err == nil {
		return nil, apperr.New(apperr.ValidationFailed, "patient profile already exists")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.Wrap(apperr.Internal, err, "check existing patient profile")
	}

	p := in.Patient
	p.UserID = ident.UserID
	if err := s.patients.Create(ctx, &p, in.Email); err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "create patient profile")
	}
	return s.patients.GetByID(ctx, p.ID)
}

func (s *Service) GetOwnPatient(ctx context.Context, ident auth.Identity) (*Patient, error) {
	if ident.Role != auth.RolePatient {
		return nil, apperr.New(apperr.Forbidden, "only patients have a patient profile")
	}
	p, err := s.patients.GetByUserID(ctx, ident.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "patient profile not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "load patient profile")
	}
	return p, nil
}

func (s *Service) UpdateOwnPatient(ctx context.Context, ident auth.Identity, in *Patient) (*Patient, error) {
	current, err := s.GetOwnPatient(ctx, ident)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.New(apperr.ValidationFailed, "name is required")
	}
	in.ID = current.ID
	in.UserID = current.UserID
	if err := s.patients.Update(ctx, in); err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "update patient profile")
	}
	return s.patients.GetByID(ctx, current.ID)
}

// CreateDoctorInput carries the profile fields plus the account email.
type CreateDoctorInput struct {
	Email string `json:"email"`
	Doctor
}

func (s *Service) CreateDoctor(ctx context.Context, ident auth.Identity, in *CreateDoctorInput) (*Doctor, error) {
	if ident.Role != auth.RoleDoctor {
		return nil, apperr.New(apperr.Forbidden, "only doctors can create a doctor profile")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.New(apperr.ValidationFailed, "name is required")
	}
	if _, err := s.doctors.GetByUserID(ctx, ident.UserID); err == nil {
		return nil, apperr.New(apperr.ValidationFailed, "doctor profile already exists")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.Wrap(apperr.Internal, err, "check existing doctor profile")
	}

	d := in.Doctor
	d.UserID = ident.UserID
	if err := s.doctors.Create(ctx, &d, in.Email); err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "create doctor profile")
	}
	return s.doctors.GetByID(ctx, d.ID)
}

func (s *Service) GetOwnDoctor(ctx context.Context, ident auth.Identity) (*Doctor, error) {
	if ident.Role != auth.RoleDoctor {
		return nil, apperr.New(apperr.Forbidden, "only doctors have a doctor profile")
	}
	d, err := s.doctors.GetByUserID(ctx, ident.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "doctor profile not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "load doctor profile")
	}
	return d, nil
}

func (s *Service) UpdateOwnDoctor(ctx context.Context, ident auth.Identity, in *Doctor) (*Doctor, error) {
	current, err := s.GetOwnDoctor(ctx, ident)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.New(apperr.ValidationFailed, "name is required")
	}
	in.ID = current.ID
	in.UserID = current.UserID
	if err := s.doctors.Update(ctx, in); err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "update doctor profile")
	}
	return s.doctors.GetByID(ctx, current.ID)
}

// ListDoctors is the public directory used when booking appointments.
func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	items, total, err := s.doctors.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.Internal, err, "list doctors")
	}
	return items, total, nil
}

// CreatePharmacyInput carries the profile fields plus the account email.
type CreatePharmacyInput struct {
	Email string `json:"email"`
	Pharmacy
}

func (s *Service) CreatePharmacy(ctx context.Context, ident auth.Identity, in *CreatePharmacyInput) (*Pharmacy, error) {
	if ident.Role != auth.RolePharmacy {
		return nil, apperr.New(apperr.Forbidden, "only pharmacies can create a pharmacy profile")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.New(apperr.ValidationFailed, "name is required")
	}
	if _, err := s.pharmacies.GetByUserID(ctx, ident.UserID); err == nil {
		return nil, apperr.New(apperr.ValidationFailed, "pharmacy profile already exists")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.Wrap(apperr.Internal, err, "check existing pharmacy profile")
	}

	p := in.Pharmacy
	p.UserID = ident.UserID
	if err := s.pharmacies.Create(ctx, &p, in.Email); err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "create pharmacy profile")
	}
	return s.pharmacies.GetByID(ctx, p.ID)
}

func (s *Service) GetOwnPharmacy(ctx context.Context, ident auth.Identity) (*Pharmacy, error) {
	if ident.Role != auth.RolePharmacy {
		return nil, apperr.New(apperr.Forbidden, "only pharmacies have a pharmacy profile")
	}
	p, err := s.pharmacies.GetByUserID(ctx, ident.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "pharmacy profile not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "load pharmacy profile")
	}
	return p, nil
}

func (s *Service) UpdateOwnPharmacy(ctx context.Context, ident auth.Identity, in *Pharmacy) (*Pharmacy, error) {
	current, err := s.GetOwnPharmacy(ctx, ident)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.New(apperr.ValidationFailed, "name is required")
	}
	in.ID = current.ID
	in.UserID = current.UserID
	if err := s.pharmacies.Update(ctx, in); err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "update pharmacy profile")
	}
	return s.pharmacies.GetByID(ctx, current.ID)
}
