package dashboard

import (
	"context"

	"github.com/google/uuid"

	"github.com/carelink/carelink/internal/domain/identity"
	"github.com/carelink/carelink/internal/domain/inventory"
	"github.com/carelink/carelink/internal/domain/prescription"
	"github.com/carelink/carelink/internal/domain/scheduling"
	"github.com/carelink/carelink/internal/platform/apperr"
	"github.com/carelink/carelink/internal/platform/auth"
)

const (
	recentLimit      = 5
	listLimit        = 20
	expiryWindowDays = 30
)

// PrescriptionReader is the role-scoped prescription list.
type PrescriptionReader interface {
	ListFor(ctx context.Context, ident auth.Identity, limit, offset int) ([]*prescription.Prescription, int, error)
}

// InventoryReader exposes the pharmacy threshold queries.
type InventoryReader interface {
	LowStock(ctx context.Context, ident auth.Identity, limit, offset int) ([]*inventory.Item, int, error)
	ExpiringWithin(ctx context.Context, ident auth.Identity, days, limit, offset int) ([]*inventory.Item, int, error)
}

// AppointmentReader exposes the scheduling read helpers.
type AppointmentReader interface {
	UpcomingForPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*scheduling.Appointment, error)
	UpcomingForDoctor(ctx context.Context, doctorID uuid.UUID, limit int) ([]*scheduling.Appointment, error)
	TodayForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*scheduling.Appointment, error)
}

// PatientDirectory resolves the caller's patient profile.
type PatientDirectory interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*identity.Patient, error)
}

// DoctorDirectory resolves the caller's doctor profile.
type DoctorDirectory interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*identity.Doctor, error)
}

// Service assembles the role-specific home screens. Pure reads; it never
// writes and holds no invariants of its own.
type Service struct {
	prescriptions PrescriptionReader
	inv           InventoryReader
	appointments  AppointmentReader
	patients      PatientDirectory
	doctors       DoctorDirectory
}

func NewService(prescriptions PrescriptionReader, inv InventoryReader, appointments AppointmentReader,
	patients PatientDirectory, doctors DoctorDirectory) *Service {
	return &Service{
		prescriptions: prescriptions,
		inv:           inv,
		appointments:  appointments,
		patients:      patients,
		doctors:       doctors,
	}
}

// PatientDashboard is the patient home screen.
type PatientDashboard struct {
	UpcomingAppointments []*scheduling.Appointment    `json:"upcoming_appointments"`
	RecentPrescriptions  []*prescription.Prescription `json:"recent_prescriptions"`
	Counts               PatientCounts                `json:"counts"`
}

type PatientCounts struct {
	UpcomingAppointments int `json:"upcoming_appointments"`
	Prescriptions        int `json:"prescriptions"`
}

// DoctorDashboard is the doctor home screen.
type DoctorDashboard struct {
	TodayAppointments    []*scheduling.Appointment    `json:"today_appointments"`
	UpcomingAppointments []*scheduling.Appointment    `json:"upcoming_appointments"`
	RecentPrescriptions  []*prescription.Prescription `json:"recent_prescriptions"`
	Counts               DoctorCounts                 `json:"counts"`
}

type DoctorCounts struct {
	TodayAppointments    int `json:"today_appointments"`
	UpcomingAppointments int `json:"upcoming_appointments"`
	Prescriptions        int `json:"prescriptions"`
}

// PharmacyDashboard is the pharmacy home screen.
type PharmacyDashboard struct {
	Queue        []*prescription.Prescription `json:"queue"`
	LowStock     []*inventory.Item            `json:"low_stock"`
	ExpiringSoon []*inventory.Item            `json:"expiring_soon"`
	Counts       PharmacyCounts               `json:"counts"`
}

type PharmacyCounts struct {
	Queue        int `json:"queue"`
	LowStock     int `json:"low_stock"`
	ExpiringSoon int `json:"expiring_soon"`
}

// For returns the dashboard shaped for the caller's role.
func (s *Service) For(ctx context.Context, ident auth.Identity) (interface{}, error) {
	switch ident.Role {
	case auth.RolePatient:
		return s.forPatient(ctx, ident)
	case auth.RoleDoctor:
		return s.forDoctor(ctx, ident)
	case auth.RolePharmacy:
		return s.forPharmacy(ctx, ident)
	default:
		return nil, apperr.New(apperr.Forbidden, "unknown role")
	}
}

func (s *Service) forPatient(ctx context.Context, ident auth.Identity) (*PatientDashboard, error) {
	patient, err := s.patients.GetByUserID(ctx, ident.UserID)
	if err != nil {
		return nil, apperr.New(apperr.NotFound, "patient profile not found")
	}

	upcoming, err := s.appointments.UpcomingForPatient(ctx, patient.ID, recentLimit)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "load upcoming appointments")
	}
	prescriptions, total, err := s.prescriptions.ListFor(ctx, ident, recentLimit, 0)
	if err != nil {
		return nil, err
	}

	return &PatientDashboard{
		UpcomingAppointments: upcoming,
		RecentPrescriptions:  prescriptions,
		Counts: PatientCounts{
			UpcomingAppointments: len(upcoming),
			Prescriptions:        total,
		},
	}, nil
}

func (s *Service) forDoctor(ctx context.Context, ident auth.Identity) (*DoctorDashboard, error) {
	doctor, err := s.doctors.GetByUserID(ctx, ident.UserID)
	if err != nil {
		return nil, apperr.New(apperr.NotFound, "doctor profile not found")
	}

	today, err := s.appointments.TodayForDoctor(ctx, doctor.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "load today's appointments")
	}
	upcoming, err := s.appointments.UpcomingForDoctor(ctx, doctor.ID, recentLimit)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "load upcoming appointments")
	}
	prescriptions, total, err := s.prescriptions.ListFor(ctx, ident, recentLimit, 0)
	if err != nil {
		return nil, err
	}

	return &DoctorDashboard{
		TodayAppointments:    today,
		UpcomingAppointments: upcoming,
		RecentPrescriptions:  prescriptions,
		Counts: DoctorCounts{
			TodayAppointments:    len(today),
			UpcomingAppointments: len(upcoming),
			Prescriptions:        total,
		},
	}, nil
}

func (s *Service) forPharmacy(ctx context.Context, ident auth.Identity) (*PharmacyDashboard, error) {
	queue, queueTotal, err := s.prescriptions.ListFor(ctx, ident, listLimit, 0)
	if err != nil {
		return nil, err
	}
	low, lowTotal, err := s.inv.LowStock(ctx, ident, listLimit, 0)
	if err != nil {
		return nil, err
	}
	expiring, expTotal, err := s.inv.ExpiringWithin(ctx, ident, expiryWindowDays, listLimit, 0)
	if err != nil {
		return nil, err
	}

	return &PharmacyDashboard{
		Queue:        queue,
		LowStock:     low,
		ExpiringSoon: expiring,
		Counts: PharmacyCounts{
			Queue:        queueTotal,
			LowStock:     lowTotal,
			ExpiringSoon: expTotal,
		},
	}, nil
}
