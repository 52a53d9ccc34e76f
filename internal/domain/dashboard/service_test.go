package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/carelink/carelink/internal/domain/identity"
	"github.com/carelink/carelink/internal/domain/inventory"
	"github.com/carelink/carelink/internal/domain/prescription"
	"github.com/carelink/carelink/internal/domain/scheduling"
	"github.com/carelink/carelink/internal/platform/apperr"
	"github.com/carelink/carelink/internal/platform/auth"
)

// ---- mocks ----

type mockPrescriptions struct {
	items []*prescription.Prescription
	total int
}

func (m *mockPrescriptions) ListFor(ctx context.Context, ident auth.Identity, limit, offset int) ([]*prescription.Prescription, int, error) {
	items := m.items
	if len(items) > limit {
		items = items[:limit]
	}
	return items, m.total, nil
}

type mockInventory struct {
	low      []*inventory.Item
	expiring []*inventory.Item
	lastDays int
}

func (m *mockInventory) LowStock(ctx context.Context, ident auth.Identity, limit, offset int) ([]*inventory.Item, int, error) {
	return m.low, len(m.low), nil
}

func (m *mockInventory) ExpiringWithin(ctx context.Context, ident auth.Identity, days, limit, offset int) ([]*inventory.Item, int, error) {
	m.lastDays = days
	return m.expiring, len(m.expiring), nil
}

type mockAppointments struct {
	upcoming []*scheduling.Appointment
	today    []*scheduling.Appointment
}

func (m *mockAppointments) UpcomingForPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*scheduling.Appointment, error) {
	return m.upcoming, nil
}

func (m *mockAppointments) UpcomingForDoctor(ctx context.Context, doctorID uuid.UUID, limit int) ([]*scheduling.Appointment, error) {
	return m.upcoming, nil
}

func (m *mockAppointments) TodayForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*scheduling.Appointment, error) {
	return m.today, nil
}

type mockPatients struct{ byUser map[uuid.UUID]*identity.Patient }

func (m *mockPatients) GetByUserID(ctx context.Context, userID uuid.UUID) (*identity.Patient, error) {
	if p, ok := m.byUser[userID]; ok {
		return p, nil
	}
	return nil, pgx.ErrNoRows
}

type mockDoctors struct{ byUser map[uuid.UUID]*identity.Doctor }

func (m *mockDoctors) GetByUserID(ctx context.Context, userID uuid.UUID) (*identity.Doctor, error) {
	if d, ok := m.byUser[userID]; ok {
		return d, nil
	}
	return nil, pgx.ErrNoRows
}

type fixture struct {
	svc           *Service
	prescriptions *mockPrescriptions
	inv           *mockInventory
	appointments  *mockAppointments
	patientIdent  auth.Identity
	doctorIdent   auth.Identity
	pharmacyIdent auth.Identity
}

func newFixture() *fixture {
	f := &fixture{
		prescriptions: &mockPrescriptions{},
		inv:           &mockInventory{},
		appointments:  &mockAppointments{},
		patientIdent:  auth.Identity{UserID: uuid.New(), Role: auth.RolePatient},
		doctorIdent:   auth.Identity{UserID: uuid.New(), Role: auth.RoleDoctor},
		pharmacyIdent: auth.Identity{UserID: uuid.New(), Role: auth.RolePharmacy},
	}
	f.svc = NewService(f.prescriptions, f.inv, f.appointments,
		&mockPatients{byUser: map[uuid.UUID]*identity.Patient{
			f.patientIdent.UserID: {ID: uuid.New(), UserID: f.patientIdent.UserID, Name: "Pat"},
		}},
		&mockDoctors{byUser: map[uuid.UUID]*identity.Doctor{
			f.doctorIdent.UserID: {ID: uuid.New(), UserID: f.doctorIdent.UserID, Name: "Dr A"},
		}},
	)
	return f
}

func appts(n int) []*scheduling.Appointment {
	out := make([]*scheduling.Appointment, n)
	for i := range out {
		out[i] = &scheduling.Appointment{ID: uuid.New(), ScheduledAt: time.Now().Add(time.Duration(i+1) * time.Hour)}
	}
	return out
}

func rxs(n int) []*prescription.Prescription {
	out := make([]*prescription.Prescription, n)
	for i := range out {
		out[i] = &prescription.Prescription{ID: uuid.New(), Status: prescription.StatusPending}
	}
	return out
}

// ---- tests ----

func TestPatientDashboard(t *testing.T) {
	f := newFixture()
	f.appointments.upcoming = appts(3)
	f.prescriptions.items = rxs(2)
	f.prescriptions.total = 7

	out, err := f.svc.For(context.Background(), f.patientIdent)
	if err != nil {
		t.Fatalf("patient dashboard: %v", err)
	}
	d, ok := out.(*PatientDashboard)
	if !ok {
		t.Fatalf("expected *PatientDashboard, got %T", out)
	}
	if len(d.UpcomingAppointments) != 3 {
		t.Errorf("expected 3 upcoming appointments, got %d", len(d.UpcomingAppointments))
	}
	if len(d.RecentPrescriptions) != 2 {
		t.Errorf("expected 2 recent prescriptions, got %d", len(d.RecentPrescriptions))
	}
	if d.Counts.UpcomingAppointments != 3 || d.Counts.Prescriptions != 7 {
		t.Errorf("unexpected counts: %+v", d.Counts)
	}
}

func TestDoctorDashboard(t *testing.T) {
	f := newFixture()
	f.appointments.today = appts(2)
	f.appointments.upcoming = appts(4)
	f.prescriptions.items = rxs(5)
	f.prescriptions.total = 12

	out, err := f.svc.For(context.Background(), f.doctorIdent)
	if err != nil {
		t.Fatalf("doctor dashboard: %v", err)
	}
	d, ok := out.(*DoctorDashboard)
	if !ok {
		t.Fatalf("expected *DoctorDashboard, got %T", out)
	}
	if d.Counts.TodayAppointments != 2 || d.Counts.UpcomingAppointments != 4 || d.Counts.Prescriptions != 12 {
		t.Errorf("unexpected counts: %+v", d.Counts)
	}
}

func TestPharmacyDashboard(t *testing.T) {
	f := newFixture()
	f.prescriptions.items = rxs(3)
	f.prescriptions.total = 3
	f.inv.low = []*inventory.Item{{ID: uuid.New(), MedicineName: "Aspirin", CurrentStock: 2, MinStockLevel: 10}}
	f.inv.expiring = []*inventory.Item{{ID: uuid.New(), MedicineName: "Insulin"}}

	out, err := f.svc.For(context.Background(), f.pharmacyIdent)
	if err != nil {
		t.Fatalf("pharmacy dashboard: %v", err)
	}
	d, ok := out.(*PharmacyDashboard)
	if !ok {
		t.Fatalf("expected *PharmacyDashboard, got %T", out)
	}
	if d.Counts.Queue != 3 || d.Counts.LowStock != 1 || d.Counts.ExpiringSoon != 1 {
		t.Errorf("unexpected counts: %+v", d.Counts)
	}
	if f.inv.lastDays != expiryWindowDays {
		t.Errorf("expected %d-day expiry window, got %d", expiryWindowDays, f.inv.lastDays)
	}
}

func TestDashboardWithoutProfile(t *testing.T) {
	f := newFixture()
	stranger := auth.Identity{UserID: uuid.New(), Role: auth.RolePatient}
	if _, err := f.svc.For(context.Background(), stranger); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("expected NotFound for missing profile, got %v", err)
	}
}
