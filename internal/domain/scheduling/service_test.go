package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/carelink/carelink/internal/domain/identity"
	"github.com/carelink/carelink/internal/platform/apperr"
	"github.com/carelink/carelink/internal/platform/auth"
)

// ---- mocks ----

type mockRepo struct {
	items map[uuid.UUID]*Appointment
	order []uuid.UUID
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: map[uuid.UUID]*Appointment{}}
}

func (m *mockRepo) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.items[a.ID] = a
	m.order = append(m.order, a.ID)
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	if a, ok := m.items[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *mockRepo) collect(match func(*Appointment) bool) []*Appointment {
	var all []*Appointment
	for i := len(m.order) - 1; i >= 0; i-- {
		a := m.items[m.order[i]]
		if match(a) {
			all = append(all, a)
		}
	}
	return all
}

func page(all []*Appointment, limit, offset int) ([]*Appointment, int) {
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total
}

func (m *mockRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	items, total := page(m.collect(func(a *Appointment) bool { return a.PatientID == patientID }), limit, offset)
	return items, total, nil
}

func (m *mockRepo) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	items, total := page(m.collect(func(a *Appointment) bool { return a.DoctorID == doctorID }), limit, offset)
	return items, total, nil
}

func (m *mockRepo) SetStatus(ctx context.Context, id uuid.UUID, status AppointmentStatus) error {
	if a, ok := m.items[id]; ok {
		a.Status = status
		a.UpdatedAt = time.Now()
		return nil
	}
	return pgx.ErrNoRows
}

func (m *mockRepo) UpcomingByPatient(ctx context.Context, patientID uuid.UUID, after time.Time, limit int) ([]*Appointment, error) {
	items := m.collect(func(a *Appointment) bool {
		return a.PatientID == patientID && a.ScheduledAt.After(after) && a.Status != StatusCancelled
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *mockRepo) UpcomingByDoctor(ctx context.Context, doctorID uuid.UUID, after time.Time, limit int) ([]*Appointment, error) {
	items := m.collect(func(a *Appointment) bool {
		return a.DoctorID == doctorID && a.ScheduledAt.After(after) && a.Status != StatusCancelled
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *mockRepo) BetweenByDoctor(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Appointment, error) {
	return m.collect(func(a *Appointment) bool {
		return a.DoctorID == doctorID && !a.ScheduledAt.Before(from) && a.ScheduledAt.Before(to) &&
			a.Status != StatusCancelled
	}), nil
}

type mockDoctors struct {
	byID   map[uuid.UUID]*identity.Doctor
	byUser map[uuid.UUID]*identity.Doctor
}

func (m *mockDoctors) GetByID(ctx context.Context, id uuid.UUID) (*identity.Doctor, error) {
	if d, ok := m.byID[id]; ok {
		return d, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *mockDoctors) GetByUserID(ctx context.Context, userID uuid.UUID) (*identity.Doctor, error) {
	if d, ok := m.byUser[userID]; ok {
		return d, nil
	}
	return nil, pgx.ErrNoRows
}

type mockPatients struct{ byUser map[uuid.UUID]*identity.Patient }

func (m *mockPatients) GetByUserID(ctx context.Context, userID uuid.UUID) (*identity.Patient, error) {
	if p, ok := m.byUser[userID]; ok {
		return p, nil
	}
	return nil, pgx.ErrNoRows
}

type fixture struct {
	svc          *Service
	repo         *mockRepo
	patientIdent auth.Identity
	patientID    uuid.UUID
	doctorIdent  auth.Identity
	doctorID     uuid.UUID
	now          time.Time
}

func newFixture() *fixture {
	f := &fixture{repo: newMockRepo(), now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}

	f.patientIdent = auth.Identity{UserID: uuid.New(), Role: auth.RolePatient}
	patient := &identity.Patient{ID: uuid.New(), UserID: f.patientIdent.UserID, Name: "Pat"}
	f.patientID = patient.ID

	f.doctorIdent = auth.Identity{UserID: uuid.New(), Role: auth.RoleDoctor}
	doctor := &identity.Doctor{ID: uuid.New(), UserID: f.doctorIdent.UserID, Name: "Dr A"}
	f.doctorID = doctor.ID

	f.svc = NewService(f.repo,
		&mockDoctors{
			byID:   map[uuid.UUID]*identity.Doctor{doctor.ID: doctor},
			byUser: map[uuid.UUID]*identity.Doctor{doctor.UserID: doctor},
		},
		&mockPatients{byUser: map[uuid.UUID]*identity.Patient{patient.UserID: patient}},
	)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) book(t *testing.T, at time.Time) *Appointment {
	t.Helper()
	a, err := f.svc.Book(context.Background(), f.patientIdent, &BookInput{
		DoctorID:    f.doctorID,
		ScheduledAt: at,
		Reason:      "checkup",
	})
	if err != nil {
		t.Fatalf("book appointment: %v", err)
	}
	return a
}

// ---- tests ----

func TestBook(t *testing.T) {
	f := newFixture()
	a := f.book(t, f.now.Add(24*time.Hour))
	if a.Status != StatusScheduled {
		t.Errorf("new appointment should be scheduled, got %s", a.Status)
	}
	if a.PatientID != f.patientID || a.DoctorID != f.doctorID {
		t.Error("appointment not bound to patient and doctor")
	}
}

func TestBookRejectsPastTime(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Book(context.Background(), f.patientIdent, &BookInput{
		DoctorID:    f.doctorID,
		ScheduledAt: f.now.Add(-time.Hour),
	})
	if !apperr.Is(err, apperr.ValidationFailed) {
		t.Errorf("expected ValidationFailed, got %v", err)
	}
}

func TestBookRejectsUnknownDoctor(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Book(context.Background(), f.patientIdent, &BookInput{
		DoctorID:    uuid.New(),
		ScheduledAt: f.now.Add(time.Hour),
	})
	if !apperr.Is(err, apperr.NotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestBookRejectsNonPatient(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Book(context.Background(), f.doctorIdent, &BookInput{
		DoctorID:    f.doctorID,
		ScheduledAt: f.now.Add(time.Hour),
	})
	if !apperr.Is(err, apperr.Forbidden) {
		t.Errorf("expected Forbidden, got %v", err)
	}
}

func TestBookAllowsOverlap(t *testing.T) {
	f := newFixture()
	at := f.now.Add(48 * time.Hour)
	f.book(t, at)
	// Same doctor, same time: allowed, there is no slot checking
	f.book(t, at)
}

func TestCancelByPatientAndDoctor(t *testing.T) {
	f := newFixture()
	a := f.book(t, f.now.Add(time.Hour))

	cancelled, err := f.svc.Cancel(context.Background(), f.patientIdent, a.ID)
	if err != nil {
		t.Fatalf("patient cancel: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Errorf("expected cancelled, got %s", cancelled.Status)
	}

	// Cancelling again conflicts
	if _, err := f.svc.Cancel(context.Background(), f.patientIdent, a.ID); !apperr.Is(err, apperr.InvalidTransition) {
		t.Errorf("double cancel should conflict, got %v", err)
	}

	b := f.book(t, f.now.Add(2*time.Hour))
	if _, err := f.svc.Cancel(context.Background(), f.doctorIdent, b.ID); err != nil {
		t.Errorf("doctor cancel: %v", err)
	}
}

func TestCancelByStranger(t *testing.T) {
	f := newFixture()
	a := f.book(t, f.now.Add(time.Hour))

	stranger := auth.Identity{UserID: uuid.New(), Role: auth.RolePatient}
	if _, err := f.svc.Cancel(context.Background(), stranger, a.ID); !apperr.Is(err, apperr.Forbidden) {
		t.Errorf("stranger cancel should be Forbidden, got %v", err)
	}
}

func TestSetStatus(t *testing.T) {
	f := newFixture()
	a := f.book(t, f.now.Add(time.Hour))

	confirmed, err := f.svc.SetStatus(context.Background(), f.doctorIdent, a.ID, StatusConfirmed)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != StatusConfirmed {
		t.Errorf("expected confirmed, got %s", confirmed.Status)
	}

	if _, err := f.svc.SetStatus(context.Background(), f.doctorIdent, a.ID, StatusCancelled); !apperr.Is(err, apperr.ValidationFailed) {
		t.Errorf("doctors may only confirm or complete, got %v", err)
	}
	if _, err := f.svc.SetStatus(context.Background(), f.patientIdent, a.ID, StatusConfirmed); !apperr.Is(err, apperr.Forbidden) {
		t.Errorf("patients cannot set status, got %v", err)
	}
}

func TestUpcomingAndTodayHelpers(t *testing.T) {
	f := newFixture()
	today := f.book(t, f.now.Add(2*time.Hour))
	tomorrow := f.book(t, f.now.Add(26*time.Hour))
	cancelledAppt := f.book(t, f.now.Add(3*time.Hour))
	if _, err := f.svc.Cancel(context.Background(), f.patientIdent, cancelledAppt.ID); err != nil {
		t.Fatal(err)
	}

	upcoming, err := f.svc.UpcomingForPatient(context.Background(), f.patientID, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(upcoming) != 2 {
		t.Errorf("expected 2 upcoming (cancelled excluded), got %d", len(upcoming))
	}

	todays, err := f.svc.TodayForDoctor(context.Background(), f.doctorID)
	if err != nil {
		t.Fatal(err)
	}
	if len(todays) != 1 || todays[0].ID != today.ID {
		t.Errorf("expected only today's appointment, got %d", len(todays))
	}
	_ = tomorrow
}
