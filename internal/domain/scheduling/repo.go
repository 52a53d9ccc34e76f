package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists appointments. Lists are newest-first unless stated.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	SetStatus(ctx context.Context, id uuid.UUID, status AppointmentStatus) error
	// UpcomingByPatient returns non-cancelled appointments after the given
	// time, soonest first.
	UpcomingByPatient(ctx context.Context, patientID uuid.UUID, after time.Time, limit int) ([]*Appointment, error)
	// UpcomingByDoctor returns non-cancelled appointments after the given
	// time, soonest first.
	UpcomingByDoctor(ctx context.Context, doctorID uuid.UUID, after time.Time, limit int) ([]*Appointment, error)
	// BetweenByDoctor returns non-cancelled appointments inside [from, to),
	// soonest first.
	BetweenByDoctor(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Appointment, error)
}
