package prescription

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists prescriptions. Lists are newest-first.
type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Prescription, int, error)
	// ListQueue returns the pharmacy's actionable prescriptions: assigned to
	// it and still pending or approved.
	ListQueue(ctx context.Context, pharmacyID uuid.UUID, limit, offset int) ([]*Prescription, int, error)
	// SetStatus applies from->to only if the row still carries from and is
	// unassigned or assigned to pharmacyID; it records the assignment and
	// reports whether a row was updated.
	SetStatus(ctx context.Context, id uuid.UUID, from, to Status, pharmacyID uuid.UUID) (bool, error)
}
