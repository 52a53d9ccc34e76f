package identity

import (
	"context"

	"github.com/google/uuid"
)

// PatientRepository persists patient profiles. Create also ensures the
// backing user row exists.
type PatientRepository interface {
	Create(ctx context.Context, p *Patient, email string) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
}

// DoctorRepository persists doctor profiles.
type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor, email string) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	List(ctx context.Context, limit, offset int) ([]*Doctor, int, error)
}

// PharmacyRepository persists pharmacy profiles.
type PharmacyRepository interface {
	Create(ctx context.Context, p *Pharmacy, email string) error
	GetByID(ctx context.Context, id uuid.UUID) (*Pharmacy, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Pharmacy, error)
	Update(ctx context.Context, p *Pharmacy) error
}
