package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/carelink/carelink/internal/domain/identity"
	"github.com/carelink/carelink/internal/platform/apperr"
	"github.com/carelink/carelink/internal/platform/auth"
)

// PharmacyDirectory resolves the caller's pharmacy profile.
type PharmacyDirectory interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*identity.Pharmacy, error)
}

type Service struct {
	repo       Repository
	pharmacies PharmacyDirectory
	now        func() time.Time
}

func NewService(repo Repository, pharmacies PharmacyDirectory) *Service {
	return &Service{repo: repo, pharmacies: pharmacies, now: time.Now}
}

func (s *Service) ownPharmacy(ctx context.Context, ident auth.Identity) (*identity.Pharmacy, error) {
	if ident.Role != auth.RolePharmacy {
		return nil, apperr.New(apperr.Forbidden, "only pharmacies manage inventory")
	}
	pharmacy, err := s.pharmacies.GetByUserID(ctx, ident.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "pharmacy profile not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "load pharmacy profile")
	}
	return pharmacy, nil
}

// UpsertInput carries the writable item fields. A zero min_stock_level means
// "use the default threshold".
type UpsertInput struct {
	MedicineName  string     `json:"medicine_name"`
	GenericName   string     `json:"generic_name,omitempty"`
	Manufacturer  string     `json:"manufacturer,omitempty"`
	DosageForm    string     `json:"dosage_form,omitempty"`
	Strength      string     `json:"strength,omitempty"`
	CurrentStock  int        `json:"current_stock"`
	MinStockLevel *int       `json:"min_stock_level,omitempty"`
	UnitPrice     float64    `json:"unit_price,omitempty"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
	BatchNumber   string     `json:"batch_number,omitempty"`
}

// Upsert creates or replaces the caller's stock record for a medicine batch.
func (s *Service) Upsert(ctx context.Context, ident auth.Identity, in *UpsertInput) (*Item, error) {
	pharmacy, err := s.ownPharmacy(ctx, ident)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.MedicineName) == "" {
		return nil, apperr.New(apperr.ValidationFailed, "medicine_name is required")
	}
	if in.CurrentStock < 0 {
		return nil, apperr.New(apperr.ValidationFailed, "current_stock must not be negative")
	}
	minLevel := DefaultMinStockLevel
	if in.MinStockLevel != nil {
		if *in.MinStockLevel < 0 {
			return nil, apperr.New(apperr.ValidationFailed, "min_stock_level must not be negative")
		}
		minLevel = *in.MinStockLevel
	}

	item := &Item{
		PharmacyID:    pharmacy.ID,
		MedicineName:  in.MedicineName,
		GenericName:   in.GenericName,
		Manufacturer:  in.Manufacturer,
		DosageForm:    in.DosageForm,
		Strength:      in.Strength,
		CurrentStock:  in.CurrentStock,
		MinStockLevel: minLevel,
		UnitPrice:     in.UnitPrice,
		ExpiryDate:    in.ExpiryDate,
		BatchNumber:   in.BatchNumber,
	}
	if err := s.repo.Upsert(ctx, item); err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "upsert inventory item")
	}
	return s.repo.GetByID(ctx, item.ID)
}

// List returns all of the caller's items ordered by medicine name.
func (s *Service) List(ctx context.Context, ident auth.Identity, limit, offset int) ([]*Item, int, error) {
	pharmacy, err := s.ownPharmacy(ctx, ident)
	if err != nil {
		return nil, 0, err
	}
	items, total, err := s.repo.List(ctx, pharmacy.ID, limit, offset)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.Internal, err, "list inventory")
	}
	return items, total, nil
}

// LowStock returns the caller's items strictly below their threshold.
func (s *Service) LowStock(ctx context.Context, ident auth.Identity, limit, offset int) ([]*Item, int, error) {
	pharmacy, err := s.ownPharmacy(ctx, ident)
	if err != nil {
		return nil, 0, err
	}
	items, total, err := s.repo.LowStock(ctx, pharmacy.ID, limit, offset)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.Internal, err, "list low stock")
	}
	return items, total, nil
}

// ExpiringWithin returns the caller's items expiring strictly before
// today + days.
func (s *Service) ExpiringWithin(ctx context.Context, ident auth.Identity, days, limit, offset int) ([]*Item, int, error) {
	pharmacy, err := s.ownPharmacy(ctx, ident)
	if err != nil {
		return nil, 0, err
	}
	if days <= 0 {
		return nil, 0, apperr.New(apperr.ValidationFailed, "days must be positive")
	}
	// expiry_date carries no time of day, so the cutoff must not either: an
	// item expiring exactly today+days stays out regardless of the clock.
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	cutoff := today.AddDate(0, 0, days)
	items, total, err := s.repo.ExpiringBefore(ctx, pharmacy.ID, cutoff, limit, offset)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.Internal, err, "list expiring items")
	}
	return items, total, nil
}
