package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists pharmacy stock records.
type Repository interface {
	// Upsert creates or replaces the item keyed by
	// (pharmacy_id, medicine_name, batch_number).
	Upsert(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	List(ctx context.Context, pharmacyID uuid.UUID, limit, offset int) ([]*Item, int, error)
	// LowStock returns items with current_stock strictly below
	// min_stock_level, lowest stock first.
	LowStock(ctx context.Context, pharmacyID uuid.UUID, limit, offset int) ([]*Item, int, error)
	// ExpiringBefore returns items whose expiry date is strictly before the
	// cutoff, soonest first. Items without an expiry date never match.
	ExpiringBefore(ctx context.Context, pharmacyID uuid.UUID, cutoff time.Time, limit, offset int) ([]*Item, int, error)
}
