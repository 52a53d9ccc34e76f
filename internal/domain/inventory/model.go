package inventory

import (
	"time"

	"github.com/google/uuid"
)

// DefaultMinStockLevel applies when an item is created without a threshold.
const DefaultMinStockLevel = 10

// Item is one stocked medicine batch owned by a single pharmacy. The batch
// identity is (pharmacy_id, medicine_name, batch_number); writing the same
// identity again replaces the record.
type Item struct {
	ID            uuid.UUID  `json:"id"`
	PharmacyID    uuid.UUID  `json:"pharmacy_id"`
	MedicineName  string     `json:"medicine_name"`
	GenericName   string     `json:"generic_name,omitempty"`
	Manufacturer  string     `json:"manufacturer,omitempty"`
	DosageForm    string     `json:"dosage_form,omitempty"`
	Strength      string     `json:"strength,omitempty"`
	CurrentStock  int        `json:"current_stock"`
	MinStockLevel int        `json:"min_stock_level"`
	UnitPrice     float64    `json:"unit_price,omitempty"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
	BatchNumber   string     `json:"batch_number,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Low reports whether the item is strictly below its reorder threshold.
func (i *Item) Low() bool {
	return i.CurrentStock < i.MinStockLevel
}
