package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carelink/carelink/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx, ok := db.TxFromContext(ctx); ok {
		return tx
	}
	return r.pool
}

const cols = `id, pharmacy_id, medicine_name, generic_name, manufacturer, dosage_form,
	strength, current_stock, min_stock_level, unit_price, expiry_date, batch_number,
	created_at, updated_at`

func scan(row pgx.Row) (*Item, error) {
	var i Item
	err := row.Scan(&i.ID, &i.PharmacyID, &i.MedicineName, &i.GenericName, &i.Manufacturer,
		&i.DosageForm, &i.Strength, &i.CurrentStock, &i.MinStockLevel, &i.UnitPrice,
		&i.ExpiryDate, &i.BatchNumber, &i.CreatedAt, &i.UpdatedAt)
	return &i, err
}

func (r *repoPG) Upsert(ctx context.Context, item *Item) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO inventory_items (id, pharmacy_id, medicine_name, generic_name, manufacturer,
			dosage_form, strength, current_stock, min_stock_level, unit_price, expiry_date, batch_number)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (pharmacy_id, medicine_name, batch_number) DO UPDATE SET
			generic_name = EXCLUDED.generic_name,
			manufacturer = EXCLUDED.manufacturer,
			dosage_form = EXCLUDED.dosage_form,
			strength = EXCLUDED.strength,
			current_stock = EXCLUDED.current_stock,
			min_stock_level = EXCLUDED.min_stock_level,
			unit_price = EXCLUDED.unit_price,
			expiry_date = EXCLUDED.expiry_date,
			updated_at = NOW()
		RETURNING id`,
		item.ID, item.PharmacyID, item.MedicineName, item.GenericName, item.Manufacturer,
		item.DosageForm, item.Strength, item.CurrentStock, item.MinStockLevel,
		item.UnitPrice, item.ExpiryDate, item.BatchNumber).Scan(&item.ID)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	return scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+` FROM inventory_items WHERE id = $1`, id))
}

func (r *repoPG) list(ctx context.Context, where, order string, args []interface{}, limit, offset int) ([]*Item, int, error) {
	q := r.conn(ctx)

	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_items WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM inventory_items WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		cols, where, order, n+1, n+2)
	rows, err := q.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		i, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, i)
	}
	return items, total, rows.Err()
}

func (r *repoPG) List(ctx context.Context, pharmacyID uuid.UUID, limit, offset int) ([]*Item, int, error) {
	return r.list(ctx, `pharmacy_id = $1`, `medicine_name ASC`,
		[]interface{}{pharmacyID}, limit, offset)
}

func (r *repoPG) LowStock(ctx context.Context, pharmacyID uuid.UUID, limit, offset int) ([]*Item, int, error) {
	return r.list(ctx, `pharmacy_id = $1 AND current_stock < min_stock_level`, `current_stock ASC`,
		[]interface{}{pharmacyID}, limit, offset)
}

func (r *repoPG) ExpiringBefore(ctx context.Context, pharmacyID uuid.UUID, cutoff time.Time, limit, offset int) ([]*Item, int, error) {
	return r.list(ctx, `pharmacy_id = $1 AND expiry_date IS NOT NULL AND expiry_date < $2`, `expiry_date ASC`,
		[]interface{}{pharmacyID, cutoff}, limit, offset)
}
