package prescription

import (
	"context"
	"encoding/json"
	"fmt"

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

const cols = `id, doctor_id, patient_id, appointment_id, pharmacy_id,
	medications, instructions, valid_until, status, created_at, updated_at`

func scan(row pgx.Row) (*Prescription, error) {
	var p Prescription
	var meds []byte
	err := row.Scan(&p.ID, &p.DoctorID, &p.PatientID, &p.AppointmentID, &p.PharmacyID,
		&meds, &p.Instructions, &p.ValidUntil, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(meds, &p.Medications); err != nil {
		return nil, fmt.Errorf("decode medications: %w", err)
	}
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	meds, err := json.Marshal(p.Medications)
	if err != nil {
		return fmt.Errorf("encode medications: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO prescriptions (id, doctor_id, patient_id, appointment_id, pharmacy_id,
			medications, instructions, valid_until, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.DoctorID, p.PatientID, p.AppointmentID, p.PharmacyID,
		meds, p.Instructions, p.ValidUntil, p.Status)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+` FROM prescriptions WHERE id = $1`, id))
}

func (r *repoPG) list(ctx context.Context, where string, args []interface{}, limit, offset int) ([]*Prescription, int, error) {
	q := r.conn(ctx)

	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM prescriptions WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM prescriptions WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		cols, where, n+1, n+2)
	rows, err := q.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Prescription
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return r.list(ctx, `patient_id = $1`, []interface{}{patientID}, limit, offset)
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return r.list(ctx, `doctor_id = $1`, []interface{}{doctorID}, limit, offset)
}

func (r *repoPG) ListQueue(ctx context.Context, pharmacyID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return r.list(ctx, `pharmacy_id = $1 AND status IN ('pending', 'approved')`,
		[]interface{}{pharmacyID}, limit, offset)
}

func (r *repoPG) SetStatus(ctx context.Context, id uuid.UUID, from, to Status, pharmacyID uuid.UUID) (bool, error) {
	// Compare-and-set on the current status so two dispensers racing on the
	// same prescription cannot both apply a transition.
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE prescriptions
		SET status = $3, pharmacy_id = $4, updated_at = NOW()
		WHERE id = $1 AND status = $2 AND (pharmacy_id IS NULL OR pharmacy_id = $4)`,
		id, from, to, pharmacyID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
