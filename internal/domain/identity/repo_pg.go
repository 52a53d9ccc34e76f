package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carelink/carelink/internal/platform/auth"
	"github.com/carelink/carelink/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx, ok := db.TxFromContext(ctx); ok {
		return tx
	}
	return pool
}

// =========== Patient Repository ===========

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

const patientCols = `id, user_id, name, date_of_birth, gender, phone, address, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.DateOfBirth, &p.Gender,
		&p.Phone, &p.Address, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient, email string) error {
	p.ID = uuid.New()
	// One statement so the user row and profile appear together.
	_, err := conn(ctx, r.pool).Exec(ctx, `
		WITH ensure_user AS (
			INSERT INTO users (id, email, role) VALUES ($2, $8, $9)
			ON CONFLICT (id) DO NOTHING
		)
		INSERT INTO patients (id, user_id, name, date_of_birth, gender, phone, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.UserID, p.Name, p.DateOfBirth, p.Gender, p.Phone, p.Address,
		email, auth.RolePatient)
	return err
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *patientRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	return scanPatient(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE user_id = $1`, userID))
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE patients SET name=$2, date_of_birth=$3, gender=$4, phone=$5, address=$6, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.DateOfBirth, p.Gender, p.Phone, p.Address)
	return err
}

// =========== Doctor Repository ===========

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorRepoPG(pool *pgxpool.Pool) DoctorRepository {
	return &doctorRepoPG{pool: pool}
}

const doctorCols = `id, user_id, name, specialty, license_number, phone, clinic_address, created_at, updated_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.Specialty, &d.LicenseNumber,
		&d.Phone, &d.ClinicAddress, &d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor, email string) error {
	d.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		WITH ensure_user AS (
			INSERT INTO users (id, email, role) VALUES ($2, $8, $9)
			ON CONFLICT (id) DO NOTHING
		)
		INSERT INTO doctors (id, user_id, name, specialty, license_number, phone, clinic_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID, d.UserID, d.Name, d.Specialty, d.LicenseNumber, d.Phone, d.ClinicAddress,
		email, auth.RoleDoctor)
	return err
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return scanDoctor(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+doctorCols+` FROM doctors WHERE id = $1`, id))
}

func (r *doctorRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error) {
	return scanDoctor(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+doctorCols+` FROM doctors WHERE user_id = $1`, userID))
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE doctors SET name=$2, specialty=$3, license_number=$4, phone=$5, clinic_address=$6, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.Name, d.Specialty, d.LicenseNumber, d.Phone, d.ClinicAddress)
	return err
}

func (r *doctorRepoPG) List(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	q := conn(ctx, r.pool)

	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM doctors`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := q.Query(ctx,
		`SELECT `+doctorCols+` FROM doctors ORDER BY name ASC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

// =========== Pharmacy Repository ===========

type pharmacyRepoPG struct{ pool *pgxpool.Pool }

func NewPharmacyRepoPG(pool *pgxpool.Pool) PharmacyRepository {
	return &pharmacyRepoPG{pool: pool}
}

const pharmacyCols = `id, user_id, name, license_number, phone, address, created_at, updated_at`

func scanPharmacy(row pgx.Row) (*Pharmacy, error) {
	var p Pharmacy
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.LicenseNumber,
		&p.Phone, &p.Address, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *pharmacyRepoPG) Create(ctx context.Context, p *Pharmacy, email string) error {
	p.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		WITH ensure_user AS (
			INSERT INTO users (id, email, role) VALUES ($2, $7, $8)
			ON CONFLICT (id) DO NOTHING
		)
		INSERT INTO pharmacies (id, user_id, name, license_number, phone, address)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.UserID, p.Name, p.LicenseNumber, p.Phone, p.Address,
		email, auth.RolePharmacy)
	return err
}

func (r *pharmacyRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Pharmacy, error) {
	return scanPharmacy(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+pharmacyCols+` FROM pharmacies WHERE id = $1`, id))
}

func (r *pharmacyRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Pharmacy, error) {
	return scanPharmacy(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+pharmacyCols+` FROM pharmacies WHERE user_id = $1`, userID))
}

func (r *pharmacyRepoPG) Update(ctx context.Context, p *Pharmacy) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE pharmacies SET name=$2, license_number=$3, phone=$4, address=$5, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.LicenseNumber, p.Phone, p.Address)
	return err
}
