package repository

import (
	"context"
	"database/sql"
	"fmt"

	"hospital-pos/internal/models"
)

type PatientRepository struct {
	db *sql.DB
}

func NewPatientRepository(db *sql.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

// WithTx runs fn inside a single commit/rollback boundary. Patient inserts
// share this boundary with the hospital-number counter advance.
func (r *PatientRepository) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PatientRepository) InsertTx(ctx context.Context, tx *sql.Tx, p *models.Patient) error {
	query := `
		INSERT INTO patients (id, hospital_number, full_name, age, gender, contact, patient_type, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := tx.ExecContext(ctx, query,
		p.ID,
		p.HospitalNumber,
		p.FullName,
		p.Age,
		p.Gender,
		p.Contact,
		p.PatientType,
		p.RegisteredAt,
	)
	return err
}

// GetByID returns one patient, or nil when it does not exist.
func (r *PatientRepository) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	query := `
		SELECT id, hospital_number, full_name, age, gender, COALESCE(contact, ''), patient_type, registered_at
		FROM patients WHERE id = $1
	`

	p := &models.Patient{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.HospitalNumber,
		&p.FullName,
		&p.Age,
		&p.Gender,
		&p.Contact,
		&p.PatientType,
		&p.RegisteredAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return p, nil
}

func (r *PatientRepository) List(ctx context.Context) ([]models.Patient, error) {
	query := `
		SELECT id, hospital_number, full_name, age, gender, COALESCE(contact, ''), patient_type, registered_at
		FROM patients
		ORDER BY registered_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patients []models.Patient
	for rows.Next() {
		var p models.Patient
		err := rows.Scan(&p.ID, &p.HospitalNumber, &p.FullName, &p.Age, &p.Gender, &p.Contact, &p.PatientType, &p.RegisteredAt)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}

	return patients, rows.Err()
}

// GetSettingTx reads one hospital setting inside an open transaction.
func (r *PatientRepository) GetSettingTx(ctx context.Context, tx *sql.Tx, key string) (string, error) {
	var value string
	err := tx.QueryRowContext(ctx,
		`SELECT setting_value FROM hospital_settings WHERE setting_key = $1`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, nil
}

// AdvanceSettingTx conditionally replaces a setting value, guarded by the
// previously read value. Zero rows affected means a concurrent writer won.
func (r *PatientRepository) AdvanceSettingTx(ctx context.Context, tx *sql.Tx, key, old, next string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE hospital_settings
		SET setting_value = $1, updated_at = NOW()
		WHERE setting_key = $2 AND setting_value = $3
	`, next, key, old)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetSettingTx unconditionally rewrites a setting value.
func (r *PatientRepository) SetSettingTx(ctx context.Context, tx *sql.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE hospital_settings
		SET setting_value = $1, updated_at = NOW()
		WHERE setting_key = $2
	`, value, key)
	return err
}
