package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"hospital-pos/internal/models"
)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// WithTx runs fn inside a single commit/rollback boundary.
func (r *TransactionRepository) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
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

func (r *TransactionRepository) Insert(ctx context.Context, txn *models.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, patient_id, service_id, amount, quantity, status, department,
			prescribed_by, cashier_id, diagnosis, prescription_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	var prescriptionDate interface{}
	if txn.PrescriptionDate != "" {
		prescriptionDate = txn.PrescriptionDate
	}

	_, err := r.db.ExecContext(ctx, query,
		txn.ID,
		txn.PatientID,
		txn.ServiceID,
		txn.Amount,
		txn.Quantity,
		txn.Status,
		txn.Department,
		txn.PrescribedBy,
		txn.CashierID,
		txn.Diagnosis,
		prescriptionDate,
		txn.CreatedAt,
		txn.UpdatedAt,
	)

	return err
}

// FindPendingPrescription returns the pending row for one patient, service
// and prescription date, or nil when none exists. This row is the
// de-duplication target for repeated same-day orders.
func (r *TransactionRepository) FindPendingPrescription(ctx context.Context, patientID, serviceID, date string) (*models.Transaction, error) {
	query := `
		SELECT id, quantity FROM transactions
		WHERE patient_id = $1 AND service_id = $2 AND prescription_date = $3 AND status = 'pending'
	`

	txn := &models.Transaction{PatientID: patientID, ServiceID: serviceID, Status: models.StatusPending}
	err := r.db.QueryRowContext(ctx, query, patientID, serviceID, date).Scan(&txn.ID, &txn.Quantity)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return txn, nil
}

// IncrementQuantity bumps the quantity of a still-pending row. Zero rows
// affected means the row was paid or cancelled since it was read.
func (r *TransactionRepository) IncrementQuantity(ctx context.Context, id string) (int64, error) {
	query := `
		UPDATE transactions
		SET quantity = quantity + 1, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PaymentCandidates loads one patient's transactions for a set of services,
// joined with the catalog for routing.
func (r *TransactionRepository) PaymentCandidates(ctx context.Context, patientID string, serviceIDs []string) ([]models.PaymentCandidate, error) {
	query := `
		SELECT t.id, t.service_id, s.name, s.category, t.amount, t.quantity, t.status
		FROM transactions t
		JOIN services s ON t.service_id = s.id
		WHERE t.patient_id = $1 AND t.service_id = ANY($2)
	`

	rows, err := r.db.QueryContext(ctx, query, patientID, pq.Array(serviceIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []models.PaymentCandidate
	for rows.Next() {
		var c models.PaymentCandidate
		if err := rows.Scan(&c.ID, &c.ServiceID, &c.Name, &c.Category, &c.Price, &c.Quantity, &c.Status); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}

	return candidates, rows.Err()
}

// MarkPaidTx conditionally moves one row to paid inside an open transaction.
// The status guard is the optimistic concurrency control: zero rows affected
// means a concurrent collector claimed the row first.
func (r *TransactionRepository) MarkPaidTx(ctx context.Context, tx *sql.Tx, id, cashierID string) (int64, error) {
	query := `
		UPDATE transactions
		SET status = 'paid', cashier_id = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'pending'
	`

	res, err := tx.ExecContext(ctx, query, cashierID, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// StartService moves a paid row to in_progress, gated by the department's
// service category.
func (r *TransactionRepository) StartService(ctx context.Context, id, category string) (int64, error) {
	query := `
		UPDATE transactions
		SET status = 'in_progress', updated_at = NOW()
		WHERE id = $1 AND status = 'paid' AND id IN (
			SELECT t.id FROM transactions t
			JOIN services s ON t.service_id = s.id
			WHERE s.category = $2
		)
	`

	res, err := r.db.ExecContext(ctx, query, id, category)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CompleteService moves a paid or in_progress row to completed, gated by the
// department's service category.
func (r *TransactionRepository) CompleteService(ctx context.Context, id, category string) (int64, error) {
	query := `
		UPDATE transactions
		SET status = 'completed', updated_at = NOW()
		WHERE id = $1 AND status IN ('paid', 'in_progress') AND id IN (
			SELECT t.id FROM transactions t
			JOIN services s ON t.service_id = s.id
			WHERE s.category = $2
		)
	`

	res, err := r.db.ExecContext(ctx, query, id, category)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Cancel marks any non-terminal row cancelled.
func (r *TransactionRepository) Cancel(ctx context.Context, id string) (int64, error) {
	query := `
		UPDATE transactions
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'paid', 'in_progress')
	`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Queue returns a department's fulfillment queue: paid rows first, then
// in_progress, oldest update first within each group.
func (r *TransactionRepository) Queue(ctx context.Context, category string, statuses []models.TransactionStatus) ([]models.QueueItem, error) {
	statusValues := make([]string, len(statuses))
	for i, s := range statuses {
		statusValues[i] = string(s)
	}

	query := `
		SELECT t.id, t.patient_id, p.hospital_number, p.full_name,
		       s.name, s.category, t.amount, t.quantity, t.status,
		       COALESCE(t.prescribed_by, ''), t.updated_at
		FROM transactions t
		JOIN patients p ON t.patient_id = p.id
		JOIN services s ON t.service_id = s.id
		WHERE t.status = ANY($1) AND s.category = $2 AND t.prescribed_by IS NOT NULL
		ORDER BY CASE WHEN t.status = 'paid' THEN 1 ELSE 2 END, t.updated_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(statusValues), category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.QueueItem
	for rows.Next() {
		var item models.QueueItem
		err := rows.Scan(
			&item.ID,
			&item.PatientID,
			&item.HospitalNumber,
			&item.PatientName,
			&item.ServiceName,
			&item.ServiceCategory,
			&item.Amount,
			&item.Quantity,
			&item.Status,
			&item.PrescribedBy,
			&item.PaidAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// PendingPrescriptions lists prescribed rows awaiting payment across the
// clinical categories, oldest first.
func (r *TransactionRepository) PendingPrescriptions(ctx context.Context) ([]models.TransactionDetail, error) {
	query := `
		SELECT t.id, t.patient_id, t.service_id, t.amount, t.quantity, t.status, t.department,
		       COALESCE(t.diagnosis, ''), t.created_at, t.updated_at,
		       p.hospital_number, p.full_name, s.name, s.category
		FROM transactions t
		JOIN patients p ON t.patient_id = p.id
		JOIN services s ON t.service_id = s.id
		WHERE t.status = 'pending' AND t.prescribed_by IS NOT NULL
		  AND s.category IN ('Laboratory', 'Pharmacy', 'Radiology')
		ORDER BY t.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDetails(rows)
}

// List returns transactions joined with patient and service, newest first.
func (r *TransactionRepository) List(ctx context.Context, filter models.TransactionFilter) ([]models.TransactionDetail, error) {
	query := `
		SELECT t.id, t.patient_id, t.service_id, t.amount, t.quantity, t.status, t.department,
		       COALESCE(t.diagnosis, ''), t.created_at, t.updated_at,
		       p.hospital_number, p.full_name, s.name, s.category
		FROM transactions t
		JOIN patients p ON t.patient_id = p.id
		JOIN services s ON t.service_id = s.id
	`

	var conditions []string
	var params []interface{}

	if filter.Status != "" {
		params = append(params, filter.Status)
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", len(params)))
	}
	if filter.Department != "" {
		params = append(params, filter.Department)
		conditions = append(conditions, fmt.Sprintf("t.department = $%d", len(params)))
	}
	if filter.PatientID != "" {
		params = append(params, filter.PatientID)
		conditions = append(conditions, fmt.Sprintf("t.patient_id = $%d", len(params)))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY t.created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDetails(rows)
}

// PaymentQueue aggregates pending prescriptions per patient for the
// cashier's queue, earliest pending first.
func (r *TransactionRepository) PaymentQueue(ctx context.Context, search, category string) ([]models.PaymentQueueEntry, error) {
	query := `
		SELECT p.id, p.hospital_number, p.full_name,
		       string_agg(s.name, ', ') AS services,
		       array_agg(t.service_id) AS service_ids,
		       SUM(t.amount) AS total_amount,
		       COUNT(t.id) AS service_count,
		       MIN(t.created_at) AS earliest_pending
		FROM transactions t
		JOIN patients p ON t.patient_id = p.id
		JOIN services s ON t.service_id = s.id
		WHERE t.status = 'pending'
	`

	var params []interface{}
	if search != "" {
		params = append(params, "%"+search+"%")
		query += fmt.Sprintf(" AND (p.full_name ILIKE $%d OR p.hospital_number ILIKE $%d)", len(params), len(params))
	}
	if category != "" {
		params = append(params, category)
		query += fmt.Sprintf(" AND s.category = $%d", len(params))
	}

	query += `
		GROUP BY p.id, p.hospital_number, p.full_name
		ORDER BY earliest_pending ASC
	`

	rows, err := r.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.PaymentQueueEntry
	for rows.Next() {
		var e models.PaymentQueueEntry
		err := rows.Scan(
			&e.PatientID,
			&e.HospitalNumber,
			&e.PatientName,
			&e.Services,
			pq.Array(&e.ServiceIDs),
			&e.TotalAmount,
			&e.ServiceCount,
			&e.EarliestPending,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func scanDetails(rows *sql.Rows) ([]models.TransactionDetail, error) {
	var details []models.TransactionDetail
	for rows.Next() {
		var d models.TransactionDetail
		err := rows.Scan(
			&d.ID,
			&d.PatientID,
			&d.ServiceID,
			&d.Amount,
			&d.Quantity,
			&d.Status,
			&d.Department,
			&d.Diagnosis,
			&d.CreatedAt,
			&d.UpdatedAt,
			&d.HospitalNumber,
			&d.PatientName,
			&d.ServiceName,
			&d.ServiceCategory,
		)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}

	return details, rows.Err()
}
