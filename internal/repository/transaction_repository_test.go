package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"hospital-pos/internal/models"
)

func newRepoTest(t *testing.T) (*TransactionRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}

	return NewTransactionRepository(db), mock, func() { db.Close() }
}

func detailColumns() []string {
	return []string{
		"id", "patient_id", "service_id", "amount", "quantity", "status", "department",
		"diagnosis", "created_at", "updated_at",
		"hospital_number", "full_name", "name", "category",
	}
}

func TestListAppliesFilters(t *testing.T) {
	repo, mock, cleanup := newRepoTest(t)
	defer cleanup()

	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	rows := sqlmock.NewRows(detailColumns()).
		AddRow("txn-1", "patient-1", "svc-fbc", 3000.0, 1, "paid", "lab",
			"malaria", now, now, "HOSP20260001", "Ada Obi", "Full Blood Count", "Laboratory")

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE t.status = $1 AND t.patient_id = $2 ORDER BY t.created_at DESC`)).
		WithArgs(models.StatusPaid, "patient-1").
		WillReturnRows(rows)

	details, err := repo.List(context.Background(), models.TransactionFilter{
		Status:    models.StatusPaid,
		PatientID: "patient-1",
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(details) != 1 {
		t.Fatalf("got %d rows, want 1", len(details))
	}
	d := details[0]
	if d.Status != models.StatusPaid {
		t.Errorf("status = %s, want paid", d.Status)
	}
	if d.PatientName != "Ada Obi" || d.ServiceName != "Full Blood Count" {
		t.Errorf("joined fields = %s / %s", d.PatientName, d.ServiceName)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestListUnfiltered(t *testing.T) {
	repo, mock, cleanup := newRepoTest(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`JOIN services s ON t.service_id = s.id`)).
		WillReturnRows(sqlmock.NewRows(detailColumns()))

	details, err := repo.List(context.Background(), models.TransactionFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(details) != 0 {
		t.Errorf("got %d rows, want none", len(details))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPaymentQueueScansAggregates(t *testing.T) {
	repo, mock, cleanup := newRepoTest(t)
	defer cleanup()

	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "hospital_number", "full_name", "services", "service_ids",
		"total_amount", "service_count", "earliest_pending",
	}).AddRow("patient-1", "HOSP20260001", "Ada Obi", "Full Blood Count, Paracetamol",
		[]byte("{svc-fbc,svc-drug}"), 3200.0, 2, now)

	mock.ExpectQuery(regexp.QuoteMeta(`string_agg(s.name, ', ') AS services`)).
		WillReturnRows(rows)

	entries, err := repo.PaymentQueue(context.Background(), "", "")
	if err != nil {
		t.Fatalf("PaymentQueue failed: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if len(e.ServiceIDs) != 2 || e.ServiceIDs[0] != "svc-fbc" || e.ServiceIDs[1] != "svc-drug" {
		t.Errorf("ServiceIDs = %v", e.ServiceIDs)
	}
	if e.TotalAmount != 3200 {
		t.Errorf("TotalAmount = %v, want 3200", e.TotalAmount)
	}
	if e.ServiceCount != 2 {
		t.Errorf("ServiceCount = %d, want 2", e.ServiceCount)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPaymentQueueSearchFilter(t *testing.T) {
	repo, mock, cleanup := newRepoTest(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`(p.full_name ILIKE $1 OR p.hospital_number ILIKE $1)`)).
		WithArgs("%ada%", "Laboratory").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "hospital_number", "full_name", "services", "service_ids",
			"total_amount", "service_count", "earliest_pending",
		}))

	entries, err := repo.PaymentQueue(context.Background(), "ada", "Laboratory")
	if err != nil {
		t.Fatalf("PaymentQueue failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries, want none", len(entries))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPendingPrescriptionsScopedToClinicalCategories(t *testing.T) {
	repo, mock, cleanup := newRepoTest(t)
	defer cleanup()

	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	rows := sqlmock.NewRows(detailColumns()).
		AddRow("txn-1", "patient-1", "svc-fbc", 3000.0, 1, "pending", "lab",
			"", now, now, "HOSP20260001", "Ada Obi", "Full Blood Count", "Laboratory")

	mock.ExpectQuery(regexp.QuoteMeta(`s.category IN ('Laboratory', 'Pharmacy', 'Radiology')`)).
		WillReturnRows(rows)

	details, err := repo.PendingPrescriptions(context.Background())
	if err != nil {
		t.Fatalf("PendingPrescriptions failed: %v", err)
	}
	if len(details) != 1 {
		t.Fatalf("got %d rows, want 1", len(details))
	}
	if details[0].Status != models.StatusPending {
		t.Errorf("status = %s, want pending", details[0].Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
