package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"

	"hospital-pos/internal/models"
	"hospital-pos/internal/repository"
)

func newRegistrationTest(t *testing.T) (*RegistrationService, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}

	svc := NewRegistrationService(repository.NewPatientRepository(db), zap.NewNop())
	return svc, mock, func() { db.Close() }
}

const (
	settingQuery       = `SELECT setting_value FROM hospital_settings WHERE setting_key = $1`
	settingWriteQuery  = `SET setting_value = $1, updated_at = NOW()`
	insertPatientQuery = `INSERT INTO patients (`
)

func expectSetting(mock sqlmock.Sqlmock, key, value string) {
	mock.ExpectQuery(regexp.QuoteMeta(settingQuery)).
		WithArgs(key).
		WillReturnRows(sqlmock.NewRows([]string{"setting_value"}).AddRow(value))
}

func TestRegisterAllocatesSequentialNumber(t *testing.T) {
	svc, mock, cleanup := newRegistrationTest(t)
	defer cleanup()

	year := time.Now().Year()

	mock.ExpectBegin()
	expectSetting(mock, "hospital_number_prefix", "HOSP")
	expectSetting(mock, "current_year", strconv.Itoa(year))
	expectSetting(mock, "hospital_number_counter", "41")
	mock.ExpectExec(regexp.QuoteMeta(settingWriteQuery)).
		WithArgs("42", "hospital_number_counter", "41").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertPatientQuery)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	patient, err := svc.Register(context.Background(), &models.RegisterPatientRequest{
		FullName:    "Ada Obi",
		Age:         34,
		Gender:      "female",
		PatientType: "new",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	want := fmt.Sprintf("HOSP%d0041", year)
	if patient.HospitalNumber != want {
		t.Errorf("HospitalNumber = %s, want %s", patient.HospitalNumber, want)
	}
	if patient.ID == "" {
		t.Error("expected a generated patient id")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRegisterRetriesLostCounter(t *testing.T) {
	svc, mock, cleanup := newRegistrationTest(t)
	defer cleanup()

	year := time.Now().Year()

	mock.ExpectBegin()
	expectSetting(mock, "hospital_number_prefix", "HOSP")
	expectSetting(mock, "current_year", strconv.Itoa(year))
	expectSetting(mock, "hospital_number_counter", "41")
	// Another registration claimed 41 first; the guard misses, the counter is
	// re-read and the next value is claimed.
	mock.ExpectExec(regexp.QuoteMeta(settingWriteQuery)).
		WithArgs("42", "hospital_number_counter", "41").
		WillReturnResult(sqlmock.NewResult(0, 0))
	expectSetting(mock, "hospital_number_counter", "42")
	mock.ExpectExec(regexp.QuoteMeta(settingWriteQuery)).
		WithArgs("43", "hospital_number_counter", "42").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertPatientQuery)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	patient, err := svc.Register(context.Background(), &models.RegisterPatientRequest{
		FullName:    "Ada Obi",
		Age:         34,
		Gender:      "female",
		PatientType: "new",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	want := fmt.Sprintf("HOSP%d0042", year)
	if patient.HospitalNumber != want {
		t.Errorf("HospitalNumber = %s, want %s", patient.HospitalNumber, want)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRegisterResetsCounterOnNewYear(t *testing.T) {
	svc, mock, cleanup := newRegistrationTest(t)
	defer cleanup()

	year := time.Now().Year()

	mock.ExpectBegin()
	expectSetting(mock, "hospital_number_prefix", "HOSP")
	expectSetting(mock, "current_year", strconv.Itoa(year-1))
	expectSetting(mock, "hospital_number_counter", "873")
	mock.ExpectExec(regexp.QuoteMeta(settingWriteQuery)).
		WithArgs(strconv.Itoa(year), "current_year").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(settingWriteQuery)).
		WithArgs("1", "hospital_number_counter").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(settingWriteQuery)).
		WithArgs("2", "hospital_number_counter", "1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertPatientQuery)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	patient, err := svc.Register(context.Background(), &models.RegisterPatientRequest{
		FullName:    "Ada Obi",
		Age:         34,
		Gender:      "female",
		PatientType: "revisit",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	want := fmt.Sprintf("HOSP%d0001", year)
	if patient.HospitalNumber != want {
		t.Errorf("HospitalNumber = %s, want %s", patient.HospitalNumber, want)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _, cleanup := newRegistrationTest(t)
	defer cleanup()

	tests := []struct {
		name string
		req  *models.RegisterPatientRequest
	}{
		{
			name: "missing name",
			req:  &models.RegisterPatientRequest{Age: 34, Gender: "female", PatientType: "new"},
		},
		{
			name: "invalid age",
			req:  &models.RegisterPatientRequest{FullName: "Ada Obi", Gender: "female", PatientType: "new"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("err = %v, want ValidationError", err)
			}
		})
	}
}

func TestFormatHospitalNumber(t *testing.T) {
	tests := []struct {
		prefix  string
		year    int
		counter int
		want    string
	}{
		{"HOSP", 2026, 1, "HOSP20260001"},
		{"HOSP", 2026, 41, "HOSP20260041"},
		{"HOSP", 2026, 12345, "HOSP202612345"},
		{"GH", 2025, 999, "GH20250999"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := formatHospitalNumber(tt.prefix, tt.year, tt.counter)
			if got != tt.want {
				t.Errorf("formatHospitalNumber(%s, %d, %d) = %s, want %s", tt.prefix, tt.year, tt.counter, got, tt.want)
			}
		})
	}
}
