package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hospital-pos/internal/models"
	"hospital-pos/internal/repository"
)

const (
	settingPrefix  = "hospital_number_prefix"
	settingCounter = "hospital_number_counter"
	settingYear    = "current_year"

	counterAttempts = 3
)

// RegistrationService registers patients and allocates sequential hospital
// numbers. The counter advance and the patient insert share one database
// transaction, and the counter is advanced with a value-guarded update so
// concurrent registrations can never mint the same number.
type RegistrationService struct {
	patients *repository.PatientRepository
	logger   *zap.Logger
}

func NewRegistrationService(patients *repository.PatientRepository, logger *zap.Logger) *RegistrationService {
	return &RegistrationService{patients: patients, logger: logger}
}

func (s *RegistrationService) Register(ctx context.Context, req *models.RegisterPatientRequest) (*models.Patient, error) {
	if req.FullName == "" {
		return nil, validationErrorf("full name is required")
	}
	if req.Age < 1 {
		return nil, validationErrorf("valid age is required")
	}

	var patient *models.Patient
	err := s.patients.WithTx(ctx, func(tx *sql.Tx) error {
		number, err := s.nextHospitalNumberTx(ctx, tx)
		if err != nil {
			return err
		}

		patient = &models.Patient{
			ID:             uuid.New().String(),
			HospitalNumber: number,
			FullName:       req.FullName,
			Age:            req.Age,
			Gender:         req.Gender,
			Contact:        req.Contact,
			PatientType:    req.PatientType,
			RegisteredAt:   time.Now(),
		}
		return s.patients.InsertTx(ctx, tx, patient)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register patient: %w", err)
	}

	s.logger.Info("patient registered",
		zap.String("patient_id", patient.ID),
		zap.String("hospital_number", patient.HospitalNumber))

	return patient, nil
}

func (s *RegistrationService) List(ctx context.Context) ([]models.Patient, error) {
	return s.patients.List(ctx)
}

// Get returns one patient, or a state conflict when it does not exist.
func (s *RegistrationService) Get(ctx context.Context, id string) (*models.Patient, error) {
	patient, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, ErrStateConflict
	}
	return patient, nil
}

// nextHospitalNumberTx reads the counter, resets it on year rollover, and
// claims the current value with a guarded advance. A lost guard re-reads and
// retries.
func (s *RegistrationService) nextHospitalNumberTx(ctx context.Context, tx *sql.Tx) (string, error) {
	year := time.Now().Year()

	prefix, err := s.patients.GetSettingTx(ctx, tx, settingPrefix)
	if err != nil {
		return "", err
	}
	storedYear, err := s.patients.GetSettingTx(ctx, tx, settingYear)
	if err != nil {
		return "", err
	}
	counter, err := s.patients.GetSettingTx(ctx, tx, settingCounter)
	if err != nil {
		return "", err
	}

	if storedYear != strconv.Itoa(year) {
		if err := s.patients.SetSettingTx(ctx, tx, settingYear, strconv.Itoa(year)); err != nil {
			return "", err
		}
		if err := s.patients.SetSettingTx(ctx, tx, settingCounter, "1"); err != nil {
			return "", err
		}
		counter = "1"
	}

	for attempt := 0; attempt < counterAttempts; attempt++ {
		n, err := strconv.Atoi(counter)
		if err != nil {
			return "", fmt.Errorf("corrupt hospital number counter %q: %w", counter, err)
		}

		affected, err := s.patients.AdvanceSettingTx(ctx, tx, settingCounter, counter, strconv.Itoa(n+1))
		if err != nil {
			return "", err
		}
		if affected > 0 {
			return formatHospitalNumber(prefix, year, n), nil
		}

		counter, err = s.patients.GetSettingTx(ctx, tx, settingCounter)
		if err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("failed to claim hospital number after %d attempts", counterAttempts)
}

func formatHospitalNumber(prefix string, year, counter int) string {
	return fmt.Sprintf("%s%d%04d", prefix, year, counter)
}
