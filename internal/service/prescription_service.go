package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hospital-pos/internal/metrics"
	"hospital-pos/internal/models"
	"hospital-pos/internal/repository"
)

// CatalogResolver looks up catalog entries for routing and pricing.
type CatalogResolver interface {
	Resolve(ctx context.Context, serviceID string) (*models.Service, error)
}

// PrescriptionService records what a doctor ordered for a patient, merging
// duplicate same-day orders into a quantity count instead of redundant rows.
type PrescriptionService struct {
	repo     *repository.TransactionRepository
	patients *repository.PatientRepository
	catalog  CatalogResolver
	logger   *zap.Logger
}

func NewPrescriptionService(repo *repository.TransactionRepository, patients *repository.PatientRepository, catalog CatalogResolver, logger *zap.Logger) *PrescriptionService {
	return &PrescriptionService{
		repo:     repo,
		patients: patients,
		catalog:  catalog,
		logger:   logger,
	}
}

// Prescribe persists a batch of service orders as pending transactions.
// Line items are processed independently: a service that cannot be resolved
// is logged and skipped without aborting the rest of the batch.
func (s *PrescriptionService) Prescribe(ctx context.Context, req *models.PrescribeRequest) (*models.PrescribeResult, error) {
	if req.PatientID == "" {
		return nil, validationErrorf("patient id is required")
	}
	if len(req.ServiceIDs) == 0 {
		return nil, validationErrorf("at least one service is required")
	}

	patient, err := s.patients.GetByID(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, validationErrorf("patient %s not found", req.PatientID)
	}

	today := time.Now().Format("2006-01-02")
	result := &models.PrescribeResult{}

	for _, serviceID := range req.ServiceIDs {
		line, err := s.prescribeOne(ctx, req, serviceID, today)
		if err != nil {
			s.logger.Error("failed to prescribe service",
				zap.String("patient_id", req.PatientID),
				zap.String("service_id", serviceID),
				zap.Error(err))
			continue
		}
		if line == nil {
			s.logger.Warn("prescribed service not found, skipping",
				zap.String("patient_id", req.PatientID),
				zap.String("service_id", serviceID))
			continue
		}

		metrics.PrescriptionsRecorded.Inc()
		result.Lines = append(result.Lines, *line)
	}

	result.Total = len(result.Lines)
	s.logger.Info("prescription batch recorded",
		zap.String("patient_id", req.PatientID),
		zap.Int("requested", len(req.ServiceIDs)),
		zap.Int("recorded", result.Total))

	return result, nil
}

func (s *PrescriptionService) prescribeOne(ctx context.Context, req *models.PrescribeRequest, serviceID, today string) (*models.PrescribedLine, error) {
	svc, err := s.catalog.Resolve(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, nil
	}

	department := models.PrescriptionDepartment(svc.Category)

	existing, err := s.repo.FindPendingPrescription(ctx, req.PatientID, serviceID, today)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		affected, err := s.repo.IncrementQuantity(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
		if affected > 0 {
			return &models.PrescribedLine{
				TransactionID:   existing.ID,
				ServiceName:     svc.Name,
				ServiceCategory: svc.Category,
				Amount:          svc.Price,
				Department:      department,
				Quantity:        existing.Quantity + 1,
				Merged:          true,
			}, nil
		}
		// The pending row moved on between the read and the write; fall
		// through and open a fresh line.
	}

	now := time.Now()
	doctorID := req.DoctorID
	txn := &models.Transaction{
		ID:               uuid.New().String(),
		PatientID:        req.PatientID,
		ServiceID:        serviceID,
		Amount:           svc.Price,
		Quantity:         1,
		Status:           models.StatusPending,
		Department:       department,
		PrescribedBy:     &doctorID,
		Diagnosis:        req.Diagnosis,
		PrescriptionDate: today,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Insert(ctx, txn); err != nil {
		return nil, err
	}

	return &models.PrescribedLine{
		TransactionID:   txn.ID,
		ServiceName:     svc.Name,
		ServiceCategory: svc.Category,
		Amount:          svc.Price,
		Department:      department,
		Quantity:        1,
	}, nil
}
