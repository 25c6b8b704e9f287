package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hospital-pos/internal/metrics"
	"hospital-pos/internal/models"
	"hospital-pos/internal/repository"
)

// FulfillmentService drives transactions through the status lifecycle and
// performs atomic batch payment capture. All transition guards live in the
// update predicates; a zero-row result is the only race signal.
type FulfillmentService struct {
	repo    *repository.TransactionRepository
	catalog CatalogResolver
	logger  *zap.Logger
}

func NewFulfillmentService(repo *repository.TransactionRepository, catalog CatalogResolver, logger *zap.Logger) *FulfillmentService {
	return &FulfillmentService{
		repo:    repo,
		catalog: catalog,
		logger:  logger,
	}
}

// ListQueue returns a department's fulfillment queue. Statuses defaults to
// paid and in_progress; paid rows sort first, then oldest update first.
func (s *FulfillmentService) ListQueue(ctx context.Context, department models.Department, statuses []models.TransactionStatus) ([]models.QueueItem, error) {
	category := models.CategoryForDepartment(department)
	if category == "" {
		return nil, validationErrorf("department %s has no fulfillment queue", department)
	}

	if len(statuses) == 0 {
		statuses = []models.TransactionStatus{models.StatusPaid, models.StatusInProgress}
	}
	for _, status := range statuses {
		if !status.Valid() {
			return nil, validationErrorf("invalid status %q", status)
		}
	}

	return s.repo.Queue(ctx, category, statuses)
}

// StartService advances one paid transaction to in_progress on behalf of a
// department.
func (s *FulfillmentService) StartService(ctx context.Context, department models.Department, id string) error {
	category := models.CategoryForDepartment(department)
	if category == "" {
		return validationErrorf("department %s has no fulfillment queue", department)
	}

	affected, err := s.repo.StartService(ctx, id, category)
	if err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	if affected == 0 {
		return ErrStateConflict
	}

	s.logger.Info("service started",
		zap.String("transaction_id", id),
		zap.String("department", string(department)))
	return nil
}

// CompleteService marks one paid or in_progress transaction completed on
// behalf of a department.
func (s *FulfillmentService) CompleteService(ctx context.Context, department models.Department, id string) error {
	category := models.CategoryForDepartment(department)
	if category == "" {
		return validationErrorf("department %s has no fulfillment queue", department)
	}

	affected, err := s.repo.CompleteService(ctx, id, category)
	if err != nil {
		return fmt.Errorf("failed to complete service: %w", err)
	}
	if affected == 0 {
		return ErrStateConflict
	}

	metrics.ServicesCompleted.WithLabelValues(string(department)).Inc()
	s.logger.Info("service completed",
		zap.String("transaction_id", id),
		zap.String("department", string(department)))
	return nil
}

// Cancel is the administrative override: any non-terminal transaction can be
// cancelled, and a cancelled row never comes back.
func (s *FulfillmentService) Cancel(ctx context.Context, id string) error {
	affected, err := s.repo.Cancel(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to cancel transaction: %w", err)
	}
	if affected == 0 {
		return ErrStateConflict
	}

	s.logger.Info("transaction cancelled", zap.String("transaction_id", id))
	return nil
}

// CollectPayment captures payment for every pending line item of one
// patient in a single atomic batch. Either all eligible rows move to paid or
// none do; a retry after a lost race reports the claimed rows as already
// processed instead of double-charging.
func (s *FulfillmentService) CollectPayment(ctx context.Context, req *models.CollectPaymentRequest) (*models.PaymentResult, error) {
	if req.PatientID == "" || req.CashierID == "" {
		return nil, validationErrorf("patient id and cashier id are required")
	}
	if len(req.ServiceIDs) == 0 {
		return nil, validationErrorf("at least one service is required")
	}
	if req.TotalAmount < 0 {
		return nil, validationErrorf("total amount must not be negative")
	}

	unique, duplicates := dedupe(req.ServiceIDs)

	candidates, err := s.repo.PaymentCandidates(ctx, req.PatientID, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment candidates: %w", err)
	}

	var pending []models.PaymentCandidate
	var alreadyProcessed []string
	for _, c := range candidates {
		if c.Status == models.StatusPending {
			pending = append(pending, c)
		} else {
			alreadyProcessed = append(alreadyProcessed, c.ServiceID)
		}
	}

	if len(pending) == 0 {
		return nil, &NothingToProcessError{
			Duplicates:       duplicates,
			AlreadyProcessed: alreadyProcessed,
			TotalRequested:   len(req.ServiceIDs),
		}
	}

	err = s.repo.WithTx(ctx, func(tx *sql.Tx) error {
		for _, c := range pending {
			affected, err := s.repo.MarkPaidTx(ctx, tx, c.ID, req.CashierID)
			if err != nil {
				return fmt.Errorf("failed to update transaction %s: %w", c.ID, err)
			}
			if affected == 0 {
				// Lost the row to a concurrent collector; abort the whole
				// batch so no partial capture survives.
				return fmt.Errorf("transaction %s: %w", c.ID, ErrStateConflict)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &models.PaymentResult{
		UpdatedServices:   len(pending),
		DepartmentRouting: make(map[string][]models.RoutedService),
		Warnings: models.PaymentWarnings{
			Duplicates:       duplicates,
			AlreadyProcessed: alreadyProcessed,
		},
	}
	for _, c := range pending {
		label := models.RoutingLabel(c.Category)
		result.DepartmentRouting[label] = append(result.DepartmentRouting[label], models.RoutedService{
			Name:     c.Name,
			Quantity: c.Quantity,
		})
		result.Services = append(result.Services, models.PaymentLine{
			TransactionID: c.ID,
			ServiceID:     c.ServiceID,
			Name:          c.Name,
			Category:      c.Category,
			Price:         c.Price,
			Quantity:      c.Quantity,
		})
	}

	metrics.PaymentsCollected.Inc()
	s.logger.Info("payment collected",
		zap.String("patient_id", req.PatientID),
		zap.String("cashier_id", req.CashierID),
		zap.Int("services", len(pending)),
		zap.Float64("total_amount", req.TotalAmount))

	return result, nil
}

// RecordSale records an ad-hoc cashier sale directly as paid, with no
// prescriber attached.
func (s *FulfillmentService) RecordSale(ctx context.Context, req *models.SaleRequest) (*models.Transaction, error) {
	if req.PatientID == "" || req.ServiceID == "" || req.CashierID == "" {
		return nil, validationErrorf("patient id, service id and cashier id are required")
	}
	if req.Amount < 0 {
		return nil, validationErrorf("amount must not be negative")
	}

	svc, err := s.catalog.Resolve(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, validationErrorf("service %s not found", req.ServiceID)
	}

	now := time.Now()
	cashierID := req.CashierID
	txn := &models.Transaction{
		ID:         uuid.New().String(),
		PatientID:  req.PatientID,
		ServiceID:  req.ServiceID,
		Amount:     req.Amount,
		Quantity:   1,
		Status:     models.StatusPaid,
		Department: models.SaleDepartment(svc.Category),
		CashierID:  &cashierID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Insert(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	return txn, nil
}

// ListTransactions returns filtered transaction detail rows.
func (s *FulfillmentService) ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.TransactionDetail, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, validationErrorf("invalid status %q", filter.Status)
	}
	return s.repo.List(ctx, filter)
}

// PendingPrescriptions lists prescribed rows awaiting payment.
func (s *FulfillmentService) PendingPrescriptions(ctx context.Context) ([]models.TransactionDetail, error) {
	return s.repo.PendingPrescriptions(ctx)
}

// PaymentQueue returns the cashier's per-patient aggregate of pending work.
func (s *FulfillmentService) PaymentQueue(ctx context.Context, search, category string) ([]models.PaymentQueueEntry, error) {
	return s.repo.PaymentQueue(ctx, search, category)
}

// dedupe preserves first-seen order and reports each repeated id once.
func dedupe(ids []string) (unique []string, duplicates []string) {
	seen := make(map[string]int, len(ids))
	for _, id := range ids {
		seen[id]++
		if seen[id] == 1 {
			unique = append(unique, id)
		} else if seen[id] == 2 {
			duplicates = append(duplicates, id)
		}
	}
	return unique, duplicates
}
