package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hospital-pos/internal/models"
	"hospital-pos/internal/repository"
)

// CatalogService manages the billable service catalog. The workflow only
// reads it; writes come from administration screens.
type CatalogService struct {
	repo   *repository.CatalogRepository
	cache  *CatalogCache
	logger *zap.Logger
}

func NewCatalogService(repo *repository.CatalogRepository, cache *CatalogCache, logger *zap.Logger) *CatalogService {
	return &CatalogService{repo: repo, cache: cache, logger: logger}
}

func (s *CatalogService) List(ctx context.Context) ([]models.Service, error) {
	return s.repo.ListServices(ctx)
}

func (s *CatalogService) Create(ctx context.Context, name, category string, price float64) (*models.Service, error) {
	if name == "" || category == "" {
		return nil, validationErrorf("service name and category are required")
	}
	if price < 0 {
		return nil, validationErrorf("price must not be negative")
	}

	now := time.Now()
	svc := &models.Service{
		ID:        uuid.New().String(),
		Name:      name,
		Category:  category,
		Price:     price,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateService(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	s.logger.Info("service created",
		zap.String("service_id", svc.ID),
		zap.String("category", svc.Category))
	return svc, nil
}

func (s *CatalogService) Update(ctx context.Context, svc *models.Service) error {
	if svc.Name == "" || svc.Category == "" {
		return validationErrorf("service name and category are required")
	}
	if svc.Price < 0 {
		return validationErrorf("price must not be negative")
	}

	affected, err := s.repo.UpdateService(ctx, svc)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	if affected == 0 {
		return ErrStateConflict
	}

	// Existing transactions keep their price snapshot; only future lookups
	// must see the edit.
	s.cache.Invalidate(ctx, svc.ID)
	return nil
}
