package service

import (
	"context"

	"hospital-pos/internal/repository"
)

// ReportService produces revenue and throughput summaries for the
// administration dashboards.
type ReportService struct {
	repo *repository.ReportRepository
}

func NewReportService(repo *repository.ReportRepository) *ReportService {
	return &ReportService{repo: repo}
}

// RevenueSummary pairs the per-group breakdown with overall totals.
type RevenueSummary struct {
	TotalRevenue      float64                 `json:"total_revenue"`
	TotalTransactions int                     `json:"total_transactions"`
	Breakdown         []repository.RevenueRow `json:"breakdown"`
}

func (s *ReportService) Revenue(ctx context.Context, startDate, endDate, department string) (*RevenueSummary, error) {
	breakdown, err := s.repo.Revenue(ctx, startDate, endDate, department)
	if err != nil {
		return nil, err
	}

	summary := &RevenueSummary{Breakdown: breakdown}
	for _, row := range breakdown {
		summary.TotalRevenue += row.TotalRevenue
		summary.TotalTransactions += row.Transactions
	}
	return summary, nil
}

func (s *ReportService) DepartmentPerformance(ctx context.Context) ([]repository.PerformanceRow, error) {
	return s.repo.DepartmentPerformance(ctx)
}
