package repository

import (
	"context"
	"database/sql"
	"fmt"
)

type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// RevenueRow is one department/category group in the revenue breakdown.
type RevenueRow struct {
	Department      string  `json:"department"`
	ServiceCategory string  `json:"service_category"`
	TotalRevenue    float64 `json:"total_revenue"`
	Transactions    int     `json:"total_transactions"`
}

// Revenue sums paid and completed transactions grouped by department and
// service category. Dates are calendar dates (YYYY-MM-DD); empty filters are
// ignored.
func (r *ReportRepository) Revenue(ctx context.Context, startDate, endDate, department string) ([]RevenueRow, error) {
	query := `
		SELECT t.department, s.category, COALESCE(SUM(t.amount), 0), COUNT(t.id)
		FROM transactions t
		JOIN services s ON t.service_id = s.id
		WHERE t.status IN ('paid', 'completed')
	`

	var params []interface{}
	if startDate != "" {
		params = append(params, startDate)
		query += fmt.Sprintf(" AND t.created_at::date >= $%d", len(params))
	}
	if endDate != "" {
		params = append(params, endDate)
		query += fmt.Sprintf(" AND t.created_at::date <= $%d", len(params))
	}
	if department != "" {
		params = append(params, department)
		query += fmt.Sprintf(" AND t.department = $%d", len(params))
	}

	query += `
		GROUP BY t.department, s.category
		ORDER BY 3 DESC
	`

	rows, err := r.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []RevenueRow
	for rows.Next() {
		var row RevenueRow
		if err := rows.Scan(&row.Department, &row.ServiceCategory, &row.TotalRevenue, &row.Transactions); err != nil {
			return nil, err
		}
		results = append(results, row)
	}

	return results, rows.Err()
}

// PerformanceRow is one department's activity for the current day.
type PerformanceRow struct {
	Department        string  `json:"department"`
	TotalRevenue      float64 `json:"total_revenue"`
	TotalServices     int     `json:"total_services"`
	CompletedServices int     `json:"completed_services"`
	PendingServices   int     `json:"pending_services"`
}

// DepartmentPerformance breaks down today's paid and completed work per
// department.
func (r *ReportRepository) DepartmentPerformance(ctx context.Context) ([]PerformanceRow, error) {
	query := `
		SELECT t.department,
		       COALESCE(SUM(t.amount), 0),
		       COUNT(t.id),
		       COUNT(CASE WHEN t.status = 'completed' THEN 1 END),
		       COUNT(CASE WHEN t.status = 'paid' THEN 1 END)
		FROM transactions t
		WHERE t.status IN ('paid', 'completed') AND t.created_at::date = CURRENT_DATE
		GROUP BY t.department
		ORDER BY 2 DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []PerformanceRow
	for rows.Next() {
		var row PerformanceRow
		err := rows.Scan(&row.Department, &row.TotalRevenue, &row.TotalServices, &row.CompletedServices, &row.PendingServices)
		if err != nil {
			return nil, err
		}
		results = append(results, row)
	}

	return results, rows.Err()
}
