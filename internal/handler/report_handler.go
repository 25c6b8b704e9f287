package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hospital-pos/internal/service"
)

type ReportHandler struct {
	reports *service.ReportService
	logger  *zap.Logger
}

func NewReportHandler(reports *service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, logger: logger}
}

// Revenue summarizes paid and completed transactions, optionally bounded by
// startDate/endDate (YYYY-MM-DD) and department.
func (h *ReportHandler) Revenue(c *gin.Context) {
	summary, err := h.reports.Revenue(
		c.Request.Context(),
		c.Query("startDate"),
		c.Query("endDate"),
		c.Query("department"),
	)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary": gin.H{
			"total_revenue":      summary.TotalRevenue,
			"total_transactions": summary.TotalTransactions,
		},
		"breakdown": summary.Breakdown,
	})
}

// DepartmentPerformance breaks down today's work per department.
func (h *ReportHandler) DepartmentPerformance(c *gin.Context) {
	rows, err := h.reports.DepartmentPerformance(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}
