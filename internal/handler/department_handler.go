package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hospital-pos/internal/models"
	"hospital-pos/internal/service"
)

// DepartmentHandler serves one clinical department's fulfillment dashboard.
// Lab, pharmacy and radiology each get an instance bound to their own
// routes; the category gate in the service layer stops cross-department
// actions regardless of which routes a caller reaches.
type DepartmentHandler struct {
	department  models.Department
	fulfillment *service.FulfillmentService
	logger      *zap.Logger
}

func NewDepartmentHandler(department models.Department, fulfillment *service.FulfillmentService, logger *zap.Logger) *DepartmentHandler {
	return &DepartmentHandler{
		department:  department,
		fulfillment: fulfillment,
		logger:      logger,
	}
}

// Queue lists the department's paid and in-progress work, paid first.
func (h *DepartmentHandler) Queue(c *gin.Context) {
	var statuses []models.TransactionStatus
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			statuses = append(statuses, models.TransactionStatus(strings.TrimSpace(s)))
		}
	}

	items, err := h.fulfillment.ListQueue(c.Request.Context(), h.department, statuses)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// StartService moves a paid row into in_progress.
func (h *DepartmentHandler) StartService(c *gin.Context) {
	id := c.Param("id")

	if err := h.fulfillment.StartService(c.Request.Context(), h.department, id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Service started successfully",
		"service_id": id,
	})
}

// CompleteService marks a paid or in-progress row completed.
func (h *DepartmentHandler) CompleteService(c *gin.Context) {
	id := c.Param("id")

	if err := h.fulfillment.CompleteService(c.Request.Context(), h.department, id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Service completed successfully",
		"service_id": id,
	})
}
