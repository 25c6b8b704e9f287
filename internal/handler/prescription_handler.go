package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hospital-pos/internal/models"
	"hospital-pos/internal/service"
)

type PrescriptionHandler struct {
	prescriptions *service.PrescriptionService
	fulfillment   *service.FulfillmentService
	logger        *zap.Logger
}

func NewPrescriptionHandler(prescriptions *service.PrescriptionService, fulfillment *service.FulfillmentService, logger *zap.Logger) *PrescriptionHandler {
	return &PrescriptionHandler{
		prescriptions: prescriptions,
		fulfillment:   fulfillment,
		logger:        logger,
	}
}

// Prescribe records a doctor's batch of service orders for one patient.
func (h *PrescriptionHandler) Prescribe(c *gin.Context) {
	var req models.PrescribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.prescriptions.Prescribe(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":        "Services prescribed successfully",
		"transactions":   result.Lines,
		"total_services": result.Total,
	})
}

// PendingPayment lists prescribed services awaiting payment for the cashier.
func (h *PrescriptionHandler) PendingPayment(c *gin.Context) {
	services, err := h.fulfillment.PendingPrescriptions(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, services)
}

// ProcessPayment captures payment for a patient's pending prescriptions in
// one atomic batch.
func (h *PrescriptionHandler) ProcessPayment(c *gin.Context) {
	var req models.CollectPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.fulfillment.CollectPayment(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":            "Payment processed successfully",
		"updated_services":   result.UpdatedServices,
		"department_routing": result.DepartmentRouting,
		"services":           result.Services,
		"warnings":           result.Warnings,
	})
}
