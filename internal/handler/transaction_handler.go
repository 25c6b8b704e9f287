package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hospital-pos/internal/models"
	"hospital-pos/internal/service"
)

type TransactionHandler struct {
	fulfillment *service.FulfillmentService
	logger      *zap.Logger
}

func NewTransactionHandler(fulfillment *service.FulfillmentService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{fulfillment: fulfillment, logger: logger}
}

// List returns transactions filtered by status, department and patient.
func (h *TransactionHandler) List(c *gin.Context) {
	filter := models.TransactionFilter{
		Status:     models.TransactionStatus(c.Query("status")),
		Department: models.Department(c.Query("department")),
		PatientID:  c.Query("patient_id"),
	}

	transactions, err := h.fulfillment.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, transactions)
}

// PaymentQueue returns patients with pending payments, earliest first.
func (h *TransactionHandler) PaymentQueue(c *gin.Context) {
	entries, err := h.fulfillment.PaymentQueue(c.Request.Context(), c.Query("search"), c.Query("service_type"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// CreateSale records an ad-hoc cashier sale, paid on the spot.
func (h *TransactionHandler) CreateSale(c *gin.Context) {
	var req models.SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txn, err := h.fulfillment.RecordSale(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Transaction created successfully",
		"transaction": txn,
	})
}

// Cancel is the administrative override to the terminal cancelled state.
func (h *TransactionHandler) Cancel(c *gin.Context) {
	id := c.Param("id")

	if err := h.fulfillment.Cancel(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transaction cancelled successfully"})
}
