package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hospital-pos/internal/models"
	"hospital-pos/internal/service"
)

type PatientHandler struct {
	registration *service.RegistrationService
	logger       *zap.Logger
}

func NewPatientHandler(registration *service.RegistrationService, logger *zap.Logger) *PatientHandler {
	return &PatientHandler{registration: registration, logger: logger}
}

func (h *PatientHandler) List(c *gin.Context) {
	patients, err := h.registration.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, patients)
}

func (h *PatientHandler) Get(c *gin.Context) {
	patient, err := h.registration.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, patient)
}

// Register creates a patient with a freshly allocated hospital number.
func (h *PatientHandler) Register(c *gin.Context) {
	var req models.RegisterPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patient, err := h.registration.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Patient registered successfully",
		"patient": patient,
	})
}
