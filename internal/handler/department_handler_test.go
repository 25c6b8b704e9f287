package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hospital-pos/internal/models"
	"hospital-pos/internal/repository"
	"hospital-pos/internal/service"
)

func newDepartmentRouter(t *testing.T, department models.Department) (*gin.Engine, sqlmock.Sqlmock, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}

	logger := zap.NewNop()
	repo := repository.NewTransactionRepository(db)
	catalog := service.NewCatalogCache(repository.NewCatalogRepository(db), nil, logger)
	fulfillment := service.NewFulfillmentService(repo, catalog, logger)
	h := NewDepartmentHandler(department, fulfillment, logger)

	router := gin.New()
	router.GET("/paid-services", h.Queue)
	router.PUT("/start-service/:id", h.StartService)
	router.PUT("/complete-service/:id", h.CompleteService)

	return router, mock, func() { db.Close() }
}

func TestStartServiceEndpoint(t *testing.T) {
	router, mock, cleanup := newDepartmentRouter(t, models.DepartmentLab)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`SET status = 'in_progress', updated_at = NOW()`)).
		WithArgs("txn-1", "Laboratory").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/start-service/txn-1", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body["service_id"] != "txn-1" {
		t.Errorf("service_id = %s, want txn-1", body["service_id"])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestStartServiceEndpointConflict(t *testing.T) {
	router, mock, cleanup := newDepartmentRouter(t, models.DepartmentLab)
	defer cleanup()

	// Unpaid, missing or cross-department rows all produce the same guarded
	// zero-row update and the same response.
	mock.ExpectExec(regexp.QuoteMeta(`SET status = 'in_progress', updated_at = NOW()`)).
		WithArgs("txn-gone", "Laboratory").
		WillReturnResult(sqlmock.NewResult(0, 0))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/start-service/txn-gone", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404, body: %s", w.Code, w.Body.String())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestQueueEndpointRejectsBadStatus(t *testing.T) {
	router, _, cleanup := newDepartmentRouter(t, models.DepartmentPharmacy)
	defer cleanup()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/paid-services?status=shipped", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body: %s", w.Code, w.Body.String())
	}
}

func TestCompleteServiceEndpoint(t *testing.T) {
	router, mock, cleanup := newDepartmentRouter(t, models.DepartmentRadiology)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`SET status = 'completed', updated_at = NOW()`)).
		WithArgs("txn-9", "Radiology").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/complete-service/txn-9", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
