package models

import "time"

type TransactionStatus string
type Department string

const (
	StatusPending    TransactionStatus = "pending"
	StatusPaid       TransactionStatus = "paid"
	StatusInProgress TransactionStatus = "in_progress"
	StatusCompleted  TransactionStatus = "completed"
	StatusCancelled  TransactionStatus = "cancelled"

	DepartmentLab       Department = "lab"
	DepartmentPharmacy  Department = "pharmacy"
	DepartmentRadiology Department = "radiology"
	DepartmentDoctor    Department = "doctor"
	DepartmentCashier   Department = "cashier"
)

// allowedTransitions encodes the forward-only lifecycle. Cancellation is
// handled separately because it is reachable from every non-terminal state.
var allowedTransitions = map[TransactionStatus][]TransactionStatus{
	StatusPending:    {StatusPaid},
	StatusPaid:       {StatusInProgress, StatusCompleted},
	StatusInProgress: {StatusCompleted},
}

// CanTransition reports whether a row may move from one status to another.
func CanTransition(from, to TransactionStatus) bool {
	if to == StatusCancelled {
		return !from.Terminal()
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s TransactionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Transaction is one billable service line for one patient.
type Transaction struct {
	ID               string            `json:"id" db:"id"`
	PatientID        string            `json:"patient_id" db:"patient_id"`
	ServiceID        string            `json:"service_id" db:"service_id"`
	Amount           float64           `json:"amount" db:"amount"`
	Quantity         int               `json:"quantity" db:"quantity"`
	Status           TransactionStatus `json:"status" db:"status"`
	Department       Department        `json:"department" db:"department"`
	PrescribedBy     *string           `json:"prescribed_by,omitempty" db:"prescribed_by"`
	CashierID        *string           `json:"cashier_id,omitempty" db:"cashier_id"`
	Diagnosis        string            `json:"diagnosis,omitempty" db:"diagnosis"`
	PrescriptionDate string            `json:"prescription_date,omitempty" db:"prescription_date"`
	CreatedAt        time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at" db:"updated_at"`
}

// TransactionDetail is a transaction joined with its patient and service.
type TransactionDetail struct {
	Transaction
	HospitalNumber  string `json:"hospital_number"`
	PatientName     string `json:"patient_name"`
	ServiceName     string `json:"service_name"`
	ServiceCategory string `json:"service_category"`
}

// TransactionFilter narrows transaction listings. Zero values mean "any".
type TransactionFilter struct {
	PatientID  string
	Status     TransactionStatus
	Department Department
}

// QueueItem is one row on a department's fulfillment queue.
type QueueItem struct {
	ID              string            `json:"id"`
	PatientID       string            `json:"patient_id"`
	HospitalNumber  string            `json:"hospital_number"`
	PatientName     string            `json:"patient_name"`
	ServiceName     string            `json:"service_name"`
	ServiceCategory string            `json:"service_category"`
	Amount          float64           `json:"price"`
	Quantity        int               `json:"quantity"`
	Status          TransactionStatus `json:"status"`
	PrescribedBy    string            `json:"prescribed_by"`
	PaidAt          time.Time         `json:"paid_at"`
}

// PaymentQueueEntry aggregates one patient's pending prescriptions for the
// cashier's queue view.
type PaymentQueueEntry struct {
	PatientID       string    `json:"patient_id"`
	HospitalNumber  string    `json:"hospital_number"`
	PatientName     string    `json:"patient_name"`
	Services        string    `json:"services"`
	ServiceIDs      []string  `json:"service_ids"`
	TotalAmount     float64   `json:"total_amount"`
	ServiceCount    int       `json:"service_count"`
	EarliestPending time.Time `json:"earliest_pending"`
}

// PrescribeRequest is a doctor's batch of service orders for one patient.
type PrescribeRequest struct {
	PatientID  string   `json:"patient_id" binding:"required"`
	ServiceIDs []string `json:"service_ids" binding:"required,min=1"`
	Diagnosis  string   `json:"diagnosis"`
	DoctorID   string   `json:"doctor_id" binding:"required"`
}

// PrescribedLine summarizes one created or quantity-bumped prescription.
type PrescribedLine struct {
	TransactionID   string     `json:"id"`
	ServiceName     string     `json:"service_name"`
	ServiceCategory string     `json:"service_category"`
	Amount          float64    `json:"amount"`
	Department      Department `json:"department"`
	Quantity        int        `json:"quantity"`
	Merged          bool       `json:"merged"`
}

// PrescribeResult reports the per-line outcomes of a prescription batch.
type PrescribeResult struct {
	Lines []PrescribedLine `json:"transactions"`
	Total int              `json:"total_services"`
}

// CollectPaymentRequest is the cashier's batch payment capture.
type CollectPaymentRequest struct {
	PatientID   string   `json:"patient_id" binding:"required"`
	ServiceIDs  []string `json:"service_ids" binding:"required,min=1"`
	TotalAmount float64  `json:"total_amount" binding:"min=0"`
	CashierID   string   `json:"cashier_id" binding:"required"`
}

// RoutedService is one paid line in the department routing summary.
type RoutedService struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// PaymentResult is the outcome of a committed payment batch.
type PaymentResult struct {
	UpdatedServices   int                        `json:"updated_services"`
	DepartmentRouting map[string][]RoutedService `json:"department_routing"`
	Services          []PaymentLine              `json:"services"`
	Warnings          PaymentWarnings            `json:"warnings"`
}

// PaymentLine is one service captured by a payment batch.
type PaymentLine struct {
	TransactionID string  `json:"id"`
	ServiceID     string  `json:"service_id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Price         float64 `json:"price"`
	Quantity      int     `json:"quantity"`
}

// PaymentWarnings carries non-fatal diagnostics for a payment batch.
type PaymentWarnings struct {
	Duplicates       []string `json:"duplicates"`
	AlreadyProcessed []string `json:"already_processed"`
}

// PaymentCandidate is one of a patient's transactions considered for a
// payment batch, joined with its catalog entry.
type PaymentCandidate struct {
	ID        string
	ServiceID string
	Name      string
	Category  string
	Price     float64
	Quantity  int
	Status    TransactionStatus
}

// SaleRequest is a cashier's ad-hoc sale, recorded directly as paid.
type SaleRequest struct {
	PatientID string  `json:"patient_id" binding:"required"`
	ServiceID string  `json:"service_id" binding:"required"`
	Amount    float64 `json:"amount" binding:"min=0"`
	CashierID string  `json:"cashier_id" binding:"required"`
}
