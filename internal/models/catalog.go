package models

import (
	"strings"
	"time"
)

const (
	CategoryMedical    = "Medical"
	CategoryLaboratory = "Laboratory"
	CategoryPharmacy   = "Pharmacy"
	CategoryRadiology  = "Radiology"
)

// Service is a billable catalog item. Category determines which department
// fulfills a transaction for it.
type Service struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Category  string    `json:"category" db:"category"`
	Price     float64   `json:"price" db:"price"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PrescriptionDepartment resolves a service category to the department a
// prescribed transaction is routed to. Unrecognized categories stay with the
// cashier.
func PrescriptionDepartment(category string) Department {
	switch strings.ToLower(category) {
	case "laboratory":
		return DepartmentLab
	case "pharmacy":
		return DepartmentPharmacy
	case "radiology":
		return DepartmentRadiology
	default:
		return DepartmentCashier
	}
}

// SaleDepartment resolves a category for an ad-hoc cashier sale. Medical
// services route to the doctor; everything else follows the prescription
// mapping.
func SaleDepartment(category string) Department {
	if strings.EqualFold(category, CategoryMedical) {
		return DepartmentDoctor
	}
	return PrescriptionDepartment(category)
}

// CategoryForDepartment maps a clinical department back to the service
// category its queue is gated on. Empty for departments that have no
// fulfillment queue.
func CategoryForDepartment(d Department) string {
	switch d {
	case DepartmentLab:
		return CategoryLaboratory
	case DepartmentPharmacy:
		return CategoryPharmacy
	case DepartmentRadiology:
		return CategoryRadiology
	default:
		return ""
	}
}

// RoutingLabel is the display name used in payment routing summaries.
func RoutingLabel(category string) string {
	switch strings.ToLower(category) {
	case "laboratory":
		return "Lab"
	case "pharmacy":
		return "Pharmacy"
	case "radiology":
		return "Radiology"
	default:
		return "Other"
	}
}

// Patient is the foreign-key target of transactions. Identified by a
// generated hospital number.
type Patient struct {
	ID             string    `json:"id" db:"id"`
	HospitalNumber string    `json:"hospital_number" db:"hospital_number"`
	FullName       string    `json:"full_name" db:"full_name"`
	Age            int       `json:"age" db:"age"`
	Gender         string    `json:"gender" db:"gender"`
	Contact        string    `json:"contact" db:"contact"`
	PatientType    string    `json:"patient_type" db:"patient_type"`
	RegisteredAt   time.Time `json:"registered_at" db:"registered_at"`
}

// RegisterPatientRequest creates a patient and allocates a hospital number.
type RegisterPatientRequest struct {
	FullName    string `json:"full_name" binding:"required"`
	Age         int    `json:"age" binding:"required,min=1"`
	Gender      string `json:"gender" binding:"required,oneof=male female"`
	Contact     string `json:"contact"`
	PatientType string `json:"patient_type" binding:"required,oneof=new revisit"`
}

// Database schema
const Schema = `
CREATE TABLE IF NOT EXISTS patients (
    id VARCHAR(36) PRIMARY KEY,
    hospital_number VARCHAR(50) UNIQUE NOT NULL,
    full_name VARCHAR(255) NOT NULL,
    age INTEGER NOT NULL CHECK (age > 0 AND age < 150),
    gender VARCHAR(10) NOT NULL,
    contact VARCHAR(20),
    patient_type VARCHAR(10) NOT NULL,
    registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_patients_hospital_number ON patients(hospital_number);
CREATE INDEX IF NOT EXISTS idx_patients_full_name ON patients(full_name);

CREATE TABLE IF NOT EXISTS services (
    id VARCHAR(36) PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    category VARCHAR(100) NOT NULL,
    price DECIMAL(10,2) NOT NULL CHECK (price >= 0),
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_services_category ON services(category);

CREATE TABLE IF NOT EXISTS transactions (
    id VARCHAR(36) PRIMARY KEY,
    patient_id VARCHAR(36) NOT NULL REFERENCES patients(id) ON DELETE RESTRICT,
    service_id VARCHAR(36) NOT NULL REFERENCES services(id) ON DELETE RESTRICT,
    amount DECIMAL(10,2) NOT NULL CHECK (amount >= 0),
    quantity INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 1),
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    department VARCHAR(50) NOT NULL,
    prescribed_by VARCHAR(36),
    cashier_id VARCHAR(36),
    diagnosis TEXT,
    prescription_date DATE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_transactions_patient_id ON transactions(patient_id);
CREATE INDEX IF NOT EXISTS idx_transactions_status ON transactions(status);
CREATE INDEX IF NOT EXISTS idx_transactions_department ON transactions(department);
CREATE INDEX IF NOT EXISTS idx_transactions_status_department ON transactions(status, department);
CREATE INDEX IF NOT EXISTS idx_transactions_prescription_date ON transactions(prescription_date);

CREATE TABLE IF NOT EXISTS hospital_settings (
    setting_key VARCHAR(100) PRIMARY KEY,
    setting_value TEXT NOT NULL,
    description TEXT,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

INSERT INTO hospital_settings (setting_key, setting_value, description) VALUES
    ('hospital_number_prefix', 'HOSP', 'Prefix for generated hospital numbers'),
    ('hospital_number_counter', '1', 'Next sequential hospital number'),
    ('current_year', EXTRACT(YEAR FROM NOW())::TEXT, 'Year the counter belongs to')
ON CONFLICT (setting_key) DO NOTHING;
`
