package models

import (
	"time"

	"gorm.io/gorm"
)

type Prescription struct {
	ID                 uint               `json:"id" gorm:"primaryKey"`
	UserID             uint               `json:"user_id" gorm:"not null;index"`
	PrescriptionNumber string             `json:"prescription_number" gorm:"unique"`
	DoctorName         string             `json:"doctor_name"`
	Status             string             `json:"status" gorm:"default:'pending'"` // pending, uploaded, verified, rejected, processing
	PrescriptionDate   *time.Time         `json:"prescription_date"`
	ExpiryDate         *time.Time         `json:"expiry_date"`
	OrderID            *uint              `json:"order_id"`
	OCRConfidence      float64            `json:"ocr_confidence"`
	RawText            string             `json:"raw_text" gorm:"type:text"`
	Files              []PrescriptionFile `json:"files" gorm:"foreignKey:PrescriptionID"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
	DeletedAt          gorm.DeletedAt     `json:"deleted_at" gorm:"index"`
}

type PrescriptionStatus string

const (
	PrescriptionPending    PrescriptionStatus = "pending"
	PrescriptionUploaded   PrescriptionStatus = "uploaded"
	PrescriptionVerified   PrescriptionStatus = "verified"
	PrescriptionRejected   PrescriptionStatus = "rejected"
	PrescriptionProcessing PrescriptionStatus = "processing"
)

type PrescriptionFile struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	PrescriptionID uint      `json:"prescription_id" gorm:"not null;index"`
	FileURL        string    `json:"file_url" gorm:"not null"`
	FileName       string    `json:"file_name"`
	UploadedAt     time.Time `json:"uploaded_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// ExtractedMedicine is one OCR-derived medicine mention. Rows are written once
// by the upload flow and never mutated afterwards.
type ExtractedMedicine struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	PrescriptionID uint      `json:"prescription_id" gorm:"not null;index"`
	Name           string    `json:"name" gorm:"not null"`
	Dosage         string    `json:"dosage"`
	Frequency      string    `json:"frequency"`
	Duration       string    `json:"duration"`
	Quantity       int       `json:"quantity" gorm:"default:1"`
	Confidence     float64   `json:"confidence"`
	CreatedAt      time.Time `json:"created_at"`
}
