package models

import (
	"time"

	"gorm.io/gorm"
)

type PrescriptionCartItem struct {
	ID                   uint           `json:"id" gorm:"primaryKey"`
	UserID               uint           `json:"user_id" gorm:"not null;index"`
	MedicineID           uint           `json:"medicine_id" gorm:"not null"`
	MedicineName         string         `json:"medicine_name"`
	Quantity             int            `json:"quantity" gorm:"not null;default:1"`
	UnitPrice            float64        `json:"unit_price" gorm:"not null"`
	StockQty             int            `json:"stock_qty"`
	Status               string         `json:"status" gorm:"default:'active'"` // active, removed, ordered
	PrescriptionID       *uint          `json:"prescription_id" gorm:"index"`
	PrescriptionItemID   *uint          `json:"prescription_item_id"`
	ExtractedMedicineID  *uint          `json:"extracted_medicine_id"`
	RequiresPrescription bool           `json:"requires_prescription" gorm:"default:false"`
	PrescriptionStatus   string         `json:"prescription_status" gorm:"default:'pending'"` // pending, uploaded, verified, rejected
	AlternativeSelected  bool           `json:"alternative_selected" gorm:"default:false"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

type CartItemStatus string

const (
	CartItemActive  CartItemStatus = "active"
	CartItemRemoved CartItemStatus = "removed"
	CartItemOrdered CartItemStatus = "ordered"
)

// CartValidationResult separates blocking errors from advisory warnings.
// Checkout is blocked only on Errors.
type CartValidationResult struct {
	Valid                     bool     `json:"valid"`
	Errors                    []string `json:"errors"`
	Warnings                  []string `json:"warnings"`
	PrescriptionRequiredItems []uint   `json:"prescription_required_items"`
	MissingPrescriptions      []uint   `json:"missing_prescriptions"`
}

// SubstitutionCheck is the answer of the substitution policy gate.
type SubstitutionCheck struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

type PrescriptionPricing struct {
	Subtotal             float64 `json:"subtotal"`
	PrescriptionDiscount float64 `json:"prescription_discount"`
	DeliveryCharges      float64 `json:"delivery_charges"`
	Total                float64 `json:"total"`
}

// PrescriptionItemSelection is one user-confirmed match headed for the cart.
type PrescriptionItemSelection struct {
	MedicineID          uint    `json:"medicine_id"`
	ExtractedMedicineID *uint   `json:"extracted_medicine_id"`
	Quantity            int     `json:"quantity"`
	Price               float64 `json:"price"`
	AlternativeSelected bool    `json:"alternative_selected"`
}
