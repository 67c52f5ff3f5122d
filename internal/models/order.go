package models

import (
	"time"

	"gorm.io/gorm"
)

type PrescriptionOrderStatus string

const (
	OrderPlaced                 PrescriptionOrderStatus = "placed"
	OrderPrescriptionReview     PrescriptionOrderStatus = "prescription_review"
	OrderPharmacistVerification PrescriptionOrderStatus = "pharmacist_verification"
	OrderApproved               PrescriptionOrderStatus = "approved"
	OrderPreparing              PrescriptionOrderStatus = "preparing"
	OrderQualityCheck           PrescriptionOrderStatus = "quality_check"
	OrderPacked                 PrescriptionOrderStatus = "packed"
	OrderDispatched             PrescriptionOrderStatus = "dispatched"
	OrderInTransit              PrescriptionOrderStatus = "in_transit"
	OrderOutForDelivery         PrescriptionOrderStatus = "out_for_delivery"
	OrderDelivered              PrescriptionOrderStatus = "delivered"
	OrderRejected               PrescriptionOrderStatus = "rejected"
	OrderCancelled              PrescriptionOrderStatus = "cancelled"
	OrderRefunded               PrescriptionOrderStatus = "refunded"
)

type OrderType string

const (
	OrderTypePrescription OrderType = "prescription"
	OrderTypeMixed        OrderType = "mixed"
	OrderTypeRegular      OrderType = "regular"
)

type PrescriptionOrder struct {
	ID                   uint                    `json:"id" gorm:"primaryKey"`
	OrderNumber          string                  `json:"order_number" gorm:"unique;not null"`
	UserID               uint                    `json:"user_id" gorm:"not null;index"`
	PrescriptionID       *uint                   `json:"prescription_id" gorm:"index"`
	OrderType            OrderType               `json:"order_type" gorm:"default:'prescription'"`
	Status               PrescriptionOrderStatus `json:"status" gorm:"default:'placed'"`
	TotalAmount          float64                 `json:"total_amount" gorm:"not null"`
	PrescriptionDiscount float64                 `json:"prescription_discount"`
	DeliveryCharges      float64                 `json:"delivery_charges"`
	PaymentStatus        string                  `json:"payment_status" gorm:"default:'pending'"`
	DeliveryAddress      string                  `json:"delivery_address"`
	DeliveryType         string                  `json:"delivery_type" gorm:"default:'standard'"` // standard, express
	EstimatedDelivery    *time.Time              `json:"estimated_delivery"`
	PharmacistVerified   bool                    `json:"pharmacist_verified" gorm:"default:false"`
	PharmacistVerifiedBy *uint                   `json:"pharmacist_verified_by"`
	PharmacistNotes      string                  `json:"pharmacist_notes"`
	Items                []PrescriptionOrderItem `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt            time.Time               `json:"created_at"`
	UpdatedAt            time.Time               `json:"updated_at"`
	DeletedAt            gorm.DeletedAt          `json:"deleted_at" gorm:"index"`
}

type FulfillmentStatus string

const (
	FulfillmentPending     FulfillmentStatus = "pending"
	FulfillmentVerified    FulfillmentStatus = "verified"
	FulfillmentDispensed   FulfillmentStatus = "dispensed"
	FulfillmentSubstituted FulfillmentStatus = "substituted"
	FulfillmentUnavailable FulfillmentStatus = "unavailable"
)

type PrescriptionOrderItem struct {
	ID                   uint              `json:"id" gorm:"primaryKey"`
	OrderID              uint              `json:"order_id" gorm:"not null;index"`
	MedicineID           uint              `json:"medicine_id" gorm:"not null"`
	MedicineName         string            `json:"medicine_name"`
	PrescriptionItemID   *uint             `json:"prescription_item_id"`
	Quantity             int               `json:"quantity" gorm:"not null"`
	UnitPrice            float64           `json:"unit_price" gorm:"not null"`
	TotalPrice           float64           `json:"total_price" gorm:"not null"`
	Substituted          bool              `json:"substituted" gorm:"default:false"`
	SubstituteMedicineID *uint             `json:"substitute_medicine_id"`
	SubstituteReason     string            `json:"substitute_reason"`
	FulfillmentStatus    FulfillmentStatus `json:"fulfillment_status" gorm:"default:'pending'"`
	PharmacistNotes      string            `json:"pharmacist_notes"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// OrderWorkflowStep is an append-only audit entry. The workflow engine is the
// only writer; rows are never updated or deleted.
type OrderWorkflowStep struct {
	ID        uint                    `json:"id" gorm:"primaryKey"`
	OrderID   uint                    `json:"order_id" gorm:"not null;index"`
	Status    PrescriptionOrderStatus `json:"status" gorm:"not null"`
	Notes     string                  `json:"notes"`
	UpdatedBy *uint                   `json:"updated_by"`
	CreatedAt time.Time               `json:"created_at"`
}

type VerificationDecision string

const (
	DecisionApproved             VerificationDecision = "approved"
	DecisionRejected             VerificationDecision = "rejected"
	DecisionRequiresSubstitution VerificationDecision = "requires_substitution"
)

// PrescriptionVerification captures one pharmacist review in full, including
// the per-item decision set, for audit. Append-only.
type PrescriptionVerification struct {
	ID           uint                 `json:"id" gorm:"primaryKey"`
	OrderID      uint                 `json:"order_id" gorm:"not null;index"`
	PharmacistID uint                 `json:"pharmacist_id" gorm:"not null"`
	Decision     VerificationDecision `json:"decision" gorm:"not null"`
	Notes        string               `json:"notes"`
	ItemsJSON    string               `json:"items" gorm:"type:jsonb"`
	CreatedAt    time.Time            `json:"created_at"`
}

// ItemVerification is one pharmacist decision about one order item.
type ItemVerification struct {
	OrderItemID          uint              `json:"order_item_id"`
	FulfillmentStatus    FulfillmentStatus `json:"fulfillment_status"`
	SubstituteMedicineID *uint             `json:"substitute_medicine_id,omitempty"`
	SubstituteReason     string            `json:"substitute_reason,omitempty"`
	Notes                string            `json:"notes,omitempty"`
}

// OrderWorkflowViewStep is one row of the derived progress view.
type OrderWorkflowViewStep struct {
	Status        PrescriptionOrderStatus `json:"status"`
	Title         string                  `json:"title"`
	Description   string                  `json:"description"`
	EstimatedTime string                  `json:"estimated_time"`
	Completed     bool                    `json:"completed"`
	Active        bool                    `json:"active"`
	Timestamp     *time.Time              `json:"timestamp,omitempty"`
	Notes         string                  `json:"notes,omitempty"`
}

// OrderWorkflowView is recomputed from the order row plus the workflow log on
// every read; it is never stored.
type OrderWorkflowView struct {
	OrderID       uint                    `json:"order_id"`
	OrderNumber   string                  `json:"order_number"`
	CurrentStatus PrescriptionOrderStatus `json:"current_status"`
	Steps         []OrderWorkflowViewStep `json:"steps"`
}
