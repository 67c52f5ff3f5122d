package models

import "time"

// PricingSettings holds the tunable checkout rates. One active row per name.
type PricingSettings struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	SettingName string    `json:"setting_name" gorm:"not null"` // prescription_discount_pct, delivery_fee, free_delivery_threshold
	Value       float64   `json:"value"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedBy   uint      `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
