package models

import (
	"time"

	"gorm.io/gorm"
)

type Medicine struct {
	ID                   uint           `json:"id" gorm:"primaryKey"`
	Name                 string         `json:"name" gorm:"not null;index"`
	Brand                string         `json:"brand"`
	GenericName          string         `json:"generic_name" gorm:"index"`
	MRP                  float64        `json:"mrp" gorm:"not null"`
	SalePrice            float64        `json:"sale_price" gorm:"not null"`
	StockQty             int            `json:"stock_qty" gorm:"default:0"`
	PrescriptionRequired bool           `json:"prescription_required" gorm:"default:false"`
	TherapeuticClass     string         `json:"therapeutic_class"`
	Category             string         `json:"category"`
	Featured             bool           `json:"featured" gorm:"default:false"`
	ImageURL             string         `json:"image_url"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

// Available reports whether the medicine can be added to a cart right now.
func (m *Medicine) Available() bool {
	return m.StockQty > 0
}

type StockAvailability string

const (
	StockInStock    StockAvailability = "in_stock"
	StockLow        StockAvailability = "low_stock"
	StockOutOfStock StockAvailability = "out_of_stock"
)

const lowStockThreshold = 10

// StockBucket maps a raw stock count onto the availability buckets shown to users.
func StockBucket(qty int) StockAvailability {
	switch {
	case qty <= 0:
		return StockOutOfStock
	case qty < lowStockThreshold:
		return StockLow
	default:
		return StockInStock
	}
}
