package models

// MatchType says which catalog lookup produced a candidate.
type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchGeneric MatchType = "generic"
	MatchBrand   MatchType = "brand"
	MatchSimilar MatchType = "similar"
)

// BaseConfidence returns the starting confidence for a match type, before boosts.
func (t MatchType) BaseConfidence() float64 {
	switch t {
	case MatchExact:
		return 1.0
	case MatchGeneric:
		return 0.9
	case MatchBrand:
		return 0.8
	default:
		return 0.6
	}
}

// MedicineMatch is a catalog candidate for one extracted medicine.
type MedicineMatch struct {
	ID                   uint      `json:"id"`
	Name                 string    `json:"name"`
	Brand                string    `json:"brand"`
	GenericName          string    `json:"generic_name,omitempty"`
	MRP                  float64   `json:"mrp"`
	SalePrice            float64   `json:"sale_price"`
	StockQty             int       `json:"stock_qty"`
	Available            bool      `json:"available"`
	PrescriptionRequired bool      `json:"prescription_required"`
	MatchConfidence      float64   `json:"match_confidence"`
	MatchType            MatchType `json:"match_type"`
	DosageMatch          bool      `json:"dosage_match"`
	Category             string    `json:"category"`
}

type AlternativeType string

const (
	AlternativeGeneric     AlternativeType = "generic"
	AlternativeBrand       AlternativeType = "brand"
	AlternativeTherapeutic AlternativeType = "therapeutic"
)

// AlternativeMedicine is a non-primary candidate offered as a substitute.
type AlternativeMedicine struct {
	ID                   uint              `json:"id"`
	Name                 string            `json:"name"`
	Brand                string            `json:"brand"`
	Type                 AlternativeType   `json:"type"`
	PriceDifference      float64           `json:"price_difference"`
	PricePercentage      float64           `json:"price_percentage"`
	Availability         StockAvailability `json:"availability"`
	StockQty             int               `json:"stock_qty"`
	PrescriptionRequired bool              `json:"prescription_required"`
	Reason               string            `json:"reason"`
}

type AvailabilityStatus string

const (
	AvailabilityAvailable       AvailabilityStatus = "available"
	AvailabilityAlternativeOnly AvailabilityStatus = "alternatives_available"
	AvailabilityNotAvailable    AvailabilityStatus = "not_available"
)

// MedicineAvailabilityResult is the matcher's answer for one extracted medicine.
type MedicineAvailabilityResult struct {
	ExtractedMedicine    ExtractedMedicine     `json:"extracted_medicine"`
	PrimaryMatch         *MedicineMatch        `json:"primary_match,omitempty"`
	Alternatives         []AlternativeMedicine `json:"alternatives"`
	TotalMatches         int                   `json:"total_matches"`
	AvailabilityStatus   AvailabilityStatus    `json:"availability_status"`
	EstimatedPrice       float64               `json:"estimated_price"`
	RequiresPrescription bool                  `json:"requires_prescription"`
	AddToCart            bool                  `json:"add_to_cart"`
}

// PrescriptionAvailabilitySummary rolls one prescription's match results up
// for checkout gating and the UI summary strip.
type PrescriptionAvailabilitySummary struct {
	TotalMedicines       int     `json:"total_medicines"`
	Available            int     `json:"available"`
	AlternativesOnly     int     `json:"alternatives_only"`
	NotAvailable         int     `json:"not_available"`
	EstimatedTotal       float64 `json:"estimated_total"`
	RequiresPrescription bool    `json:"requires_prescription"`
}
