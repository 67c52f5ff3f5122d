package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/models"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/repository"
)

type CartService interface {
	AddPrescriptionItemsToCart(userID, prescriptionID uint, selections []models.PrescriptionItemSelection) ([]models.PrescriptionCartItem, error)
	GetActiveCart(userID uint) ([]models.PrescriptionCartItem, error)
	UpdateItemQuantity(itemID uint, quantity int) error
	RemoveItem(itemID uint) error
	// ValidateCartForCheckout re-checks prescription state on every call.
	// Results are never cached across cart mutations: a pharmacist can change
	// a prescription between add-to-cart and checkout.
	ValidateCartForCheckout(items []models.PrescriptionCartItem) models.CartValidationResult
	CheckSubstitutionAllowed(originalID, substituteID uint) (models.SubstitutionCheck, error)
	CalculatePrescriptionPricing(items []models.PrescriptionCartItem) models.PrescriptionPricing
}

type cartService struct {
	cartRepo         repository.CartRepository
	medicineRepo     repository.MedicineRepository
	prescriptionRepo repository.PrescriptionRepository
	settingsRepo     repository.SettingsRepository

	discountPct           float64
	deliveryFee           float64
	freeDeliveryThreshold float64
}

func NewCartService(
	cartRepo repository.CartRepository,
	medicineRepo repository.MedicineRepository,
	prescriptionRepo repository.PrescriptionRepository,
	settingsRepo repository.SettingsRepository,
	discountPct, deliveryFee, freeDeliveryThreshold float64,
) CartService {
	return &cartService{
		cartRepo:              cartRepo,
		medicineRepo:          medicineRepo,
		prescriptionRepo:      prescriptionRepo,
		settingsRepo:          settingsRepo,
		discountPct:           discountPct,
		deliveryFee:           deliveryFee,
		freeDeliveryThreshold: freeDeliveryThreshold,
	}
}

func (s *cartService) AddPrescriptionItemsToCart(userID, prescriptionID uint, selections []models.PrescriptionItemSelection) ([]models.PrescriptionCartItem, error) {
	var added []models.PrescriptionCartItem

	for _, sel := range selections {
		quantity := sel.Quantity
		if quantity < 1 {
			quantity = 1
		}

		medicine, err := s.medicineRepo.GetByID(sel.MedicineID)
		if err != nil {
			// Per-item failures are skipped, not fatal to the batch.
			log.Printf("cart: add item skipped, medicine %d lookup failed: %v", sel.MedicineID, err)
			continue
		}

		pid := prescriptionID
		item := models.PrescriptionCartItem{
			UserID:               userID,
			MedicineID:           medicine.ID,
			MedicineName:         medicine.Name,
			Quantity:             quantity,
			UnitPrice:            sel.Price,
			StockQty:             medicine.StockQty,
			Status:               string(models.CartItemActive),
			PrescriptionID:       &pid,
			ExtractedMedicineID:  sel.ExtractedMedicineID,
			RequiresPrescription: medicine.PrescriptionRequired,
			PrescriptionStatus:   string(models.PrescriptionUploaded),
			AlternativeSelected:  sel.AlternativeSelected,
		}
		if item.UnitPrice == 0 {
			item.UnitPrice = medicine.SalePrice
		}

		if err := s.cartRepo.Create(&item); err != nil {
			log.Printf("cart: failed to persist item for medicine %d: %v", sel.MedicineID, err)
			continue
		}
		added = append(added, item)
	}

	return added, nil
}

func (s *cartService) GetActiveCart(userID uint) ([]models.PrescriptionCartItem, error) {
	return s.cartRepo.GetActiveByUser(userID)
}

func (s *cartService) UpdateItemQuantity(itemID uint, quantity int) error {
	if quantity < 1 {
		return errors.New("quantity must be at least 1")
	}
	return s.cartRepo.UpdateQuantity(itemID, quantity)
}

func (s *cartService) RemoveItem(itemID uint) error {
	return s.cartRepo.MarkRemoved(itemID)
}

func (s *cartService) ValidateCartForCheckout(items []models.PrescriptionCartItem) models.CartValidationResult {
	result := models.CartValidationResult{
		Errors:                    []string{},
		Warnings:                  []string{},
		PrescriptionRequiredItems: []uint{},
		MissingPrescriptions:      []uint{},
	}

	unlinked := 0
	groups := make(map[uint][]models.PrescriptionCartItem)
	for _, item := range items {
		if !item.RequiresPrescription {
			continue
		}
		result.PrescriptionRequiredItems = append(result.PrescriptionRequiredItems, item.ID)
		if item.PrescriptionID == nil {
			unlinked++
			continue
		}
		groups[*item.PrescriptionID] = append(groups[*item.PrescriptionID], item)
	}

	if unlinked > 0 {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%d prescription items require a valid prescription", unlinked))
	}

	for prescriptionID, group := range groups {
		prescription, err := s.prescriptionRepo.GetByID(prescriptionID)
		if err != nil {
			log.Printf("cart: validation lookup failed for prescription %d: %v", prescriptionID, err)
			result.Errors = append(result.Errors,
				fmt.Sprintf("Unable to verify prescription for %d items", len(group)))
			result.MissingPrescriptions = append(result.MissingPrescriptions, prescriptionID)
			continue
		}

		switch models.PrescriptionStatus(prescription.Status) {
		case models.PrescriptionRejected:
			result.Errors = append(result.Errors,
				"Prescription has been rejected. Please upload a valid prescription.")
		case models.PrescriptionPending:
			result.Warnings = append(result.Warnings,
				"Prescription is still being reviewed. Your order may be delayed.")
		}

		if prescription.ExpiryDate != nil && prescription.ExpiryDate.Before(time.Now()) {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Prescription expired on %s", prescription.ExpiryDate.Format("Jan 2, 2006")))
		}

		if len(prescription.Files) == 0 {
			result.Errors = append(result.Errors,
				fmt.Sprintf("No prescription files uploaded for %d items", len(group)))
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

func (s *cartService) CheckSubstitutionAllowed(originalID, substituteID uint) (models.SubstitutionCheck, error) {
	original, err := s.medicineRepo.GetByID(originalID)
	if err != nil {
		return models.SubstitutionCheck{}, fmt.Errorf("failed to load original medicine %d: %w", originalID, err)
	}
	substitute, err := s.medicineRepo.GetByID(substituteID)
	if err != nil {
		return models.SubstitutionCheck{}, fmt.Errorf("failed to load substitute medicine %d: %w", substituteID, err)
	}
	return substitutionAllowed(original, substitute), nil
}

// substitutionAllowed is the hard policy gate: two medicines are substitutable
// only when they share a generic name or a therapeutic class.
func substitutionAllowed(original, substitute *models.Medicine) models.SubstitutionCheck {
	if original.GenericName != "" && strings.EqualFold(original.GenericName, substitute.GenericName) {
		return models.SubstitutionCheck{Allowed: true, Reason: "Same generic composition"}
	}
	if original.TherapeuticClass != "" && strings.EqualFold(original.TherapeuticClass, substitute.TherapeuticClass) {
		return models.SubstitutionCheck{Allowed: true, Reason: "Same therapeutic class"}
	}
	return models.SubstitutionCheck{Allowed: false, Reason: "Substitution requires doctor approval"}
}

func (s *cartService) CalculatePrescriptionPricing(items []models.PrescriptionCartItem) models.PrescriptionPricing {
	discountPct := s.settingValue("prescription_discount_pct", s.discountPct)
	deliveryFee := s.settingValue("delivery_fee", s.deliveryFee)
	freeThreshold := s.settingValue("free_delivery_threshold", s.freeDeliveryThreshold)

	var subtotal, prescriptionSubtotal float64
	hasPrescriptionItems := false
	for _, item := range items {
		line := item.UnitPrice * float64(item.Quantity)
		subtotal += line
		if item.PrescriptionID != nil {
			prescriptionSubtotal += line
			hasPrescriptionItems = true
		}
	}

	discount := prescriptionSubtotal * discountPct / 100

	delivery := deliveryFee
	if hasPrescriptionItems && subtotal >= freeThreshold {
		delivery = 0
	}

	return models.PrescriptionPricing{
		Subtotal:             subtotal,
		PrescriptionDiscount: discount,
		DeliveryCharges:      delivery,
		Total:                subtotal - discount + delivery,
	}
}

func (s *cartService) settingValue(name string, fallback float64) float64 {
	if s.settingsRepo == nil {
		return fallback
	}
	setting, err := s.settingsRepo.GetSetting(name)
	if err != nil {
		return fallback
	}
	return setting.Value
}
