package services

import (
	"fmt"

	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/models"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/repository"
)

type PrescriptionService interface {
	CreatePrescription(prescription *models.Prescription) error
	GetPrescriptionByID(id uint) (*models.Prescription, error)
	GetPrescriptionsByUser(userID uint) ([]models.Prescription, error)
	AddFile(file *models.PrescriptionFile) error
	UpdateStatus(id uint, status models.PrescriptionStatus) error
	// MatchPrescription resolves every extracted medicine on a prescription
	// against the catalog and returns the per-item results plus the rollup.
	MatchPrescription(prescriptionID uint) ([]models.MedicineAvailabilityResult, models.PrescriptionAvailabilitySummary, error)
}

type prescriptionService struct {
	prescriptionRepo repository.PrescriptionRepository
	matchingService  MatchingService
}

func NewPrescriptionService(prescriptionRepo repository.PrescriptionRepository, matchingService MatchingService) PrescriptionService {
	return &prescriptionService{prescriptionRepo: prescriptionRepo, matchingService: matchingService}
}

func (s *prescriptionService) CreatePrescription(prescription *models.Prescription) error {
	return s.prescriptionRepo.Create(prescription)
}

func (s *prescriptionService) GetPrescriptionByID(id uint) (*models.Prescription, error) {
	return s.prescriptionRepo.GetByID(id)
}

func (s *prescriptionService) GetPrescriptionsByUser(userID uint) ([]models.Prescription, error) {
	return s.prescriptionRepo.GetByUserID(userID)
}

func (s *prescriptionService) AddFile(file *models.PrescriptionFile) error {
	return s.prescriptionRepo.AddFile(file)
}

func (s *prescriptionService) UpdateStatus(id uint, status models.PrescriptionStatus) error {
	return s.prescriptionRepo.UpdateStatus(id, status, nil)
}

func (s *prescriptionService) MatchPrescription(prescriptionID uint) ([]models.MedicineAvailabilityResult, models.PrescriptionAvailabilitySummary, error) {
	extracted, err := s.prescriptionRepo.GetExtractedMedicines(prescriptionID)
	if err != nil {
		return nil, models.PrescriptionAvailabilitySummary{}, fmt.Errorf("failed to load extracted medicines for prescription %d: %w", prescriptionID, err)
	}

	results := s.matchingService.MatchExtractedMedicines(extracted)
	return results, s.matchingService.Summarize(results), nil
}
