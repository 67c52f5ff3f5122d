package repository

import (
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/models"

	"gorm.io/gorm"
)

type PrescriptionRepository interface {
	Create(prescription *models.Prescription) error
	GetByID(id uint) (*models.Prescription, error)
	GetByUserID(userID uint) ([]models.Prescription, error)
	UpdateStatus(id uint, status models.PrescriptionStatus, orderID *uint) error
	Update(prescription *models.Prescription) error
	AddFile(file *models.PrescriptionFile) error
	CreateExtractedMedicines(items []models.ExtractedMedicine) error
	GetExtractedMedicines(prescriptionID uint) ([]models.ExtractedMedicine, error)
}

type prescriptionRepository struct {
	db *gorm.DB
}

func NewPrescriptionRepository(db *gorm.DB) PrescriptionRepository {
	return &prescriptionRepository{db: db}
}

func (r *prescriptionRepository) Create(prescription *models.Prescription) error {
	return r.db.Create(prescription).Error
}

func (r *prescriptionRepository) GetByID(id uint) (*models.Prescription, error) {
	var prescription models.Prescription
	err := r.db.Preload("Files").First(&prescription, id).Error
	if err != nil {
		return nil, err
	}
	return &prescription, nil
}

func (r *prescriptionRepository) GetByUserID(userID uint) ([]models.Prescription, error) {
	var prescriptions []models.Prescription
	err := r.db.Preload("Files").Where("user_id = ?", userID).Find(&prescriptions).Error
	return prescriptions, err
}

func (r *prescriptionRepository) UpdateStatus(id uint, status models.PrescriptionStatus, orderID *uint) error {
	updates := map[string]interface{}{"status": string(status)}
	if orderID != nil {
		updates["order_id"] = *orderID
	}
	return r.db.Model(&models.Prescription{}).Where("id = ?", id).Updates(updates).Error
}

func (r *prescriptionRepository) Update(prescription *models.Prescription) error {
	return r.db.Save(prescription).Error
}

func (r *prescriptionRepository) AddFile(file *models.PrescriptionFile) error {
	return r.db.Create(file).Error
}

func (r *prescriptionRepository) CreateExtractedMedicines(items []models.ExtractedMedicine) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.Create(&items).Error
}

func (r *prescriptionRepository) GetExtractedMedicines(prescriptionID uint) ([]models.ExtractedMedicine, error) {
	var items []models.ExtractedMedicine
	err := r.db.Where("prescription_id = ?", prescriptionID).Order("id ASC").Find(&items).Error
	return items, err
}
