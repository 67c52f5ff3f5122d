package repository

import (
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/models"

	"gorm.io/gorm"
)

// MedicineRepository is the read side of the catalog store. The matcher's four
// lookups map onto FindExact, FindByGeneric, FindByBrand and SearchSimilar.
type MedicineRepository interface {
	Create(medicine *models.Medicine) error
	GetByID(id uint) (*models.Medicine, error)
	FindExact(name string) ([]models.Medicine, error)
	FindByGeneric(token string) ([]models.Medicine, error)
	FindByBrand(name string) ([]models.Medicine, error)
	SearchSimilar(name string) ([]models.Medicine, error)
	FindGenericAlternatives(token string, maxPrice float64, limit int) ([]models.Medicine, error)
	Update(medicine *models.Medicine) error
	Delete(id uint) error
	GetAll() ([]models.Medicine, error)
}

type medicineRepository struct {
	db *gorm.DB
}

func NewMedicineRepository(db *gorm.DB) MedicineRepository {
	return &medicineRepository{db: db}
}

func (r *medicineRepository) Create(medicine *models.Medicine) error {
	return r.db.Create(medicine).Error
}

func (r *medicineRepository) GetByID(id uint) (*models.Medicine, error) {
	var medicine models.Medicine
	err := r.db.First(&medicine, id).Error
	if err != nil {
		return nil, err
	}
	return &medicine, nil
}

func (r *medicineRepository) FindExact(name string) ([]models.Medicine, error) {
	var medicines []models.Medicine
	err := r.db.Where("LOWER(name) = LOWER(?)", name).Find(&medicines).Error
	return medicines, err
}

func (r *medicineRepository) FindByGeneric(token string) ([]models.Medicine, error) {
	var medicines []models.Medicine
	err := r.db.Where("generic_name ILIKE ?", "%"+token+"%").Find(&medicines).Error
	return medicines, err
}

func (r *medicineRepository) FindByBrand(name string) ([]models.Medicine, error) {
	var medicines []models.Medicine
	err := r.db.Where("brand ILIKE ?", "%"+name+"%").Find(&medicines).Error
	return medicines, err
}

func (r *medicineRepository) SearchSimilar(name string) ([]models.Medicine, error) {
	var medicines []models.Medicine
	err := r.db.
		Where("to_tsvector('simple', name) @@ plainto_tsquery('simple', ?)", name).
		Or("name ILIKE ?", "%"+name+"%").
		Find(&medicines).Error
	return medicines, err
}

func (r *medicineRepository) FindGenericAlternatives(token string, maxPrice float64, limit int) ([]models.Medicine, error) {
	var medicines []models.Medicine
	err := r.db.
		Where("(generic_name ILIKE ? OR name ILIKE ?) AND sale_price < ?", "%"+token+"%", "%"+token+"%", maxPrice).
		Order("sale_price ASC").
		Limit(limit).
		Find(&medicines).Error
	return medicines, err
}

func (r *medicineRepository) Update(medicine *models.Medicine) error {
	return r.db.Save(medicine).Error
}

func (r *medicineRepository) Delete(id uint) error {
	return r.db.Delete(&models.Medicine{}, id).Error
}

func (r *medicineRepository) GetAll() ([]models.Medicine, error) {
	var medicines []models.Medicine
	err := r.db.Find(&medicines).Error
	return medicines, err
}
