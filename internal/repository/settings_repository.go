package repository

import (
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/models"

	"gorm.io/gorm"
)

type SettingsRepository interface {
	GetSetting(name string) (*models.PricingSettings, error)
	CreateSetting(setting *models.PricingSettings) error
	UpdateSetting(setting *models.PricingSettings) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetSetting(name string) (*models.PricingSettings, error) {
	var setting models.PricingSettings
	err := r.db.Where("setting_name = ? AND is_active = ?", name, true).First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *settingsRepository) CreateSetting(setting *models.PricingSettings) error {
	return r.db.Create(setting).Error
}

func (r *settingsRepository) UpdateSetting(setting *models.PricingSettings) error {
	return r.db.Save(setting).Error
}
