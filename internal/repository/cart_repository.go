package repository

import (
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/models"

	"gorm.io/gorm"
)

type CartRepository interface {
	Create(item *models.PrescriptionCartItem) error
	GetByID(id uint) (*models.PrescriptionCartItem, error)
	GetActiveByUser(userID uint) ([]models.PrescriptionCartItem, error)
	UpdateQuantity(id uint, quantity int) error
	// MarkRemoved soft-deletes a line by status; rows referenced by orders are
	// never hard-deleted.
	MarkRemoved(id uint) error
	MarkOrdered(ids []uint) error
	Update(item *models.PrescriptionCartItem) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Create(item *models.PrescriptionCartItem) error {
	return r.db.Create(item).Error
}

func (r *cartRepository) GetByID(id uint) (*models.PrescriptionCartItem, error) {
	var item models.PrescriptionCartItem
	err := r.db.First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) GetActiveByUser(userID uint) ([]models.PrescriptionCartItem, error) {
	var items []models.PrescriptionCartItem
	err := r.db.Where("user_id = ? AND status = ?", userID, string(models.CartItemActive)).Find(&items).Error
	return items, err
}

func (r *cartRepository) UpdateQuantity(id uint, quantity int) error {
	return r.db.Model(&models.PrescriptionCartItem{}).Where("id = ?", id).Update("quantity", quantity).Error
}

func (r *cartRepository) MarkRemoved(id uint) error {
	return r.db.Model(&models.PrescriptionCartItem{}).Where("id = ?", id).Update("status", string(models.CartItemRemoved)).Error
}

func (r *cartRepository) MarkOrdered(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&models.PrescriptionCartItem{}).Where("id IN ?", ids).Update("status", string(models.CartItemOrdered)).Error
}

func (r *cartRepository) Update(item *models.PrescriptionCartItem) error {
	return r.db.Save(item).Error
}
