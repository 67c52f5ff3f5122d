package repository

import (
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/models"

	"gorm.io/gorm"
)

// OrderRepository owns the order aggregate, its items, the append-only
// workflow log and the verification audit table. The multi-write methods run
// inside a single database transaction so a status change and its log entry
// land together or not at all.
type OrderRepository interface {
	CreateWithWorkflow(order *models.PrescriptionOrder, step *models.OrderWorkflowStep, cartItemIDs []uint) error
	GetByID(id uint) (*models.PrescriptionOrder, error)
	GetByUserID(userID uint) ([]models.PrescriptionOrder, error)
	GetByStatus(status models.PrescriptionOrderStatus) ([]models.PrescriptionOrder, error)
	UpdateStatusWithStep(orderID uint, status models.PrescriptionOrderStatus, step *models.OrderWorkflowStep) error
	ApplyVerification(order *models.PrescriptionOrder, items []models.PrescriptionOrderItem, verification *models.PrescriptionVerification, step *models.OrderWorkflowStep) error
	GetWorkflowSteps(orderID uint) ([]models.OrderWorkflowStep, error)
	GetItem(itemID uint) (*models.PrescriptionOrderItem, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateWithWorkflow(order *models.PrescriptionOrder, step *models.OrderWorkflowStep, cartItemIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		step.OrderID = order.ID
		if err := tx.Create(step).Error; err != nil {
			return err
		}
		if len(cartItemIDs) > 0 {
			if err := tx.Model(&models.PrescriptionCartItem{}).
				Where("id IN ?", cartItemIDs).
				Update("status", string(models.CartItemOrdered)).Error; err != nil {
				return err
			}
		}
		if order.PrescriptionID != nil {
			if err := tx.Model(&models.Prescription{}).
				Where("id = ?", *order.PrescriptionID).
				Updates(map[string]interface{}{
					"status":   string(models.PrescriptionProcessing),
					"order_id": order.ID,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *orderRepository) GetByID(id uint) (*models.PrescriptionOrder, error) {
	var order models.PrescriptionOrder
	err := r.db.Preload("Items").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByUserID(userID uint) ([]models.PrescriptionOrder, error) {
	var orders []models.PrescriptionOrder
	err := r.db.Preload("Items").Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) GetByStatus(status models.PrescriptionOrderStatus) ([]models.PrescriptionOrder, error) {
	var orders []models.PrescriptionOrder
	err := r.db.Preload("Items").Where("status = ?", string(status)).Order("created_at ASC").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) UpdateStatusWithStep(orderID uint, status models.PrescriptionOrderStatus, step *models.OrderWorkflowStep) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PrescriptionOrder{}).
			Where("id = ?", orderID).
			Update("status", string(status)).Error; err != nil {
			return err
		}
		step.OrderID = orderID
		step.Status = status
		return tx.Create(step).Error
	})
}

func (r *orderRepository) ApplyVerification(order *models.PrescriptionOrder, items []models.PrescriptionOrderItem, verification *models.PrescriptionVerification, step *models.OrderWorkflowStep) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(order).Error; err != nil {
			return err
		}
		for i := range items {
			if err := tx.Save(&items[i]).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(verification).Error; err != nil {
			return err
		}
		step.OrderID = order.ID
		return tx.Create(step).Error
	})
}

func (r *orderRepository) GetWorkflowSteps(orderID uint) ([]models.OrderWorkflowStep, error) {
	var steps []models.OrderWorkflowStep
	err := r.db.Where("order_id = ?", orderID).Order("created_at ASC").Find(&steps).Error
	return steps, err
}

func (r *orderRepository) GetItem(itemID uint) (*models.PrescriptionOrderItem, error) {
	var item models.PrescriptionOrderItem
	err := r.db.First(&item, itemID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}
