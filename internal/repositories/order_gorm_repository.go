package repositories

import (
	"fmt"

	"agrimarket/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetByID retrieves a single order by its ID.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Product").First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrOrderNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// GetByBuyer retrieves all orders placed by the given buyer, oldest
// first, with the referenced product resolved.
func (r *GORMOrderRepository) GetByBuyer(buyerUsername string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Product").
		Where("buyer_username = ?", buyerUsername).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get orders for buyer %s: %w", buyerUsername, err)
	}
	return orders, nil
}

// GetByFarmer retrieves all orders for products owned by the given
// farmer, oldest first, with the referenced product resolved.
func (r *GORMOrderRepository) GetByFarmer(farmerUsername string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Product").
		Where("farmer_username = ?", farmerUsername).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get orders for farmer %s: %w", farmerUsername, err)
	}
	return orders, nil
}

// Create inserts a new order.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// UpdateStatus overwrites the status of an order and returns the
// updated record.
func (r *GORMOrderRepository) UpdateStatus(id string, status string) (*models.Order, error) {
	res := r.db.Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("order with ID %s for status update: %w", id, ErrOrderNotFound)
	}
	return r.GetByID(id)
}
