package repositories

import (
	"errors"

	"agrimarket/internal/models"
)

// ErrOrderNotFound is returned when an order ID does not resolve.
// Implementations wrap it with the failing ID; match with errors.Is.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository defines the interface for order data access. Orders
// are never deleted; a status overwrite is the only mutation.
type OrderRepository interface {
	GetByID(id string) (*models.Order, error)
	GetByBuyer(buyerUsername string) ([]models.Order, error)
	GetByFarmer(farmerUsername string) ([]models.Order, error)
	Create(order *models.Order) error
	UpdateStatus(id string, status string) (*models.Order, error)
}
