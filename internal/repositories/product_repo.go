package repositories

import (
	"errors"

	"agrimarket/internal/models"
)

// ErrProductNotFound is returned when a product ID does not resolve.
// Implementations wrap it with the failing ID; match with errors.Is.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	GetByFarmer(farmerUsername string) ([]models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
}
