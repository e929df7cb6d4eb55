package models

import "time"

// Product represents a farmer's sellable listing. Quantity is the
// amount available in kilograms; it is not decremented when orders are
// placed (stock is tracked manually by the farmer).
type Product struct {
	ID             string    `json:"productId" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	FarmerUsername string    `json:"farmerUsername" gorm:"index;type:varchar(20)" validate:"required"`
	Category       string    `json:"category" validate:"required"`
	Name           string    `json:"name" validate:"required,min=2,max=100"`
	Quantity       float64   `json:"quantity" validate:"required,gt=0"`
	PricePerKg     float64   `json:"pricePerKg" validate:"required,gt=0"`
	Image          string    `json:"image" validate:"required"`
	ExpiryDate     time.Time `json:"expiryDate" validate:"required"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
