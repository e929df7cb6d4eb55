package models

import "time"

// Order statuses. Pending is the initial status of every order; the
// owning farmer moves the order through the remaining statuses.
const (
	StatusPending    = "Pending"
	StatusShipped    = "Shipped"
	StatusDelivered  = "Delivered"
	StatusDispatched = "Dispatched"
	StatusCancelled  = "Cancelled"
)

// ValidStatus reports whether s is one of the five order statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusShipped, StatusDelivered, StatusDispatched, StatusCancelled:
		return true
	}
	return false
}

// Order is an immutable snapshot of one cart line at checkout time.
// TotalPrice is frozen at quantity x the product's price per kg as it
// was when the order was placed; later price changes do not affect it.
// Status is the only field mutated after creation.
type Order struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BuyerUsername  string    `json:"buyerUsername" gorm:"index;type:varchar(20)"`
	FarmerUsername string    `json:"farmerUsername" gorm:"index;type:varchar(20)"`
	ProductID      string    `json:"productId" gorm:"type:varchar(36)"`
	Product        *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Quantity       float64   `json:"quantity"`
	TotalPrice     float64   `json:"totalPrice"`
	Status         string    `json:"status" gorm:"type:varchar(20)"`
	Address        string    `json:"address"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
