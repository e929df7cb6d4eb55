package models

import "time"

// CartItem is a single line in a buyer's cart: a product reference and
// a quantity. A cart holds at most one line per distinct product;
// repeated adds accumulate the quantity instead of duplicating lines.
type CartItem struct {
	ID        uint     `json:"-" gorm:"primaryKey;autoIncrement"`
	CartID    uint     `json:"-" gorm:"index"`
	ProductID string   `json:"productId" gorm:"type:varchar(36)"`
	Product   *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Quantity  float64  `json:"quantity"`
}

// Cart is a buyer's mutable shopping cart, one per buyer username.
// It is created on the first add and its item list is cleared as a
// whole when an order is placed from it.
type Cart struct {
	ID            uint       `json:"-" gorm:"primaryKey;autoIncrement"`
	BuyerUsername string     `json:"buyerUsername" gorm:"uniqueIndex;type:varchar(20)"`
	Items         []CartItem `json:"items" gorm:"foreignKey:CartID"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// FindItem returns the index of the line for productID, or -1.
func (c *Cart) FindItem(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
