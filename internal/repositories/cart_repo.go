package repositories

import (
	"errors"

	"agrimarket/internal/models"
)

// ErrCartNotFound is returned when no cart exists for a buyer.
var ErrCartNotFound = errors.New("cart not found")

// CartRepository defines the interface for cart data access. A buyer
// has at most one cart; Save persists the cart as a whole document
// (line items are replaced, not merged).
type CartRepository interface {
	GetByBuyer(buyerUsername string) (*models.Cart, error)
	Save(cart *models.Cart) error
	ClearItems(buyerUsername string) error
}
