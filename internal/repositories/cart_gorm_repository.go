package repositories

import (
	"fmt"

	"agrimarket/internal/models"

	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetByBuyer retrieves a buyer's cart with its line items in insertion
// order. Returns ErrCartNotFound if the buyer has no cart yet.
func (r *GORMCartRepository) GetByBuyer(buyerUsername string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("cart_items.id ASC")
	}).First(&cart, "buyer_username = ?", buyerUsername).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart for buyer %s: %w", buyerUsername, err)
	}
	return &cart, nil
}

// Save persists the cart and its full line-item set. Existing line
// items are replaced by the cart's current items, which keeps the
// whole-document write semantics of the cart aggregate (last write
// wins across concurrent saves).
func (r *GORMCartRepository) Save(cart *models.Cart) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if cart.ID == 0 {
			return tx.Create(cart).Error
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		for i := range cart.Items {
			cart.Items[i].ID = 0
			cart.Items[i].CartID = cart.ID
			cart.Items[i].Product = nil
		}
		if len(cart.Items) > 0 {
			if err := tx.Create(&cart.Items).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Cart{}).Where("id = ?", cart.ID).
			Update("updated_at", tx.NowFunc()).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save cart for buyer %s: %w", cart.BuyerUsername, err)
	}
	return nil
}

// ClearItems removes every line item from the buyer's cart. No-op if
// the buyer has no cart.
func (r *GORMCartRepository) ClearItems(buyerUsername string) error {
	var cart models.Cart
	err := r.db.First(&cart, "buyer_username = ?", buyerUsername).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return fmt.Errorf("failed to load cart for buyer %s: %w", buyerUsername, err)
	}
	if err := r.db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart for buyer %s: %w", buyerUsername, err)
	}
	return nil
}
