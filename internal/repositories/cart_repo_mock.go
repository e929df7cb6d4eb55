package repositories

import (
	"sync"

	"agrimarket/internal/models"
)

// MockCartRepository is an in-memory implementation of CartRepository.
type MockCartRepository struct {
	carts  map[string]models.Cart // keyed by buyer username
	nextID uint
	mu     sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		carts:  make(map[string]models.Cart),
		nextID: 1,
	}
}

// GetByBuyer returns a copy of the buyer's cart, or ErrCartNotFound.
func (r *MockCartRepository) GetByBuyer(buyerUsername string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[buyerUsername]
	if !ok {
		return nil, ErrCartNotFound
	}
	cart.Items = append([]models.CartItem(nil), cart.Items...)
	return &cart, nil
}

// Save stores the cart, replacing any existing line items.
func (r *MockCartRepository) Save(cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cart.ID == 0 {
		cart.ID = r.nextID
		r.nextID++
	}
	stored := *cart
	stored.Items = append([]models.CartItem(nil), cart.Items...)
	r.carts[cart.BuyerUsername] = stored
	return nil
}

// ClearItems empties the buyer's cart. No-op if the cart is absent.
func (r *MockCartRepository) ClearItems(buyerUsername string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[buyerUsername]
	if !ok {
		return nil
	}
	cart.Items = nil
	r.carts[buyerUsername] = cart
	return nil
}
