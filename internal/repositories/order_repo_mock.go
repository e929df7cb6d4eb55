package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"agrimarket/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	seq    map[string]int // insertion sequence, for stable creation order
	next   int
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
		seq:    make(map[string]int),
	}
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrOrderNotFound)
	}
	return &order, nil
}

// GetByBuyer returns all orders placed by the buyer in creation order.
func (r *MockOrderRepository) GetByBuyer(buyerUsername string) ([]models.Order, error) {
	return r.filter(func(o models.Order) bool { return o.BuyerUsername == buyerUsername }), nil
}

// GetByFarmer returns all orders owned by the farmer in creation order.
func (r *MockOrderRepository) GetByFarmer(farmerUsername string) ([]models.Order, error) {
	return r.filter(func(o models.Order) bool { return o.FarmerUsername == farmerUsername }), nil
}

func (r *MockOrderRepository) filter(keep func(models.Order) bool) []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orders []models.Order
	for _, order := range r.orders {
		if keep(order) {
			orders = append(orders, order)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return r.seq[orders[i].ID] < r.seq[orders[j].ID]
	})
	return orders
}

// Create adds a new order.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	r.seq[order.ID] = r.next
	r.next++
	return nil
}

// UpdateStatus updates the status of an order and returns the updated
// record.
func (r *MockOrderRepository) UpdateStatus(id string, status string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s for status update: %w", id, ErrOrderNotFound)
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return &order, nil
}
