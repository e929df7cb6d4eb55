package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"agrimarket/internal/models"
	"agrimarket/internal/repositories"

	"github.com/google/uuid"
)

// Checkout and order-ledger errors that handlers map to specific HTTP
// responses.
var (
	// ErrCartUnavailable: the buyer has no cart or the cart is empty.
	// Nothing is written when checkout fails with this error.
	ErrCartUnavailable = errors.New("cart not found or empty")
	// ErrInvalidCartContents: a cart line references a product that no
	// longer resolves (e.g. deleted after being added). Nothing is
	// written when checkout fails with this error.
	ErrInvalidCartContents = errors.New("invalid product in cart")
	// ErrPartialCheckout: an order insert failed after earlier lines
	// already committed. The committed orders remain and the cart is
	// still cleared.
	ErrPartialCheckout = errors.New("checkout partially failed")
	// ErrOrderNotFound: the order id does not resolve.
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidStatus: the requested status is outside the enumerated
	// set.
	ErrInvalidStatus = errors.New("invalid order status")
)

// EventPublisher publishes order events onto the message broker.
// A nil publisher disables events.
type EventPublisher interface {
	PublishOrderEvent(body []byte) error
}

// OrderService handles the checkout workflow and the order ledger.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	cartRepo    repositories.CartRepository
	publisher   EventPublisher
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, cartRepo repositories.CartRepository, publisher EventPublisher) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		publisher:   publisher,
	}
}

// PlaceOrder converts every line of the buyer's cart into one order
// and clears the cart. Contract:
//
//  1. A missing or empty cart fails with ErrCartUnavailable and has no
//     side effects.
//  2. Every line's product is resolved before anything is written; if
//     any line fails to resolve, the whole checkout fails with
//     ErrInvalidCartContents and no orders are created.
//  3. Each order freezes totalPrice = quantity x the product's current
//     price per kg and copies the owning farmer's username. Initial
//     status is Pending. Product stock is not decremented.
//  4. The cart is cleared after the write loop completes, even when an
//     insert failed mid-loop; orders written before the failure stay
//     committed and the failure surfaces as ErrPartialCheckout. The
//     sequence is not wrapped in a multi-document transaction.
//
// Lines are processed in the cart's stored insertion order.
func (s *OrderService) PlaceOrder(buyerUsername, address string) ([]models.Order, error) {
	cart, err := s.cartRepo.GetByBuyer(buyerUsername)
	if err != nil {
		if errors.Is(err, repositories.ErrCartNotFound) {
			return nil, ErrCartUnavailable
		}
		return nil, fmt.Errorf("failed to load cart for %s: %w", buyerUsername, err)
	}
	if len(cart.Items) == 0 {
		return nil, ErrCartUnavailable
	}

	// Resolve all products up front so resolution errors are
	// all-or-nothing with respect to order writes.
	products := make([]*models.Product, len(cart.Items))
	for i, item := range cart.Items {
		product, err := s.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: product %s", ErrInvalidCartContents, item.ProductID)
		}
		products[i] = product
	}

	var created []models.Order
	var writeErr error
	for i, item := range cart.Items {
		product := products[i]
		order := models.Order{
			ID:             uuid.New().String(),
			BuyerUsername:  buyerUsername,
			FarmerUsername: product.FarmerUsername,
			ProductID:      product.ID,
			Quantity:       item.Quantity,
			TotalPrice:     item.Quantity * product.PricePerKg,
			Status:         models.StatusPending,
			Address:        address,
		}
		if err := s.orderRepo.Create(&order); err != nil {
			writeErr = err
			break
		}
		order.Product = product
		created = append(created, order)
	}

	// The cart is cleared whether or not every insert succeeded.
	if err := s.cartRepo.ClearItems(buyerUsername); err != nil {
		log.Printf("Failed to clear cart for buyer %s after checkout: %v", buyerUsername, err)
		if writeErr == nil {
			return created, fmt.Errorf("orders created but failed to clear cart: %w", err)
		}
	}
	if writeErr != nil {
		return created, fmt.Errorf("%w after %d of %d orders: %v", ErrPartialCheckout, len(created), len(cart.Items), writeErr)
	}

	s.publishOrdersPlaced(buyerUsername, created)
	return created, nil
}

// publishOrdersPlaced emits an order.placed event for the checkout.
// Event failures are logged, never surfaced to the buyer.
func (s *OrderService) publishOrdersPlaced(buyerUsername string, orders []models.Order) {
	if s.publisher == nil {
		log.Println("Event publisher is not initialized. Skipping order.placed event.")
		return
	}

	orderIDs := make([]string, len(orders))
	var total float64
	for i, order := range orders {
		orderIDs[i] = order.ID
		total += order.TotalPrice
	}
	event := map[string]interface{}{
		"event":         "order.placed",
		"buyerUsername": buyerUsername,
		"orderIds":      orderIDs,
		"orderCount":    len(orders),
		"totalPrice":    total,
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal order.placed event: %v", err)
		return
	}
	if err := s.publisher.PublishOrderEvent(body); err != nil {
		log.Printf("Warning: Failed to publish order.placed event for buyer %s: %v", buyerUsername, err)
	}
}

// GetBuyerOrders retrieves all orders placed by the buyer, oldest
// first.
func (s *OrderService) GetBuyerOrders(buyerUsername string) ([]models.Order, error) {
	return s.orderRepo.GetByBuyer(buyerUsername)
}

// GetFarmerOrders retrieves all orders for the farmer's products,
// oldest first.
func (s *OrderService) GetFarmerOrders(farmerUsername string) ([]models.Order, error) {
	return s.orderRepo.GetByFarmer(farmerUsername)
}

// UpdateOrderStatus overwrites the status of an order. Membership in
// the status set is validated; transitions are not, so any status may
// replace any other.
func (s *OrderService) UpdateOrderStatus(id string, status string) (*models.Order, error) {
	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	order, err := s.orderRepo.UpdateStatus(id, status)
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}
	return order, nil
}
