package services_test

import (
	"fmt"
	"testing"

	"agrimarket/internal/models"
	"agrimarket/internal/repositories"
	"agrimarket/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderWriter is a mock implementation of repositories.OrderRepository
// for exercising write failures.
type MockOrderWriter struct {
	mock.Mock
}

func (m *MockOrderWriter) GetByID(id string) (*models.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderWriter) GetByBuyer(buyerUsername string) ([]models.Order, error) {
	args := m.Called(buyerUsername)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderWriter) GetByFarmer(farmerUsername string) ([]models.Order, error) {
	args := m.Called(farmerUsername)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderWriter) Create(order *models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockOrderWriter) UpdateStatus(id string, status string) (*models.Order, error) {
	args := m.Called(id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	bodies []string
}

func (p *recordingPublisher) PublishOrderEvent(body []byte) error {
	p.bodies = append(p.bodies, string(body))
	return nil
}

type checkoutFixture struct {
	orderService *services.OrderService
	cartService  *services.CartService
	orderRepo    *repositories.MockOrderRepository
	productRepo  *repositories.MockProductRepository
	cartRepo     *repositories.MockCartRepository
	publisher    *recordingPublisher
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	f := &checkoutFixture{
		orderRepo:   repositories.NewMockOrderRepository(),
		productRepo: repositories.NewMockProductRepository(),
		cartRepo:    repositories.NewMockCartRepository(),
		publisher:   &recordingPublisher{},
	}
	f.orderService = services.NewOrderService(f.orderRepo, f.productRepo, f.cartRepo, f.publisher)
	f.cartService = services.NewCartService(f.cartRepo, f.productRepo)
	return f
}

func (f *checkoutFixture) seedProduct(t *testing.T, id, farmer string, price float64) {
	t.Helper()
	err := f.productRepo.Create(&models.Product{
		ID:             id,
		FarmerUsername: farmer,
		Category:       "vegetables",
		Name:           "Produce " + id,
		Quantity:       100,
		PricePerKg:     price,
		Image:          id + ".jpg",
	})
	require.NoError(t, err)
}

func TestOrderService_PlaceOrder_NoCart(t *testing.T) {
	f := newCheckoutFixture(t)

	orders, err := f.orderService.PlaceOrder("buyer1", "somewhere")
	assert.ErrorIs(t, err, services.ErrCartUnavailable)
	assert.Empty(t, orders)
	assert.Empty(t, f.publisher.bodies)
}

func TestOrderService_PlaceOrder_EmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)
	f.seedProduct(t, "prod-a", "ravi_farms", 50)

	// Create then empty the cart, leaving an existing-but-empty cart.
	_, err := f.cartService.AddToCart("buyer1", "prod-a", 1)
	require.NoError(t, err)
	_, err = f.cartService.RemoveFromCart("buyer1", "prod-a")
	require.NoError(t, err)

	orders, err := f.orderService.PlaceOrder("buyer1", "")
	assert.ErrorIs(t, err, services.ErrCartUnavailable)
	assert.Empty(t, orders)

	// Idempotent no-op: no orders appeared anywhere.
	all, err := f.orderRepo.GetByBuyer("buyer1")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestOrderService_PlaceOrder_TwoLines(t *testing.T) {
	f := newCheckoutFixture(t)
	f.seedProduct(t, "prod-a", "ravi_farms", 50)
	f.seedProduct(t, "prod-b", "lakshmi_acres", 30)

	_, err := f.cartService.AddToCart("buyer1", "prod-a", 2)
	require.NoError(t, err)
	_, err = f.cartService.AddToCart("buyer1", "prod-b", 1)
	require.NoError(t, err)

	orders, err := f.orderService.PlaceOrder("buyer1", "12-4 Main Road, Guntur")
	require.NoError(t, err)
	require.Len(t, orders, 2)

	// One order per cart line, in cart insertion order, price frozen
	// from the product at checkout time.
	assert.Equal(t, "prod-a", orders[0].ProductID)
	assert.Equal(t, 100.0, orders[0].TotalPrice)
	assert.Equal(t, "ravi_farms", orders[0].FarmerUsername)
	assert.Equal(t, "prod-b", orders[1].ProductID)
	assert.Equal(t, 30.0, orders[1].TotalPrice)
	assert.Equal(t, "lakshmi_acres", orders[1].FarmerUsername)
	for _, order := range orders {
		assert.Equal(t, models.StatusPending, order.Status)
		assert.Equal(t, "buyer1", order.BuyerUsername)
		assert.Equal(t, "12-4 Main Road, Guntur", order.Address)
	}

	// The cart is cleared, but still exists.
	cart, err := f.cartService.GetCart("buyer1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	// One order.placed event for the whole checkout, typed in the
	// body.
	require.Len(t, f.publisher.bodies, 1)
	assert.Contains(t, f.publisher.bodies[0], `"event":"order.placed"`)
	assert.Contains(t, f.publisher.bodies[0], `"orderCount":2`)
	assert.Contains(t, f.publisher.bodies[0], `"totalPrice":130`)
}

func TestOrderService_PlaceOrder_PriceAtCheckoutTime(t *testing.T) {
	f := newCheckoutFixture(t)
	f.seedProduct(t, "prod-a", "ravi_farms", 50)

	_, err := f.cartService.AddToCart("buyer1", "prod-a", 2)
	require.NoError(t, err)

	// The farmer reprices after the product was carted; the order must
	// use the current price, not the price at add-to-cart time.
	product, err := f.productRepo.GetByID("prod-a")
	require.NoError(t, err)
	product.PricePerKg = 80
	require.NoError(t, f.productRepo.Update(product))

	orders, err := f.orderService.PlaceOrder("buyer1", "")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 160.0, orders[0].TotalPrice)
}

func TestOrderService_PlaceOrder_UnresolvableProduct(t *testing.T) {
	f := newCheckoutFixture(t)
	f.seedProduct(t, "prod-a", "ravi_farms", 50)

	_, err := f.cartService.AddToCart("buyer1", "prod-a", 2)
	require.NoError(t, err)
	_, err = f.cartService.AddToCart("buyer1", "prod-deleted", 1)
	require.NoError(t, err)

	orders, err := f.orderService.PlaceOrder("buyer1", "")
	assert.ErrorIs(t, err, services.ErrInvalidCartContents)
	assert.Empty(t, orders)

	// All-or-nothing on resolution: not even the resolvable line was
	// written, and the cart is untouched.
	all, err := f.orderRepo.GetByBuyer("buyer1")
	require.NoError(t, err)
	assert.Empty(t, all)
	cart, err := f.cartService.GetCart("buyer1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
}

func TestOrderService_PlaceOrder_MidLoopWriteFailure(t *testing.T) {
	productRepo := repositories.NewMockProductRepository()
	cartRepo := repositories.NewMockCartRepository()
	orderRepo := new(MockOrderWriter)
	orderService := services.NewOrderService(orderRepo, productRepo, cartRepo, nil)
	cartService := services.NewCartService(cartRepo, productRepo)

	for i, price := range []float64{50, 30} {
		id := fmt.Sprintf("prod-%d", i)
		require.NoError(t, productRepo.Create(&models.Product{
			ID: id, FarmerUsername: "ravi_farms", Category: "vegetables",
			Name: id, Quantity: 100, PricePerKg: price, Image: id + ".jpg",
		}))
		_, err := cartService.AddToCart("buyer1", id, 1)
		require.NoError(t, err)
	}

	// First insert succeeds, second fails.
	orderRepo.On("Create", mock.AnythingOfType("*models.Order")).Return(nil).Once()
	orderRepo.On("Create", mock.AnythingOfType("*models.Order")).Return(fmt.Errorf("database error")).Once()

	orders, err := orderService.PlaceOrder("buyer1", "")
	assert.ErrorIs(t, err, services.ErrPartialCheckout)
	assert.Contains(t, err.Error(), "database error")
	// The order written before the failure is reported, not hidden.
	assert.Len(t, orders, 1)

	// The cart is cleared even though the checkout partially failed.
	cart, err := cartService.GetCart("buyer1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	orderRepo.AssertExpectations(t)
}

func TestOrderService_ListOrders(t *testing.T) {
	f := newCheckoutFixture(t)
	f.seedProduct(t, "prod-a", "ravi_farms", 50)
	f.seedProduct(t, "prod-b", "lakshmi_acres", 30)

	_, err := f.cartService.AddToCart("buyer1", "prod-a", 2)
	require.NoError(t, err)
	_, err = f.cartService.AddToCart("buyer1", "prod-b", 1)
	require.NoError(t, err)
	_, err = f.orderService.PlaceOrder("buyer1", "")
	require.NoError(t, err)

	buyerOrders, err := f.orderService.GetBuyerOrders("buyer1")
	require.NoError(t, err)
	assert.Len(t, buyerOrders, 2)

	// Each farmer sees only orders on their own products.
	raviOrders, err := f.orderService.GetFarmerOrders("ravi_farms")
	require.NoError(t, err)
	require.Len(t, raviOrders, 1)
	assert.Equal(t, "prod-a", raviOrders[0].ProductID)

	lakshmiOrders, err := f.orderService.GetFarmerOrders("lakshmi_acres")
	require.NoError(t, err)
	require.Len(t, lakshmiOrders, 1)
	assert.Equal(t, "prod-b", lakshmiOrders[0].ProductID)
}

func TestOrderService_UpdateStatus_NoTransitionRules(t *testing.T) {
	f := newCheckoutFixture(t)
	f.seedProduct(t, "prod-a", "ravi_farms", 50)
	_, err := f.cartService.AddToCart("buyer1", "prod-a", 1)
	require.NoError(t, err)
	orders, err := f.orderService.PlaceOrder("buyer1", "")
	require.NoError(t, err)
	orderID := orders[0].ID

	// Any status can replace any other; there is no state machine.
	for _, status := range []string{models.StatusShipped, models.StatusDelivered, models.StatusShipped, models.StatusCancelled} {
		order, err := f.orderService.UpdateOrderStatus(orderID, status)
		require.NoError(t, err)
		assert.Equal(t, status, order.Status)
	}

	// Only the five enumerated statuses are accepted.
	_, err = f.orderService.UpdateOrderStatus(orderID, "Teleported")
	assert.ErrorIs(t, err, services.ErrInvalidStatus)

	_, err = f.orderService.UpdateOrderStatus("no-such-order", models.StatusShipped)
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
}
