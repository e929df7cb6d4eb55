package services_test

import (
	"testing"

	"agrimarket/internal/models"
	"agrimarket/internal/repositories"
	"agrimarket/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCartService(t *testing.T) (*services.CartService, *repositories.MockProductRepository) {
	t.Helper()
	productRepo := repositories.NewMockProductRepository()
	cartRepo := repositories.NewMockCartRepository()
	return services.NewCartService(cartRepo, productRepo), productRepo
}

func seedProduct(t *testing.T, repo *repositories.MockProductRepository, id string, price float64) {
	t.Helper()
	err := repo.Create(&models.Product{
		ID:             id,
		FarmerUsername: "ravi_farms",
		Category:       "vegetables",
		Name:           "Tomatoes",
		Quantity:       100,
		PricePerKg:     price,
		Image:          "tomatoes.jpg",
	})
	require.NoError(t, err)
}

func TestCartService_AddAccumulatesQuantity(t *testing.T) {
	cartService, productRepo := newCartService(t)
	seedProduct(t, productRepo, "prod-a", 50)

	cart, err := cartService.AddToCart("buyer1", "prod-a", 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2.0, cart.Items[0].Quantity)

	// Adding the same product again accumulates into the one line.
	cart, err = cartService.AddToCart("buyer1", "prod-a", 3)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5.0, cart.Items[0].Quantity)
}

func TestCartService_AddDoesNotValidateProduct(t *testing.T) {
	cartService, _ := newCartService(t)

	// Adding a product id that is not in the catalog still succeeds;
	// checkout is where unresolvable products are rejected.
	cart, err := cartService.AddToCart("buyer1", "ghost-product", 1)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestCartService_GetUnknownBuyerReturnsEmptyCart(t *testing.T) {
	cartService, _ := newCartService(t)

	cart, err := cartService.GetCart("never-seen")
	require.NoError(t, err)
	assert.Equal(t, "never-seen", cart.BuyerUsername)
	assert.NotNil(t, cart.Items)
	assert.Empty(t, cart.Items)
}

func TestCartService_GetResolvesProducts(t *testing.T) {
	cartService, productRepo := newCartService(t)
	seedProduct(t, productRepo, "prod-a", 50)

	_, err := cartService.AddToCart("buyer1", "prod-a", 2)
	require.NoError(t, err)
	_, err = cartService.AddToCart("buyer1", "ghost-product", 1)
	require.NoError(t, err)

	cart, err := cartService.GetCart("buyer1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	require.NotNil(t, cart.Items[0].Product)
	assert.Equal(t, 50.0, cart.Items[0].Product.PricePerKg)
	// The unresolvable line stays, with no product attached.
	assert.Nil(t, cart.Items[1].Product)
}

func TestCartService_UpdateQuantity(t *testing.T) {
	cartService, productRepo := newCartService(t)
	seedProduct(t, productRepo, "prod-a", 50)
	seedProduct(t, productRepo, "prod-b", 30)

	_, err := cartService.AddToCart("buyer1", "prod-a", 2)
	require.NoError(t, err)
	_, err = cartService.AddToCart("buyer1", "prod-b", 1)
	require.NoError(t, err)

	// Overwrite, not accumulate
	cart, err := cartService.UpdateQuantity("buyer1", "prod-a", 7)
	require.NoError(t, err)
	assert.Equal(t, 7.0, cart.Items[0].Quantity)

	// Zero removes the line entirely
	cart, err = cartService.UpdateQuantity("buyer1", "prod-a", 0)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "prod-b", cart.Items[0].ProductID)

	// Updating an absent product is a no-op
	cart, err = cartService.UpdateQuantity("buyer1", "prod-a", 5)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestCartService_UpdateQuantityUnknownBuyer(t *testing.T) {
	cartService, _ := newCartService(t)

	_, err := cartService.UpdateQuantity("never-seen", "prod-a", 5)
	assert.ErrorIs(t, err, repositories.ErrCartNotFound)
}

func TestCartService_AddRemoveGetRoundTrip(t *testing.T) {
	cartService, productRepo := newCartService(t)
	seedProduct(t, productRepo, "prod-a", 50)

	_, err := cartService.AddToCart("buyer1", "prod-a", 2)
	require.NoError(t, err)

	cart, err := cartService.RemoveFromCart("buyer1", "prod-a")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	// The cart still exists, empty, not missing.
	cart, err = cartService.GetCart("buyer1")
	require.NoError(t, err)
	assert.NotNil(t, cart.Items)
	assert.Empty(t, cart.Items)

	// Removing an absent product is a no-op, not an error.
	_, err = cartService.RemoveFromCart("buyer1", "prod-a")
	assert.NoError(t, err)
}
