package services

import (
	"errors"
	"fmt"

	"agrimarket/internal/models"
	"agrimarket/internal/repositories"
)

// CartService handles business logic for the per-buyer shopping cart.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// AddToCart adds quantity of a product to the buyer's cart, creating
// the cart on first use. If the cart already holds a line for the
// product, the quantities accumulate; otherwise a new line is
// appended. The product is not validated against the catalog here.
func (s *CartService) AddToCart(buyerUsername, productID string, quantity float64) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByBuyer(buyerUsername)
	if err != nil {
		if !errors.Is(err, repositories.ErrCartNotFound) {
			return nil, fmt.Errorf("failed to load cart: %w", err)
		}
		cart = &models.Cart{BuyerUsername: buyerUsername, Items: []models.CartItem{}}
	}

	if idx := cart.FindItem(productID); idx > -1 {
		cart.Items[idx].Quantity += quantity
	} else {
		cart.Items = append(cart.Items, models.CartItem{ProductID: productID, Quantity: quantity})
	}

	if err := s.cartRepo.Save(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// GetCart returns the buyer's cart with each line's product reference
// resolved against the catalog. An unknown buyer gets an empty cart,
// never an error. Lines whose product no longer exists keep a nil
// product; checkout is where that becomes an error.
func (s *CartService) GetCart(buyerUsername string) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByBuyer(buyerUsername)
	if err != nil {
		if errors.Is(err, repositories.ErrCartNotFound) {
			return &models.Cart{BuyerUsername: buyerUsername, Items: []models.CartItem{}}, nil
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	for i := range cart.Items {
		if product, err := s.productRepo.GetByID(cart.Items[i].ProductID); err == nil {
			cart.Items[i].Product = product
		}
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return cart, nil
}

// UpdateQuantity overwrites the quantity of the product's cart line.
// A quantity of zero or less removes the line. Updating a product that
// is not in the cart is a no-op, not an error.
func (s *CartService) UpdateQuantity(buyerUsername, productID string, quantity float64) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByBuyer(buyerUsername)
	if err != nil {
		return nil, err
	}

	if idx := cart.FindItem(productID); idx > -1 {
		if quantity <= 0 {
			cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		} else {
			cart.Items[idx].Quantity = quantity
		}
	}

	if err := s.cartRepo.Save(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveFromCart filters out the product's line from the buyer's cart.
// Removing an absent product is a no-op.
func (s *CartService) RemoveFromCart(buyerUsername, productID string) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByBuyer(buyerUsername)
	if err != nil {
		return nil, err
	}

	items := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}
	cart.Items = items

	if err := s.cartRepo.Save(cart); err != nil {
		return nil, err
	}
	return cart, nil
}
