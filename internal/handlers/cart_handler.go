package handlers

import (
	"errors"
	"log"

	"agrimarket/internal/repositories"
	"agrimarket/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the buyer's shopping cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes. The guards (auth + buyer
// role) apply to every route in the group.
func (h *CartHandler) RegisterRoutes(router fiber.Router, guards ...fiber.Handler) {
	cartRoutes := router.Group("/cart", guards...)
	cartRoutes.Post("/add", h.HandleAddToCart)
	cartRoutes.Get("/:buyerUsername", h.HandleGetCart)
	cartRoutes.Put("/update", h.HandleUpdateQuantity)
	cartRoutes.Delete("/remove", h.HandleRemoveFromCart)
}

// CartItemRequest identifies one cart line for add/update/remove.
type CartItemRequest struct {
	BuyerUsername string  `json:"buyerUsername" validate:"required"`
	ProductID     string  `json:"productId" validate:"required"`
	Quantity      float64 `json:"quantity"`
}

// HandleAddToCart adds a product to the buyer's cart, accumulating
// the quantity if the product is already in it. A missing quantity
// defaults to 1.
func (h *CartHandler) HandleAddToCart(c *fiber.Ctx) error {
	var req CartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": validationErrors(err),
		})
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	cart, err := h.service.AddToCart(req.BuyerUsername, req.ProductID, req.Quantity)
	if err != nil {
		log.Printf("Error adding to cart for %s: %v", req.BuyerUsername, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}
	return c.JSON(cart)
}

// HandleGetCart returns the buyer's cart with products resolved. An
// unknown buyer gets an empty cart, never a 404.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.service.GetCart(c.Params("buyerUsername"))
	if err != nil {
		log.Printf("Error fetching cart for %s: %v", c.Params("buyerUsername"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}
	return c.JSON(cart)
}

// HandleUpdateQuantity overwrites a cart line's quantity; zero or
// negative removes the line.
func (h *CartHandler) HandleUpdateQuantity(c *fiber.Ctx) error {
	var req CartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": validationErrors(err),
		})
	}

	cart, err := h.service.UpdateQuantity(req.BuyerUsername, req.ProductID, req.Quantity)
	if err != nil {
		if errors.Is(err, repositories.ErrCartNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Cart not found",
			})
		}
		log.Printf("Error updating cart for %s: %v", req.BuyerUsername, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}
	return c.JSON(cart)
}

// HandleRemoveFromCart removes a product's line from the cart.
func (h *CartHandler) HandleRemoveFromCart(c *fiber.Ctx) error {
	var req CartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if req.BuyerUsername == "" || req.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "buyerUsername and productId are required",
		})
	}

	cart, err := h.service.RemoveFromCart(req.BuyerUsername, req.ProductID)
	if err != nil {
		if errors.Is(err, repositories.ErrCartNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Cart not found",
			})
		}
		log.Printf("Error removing from cart for %s: %v", req.BuyerUsername, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}
	return c.JSON(cart)
}
