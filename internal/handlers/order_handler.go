package handlers

import (
	"errors"
	"fmt"
	"log"

	"agrimarket/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for checkout and the order
// ledger.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterBuyerRoutes registers checkout and the buyer's order list.
// Buyer and farmer routes share the /orders prefix, so the guards
// (auth + buyer role) attach per route; a group-level guard would run
// for the other role's routes on the same prefix.
func (h *OrderHandler) RegisterBuyerRoutes(router fiber.Router, guards ...fiber.Handler) {
	router.Post("/orders", guarded(guards, h.HandlePlaceOrder)...)
	router.Get("/orders/buyer/:username", guarded(guards, h.HandleGetBuyerOrders)...)
}

// RegisterFarmerRoutes registers the farmer's order list and status
// updates. The guards (auth + farmer role) attach per route, same as
// the buyer routes on this prefix.
func (h *OrderHandler) RegisterFarmerRoutes(router fiber.Router, guards ...fiber.Handler) {
	router.Get("/orders/farmer/:username", guarded(guards, h.HandleGetFarmerOrders)...)
	router.Put("/orders/:id/status", guarded(guards, h.HandleUpdateOrderStatus)...)
}

// guarded prepends the guard chain to a route handler.
func guarded(guards []fiber.Handler, handler fiber.Handler) []fiber.Handler {
	chain := make([]fiber.Handler, 0, len(guards)+1)
	chain = append(chain, guards...)
	return append(chain, handler)
}

// PlaceOrderRequest is the checkout request body.
type PlaceOrderRequest struct {
	BuyerUsername string `json:"buyerUsername"`
	Address       string `json:"address"`
}

// HandlePlaceOrder converts the buyer's cart into orders (one per
// cart line) and clears the cart.
func (h *OrderHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	var req PlaceOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if req.BuyerUsername == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Buyer username is required",
		})
	}

	orders, err := h.service.PlaceOrder(req.BuyerUsername, req.Address)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCartUnavailable):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Cart is empty or unavailable",
			})
		case errors.Is(err, services.ErrInvalidCartContents):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid product in cart",
			})
		default:
			// A partial failure is not hidden: some orders may have
			// been committed before the error.
			log.Printf("Error placing order for %s: %v", req.BuyerUsername, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": fmt.Sprintf("Server error: %v", err),
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order placed successfully",
		"orders":  orders,
	})
}

// HandleGetBuyerOrders returns the buyer's orders, oldest first.
func (h *OrderHandler) HandleGetBuyerOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetBuyerOrders(c.Params("username"))
	if err != nil {
		log.Printf("Error fetching buyer orders for %s: %v", c.Params("username"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch orders",
		})
	}
	return c.JSON(orders)
}

// HandleGetFarmerOrders returns orders on the farmer's products,
// oldest first.
func (h *OrderHandler) HandleGetFarmerOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetFarmerOrders(c.Params("username"))
	if err != nil {
		log.Printf("Error fetching farmer orders for %s: %v", c.Params("username"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch farmer orders",
		})
	}
	return c.JSON(orders)
}

// HandleUpdateOrderStatus overwrites an order's status.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Status is required",
		})
	}

	order, err := h.service.UpdateOrderStatus(c.Params("id"), req.Status)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		}
		if errors.Is(err, services.ErrInvalidStatus) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		log.Printf("Error updating order status for %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to update order status",
		})
	}

	return c.JSON(order)
}
