// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/musicstore/storefront/internal/app"
	"github.com/musicstore/storefront/internal/domain/cart"
	"github.com/musicstore/storefront/internal/interfaces/http/middleware"
	"github.com/sirupsen/logrus"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
	logger      logrus.FieldLogger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(services *app.Services) *CartHandler {
	return &CartHandler{
		cartService: services.Carts,
		logger:      services.Logger,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	view, err := h.cartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    view,
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req cart.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	view, err := h.cartService.AddLine(c.Request.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, h.logger, err, "Failed to add item to cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    view,
	})
}

// UpdateCartItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	lineID, ok := parseID(c, "id", "cart item ID")
	if !ok {
		return
	}

	var req cart.UpdateCartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	view, err := h.cartService.UpdateLine(c.Request.Context(), userID, lineID, req.Quantity)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    view,
	})
}

// RemoveCartItem handles DELETE /cart/items/:id
func (h *CartHandler) RemoveCartItem(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	lineID, ok := parseID(c, "id", "cart item ID")
	if !ok {
		return
	}

	if err := h.cartService.RemoveLine(c.Request.Context(), userID, lineID); err != nil {
		respondError(c, h.logger, err, "Failed to remove cart item")
		return
	}

	view, err := h.cartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    view,
	})
}
