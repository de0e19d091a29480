// internal/interfaces/http/handlers/inventory.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/musicstore/storefront/internal/app"
	"github.com/musicstore/storefront/internal/domain/product"
	"github.com/sirupsen/logrus"
)

// InventoryHandler handles stock reporting endpoints
type InventoryHandler struct {
	productService *product.Service
	threshold      int
	logger         logrus.FieldLogger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(services *app.Services) *InventoryHandler {
	return &InventoryHandler{
		productService: services.Products,
		threshold:      services.Config.Order.LowStockThreshold,
		logger:         services.Logger,
	}
}

// GetLowStock handles GET /admin/products/low-stock
func (h *InventoryHandler) GetLowStock(c *gin.Context) {
	threshold := h.threshold
	if raw := c.Query("threshold"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid threshold"})
			return
		}
		threshold = parsed
	}

	products, err := h.productService.ListLowStock(c.Request.Context(), threshold)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve low stock products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Low stock products retrieved successfully",
		"data": gin.H{
			"threshold": threshold,
			"products":  products,
		},
	})
}
