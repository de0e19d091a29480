// internal/interfaces/http/handlers/order.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/musicstore/storefront/internal/app"
	"github.com/musicstore/storefront/internal/domain/order"
	"github.com/musicstore/storefront/internal/interfaces/http/middleware"
	"github.com/sirupsen/logrus"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	orderService *order.Service
	logger       logrus.FieldLogger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(services *app.Services) *OrderHandler {
	return &OrderHandler{
		orderService: services.Orders,
		logger:       services.Logger,
	}
}

// CreateOrder handles POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req order.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	placed, err := h.orderService.PlaceOrder(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to place order")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    placed,
	})
}

// GetOrders handles GET /orders
func (h *OrderHandler) GetOrders(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	orders, err := h.orderService.ListUserOrders(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    orders,
	})
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	orderID, ok := parseID(c, "id", "order ID")
	if !ok {
		return
	}

	summary, err := h.orderService.GetUserOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    summary,
	})
}

// CancelOrder handles PUT /orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	orderID, ok := parseID(c, "id", "order ID")
	if !ok {
		return
	}

	result, err := h.orderService.CancelByUser(c.Request.Context(), userID, orderID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to cancel order")
		return
	}

	respondTransition(c, result, "Order cancelled successfully")
}

// ADMIN ENDPOINTS

// AdminGetOrders handles GET /admin/orders
func (h *OrderHandler) AdminGetOrders(c *gin.Context) {
	var req order.OrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	orders, err := h.orderService.AdminListOrders(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    orders,
	})
}

// AdminGetOrder handles GET /admin/orders/:id
func (h *OrderHandler) AdminGetOrder(c *gin.Context) {
	orderID, ok := parseID(c, "id", "order ID")
	if !ok {
		return
	}

	summary, err := h.orderService.AdminGetOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    summary,
	})
}

// AdminUpdateOrderStatus handles PUT /admin/orders/:id/status
func (h *OrderHandler) AdminUpdateOrderStatus(c *gin.Context) {
	actorID, _ := middleware.GetUserIDFromContext(c)

	orderID, ok := parseID(c, "id", "order ID")
	if !ok {
		return
	}

	var req order.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.orderService.ChangeStatus(c.Request.Context(), orderID, &req, actorID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update order status")
		return
	}

	respondTransition(c, result, "Order status updated successfully")
}

// respondTransition reports a committed transition. Stock that could not be
// returned does not undo the cancellation and is surfaced as a warning.
func respondTransition(c *gin.Context, result *order.TransitionResult, message string) {
	body := gin.H{
		"message": message,
		"data":    result,
	}
	if failure := result.PartialFailure(); failure != nil {
		body["warning"] = failure.Error()
		body["release"] = failure.Failures
	}

	c.JSON(http.StatusOK, body)
}
