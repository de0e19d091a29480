// internal/interfaces/http/handlers/status.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/musicstore/storefront/internal/app"
	"github.com/musicstore/storefront/internal/domain/status"
	"github.com/sirupsen/logrus"
)

// StatusHandler manages the order status directory
type StatusHandler struct {
	statusService *status.Service
	logger        logrus.FieldLogger
}

// StatusRequest carries a status name
type StatusRequest struct {
	Name string `json:"name" binding:"required"`
}

// StatusView is a status with its derived category
type StatusView struct {
	status.OrderStatus
	Category status.Category `json:"category"`
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(services *app.Services) *StatusHandler {
	return &StatusHandler{
		statusService: services.Statuses,
		logger:        services.Logger,
	}
}

// GetStatuses handles GET /admin/order-statuses
func (h *StatusHandler) GetStatuses(c *gin.Context) {
	statuses, err := h.statusService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve order statuses")
		return
	}

	views := make([]StatusView, 0, len(statuses))
	for _, st := range statuses {
		views = append(views, h.view(st))
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order statuses retrieved successfully",
		"data":    views,
	})
}

// CreateStatus handles POST /admin/order-statuses
func (h *StatusHandler) CreateStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	created, err := h.statusService.Create(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create order status")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order status created successfully",
		"data":    h.view(*created),
	})
}

// UpdateStatus handles PUT /admin/order-statuses/:id
func (h *StatusHandler) UpdateStatus(c *gin.Context) {
	statusID, ok := parseID(c, "id", "status ID")
	if !ok {
		return
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	renamed, err := h.statusService.Rename(c.Request.Context(), statusID, req.Name)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update order status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"data":    h.view(*renamed),
	})
}

// DeleteStatus handles DELETE /admin/order-statuses/:id
func (h *StatusHandler) DeleteStatus(c *gin.Context) {
	statusID, ok := parseID(c, "id", "status ID")
	if !ok {
		return
	}

	if err := h.statusService.Delete(c.Request.Context(), statusID); err != nil {
		respondError(c, h.logger, err, "Failed to delete order status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status deleted successfully",
	})
}

func (h *StatusHandler) view(st status.OrderStatus) StatusView {
	return StatusView{OrderStatus: st, Category: h.statusService.Classify(st.Name)}
}
