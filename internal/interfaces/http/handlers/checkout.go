// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/musicstore/storefront/internal/app"
	"github.com/musicstore/storefront/internal/domain/payment"
	"github.com/musicstore/storefront/internal/domain/user"
	"github.com/musicstore/storefront/internal/interfaces/http/middleware"
	"github.com/sirupsen/logrus"
)

// CheckoutHandler serves the data the checkout form needs
type CheckoutHandler struct {
	paymentService *payment.Service
	addressService *user.AddressService
	logger         logrus.FieldLogger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(services *app.Services) *CheckoutHandler {
	return &CheckoutHandler{
		paymentService: services.Payments,
		addressService: services.Addresses,
		logger:         services.Logger,
	}
}

// GetOptions handles GET /checkout/options
func (h *CheckoutHandler) GetOptions(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	ctx := c.Request.Context()

	paymentMethods, deliveryMethods, err := h.paymentService.CheckoutOptions(ctx)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve checkout options")
		return
	}

	addresses, err := h.addressService.GetUserAddresses(ctx, userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve addresses")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout options retrieved successfully",
		"data": gin.H{
			"payment_methods":  paymentMethods,
			"delivery_methods": deliveryMethods,
			"addresses":        addresses,
		},
	})
}
