// internal/interfaces/http/handlers/user_address.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/musicstore/storefront/internal/app"
	"github.com/musicstore/storefront/internal/domain/user"
	"github.com/musicstore/storefront/internal/interfaces/http/middleware"
	"github.com/sirupsen/logrus"
)

// UserAddressHandler handles user address endpoints
type UserAddressHandler struct {
	addressService *user.AddressService
	logger         logrus.FieldLogger
}

// NewUserAddressHandler creates a new user address handler
func NewUserAddressHandler(services *app.Services) *UserAddressHandler {
	return &UserAddressHandler{
		addressService: services.Addresses,
		logger:         services.Logger,
	}
}

// GetAddresses handles GET /users/addresses
func (h *UserAddressHandler) GetAddresses(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	addresses, err := h.addressService.GetUserAddresses(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve addresses")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Addresses retrieved successfully",
		"data":    addresses,
	})
}

// GetAddress handles GET /users/addresses/:id
func (h *UserAddressHandler) GetAddress(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	addressID, ok := parseID(c, "id", "address ID")
	if !ok {
		return
	}

	address, err := h.addressService.GetAddress(c.Request.Context(), userID, addressID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to retrieve address")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Address retrieved successfully",
		"data":    address,
	})
}
