// internal/interfaces/http/handlers/response.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/musicstore/storefront/internal/interfaces/http/middleware"
	"github.com/musicstore/storefront/internal/pkg/apperrors"
	"github.com/sirupsen/logrus"
)

// respondError maps domain errors onto HTTP statuses. Anything unrecognised
// is logged and reported as a generic 500.
func respondError(c *gin.Context, logger logrus.FieldLogger, err error, fallback string) {
	var (
		insufficient *apperrors.InsufficientStockError
		terminal     *apperrors.TerminalStateError
		conflict     *apperrors.ConflictError
		notFound     *apperrors.NotFoundError
		validation   *apperrors.ValidationError
	)

	switch {
	case errors.As(err, &insufficient):
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
			"details": gin.H{
				"product_id": insufficient.ProductID,
				"available":  insufficient.Available,
				"requested":  insufficient.Requested,
			},
		})
	case errors.As(err, &terminal), errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.WithFields(logrus.Fields{
			"request_id": c.GetString(middleware.RequestIDKey),
			"path":       c.FullPath(),
		}).WithError(err).Error(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// respondBindError reports a request that failed binding
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": err.Error(),
	})
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, name, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + label})
		return 0, false
	}
	return uint(id), true
}
