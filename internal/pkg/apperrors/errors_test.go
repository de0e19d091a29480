package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessages(t *testing.T) {
	stock := &InsufficientStockError{ProductID: 3, ProductName: "Fender Stratocaster", Available: 1, Requested: 2}
	assert.Equal(t, "insufficient stock for product 'Fender Stratocaster': available 1, requested 2", stock.Error())

	assert.Equal(t, "order 7 not found", NewNotFound("order", uint(7)).Error())
	assert.Equal(t, "cart not found", NewNotFound("cart", nil).Error())
	assert.Equal(t, "order 9 is in terminal status 'Отменён'", (&TerminalStateError{OrderID: 9, Status: "Отменён"}).Error())
	assert.Equal(t, "quantity: must be at least 1", NewValidation("quantity", "must be at least 1").Error())
	assert.Equal(t, "cart is empty", NewValidation("", "cart is empty").Error())
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("failed to place order: %w", &InsufficientStockError{ProductID: 1, ProductName: "Pick", Available: 0, Requested: 1})

	var stockErr *InsufficientStockError
	require.True(t, errors.As(wrapped, &stockErr))
	assert.Equal(t, uint(1), stockErr.ProductID)

	var notFound *NotFoundError
	assert.False(t, errors.As(wrapped, &notFound))
}

func TestPartialReleaseFailureMessage(t *testing.T) {
	err := &PartialReleaseFailure{
		OrderID:   12,
		Succeeded: 1,
		Failures: []ReleaseFailure{
			{ProductID: 2, ProductName: "Drum Sticks", Quantity: 1, Reason: "expected 5, got 6"},
		},
	}
	assert.Equal(t, "order 12 cancelled but stock release failed for 1 product(s): Drum Sticks (expected 5, got 6)", err.Error())
}
