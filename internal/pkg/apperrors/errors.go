// internal/pkg/apperrors/errors.go
package apperrors

import (
	"fmt"
	"strings"
)

// InsufficientStockError is returned when a product cannot cover a requested quantity
type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product '%s': available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

// NotFoundError is returned when an entity is missing or not visible to the caller
type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	if e.ID == nil {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

// TerminalStateError is returned when an order can no longer transition
type TerminalStateError struct {
	OrderID uint
	Status  string
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("order %d is in terminal status '%s'", e.OrderID, e.Status)
}

// ConflictError covers concurrent modification and referential guards
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// ValidationError is returned for malformed input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ReleaseFailure describes one line whose stock could not be returned
type ReleaseFailure struct {
	ProductID   uint
	ProductName string
	Quantity    int
	Reason      string
}

// PartialReleaseFailure reports that a cancellation committed while some
// lines failed to return their stock.
type PartialReleaseFailure struct {
	OrderID   uint
	Failures  []ReleaseFailure
	Succeeded int
}

func (e *PartialReleaseFailure) Error() string {
	names := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		names = append(names, fmt.Sprintf("%s (%s)", f.ProductName, f.Reason))
	}
	return fmt.Sprintf("order %d cancelled but stock release failed for %d product(s): %s",
		e.OrderID, len(e.Failures), strings.Join(names, ", "))
}

// NewNotFound is a shorthand for NotFoundError
func NewNotFound(entity string, id any) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// NewValidation is a shorthand for ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
