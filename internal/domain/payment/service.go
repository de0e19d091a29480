// internal/domain/payment/service.go
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/musicstore/storefront/internal/pkg/apperrors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service reads the payment and delivery method directories and records pending payments
type Service struct {
	db *gorm.DB
}

// NewService creates a new payment service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// MethodOption is a directory entry ready for a checkout form
type MethodOption struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	DisplayName string          `json:"display_name"`
	Label       string          `json:"label,omitempty"`
	Cost        decimal.Decimal `json:"cost"`
	Description string          `json:"description,omitempty"`
}

// ListPaymentMethods returns every payment method
func (s *Service) ListPaymentMethods(ctx context.Context) ([]PaymentMethod, error) {
	var methods []PaymentMethod
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&methods).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve payment methods: %w", err)
	}
	return methods, nil
}

// ListDeliveryMethods returns delivery methods; checkout callers exclude pickup
func (s *Service) ListDeliveryMethods(ctx context.Context, excludePickup bool) ([]DeliveryMethod, error) {
	var methods []DeliveryMethod
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&methods).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve delivery methods: %w", err)
	}

	if !excludePickup {
		return methods, nil
	}

	filtered := methods[:0]
	for _, m := range methods {
		if !m.IsPickup() {
			filtered = append(filtered, m)
		}
	}
	return filtered, nil
}

// CheckoutOptions returns both directories in display form
func (s *Service) CheckoutOptions(ctx context.Context) ([]MethodOption, []MethodOption, error) {
	payments, err := s.ListPaymentMethods(ctx)
	if err != nil {
		return nil, nil, err
	}
	deliveries, err := s.ListDeliveryMethods(ctx, true)
	if err != nil {
		return nil, nil, err
	}

	paymentOptions := make([]MethodOption, 0, len(payments))
	for i := range payments {
		paymentOptions = append(paymentOptions, MethodOption{
			ID:          payments[i].ID,
			Name:        payments[i].Name,
			DisplayName: payments[i].DisplayName(),
		})
	}

	deliveryOptions := make([]MethodOption, 0, len(deliveries))
	for i := range deliveries {
		deliveryOptions = append(deliveryOptions, MethodOption{
			ID:          deliveries[i].ID,
			Name:        deliveries[i].Name,
			DisplayName: deliveries[i].DisplayName(),
			Label:       deliveries[i].Label(),
			Cost:        deliveries[i].Price(),
			Description: deliveries[i].Description,
		})
	}

	return paymentOptions, deliveryOptions, nil
}

// GetPaymentMethod looks up a payment method on the given handle
func (s *Service) GetPaymentMethod(tx *gorm.DB, id uint) (*PaymentMethod, error) {
	var method PaymentMethod
	if err := tx.First(&method, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("payment method", id)
		}
		return nil, fmt.Errorf("failed to retrieve payment method: %w", err)
	}
	return &method, nil
}

// GetDeliveryMethod looks up a delivery method on the given handle
func (s *Service) GetDeliveryMethod(tx *gorm.DB, id uint) (*DeliveryMethod, error) {
	var method DeliveryMethod
	if err := tx.First(&method, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("delivery method", id)
		}
		return nil, fmt.Errorf("failed to retrieve delivery method: %w", err)
	}
	return &method, nil
}

// CreatePending records a pending payment for an order inside the caller's transaction
func (s *Service) CreatePending(tx *gorm.DB, orderID uint, amount decimal.Decimal) (*Payment, error) {
	p := Payment{
		OrderID: orderID,
		Amount:  amount,
		Status:  PaymentStatusPending,
	}
	if err := tx.Create(&p).Error; err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	return &p, nil
}
