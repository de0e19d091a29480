// internal/domain/product/service.go
package product

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Service provides catalog reports
type Service struct {
	db *gorm.DB
}

// NewService creates a new product service
func NewService(db *gorm.DB) *Service {
	return &Service{
		db: db,
	}
}

// ListLowStock returns active products whose stock is at or below the threshold
func (s *Service) ListLowStock(ctx context.Context, threshold int) ([]Product, error) {
	var products []Product
	if err := s.db.WithContext(ctx).
		Where("is_active = ? AND stock <= ?", true, threshold).
		Order("stock ASC, name ASC").
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve low stock products: %w", err)
	}
	return products, nil
}
