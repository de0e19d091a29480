// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/musicstore/storefront/internal/domain/product"
	"github.com/musicstore/storefront/internal/pkg/apperrors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service handles cart business logic
type Service struct {
	db     *gorm.DB
	logger logrus.FieldLogger
}

// NewService creates a new cart service
func NewService(db *gorm.DB, logger logrus.FieldLogger) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

// AddToCartRequest represents add to cart data
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

// UpdateCartLineRequest represents cart line update data
type UpdateCartLineRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// GetOrCreateCart returns the user's cart, creating it on first use
func (s *Service) GetOrCreateCart(ctx context.Context, userID uint) (*Cart, error) {
	return s.getOrCreate(s.db.WithContext(ctx), userID)
}

// GetCart returns the cart priced at live product prices. A user without a
// cart gets an empty view.
func (s *Service) GetCart(ctx context.Context, userID uint) (*CartView, error) {
	c, err := s.LoadWithLines(s.db.WithContext(ctx), userID)
	if err != nil {
		var notFound *apperrors.NotFoundError
		if errors.As(err, &notFound) {
			return &CartView{Lines: []LineView{}, Total: decimal.Zero}, nil
		}
		return nil, err
	}
	return BuildView(c), nil
}

// AddLine adds quantity of a product to the cart, merging with an existing line.
// The merged quantity must fit in the live stock.
func (s *Service) AddLine(ctx context.Context, userID, productID uint, quantity int) (*CartView, error) {
	if quantity < 1 {
		return nil, apperrors.NewValidation("quantity", "must be at least 1")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := s.getOrCreate(tx, userID)
		if err != nil {
			return err
		}

		p, err := s.loadProduct(tx, productID)
		if err != nil {
			return err
		}

		var line CartLine
		err = tx.Where("cart_id = ? AND product_id = ?", c.ID, productID).First(&line).Error
		switch {
		case err == nil:
			merged := line.Quantity + quantity
			if !p.InStock(merged) {
				return insufficient(p, merged)
			}
			if err := tx.Model(&line).Update("quantity", merged).Error; err != nil {
				return fmt.Errorf("failed to update cart line: %w", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if !p.InStock(quantity) {
				return insufficient(p, quantity)
			}
			line = CartLine{CartID: c.ID, ProductID: productID, Quantity: quantity}
			if err := tx.Create(&line).Error; err != nil {
				return fmt.Errorf("failed to add cart line: %w", err)
			}
		default:
			return fmt.Errorf("failed to check existing cart line: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	}).Debug("Cart line added")

	return s.GetCart(ctx, userID)
}

// UpdateLine sets the quantity of a line. Zero removes it.
func (s *Service) UpdateLine(ctx context.Context, userID, lineID uint, quantity int) (*CartView, error) {
	if quantity < 0 {
		return nil, apperrors.NewValidation("quantity", "must not be negative")
	}
	if quantity == 0 {
		if err := s.RemoveLine(ctx, userID, lineID); err != nil {
			return nil, err
		}
		return s.GetCart(ctx, userID)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		line, err := s.ownedLine(tx, userID, lineID)
		if err != nil {
			return err
		}

		p, err := s.loadProduct(tx, line.ProductID)
		if err != nil {
			return err
		}
		if quantity > p.Stock {
			return insufficient(p, quantity)
		}

		if err := tx.Model(line).Update("quantity", quantity).Error; err != nil {
			return fmt.Errorf("failed to update cart line: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetCart(ctx, userID)
}

// RemoveLine deletes a line of the user's own cart
func (s *Service) RemoveLine(ctx context.Context, userID, lineID uint) error {
	db := s.db.WithContext(ctx)
	owned := db.Model(&Cart{}).Select("id").Where("user_id = ?", userID)

	result := db.
		Where("id = ? AND cart_id IN (?)", lineID, owned).
		Delete(&CartLine{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove cart line: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFound("cart line", lineID)
	}

	return nil
}

// Clear deletes all lines of a cart inside the caller's transaction. The cart row stays.
// Fewer deleted lines than expected means another checkout consumed the cart first.
func (s *Service) Clear(tx *gorm.DB, cartID uint, expected int) error {
	result := tx.Where("cart_id = ?", cartID).Delete(&CartLine{})
	if result.Error != nil {
		return fmt.Errorf("failed to clear cart: %w", result.Error)
	}
	if result.RowsAffected != int64(expected) {
		return &apperrors.ConflictError{Message: "cart was changed during checkout, review it and try again"}
	}
	return nil
}

// LockForCheckout locks the user's cart row and loads it with lines, so two
// checkouts of the same cart run one after another.
func (s *Service) LockForCheckout(tx *gorm.DB, userID uint) (*Cart, error) {
	var locked Cart
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("user_id = ?", userID).
		First(&locked).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("cart", nil)
		}
		return nil, fmt.Errorf("failed to lock cart: %w", err)
	}
	return s.LoadWithLines(tx, userID)
}

// LoadWithLines loads the user's cart with lines and their products
func (s *Service) LoadWithLines(tx *gorm.DB, userID uint) (*Cart, error) {
	var c Cart
	err := tx.
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Lines.Product").
		Where("user_id = ?", userID).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("cart", nil)
		}
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	return &c, nil
}

// ComputeTotal sums quantity times the live product price of every line
func ComputeTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		if line.Product == nil {
			continue
		}
		total = total.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// BuildView prices a loaded cart
func BuildView(c *Cart) *CartView {
	view := &CartView{
		CartID: c.ID,
		Lines:  make([]LineView, 0, len(c.Lines)),
		Total:  ComputeTotal(c.Lines),
	}

	for _, line := range c.Lines {
		lv := LineView{
			ID:        line.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: decimal.Zero,
			LineTotal: decimal.Zero,
		}
		if line.Product != nil {
			lv.ProductName = line.Product.Name
			lv.UnitPrice = line.Product.Price
			lv.LineTotal = line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			lv.Available = line.Product.Stock
		}
		view.Lines = append(view.Lines, lv)
		view.TotalQuantity += line.Quantity
	}
	view.ItemCount = len(view.Lines)

	return view
}

// getOrCreate relies on the unique user_id index: a concurrent creator makes
// our insert a no-op and the row is fetched instead.
func (s *Service) getOrCreate(tx *gorm.DB, userID uint) (*Cart, error) {
	var c Cart
	err := tx.Where("user_id = ?", userID).First(&c).Error
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	c = Cart{UserID: userID}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&c).Error; err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	if c.ID == 0 {
		if err := tx.Where("user_id = ?", userID).First(&c).Error; err != nil {
			return nil, fmt.Errorf("failed to retrieve cart: %w", err)
		}
	}

	return &c, nil
}

func (s *Service) ownedLine(tx *gorm.DB, userID, lineID uint) (*CartLine, error) {
	var line CartLine
	owned := tx.Model(&Cart{}).Select("id").Where("user_id = ?", userID)
	err := tx.Where("id = ? AND cart_id IN (?)", lineID, owned).First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("cart line", lineID)
		}
		return nil, fmt.Errorf("failed to retrieve cart line: %w", err)
	}
	return &line, nil
}

func (s *Service) loadProduct(tx *gorm.DB, productID uint) (*product.Product, error) {
	var p product.Product
	if err := tx.First(&p, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("product", productID)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &p, nil
}

func insufficient(p *product.Product, requested int) error {
	return &apperrors.InsufficientStockError{
		ProductID:   p.ID,
		ProductName: p.Name,
		Available:   p.Stock,
		Requested:   requested,
	}
}
