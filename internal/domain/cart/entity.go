// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/musicstore/storefront/internal/domain/product"
	"github.com/shopspring/decimal"
)

// Cart is the single basket of a user
type Cart struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Lines     []CartLine `gorm:"foreignKey:CartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"lines,omitempty"`
}

// CartLine holds one product of a cart; a product appears at most once per cart
type CartLine struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	CartID    uint             `gorm:"not null;uniqueIndex:idx_cart_lines_cart_product" json:"cart_id"`
	ProductID uint             `gorm:"not null;uniqueIndex:idx_cart_lines_cart_product;index" json:"product_id"`
	Quantity  int              `gorm:"not null;check:chk_cart_lines_quantity,quantity > 0" json:"quantity"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Product   *product.Product `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"product,omitempty"`
}

// TableName overrides
func (Cart) TableName() string     { return "carts" }
func (CartLine) TableName() string { return "cart_lines" }

// LineView is a cart line priced at the live product price
type LineView struct {
	ID          uint            `json:"id"`
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Available   int             `json:"available"`
}

// CartView is the cart as shown to its owner
type CartView struct {
	CartID        uint            `json:"cart_id"`
	Lines         []LineView      `json:"lines"`
	ItemCount     int             `json:"item_count"`
	TotalQuantity int             `json:"total_quantity"`
	Total         decimal.Decimal `json:"total"`
}

// IsEmpty reports whether the cart has no lines
func (v *CartView) IsEmpty() bool {
	return len(v.Lines) == 0
}
