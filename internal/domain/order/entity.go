// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"github.com/musicstore/storefront/internal/domain/payment"
	"github.com/musicstore/storefront/internal/domain/status"
	"github.com/musicstore/storefront/internal/domain/user"
	"github.com/shopspring/decimal"
)

// Order represents the order entity. Total and line prices are snapshots taken
// at placement and are never recomputed.
type Order struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	UserID           uint            `gorm:"not null;index" json:"user_id"`
	StatusID         uint            `gorm:"not null;index" json:"status_id"`
	Total            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	AddressID        *uint           `gorm:"index" json:"address_id"`
	DeliveryMethodID *uint           `gorm:"index" json:"delivery_method_id"`
	PaymentMethodID  *uint           `gorm:"index" json:"payment_method_id"`
	Comment          string          `gorm:"type:text" json:"comment"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	// Relationships
	Status         *status.OrderStatus     `gorm:"foreignKey:StatusID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"status,omitempty"`
	User           *user.User              `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"user,omitempty"`
	Address        *user.Address           `gorm:"foreignKey:AddressID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"address,omitempty"`
	DeliveryMethod *payment.DeliveryMethod `gorm:"foreignKey:DeliveryMethodID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"delivery_method,omitempty"`
	PaymentMethod  *payment.PaymentMethod  `gorm:"foreignKey:PaymentMethodID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"payment_method,omitempty"`
	Lines          []OrderLine             `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"lines"`
	History        []HistoryEntry          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"history,omitempty"`
	Payments       []payment.Payment       `gorm:"foreignKey:OrderID" json:"payments,omitempty"`
}

// OrderLine is a purchased product with the unit price it was sold at
type OrderLine struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"not null;index" json:"order_id"`
	ProductID   uint            `gorm:"not null;index" json:"product_id"`
	ProductName string          `gorm:"not null;size:255" json:"product_name"`
	Quantity    int             `gorm:"not null;check:chk_order_lines_quantity,quantity > 0" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	CreatedAt   time.Time       `json:"created_at"`
}

// HistoryEntry is an append-only record of a status the order entered
type HistoryEntry struct {
	ID        uint                `gorm:"primaryKey" json:"id"`
	OrderID   uint                `gorm:"not null;index" json:"order_id"`
	StatusID  uint                `gorm:"not null;index" json:"status_id"`
	ChangedAt time.Time           `gorm:"not null" json:"changed_at"`
	ChangedBy uint                `gorm:"index" json:"changed_by"` // User ID who made the change
	Comment   string              `gorm:"type:text" json:"comment,omitempty"`
	Status    *status.OrderStatus `gorm:"foreignKey:StatusID" json:"status,omitempty"`
}

// TableName overrides
func (Order) TableName() string        { return "orders" }
func (OrderLine) TableName() string    { return "order_lines" }
func (HistoryEntry) TableName() string { return "order_history" }

// LineTotal returns quantity times the snapshot price
func (l *OrderLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ItemsTotal sums the snapshot line totals
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Lines {
		total = total.Add(o.Lines[i].LineTotal())
	}
	return total
}

// DeliveryCost is the part of the total not covered by the lines
func (o *Order) DeliveryCost() decimal.Decimal {
	return o.Total.Sub(o.ItemsTotal())
}

// StatusName returns the label of the loaded status
func (o *Order) StatusName() string {
	if o.Status == nil {
		return ""
	}
	return o.Status.Name
}

// Number formats the order id the way it is shown to customers
func (o *Order) Number() string {
	return fmt.Sprintf("#%06d", o.ID)
}
