// internal/domain/payment/entity.go
package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents payment status
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Payment records the amount owed for an order. Settlement happens outside this service.
type Payment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OrderID       uint            `gorm:"not null;index" json:"order_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaidAt        *time.Time      `json:"paid_at"`
	Status        PaymentStatus   `gorm:"not null;size:50" json:"status"`
	TransactionID *string         `gorm:"uniqueIndex;size:255" json:"transaction_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// PaymentMethod is an admin-managed way to pay
type PaymentMethod struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null;size:100" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// DeliveryMethod is an admin-managed way to ship. A null cost is free delivery.
type DeliveryMethod struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	Name        string              `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Cost        decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"cost"`
	Description string              `gorm:"type:text" json:"description"`
	CreatedAt   time.Time           `json:"created_at"`
}

// TableName overrides
func (Payment) TableName() string        { return "payments" }
func (PaymentMethod) TableName() string  { return "payment_methods" }
func (DeliveryMethod) TableName() string { return "delivery_methods" }

// Price returns the delivery cost, zero when unset
func (d *DeliveryMethod) Price() decimal.Decimal {
	if !d.Cost.Valid {
		return decimal.Zero
	}
	return d.Cost.Decimal
}
