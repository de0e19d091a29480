// internal/domain/status/entity.go
package status

import "time"

// OrderStatus is an admin-managed, free-text order state label
type OrderStatus struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null;size:50" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (OrderStatus) TableName() string { return "order_statuses" }
