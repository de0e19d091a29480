// internal/domain/inventory/entity.go
package inventory

import (
	"time"
)

// MovementType represents the type of stock movement
type MovementType string

const (
	MovementTypeReservation MovementType = "reservation" // Order placement
	MovementTypeRelease     MovementType = "release"     // Order cancellation
)

// Reference identifies what caused a movement
type Reference struct {
	Type    string
	ID      uint
	ActorID uint
}

// OrderReference builds the reference used by the order workflow
func OrderReference(orderID, actorID uint) Reference {
	return Reference{Type: "order", ID: orderID, ActorID: actorID}
}

// StockMovement is the append-only journal of every ledger write
type StockMovement struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	ProductID     uint         `gorm:"not null;index" json:"product_id"`
	MovementType  MovementType `gorm:"not null;size:20" json:"movement_type"`
	Quantity      int          `gorm:"not null" json:"quantity"`
	PreviousStock int          `gorm:"not null" json:"previous_stock"`
	NewStock      int          `gorm:"not null" json:"new_stock"`
	Verified      bool         `gorm:"not null" json:"verified"`
	ReferenceType string       `gorm:"size:50" json:"reference_type"`
	ReferenceID   uint         `gorm:"index" json:"reference_id"`
	Notes         string       `gorm:"type:text" json:"notes"`
	CreatedBy     uint         `gorm:"index" json:"created_by"`
	CreatedAt     time.Time    `json:"created_at"`
}

func (StockMovement) TableName() string { return "stock_movements" }

// Line is one product quantity handed to the ledger
type Line struct {
	ProductID   uint
	ProductName string
	Quantity    int
}

// ReleaseOutcome is the result of returning one line to stock
type ReleaseOutcome struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Before      int    `json:"stock_before"`
	After       int    `json:"stock_after"`
	Released    bool   `json:"released"`
	Error       string `json:"error,omitempty"`

	applied bool
}

// ReleaseReport collects the outcomes of a cancellation
type ReleaseReport struct {
	Outcomes []ReleaseOutcome `json:"outcomes"`
}

// Succeeded returns the lines that were returned to stock
func (r *ReleaseReport) Succeeded() []ReleaseOutcome {
	var out []ReleaseOutcome
	for _, o := range r.Outcomes {
		if o.Released {
			out = append(out, o)
		}
	}
	return out
}

// Failed returns the lines whose release could not be verified
func (r *ReleaseReport) Failed() []ReleaseOutcome {
	var out []ReleaseOutcome
	for _, o := range r.Outcomes {
		if !o.Released {
			out = append(out, o)
		}
	}
	return out
}

// HasFailures reports whether any line failed
func (r *ReleaseReport) HasFailures() bool {
	return r != nil && len(r.Failed()) > 0
}
