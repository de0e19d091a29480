// internal/domain/inventory/ledger.go
package inventory

import (
	"errors"
	"fmt"

	"github.com/musicstore/storefront/internal/domain/product"
	"github.com/musicstore/storefront/internal/pkg/apperrors"
	"github.com/musicstore/storefront/internal/pkg/metrics"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Ledger is the only writer of product stock. Every method runs on the
// caller's transaction handle.
type Ledger struct {
	metrics *metrics.Metrics
	logger  logrus.FieldLogger
}

// NewLedger creates a new inventory ledger
func NewLedger(logger logrus.FieldLogger, m *metrics.Metrics) *Ledger {
	return &Ledger{
		metrics: m,
		logger:  logger,
	}
}

// Stock returns the current stock of a product
func (l *Ledger) Stock(tx *gorm.DB, productID uint) (int, error) {
	p, err := l.load(tx, productID)
	if err != nil {
		return 0, err
	}
	return p.Stock, nil
}

// Reserve decrements stock by quantity or fails with InsufficientStockError.
// The decrement is conditional on stock >= quantity, so a concurrent reservation
// that drained the product in between is detected even without row locks.
func (l *Ledger) Reserve(tx *gorm.DB, productID uint, quantity int, ref Reference) error {
	if quantity <= 0 {
		return apperrors.NewValidation("quantity", "must be positive")
	}

	p, err := l.load(tx, productID)
	if err != nil {
		return err
	}

	if quantity > p.Stock {
		l.metrics.StockRejected()
		return &apperrors.InsufficientStockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Available:   p.Stock,
			Requested:   quantity,
		}
	}

	result := tx.Model(&product.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("failed to reserve stock: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		current, err := l.Stock(tx, productID)
		if err != nil {
			return err
		}
		l.metrics.StockRejected()
		return &apperrors.InsufficientStockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Available:   current,
			Requested:   quantity,
		}
	}

	movement := StockMovement{
		ProductID:     productID,
		MovementType:  MovementTypeReservation,
		Quantity:      quantity,
		PreviousStock: p.Stock,
		NewStock:      p.Stock - quantity,
		Verified:      true,
		ReferenceType: ref.Type,
		ReferenceID:   ref.ID,
		CreatedBy:     ref.ActorID,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}

	l.metrics.Reserved(quantity)
	return nil
}

// Release returns quantity to stock and verifies the write by re-reading.
// Problems are reported in the outcome instead of being returned.
func (l *Ledger) Release(tx *gorm.DB, productID uint, quantity int, ref Reference) ReleaseOutcome {
	outcome := ReleaseOutcome{
		ProductID: productID,
		Quantity:  quantity,
	}

	if quantity <= 0 {
		outcome.Error = "quantity must be positive"
		return outcome
	}

	p, err := l.load(tx, productID)
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	outcome.ProductName = p.Name
	outcome.Before = p.Stock

	result := tx.Model(&product.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	if result.Error != nil {
		outcome.Error = fmt.Sprintf("failed to update stock: %v", result.Error)
		return outcome
	}
	if result.RowsAffected == 0 {
		outcome.Error = "product row was not updated"
		return outcome
	}
	outcome.applied = true

	after, err := l.Stock(tx, productID)
	if err != nil {
		outcome.applied = false
		outcome.Error = fmt.Sprintf("failed to verify stock: %v", err)
		return outcome
	}
	outcome.After = after

	expected := outcome.Before + quantity
	if after != expected {
		outcome.Error = fmt.Sprintf("expected stock %d, got %d", expected, after)
	} else {
		outcome.Released = true
	}

	movement := StockMovement{
		ProductID:     productID,
		MovementType:  MovementTypeRelease,
		Quantity:      quantity,
		PreviousStock: outcome.Before,
		NewStock:      after,
		Verified:      outcome.Released,
		ReferenceType: ref.Type,
		ReferenceID:   ref.ID,
		Notes:         outcome.Error,
		CreatedBy:     ref.ActorID,
	}
	if err := tx.Create(&movement).Error; err != nil {
		l.logger.WithError(err).WithField("product_id", productID).Warn("Failed to record release movement")
	}

	return outcome
}

// ReleaseAll releases every line. Each line runs inside its own savepoint so a
// failing statement cannot poison the surrounding transaction.
func (l *Ledger) ReleaseAll(tx *gorm.DB, lines []Line, ref Reference) *ReleaseReport {
	report := &ReleaseReport{Outcomes: make([]ReleaseOutcome, 0, len(lines))}

	for i, line := range lines {
		savepoint := fmt.Sprintf("release_%d", i)
		if err := tx.SavePoint(savepoint).Error; err != nil {
			report.Outcomes = append(report.Outcomes, ReleaseOutcome{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Quantity:    line.Quantity,
				Error:       fmt.Sprintf("failed to open savepoint: %v", err),
			})
			continue
		}

		outcome := l.Release(tx, line.ProductID, line.Quantity, ref)
		if outcome.ProductName == "" {
			outcome.ProductName = line.ProductName
		}

		if outcome.Released {
			l.metrics.Released(line.Quantity)
		} else {
			// A write that went through but read back wrong is kept and flagged.
			if !outcome.applied {
				tx.RollbackTo(savepoint)
			}
			l.metrics.ReleaseFailed()
			l.logger.WithFields(logrus.Fields{
				"product_id":     line.ProductID,
				"quantity":       line.Quantity,
				"reference_type": ref.Type,
				"reference_id":   ref.ID,
				"error":          outcome.Error,
			}).Error("Stock release failed")
		}

		report.Outcomes = append(report.Outcomes, outcome)
	}

	return report
}

func (l *Ledger) load(tx *gorm.DB, productID uint) (*product.Product, error) {
	var p product.Product
	if err := tx.Select("id", "name", "stock").First(&p, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("product", productID)
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return &p, nil
}
