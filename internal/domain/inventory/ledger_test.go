package inventory_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/musicstore/storefront/internal/domain/inventory"
	"github.com/musicstore/storefront/internal/pkg/apperrors"
	"github.com/musicstore/storefront/internal/pkg/logger"
	"github.com/musicstore/storefront/internal/pkg/metrics"
	"github.com/musicstore/storefront/internal/testutil"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newLedger() (*inventory.Ledger, *metrics.Metrics) {
	m := metrics.New("test")
	return inventory.NewLedger(logger.Discard(), m), m
}

func TestReserveDecrementsStock(t *testing.T) {
	db := testutil.NewDB(t)
	ledger, m := newLedger()
	p := testutil.CreateProduct(t, db, "Fender Telecaster", "1000.00", 5)

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Reserve(tx, p.ID, 3, inventory.OrderReference(1, 1))
	})
	require.NoError(t, err)

	assert.Equal(t, 2, testutil.Stock(t, db, p.ID))
	assert.Equal(t, 3.0, promtest.ToFloat64(m.StockUnitsReserved))

	var movement inventory.StockMovement
	require.NoError(t, db.Where("product_id = ?", p.ID).First(&movement).Error)
	assert.Equal(t, inventory.MovementTypeReservation, movement.MovementType)
	assert.Equal(t, 5, movement.PreviousStock)
	assert.Equal(t, 2, movement.NewStock)
	assert.Equal(t, uint(1), movement.ReferenceID)
}

func TestReserveWholeStock(t *testing.T) {
	db := testutil.NewDB(t)
	ledger, _ := newLedger()
	p := testutil.CreateProduct(t, db, "Yamaha P-45", "500.00", 4)

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Reserve(tx, p.ID, 4, inventory.OrderReference(1, 1))
	})
	require.NoError(t, err)
	assert.Equal(t, 0, testutil.Stock(t, db, p.ID))
}

func TestReserveInsufficientStock(t *testing.T) {
	db := testutil.NewDB(t)
	ledger, m := newLedger()
	p := testutil.CreateProduct(t, db, "Gibson Les Paul", "2000.00", 2)

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Reserve(tx, p.ID, 3, inventory.OrderReference(1, 1))
	})

	var stockErr *apperrors.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, p.ID, stockErr.ProductID)
	assert.Equal(t, "Gibson Les Paul", stockErr.ProductName)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 3, stockErr.Requested)

	assert.Equal(t, 2, testutil.Stock(t, db, p.ID))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.InsufficientStock))

	var movements int64
	db.Model(&inventory.StockMovement{}).Count(&movements)
	assert.Zero(t, movements)
}

func TestReserveLosesRaceToConcurrentWriter(t *testing.T) {
	db := testutil.NewDB(t)
	ledger, m := newLedger()
	p := testutil.CreateProduct(t, db, "Martin D-28", "3000.00", 3)

	// Another checkout takes the last units after the stock check passed.
	testutil.BeforeUpdate(t, db, "products", func(tx *gorm.DB) error {
		return tx.Exec("UPDATE products SET stock = 0 WHERE id = ?", p.ID).Error
	})

	var reserveErr error
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		reserveErr = ledger.Reserve(tx, p.ID, 2, inventory.OrderReference(1, 1))
		return nil
	}))

	var stockErr *apperrors.InsufficientStockError
	require.True(t, errors.As(reserveErr, &stockErr))
	assert.Equal(t, 0, stockErr.Available)
	assert.Equal(t, 2, stockErr.Requested)
	assert.Equal(t, 0, testutil.Stock(t, db, p.ID))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.InsufficientStock))

	var movements int64
	db.Model(&inventory.StockMovement{}).Count(&movements)
	assert.Zero(t, movements)
}

func TestReserveRejectsBadInput(t *testing.T) {
	db := testutil.NewDB(t)
	ledger, _ := newLedger()
	p := testutil.CreateProduct(t, db, "Capo", "10.00", 2)

	err := ledger.Reserve(db, p.ID, 0, inventory.OrderReference(1, 1))
	var validation *apperrors.ValidationError
	assert.True(t, errors.As(err, &validation))

	err = ledger.Reserve(db, 9999, 1, inventory.OrderReference(1, 1))
	var notFound *apperrors.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestReleaseIncrementsAndVerifies(t *testing.T) {
	db := testutil.NewDB(t)
	ledger, _ := newLedger()
	p := testutil.CreateProduct(t, db, "Strings", "8.00", 1)

	var outcome inventory.ReleaseOutcome
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		outcome = ledger.Release(tx, p.ID, 2, inventory.OrderReference(7, 1))
		return nil
	}))

	assert.True(t, outcome.Released)
	assert.Empty(t, outcome.Error)
	assert.Equal(t, 1, outcome.Before)
	assert.Equal(t, 3, outcome.After)
	assert.Equal(t, "Strings", outcome.ProductName)
	assert.Equal(t, 3, testutil.Stock(t, db, p.ID))
}

func TestReleaseAllReportsEachLine(t *testing.T) {
	db := testutil.NewDB(t)
	ledger, m := newLedger()
	a := testutil.CreateProduct(t, db, "Drum Sticks", "12.00", 0)
	b := testutil.CreateProduct(t, db, "Cymbal", "150.00", 1)

	lines := []inventory.Line{
		{ProductID: a.ID, ProductName: a.Name, Quantity: 2},
		{ProductID: 424242, ProductName: "Removed Product", Quantity: 1},
		{ProductID: b.ID, ProductName: b.Name, Quantity: 1},
	}

	var report *inventory.ReleaseReport
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		report = ledger.ReleaseAll(tx, lines, inventory.OrderReference(3, 1))
		return nil
	}))

	require.Len(t, report.Outcomes, 3)
	assert.True(t, report.HasFailures())
	assert.Len(t, report.Succeeded(), 2)

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "Removed Product", failed[0].ProductName)
	assert.Contains(t, failed[0].Error, "not found")

	assert.Equal(t, 2, testutil.Stock(t, db, a.ID))
	assert.Equal(t, 2, testutil.Stock(t, db, b.ID))
	assert.Equal(t, 3.0, promtest.ToFloat64(m.StockUnitsReleased))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.StockReleaseFailures))
}

func TestReleaseMismatchIsKeptAndFlagged(t *testing.T) {
	db := testutil.NewDB(t)
	ledger, _ := newLedger()
	p := testutil.CreateProduct(t, db, "Ukulele", "40.00", 0)

	// Simulates a concurrent writer touching the row between write and verification.
	require.NoError(t, db.Exec(fmt.Sprintf(
		"CREATE TRIGGER bump_stock AFTER UPDATE OF stock ON products WHEN NEW.id = %d "+
			"BEGIN UPDATE products SET stock = stock + 1 WHERE id = NEW.id; END", p.ID,
	)).Error)

	var report *inventory.ReleaseReport
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		report = ledger.ReleaseAll(tx, []inventory.Line{{ProductID: p.ID, ProductName: p.Name, Quantity: 2}}, inventory.OrderReference(4, 1))
		return nil
	}))

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "expected stock 2, got 3", failed[0].Error)
	assert.Equal(t, 3, testutil.Stock(t, db, p.ID))

	var movement inventory.StockMovement
	require.NoError(t, db.Where("product_id = ? AND movement_type = ?", p.ID, inventory.MovementTypeRelease).First(&movement).Error)
	assert.False(t, movement.Verified)
	assert.Equal(t, 3, movement.NewStock)
}

func TestNilReportIsSafe(t *testing.T) {
	var report *inventory.ReleaseReport
	assert.False(t, report.HasFailures())
	assert.Empty(t, report.Failed())
	assert.Empty(t, report.Succeeded())
}
