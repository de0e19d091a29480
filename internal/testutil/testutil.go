// Package testutil provides an in-memory database and fixtures for service tests.
package testutil

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/musicstore/storefront/internal/app"
	"github.com/musicstore/storefront/internal/config"
	"github.com/musicstore/storefront/internal/domain/payment"
	"github.com/musicstore/storefront/internal/domain/product"
	"github.com/musicstore/storefront/internal/domain/status"
	"github.com/musicstore/storefront/internal/domain/user"
	"github.com/musicstore/storefront/internal/infrastructure/database/postgres"
	"github.com/musicstore/storefront/internal/pkg/logger"
	"github.com/musicstore/storefront/internal/pkg/metrics"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite database with the reference data seeded.
// The pool holds a single connection, so concurrent transactions run one after another.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	migration := postgres.NewMigration(db, logger.Discard())
	require.NoError(t, migration.RunAutoMigrations())
	require.NoError(t, migration.CreateIndexes())
	require.NoError(t, migration.SeedReferenceData())

	return db
}

// NewConfig returns the configuration tests run with
func NewConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "Music Storefront", Environment: "test"},
		JWT: config.JWTConfig{
			Secret:            "test-secret-key-that-is-long-enough",
			AccessTokenExpiry: 15 * time.Minute,
		},
		Order: config.OrderConfig{
			RecordTransitions: true,
			DefaultCountry:    "Россия",
			LowStockThreshold: 5,
		},
		Metrics: config.MetricsConfig{Enabled: true, Namespace: "test", Path: "/metrics"},
	}
}

// NewServices wires the domain services the way the server does, without Redis
func NewServices(db *gorm.DB, cfg *config.Config) *app.Services {
	return app.NewServices(db, nil, cfg, logger.Discard(), metrics.New(cfg.Metrics.Namespace))
}

// CreateUser inserts a customer account
func CreateUser(t *testing.T, db *gorm.DB, email string) *user.User {
	t.Helper()

	u := &user.User{
		Email:     email,
		Password:  "not-a-real-hash",
		FirstName: "Test",
		LastName:  "Customer",
		IsActive:  true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateProduct inserts a product with the given price and stock
func CreateProduct(t *testing.T, db *gorm.DB, name, price string, stock int) *product.Product {
	t.Helper()

	p := &product.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// CreateDeliveryMethod inserts a delivery method; an empty cost means free
func CreateDeliveryMethod(t *testing.T, db *gorm.DB, name, cost string) *payment.DeliveryMethod {
	t.Helper()

	dm := &payment.DeliveryMethod{Name: name}
	if cost != "" {
		dm.Cost = decimal.NewNullDecimal(decimal.RequireFromString(cost))
	}
	require.NoError(t, db.Create(dm).Error)
	return dm
}

// PaymentMethod returns a seeded payment method by name
func PaymentMethod(t *testing.T, db *gorm.DB, name string) *payment.PaymentMethod {
	t.Helper()

	var pm payment.PaymentMethod
	require.NoError(t, db.Where("name = ?", name).First(&pm).Error)
	return &pm
}

// Status returns a seeded order status by name
func Status(t *testing.T, db *gorm.DB, name string) *status.OrderStatus {
	t.Helper()

	var st status.OrderStatus
	require.NoError(t, db.Where("name = ?", name).First(&st).Error)
	return &st
}

// Stock reads the current stock of a product
func Stock(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()

	var p product.Product
	require.NoError(t, db.Select("stock").First(&p, productID).Error)
	return p.Stock
}

// Address returns a valid checkout address
func Address() user.AddressInput {
	return user.AddressInput{
		Street:  "ул. Ленина, 1",
		City:    "Москва",
		ZipCode: "101000",
	}
}
