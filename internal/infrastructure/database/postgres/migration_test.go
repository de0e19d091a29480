package postgres_test

import (
	"testing"

	"github.com/musicstore/storefront/internal/domain/payment"
	"github.com/musicstore/storefront/internal/domain/product"
	"github.com/musicstore/storefront/internal/domain/status"
	"github.com/musicstore/storefront/internal/domain/user"
	"github.com/musicstore/storefront/internal/infrastructure/database/postgres"
	"github.com/musicstore/storefront/internal/pkg/logger"
	"github.com/musicstore/storefront/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	gormlogger "gorm.io/gorm/logger"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]gormlogger.LogLevel{
		"silent":  gormlogger.Silent,
		"error":   gormlogger.Error,
		"warn":    gormlogger.Warn,
		"info":    gormlogger.Info,
		"unknown": gormlogger.Warn,
	}

	for input, expected := range tests {
		assert.Equal(t, expected, postgres.ParseLogLevel(input), input)
	}
}

func TestSeedReferenceDataIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	migration := postgres.NewMigration(db, logger.Discard())

	require.NoError(t, migration.SeedReferenceData())

	var statuses, payments, deliveries int64
	require.NoError(t, db.Model(&status.OrderStatus{}).Count(&statuses).Error)
	require.NoError(t, db.Model(&payment.PaymentMethod{}).Count(&payments).Error)
	require.NoError(t, db.Model(&payment.DeliveryMethod{}).Count(&deliveries).Error)

	assert.EqualValues(t, 5, statuses)
	assert.EqualValues(t, 3, payments)
	assert.EqualValues(t, 3, deliveries)
}

func TestSeedDemoData(t *testing.T) {
	db := testutil.NewDB(t)
	migration := postgres.NewMigration(db, logger.Discard())

	require.NoError(t, migration.SeedDemoData())
	require.NoError(t, migration.SeedDemoData())

	var products int64
	require.NoError(t, db.Model(&product.Product{}).Count(&products).Error)
	assert.EqualValues(t, 3, products)

	var admin user.User
	require.NoError(t, db.Where("email = ?", "admin@example.com").First(&admin).Error)
	assert.True(t, admin.IsAdmin)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("admin123")))

	require.NoError(t, migration.GetTableInfo())
}
