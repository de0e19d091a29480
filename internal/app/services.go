// Package app wires the domain services together.
package app

import (
	"github.com/musicstore/storefront/internal/config"
	"github.com/musicstore/storefront/internal/domain/cart"
	"github.com/musicstore/storefront/internal/domain/inventory"
	"github.com/musicstore/storefront/internal/domain/order"
	"github.com/musicstore/storefront/internal/domain/payment"
	"github.com/musicstore/storefront/internal/domain/product"
	"github.com/musicstore/storefront/internal/domain/status"
	"github.com/musicstore/storefront/internal/domain/user"
	"github.com/musicstore/storefront/internal/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Services bundles every domain service over one database
type Services struct {
	Config    *config.Config
	Logger    logrus.FieldLogger
	Metrics   *metrics.Metrics
	Products  *product.Service
	Carts     *cart.Service
	Ledger    *inventory.Ledger
	Statuses  *status.Service
	Addresses *user.AddressService
	Payments  *payment.Service
	Orders    *order.Service
}

// NewServices builds the service graph. A nil redis client disables the status cache.
func NewServices(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger logrus.FieldLogger, m *metrics.Metrics) *Services {
	svc := &Services{
		Config:    cfg,
		Logger:    logger,
		Metrics:   m,
		Products:  product.NewService(db),
		Carts:     cart.NewService(db, logger.WithField("component", "cart")),
		Ledger:    inventory.NewLedger(logger.WithField("component", "inventory"), m),
		Statuses:  status.NewService(db, redisClient, cfg.Order.StatusCacheTTL, logger.WithField("component", "status"), m),
		Addresses: user.NewAddressService(db, cfg.Order.DefaultCountry),
		Payments:  payment.NewService(db),
	}

	if cfg.Order.EnglishStatusRoots {
		svc.Statuses.WithRules(status.BilingualRules)
	}

	svc.Orders = order.NewService(db, cfg.Order, order.Dependencies{
		Carts:     svc.Carts,
		Ledger:    svc.Ledger,
		Statuses:  svc.Statuses,
		Addresses: svc.Addresses,
		Payments:  svc.Payments,
		Metrics:   m,
		Logger:    logger.WithField("component", "order"),
	})

	return svc
}
