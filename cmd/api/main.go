// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/musicstore/storefront/internal/app"
	"github.com/musicstore/storefront/internal/config"
	"github.com/musicstore/storefront/internal/infrastructure/database/postgres"
	"github.com/musicstore/storefront/internal/infrastructure/database/redis"
	"github.com/musicstore/storefront/internal/interfaces/http"
	"github.com/musicstore/storefront/internal/pkg/logger"
	"github.com/musicstore/storefront/internal/pkg/metrics"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.Logging)
	log.WithFields(logrus.Fields{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Info("Starting")

	// Connect to database
	db, err := postgres.NewConnection(cfg, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Health(); err != nil {
		log.Fatalf("Database health check failed: %v", err)
	}

	// Redis only backs the status cache and rate limiter, both of which degrade without it
	var redisClient *goredis.Client
	cache, err := redis.NewConnection(cfg, log)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without cache and rate limiting")
	} else {
		defer cache.Close()
		redisClient = cache.GetClient()
	}

	// Run database migrations
	migration := postgres.NewMigration(db.GetDB(), log)

	if err := migration.RunAutoMigrations(); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	if err := migration.CreateIndexes(); err != nil {
		log.WithError(err).Warn("Index creation failed")
	}

	if err := migration.SeedReferenceData(); err != nil {
		log.Fatalf("Reference data seeding failed: %v", err)
	}

	// Seed demo data in development
	if cfg.IsDevelopment() {
		if err := migration.SeedDemoData(); err != nil {
			log.WithError(err).Warn("Demo data seeding failed")
		}
		if err := migration.GetTableInfo(); err != nil {
			log.WithError(err).Warn("Failed to read table info")
		}
	}

	services := app.NewServices(db.GetDB(), redisClient, cfg, log, metrics.New(cfg.Metrics.Namespace))

	// Create and start HTTP server
	server := http.NewServer(cfg, db.GetDB(), redisClient, services)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down gracefully")

	// Give server 30 seconds to shutdown gracefully
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	log.Info("Server shutdown completed")
}
