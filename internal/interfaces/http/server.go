// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/musicstore/storefront/internal/app"
	"github.com/musicstore/storefront/internal/config"
	"github.com/musicstore/storefront/internal/interfaces/http/middleware"
	"github.com/musicstore/storefront/internal/interfaces/http/routes"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Server represents the HTTP server
type Server struct {
	config      *config.Config
	gin         *gin.Engine
	httpServer  *http.Server
	db          *gorm.DB
	redisClient *redis.Client
	services    *app.Services
	logger      logrus.FieldLogger
	startedAt   time.Time
}

// NewServer creates a new HTTP server instance. redisClient may be nil.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, services *app.Services) *Server {
	s := &Server{
		config:      cfg,
		db:          db,
		redisClient: redisClient,
		services:    services,
		logger:      services.Logger,
		startedAt:   time.Now(),
	}

	// Set Gin mode based on environment
	switch {
	case cfg.IsProduction():
		gin.SetMode(gin.ReleaseMode)
	case cfg.App.Environment == "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	s.gin = gin.New()
	if err := s.gin.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		s.logger.WithError(err).Warn("Invalid trusted proxy list, trusting none")
		_ = s.gin.SetTrustedProxies(nil)
	}
	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	s.logger.WithFields(logrus.Fields{
		"port":     s.config.Server.Port,
		"base_url": fmt.Sprintf("http://localhost:%s/api/v1", s.config.Server.Port),
	}).Info("HTTP server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server stopped gracefully")
	return nil
}

// setupMiddleware configures all middleware for the server
func (s *Server) setupMiddleware() {
	// Recovery middleware - recover from panics
	s.gin.Use(gin.Recovery())

	// Request ID first so every later log line carries it
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.logger))

	if s.config.Metrics.Enabled && s.services.Metrics != nil {
		s.gin.Use(middleware.Metrics(s.services.Metrics))
	}

	s.gin.Use(middleware.CORS(s.config))
	s.gin.Use(middleware.SecurityHeaders(s.config))
	s.gin.Use(middleware.RateLimit(s.config, s.redisClient, s.logger))

	if s.config.Server.MaxBodyBytes > 0 {
		s.gin.Use(middleware.RequestSizeLimit(s.config.Server.MaxBodyBytes))
	}
	if s.config.Server.Timeout > 0 {
		s.gin.Use(middleware.Timeout(s.config.Server.Timeout))
	}
}

// setupRoutes configures all routes for the server
func (s *Server) setupRoutes() {
	// Health check endpoints (no auth required)
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)

	if s.config.Metrics.Enabled && s.services.Metrics != nil {
		s.gin.GET(s.config.Metrics.Path, gin.WrapH(s.services.Metrics.Handler()))
	}

	apiV1 := s.gin.Group("/api/v1")
	routes.SetupRoutes(apiV1, s.services, s.config)

	if s.config.IsDevelopment() {
		s.gin.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"message":     s.config.App.Name,
				"version":     s.config.App.Version,
				"environment": s.config.App.Environment,
				"health":      "/health",
				"endpoints": gin.H{
					"cart":     "/api/v1/cart",
					"checkout": "/api/v1/checkout",
					"orders":   "/api/v1/orders",
					"admin":    "/api/v1/admin",
				},
			})
		})
	}
}

// healthCheck handles health check requests
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	// Check database health
	sqlDB, err := s.db.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database connection error",
		})
		return
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database ping failed",
		})
		return
	}

	cache := "disabled"
	if s.redisClient != nil {
		// The status cache is optional, so a Redis outage degrades rather than fails
		cache = "ok"
		if err := s.redisClient.Ping(ctx).Err(); err != nil {
			s.logger.WithError(err).Warn("Redis ping failed")
			cache = "unavailable"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"cache":       cache,
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
	})
}

// readinessCheck handles readiness check requests
func (s *Server) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}
