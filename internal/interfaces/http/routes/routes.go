// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/musicstore/storefront/internal/app"
	"github.com/musicstore/storefront/internal/config"
	"github.com/musicstore/storefront/internal/interfaces/http/handlers"
	"github.com/musicstore/storefront/internal/interfaces/http/middleware"
)

// SetupRoutes registers every API route on the v1 group
func SetupRoutes(rg *gin.RouterGroup, services *app.Services, cfg *config.Config) {
	SetupUserRoutes(rg, services, cfg)
	SetupOrderRoutes(rg, services, cfg)
	SetupAdminRoutes(rg, services, cfg)
}

// SetupUserRoutes sets up user related routes
func SetupUserRoutes(rg *gin.RouterGroup, services *app.Services, cfg *config.Config) {
	addressHandler := handlers.NewUserAddressHandler(services)

	users := rg.Group("/users")
	users.Use(middleware.AuthMiddleware(cfg)) // All user routes require authentication
	{
		users.GET("/addresses", addressHandler.GetAddresses)
		users.GET("/addresses/:id", addressHandler.GetAddress)
	}
}

// SetupOrderRoutes sets up cart, checkout and order routes
func SetupOrderRoutes(rg *gin.RouterGroup, services *app.Services, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(services)
	checkoutHandler := handlers.NewCheckoutHandler(services)
	orderHandler := handlers.NewOrderHandler(services)

	cart := rg.Group("/cart")
	cart.Use(middleware.AuthMiddleware(cfg))
	{
		cart.GET("", cartHandler.GetCart)
		cart.POST("/items", cartHandler.AddToCart)
		cart.PUT("/items/:id", cartHandler.UpdateCartItem)
		cart.DELETE("/items/:id", cartHandler.RemoveCartItem)
	}

	checkout := rg.Group("/checkout")
	checkout.Use(middleware.AuthMiddleware(cfg))
	{
		checkout.GET("/options", checkoutHandler.GetOptions)
	}

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg)) // All order routes require authentication
	{
		orders.POST("", orderHandler.CreateOrder)
		orders.GET("", orderHandler.GetOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.PUT("/:id/cancel", orderHandler.CancelOrder)
	}
}

// SetupAdminRoutes sets up admin routes
func SetupAdminRoutes(rg *gin.RouterGroup, services *app.Services, cfg *config.Config) {
	orderHandler := handlers.NewOrderHandler(services)
	statusHandler := handlers.NewStatusHandler(services)
	inventoryHandler := handlers.NewInventoryHandler(services)

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware())
	{
		// Order management
		orders := admin.Group("/orders")
		{
			orders.GET("", orderHandler.AdminGetOrders)
			orders.GET("/:id", orderHandler.AdminGetOrder)
			orders.PUT("/:id/status", orderHandler.AdminUpdateOrderStatus)
		}

		// Status directory
		statuses := admin.Group("/order-statuses")
		{
			statuses.GET("", statusHandler.GetStatuses)
			statuses.POST("", statusHandler.CreateStatus)
			statuses.PUT("/:id", statusHandler.UpdateStatus)
			statuses.DELETE("/:id", statusHandler.DeleteStatus)
		}

		admin.GET("/products/low-stock", inventoryHandler.GetLowStock)
	}
}
