// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/marketlink/backend/internal/config"
	"github.com/marketlink/backend/internal/handlers"
	"github.com/marketlink/backend/internal/jobs"
	"github.com/marketlink/backend/internal/middleware"
	"github.com/marketlink/backend/internal/services"
	"github.com/marketlink/backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config, queue *jobs.Queue) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	importService := services.NewImportService(db)
	dispatcher := services.NewDispatcher(db, cfg, queue, importService, notificationService)

	authService := services.NewAuthService(db, cfg)
	userService := services.NewUserService(db)
	catalogService := services.NewCatalogService(db)
	basketService := services.NewBasketService(db)
	orderService := services.NewOrderService(db)
	supplierService := services.NewSupplierService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, dispatcher)
	userHandler := handlers.NewUserHandler(userService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	basketHandler := handlers.NewBasketHandler(basketService, dispatcher)
	orderHandler := handlers.NewOrderHandler(orderService, dispatcher)
	supplierHandler := handlers.NewSupplierHandler(supplierService, dispatcher)
	jobHandler := handlers.NewJobHandler(dispatcher)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Account routes
		user := v1.Group("/user")
		{
			user.POST("/register", middleware.AuthRateLimit(), authHandler.Register)
			user.POST("/login", middleware.AuthRateLimit(), authHandler.Login)
			user.POST("/refresh", middleware.AuthRateLimit(), authHandler.Refresh)

			protected := user.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.GET("/profile", userHandler.GetProfile)
				protected.PUT("/profile", userHandler.UpdateProfile)
				protected.GET("/contacts", userHandler.ListContacts)
				protected.POST("/contacts", userHandler.CreateContact)
				protected.PUT("/contacts/:id", userHandler.UpdateContact)
				protected.DELETE("/contacts/:id", userHandler.DeleteContact)
			}
		}

		// Public catalog routes. OptionalAuth attributes browsing to the
		// user in request logs when a token is present.
		catalog := v1.Group("")
		catalog.Use(middleware.OptionalAuth())
		{
			catalog.GET("/shops", catalogHandler.ListShops)
			catalog.GET("/categories", catalogHandler.ListCategories)
			catalog.GET("/products", catalogHandler.ListProducts)
			catalog.GET("/products/:id", catalogHandler.GetProduct)
		}

		// Basket routes
		basket := v1.Group("/basket")
		basket.Use(middleware.AuthRequired())
		{
			basket.GET("", basketHandler.GetBasket)
			basket.POST("", basketHandler.AddItem)
			basket.PATCH("", basketHandler.UpdateLines)
			basket.DELETE("", basketHandler.RemoveLines)
			basket.POST("/checkout", basketHandler.Checkout)
		}

		// Order routes
		orders := v1.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.PATCH("/:id/status", orderHandler.UpdateStatus)
			orders.POST("/:id/confirm", orderHandler.Confirm)
		}

		// Background job status
		v1.GET("/jobs/:id", middleware.AuthRequired(), jobHandler.GetJob)

		// Supplier routes
		supplier := v1.Group("/supplier")
		supplier.Use(middleware.AuthRequired(), middleware.SupplierRequired())
		{
			supplier.POST("/update", middleware.ImportRateLimit(), supplierHandler.UpdateCatalog)
			supplier.GET("/orders", supplierHandler.ListOrders)
			supplier.GET("/orders/:id", supplierHandler.GetOrder)
			supplier.PATCH("/orders/:id", supplierHandler.UpdateOrderStatus)
			supplier.GET("/state", supplierHandler.GetState)
			supplier.PATCH("/state", supplierHandler.SetState)
		}
	}

	return r
}
