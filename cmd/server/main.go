package main

import (
	"context"
	"log"
	"time"

	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/config"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/database"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/handlers"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/migrations"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/realtime"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/redis"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/repository"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/internal/services"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/pkg/notify"
	"github.com/karthiktsvmc/onemedi-kurnool-64-sub002/pkg/ocr"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := migrations.RunMigrations(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	// External clients
	notifyClient := notify.NewClient(cfg.NotifyAPIURL, cfg.NotifyUsername, cfg.NotifyPassword)
	ocrClient := ocr.NewClient(cfg.OCRAPIURL, cfg.OCRAPIKey)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	medicineRepo := repository.NewMedicineRepository(db)
	prescriptionRepo := repository.NewPrescriptionRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Initialize services
	userService := services.NewUserService(userRepo)
	matchingService := services.NewMatchingService(medicineRepo, redisClient, time.Duration(cfg.CacheTTL)*time.Second)
	prescriptionService := services.NewPrescriptionService(prescriptionRepo, matchingService)
	extractionService := services.NewExtractionService(ocrClient, prescriptionRepo)
	cartService := services.NewCartService(cartRepo, medicineRepo, prescriptionRepo, settingsRepo,
		cfg.PrescriptionDiscount, cfg.DeliveryFee, cfg.FreeDeliveryThreshold)
	notificationService := services.NewNotificationService(notifyClient, userRepo)
	orderService := services.NewOrderService(orderRepo, cartRepo, cartService, userService, notificationService)
	catalogService := services.NewCatalogService(medicineRepo, redisClient)
	checkoutService := services.NewCheckoutService(redisClient, orderService, time.Duration(cfg.CacheTTL)*time.Second)

	// Catalog change events only refresh the match cache; the mutating calls
	// themselves are the source of truth.
	subscriber := realtime.NewSubscriber(redisClient)
	subscriber.Subscribe(context.Background(), "medicines", func(event realtime.ChangeEvent) {
		if err := redisClient.InvalidateMatches(); err != nil {
			log.Printf("Failed to invalidate match cache after %s on medicines: %v", event.Action, err)
		}
	})

	// Initialize handlers
	apiHandler := handlers.NewAPIHandler(userService, prescriptionService, extractionService,
		matchingService, cartService, catalogService, checkoutService)
	orderHandler := handlers.NewOrderHandler(orderService)

	// Setup routes
	router := gin.Default()

	api := router.Group("/api")
	{
		api.POST("/prescriptions", apiHandler.CreatePrescription)
		api.GET("/prescriptions/:id", apiHandler.GetPrescription)
		api.POST("/prescriptions/:id/extract", apiHandler.ExtractPrescription)
		api.POST("/prescriptions/:id/match", apiHandler.MatchPrescription)
		api.POST("/medicines/match", apiHandler.MatchMedicines)

		api.GET("/medicines", apiHandler.ListMedicines)
		api.GET("/medicines/:id", apiHandler.GetMedicine)
		api.POST("/medicines", apiHandler.CreateMedicine)
		api.PUT("/medicines/:id", apiHandler.UpdateMedicine)
		api.DELETE("/medicines/:id", apiHandler.DeleteMedicine)

		api.GET("/users", apiHandler.GetUsers)
		api.POST("/users", apiHandler.CreateUser)
		api.GET("/users/:user_id", apiHandler.GetUser)
		api.PUT("/users/:user_id", apiHandler.UpdateUser)
		api.DELETE("/users/:user_id", apiHandler.DeleteUser)

		api.POST("/checkout/sessions", apiHandler.StartCheckout)
		api.GET("/checkout/sessions/:session_id", apiHandler.GetCheckoutSession)
		api.POST("/checkout/sessions/:session_id/complete", apiHandler.CompleteCheckout)
		api.DELETE("/checkout/sessions/:session_id", apiHandler.CancelCheckout)

		api.POST("/cart/prescription-items", apiHandler.AddPrescriptionItemsToCart)
		api.GET("/cart/:user_id", apiHandler.GetCart)
		api.PUT("/cart/items/:id", apiHandler.UpdateCartItemQuantity)
		api.DELETE("/cart/items/:id", apiHandler.RemoveCartItem)
		api.POST("/cart/:user_id/validate", apiHandler.ValidateCart)
		api.POST("/cart/check-substitution", apiHandler.CheckSubstitution)

		api.POST("/orders", orderHandler.CreateOrder)
		api.GET("/orders/:id", orderHandler.GetOrder)
		api.GET("/orders", orderHandler.GetOrdersByStatus)
		api.GET("/users/:user_id/orders", orderHandler.GetOrdersByUser)
		api.PUT("/orders/:id/status", orderHandler.UpdateOrderStatus)
		api.POST("/orders/:id/verify", orderHandler.VerifyOrder)
		api.POST("/orders/:id/cancel", orderHandler.CancelOrder)
		api.GET("/orders/:id/workflow", orderHandler.GetOrderWorkflow)
		api.GET("/order-items/:id", orderHandler.GetOrderItem)
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
