package main

import (
	"log"

	"foodify-backend/configs"
	"foodify-backend/internal/handlers"
	"foodify-backend/internal/middleware"
	"foodify-backend/internal/models"
	"foodify-backend/internal/notify"
	"foodify-backend/internal/repositories"
	"foodify-backend/internal/services"
	"foodify-backend/internal/upstream"
	"foodify-backend/pkg/auth"
	"foodify-backend/pkg/cache"
	"foodify-backend/pkg/database"
	"foodify-backend/pkg/messaging"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	config := configs.LoadConfig()

	// Set Gin mode
	gin.SetMode(config.Server.Mode)

	// Initialize database connections
	db, err := database.NewDatabase(config.Database.PostgresURL, config.Database.MongoURL, config.Database.MongoDBName)
	if err != nil {
		log.Fatal("Failed to connect to databases:", err)
	}
	defer db.Close()

	// Auto-migrate PostgreSQL tables
	if err := autoMigratePostgres(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis cache
	redisCache := cache.NewRedisCache(config.Redis.URL, config.Redis.Password, config.Redis.DB)
	if redisCache == nil {
		log.Fatal("Failed to connect to Redis")
	}
	defer redisCache.Close()

	// Initialize Kafka
	kafkaProducer := messaging.NewKafkaProducer(config.Kafka.Brokers)
	defer kafkaProducer.Close()

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(config.JWT.SecretKey, config.JWT.AccessExpiryHours, config.JWT.RefreshExpiryDays)

	// Upstream microservice client, authenticated with the service credential
	if config.Upstream.ServiceToken == "" {
		log.Println("Warning: UPSTREAM_SERVICE_TOKEN is not set, upstream requests will be unauthenticated")
	}
	upstreamClient := upstream.NewClient(upstream.Config{
		AuthBaseURL:         config.Upstream.AuthBaseURL,
		CartBaseURL:         config.Upstream.CartBaseURL,
		OrderBaseURL:        config.Upstream.OrderBaseURL,
		ServiceToken:        config.Upstream.ServiceToken,
		ServiceRefreshToken: config.Upstream.ServiceRefreshToken,
		Timeout:             config.Upstream.Timeout,
	})

	// Notification hub with kafka fan-out
	hub := notify.NewHub().WithKafka(kafkaProducer, config.Kafka.Brokers)
	hub.Subscribe(func(n notify.Notification) {
		log.Printf("notification [%s] user=%s: %s", n.Type, n.UserID, n.Message)
	})

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db.Postgres)
	restaurantRepo := repositories.NewRestaurantRepository(db.Postgres)
	orderRepo := repositories.NewOrderRepository(db.Postgres)
	paymentRepo := repositories.NewPaymentRepository(db.Postgres)

	// MongoDB repositories
	dishRepo := repositories.NewDishRepository(db.MongoDB)
	categoryRepo := repositories.NewDishCategoryRepository(db.MongoDB)

	// Initialize services
	authService := services.NewAuthService(userRepo, jwtManager, redisCache)
	restaurantService := services.NewRestaurantService(restaurantRepo, userRepo)
	catalogService := services.NewCatalogService(dishRepo, categoryRepo, redisCache)
	cartService := services.NewCartService(
		services.NewRedisSessionStore(redisCache),
		upstreamClient,
		orderRepo,
		paymentRepo,
		hub,
	)
	orderService := services.NewOrderService(orderRepo, paymentRepo, upstreamClient, upstreamClient, hub, kafkaProducer, config.Kafka.Brokers)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	restaurantHandler := handlers.NewRestaurantHandler(restaurantService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)

	// Initialize Gin router
	router := gin.New()

	// Global middleware
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.CORSMiddleware(nil))
	router.Use(middleware.RequestIDMiddleware())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "foodify-backend",
		})
	})

	// API routes
	api := router.Group("/api/v1")

	// Register routes
	authHandler.RegisterRoutes(api, authMiddleware)
	restaurantHandler.RegisterRoutes(api, authMiddleware)
	catalogHandler.RegisterRoutes(api, authMiddleware)
	cartHandler.RegisterRoutes(api, authMiddleware)
	orderHandler.RegisterRoutes(api, authMiddleware)

	log.Printf("Server starting on port %s", config.Server.Port)
	log.Fatal(router.Run(":" + config.Server.Port))
}

func autoMigratePostgres(db *database.Database) error {
	return db.Postgres.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.Order{},
		&models.Payment{},
	)
}
