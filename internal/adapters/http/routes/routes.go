package routes

import (
	"coldtrack/internal/adapters/http/handlers"
	"coldtrack/internal/adapters/http/middleware"
	"coldtrack/internal/adapters/persistence/repositories"
	"coldtrack/internal/adapters/ws"
	"coldtrack/internal/config"
	"coldtrack/internal/core/services"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, hub *ws.Hub, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	statusRepo := repositories.NewStatusRepository(db)
	deliveryRepo := repositories.NewDeliveryRepository(db)
	sensorRepo := repositories.NewSensorRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo, roleRepo)
	deliveryService := services.NewDeliveryService(deliveryRepo, statusRepo, userRepo, hub)
	sensorService := services.NewSensorService(sensorRepo, hub)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg)
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	deliveryHandler := handlers.NewDeliveryHandler(deliveryService)
	sensorHandler := handlers.NewSensorHandler(sensorService)
	wsHandler := handlers.NewWSHandler(hub)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Prometheus metrics
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Live temperature updates (websocket)
	app.Get("/ws/temperature", wsHandler.Upgrade, wsHandler.Subscribe())

	// API group
	api := app.Group("/api")

	// Auth routes (public, stricter rate limit)
	authRoutes := api.Group("/auth")
	authRoutes.Use(middleware.AuthRateLimiter())
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Sensor ingest routes (public, high-throughput rate limit)
	ingestRoutes := api.Group("/sensors/data")
	ingestRoutes.Use(middleware.IngestRateLimiter())
	ingestRoutes.Post("/", sensorHandler.Ingest)
	ingestRoutes.Post("/batch", sensorHandler.IngestBatch)

	// Sensor query routes (dispatcher or admin)
	sensorRoutes := api.Group("/sensors")
	sensorRoutes.Use(middleware.AuthMiddleware(cfg))
	sensorRoutes.Use(middleware.DispatcherOrAdmin())
	setupSensorRoutes(sensorRoutes, sensorHandler)

	// Delivery routes (authenticated)
	deliveryRoutes := api.Group("/deliveries")
	deliveryRoutes.Use(middleware.AuthMiddleware(cfg))
	setupDeliveryRoutes(deliveryRoutes, deliveryHandler)

	// User management routes (admin only)
	userRoutes := api.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	userRoutes.Use(middleware.AdminOnly())
	setupUserRoutes(userRoutes, userHandler)

	// Role routes (admin only)
	roleRoutes := api.Group("/roles")
	roleRoutes.Use(middleware.AuthMiddleware(cfg))
	roleRoutes.Use(middleware.AdminOnly())
	roleRoutes.Get("/", userHandler.ListRoles)
	roleRoutes.Get("/:name/users", userHandler.ListByRole)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, h *handlers.AuthHandler, cfg *config.Config) {
	router.Post("/login", h.Login)
	router.Post("/refresh", h.Refresh)
	router.Post("/logout", middleware.AuthMiddleware(cfg), h.Logout)
	router.Get("/me", middleware.AuthMiddleware(cfg), h.Me)
}

// setupSensorRoutes configures sensor query routes
func setupSensorRoutes(router fiber.Router, h *handlers.SensorHandler) {
	router.Get("/temperature", h.List)
	router.Get("/stats", h.AllStats)
	router.Get("/alerts", h.Alerts)
	router.Get("/filter", h.Filter)
	router.Get("/data/:id", h.GetByID)
	router.Get("/sensor/:sensor_id", h.ListBySensor)
	router.Get("/sensor/:sensor_id/stats", h.SensorStats)
	router.Get("/sensor/:sensor_id/latest", h.Latest)
}

// setupDeliveryRoutes configures delivery routes
func setupDeliveryRoutes(router fiber.Router, h *handlers.DeliveryHandler) {
	// Role-scoped listing: drivers and receivers see their own slice
	router.Get("/", h.List)
	router.Get("/stats", middleware.DispatcherOrAdmin(), h.Stats)
	router.Get("/status/:status_id", middleware.DispatcherOrAdmin(), h.ListByStatus)
	router.Get("/driver/my-deliveries", h.List)
	router.Get("/receiver/my-deliveries", h.List)
	router.Post("/", middleware.DispatcherOrAdmin(), h.Create)
	router.Get("/:id", h.GetByID)
	router.Put("/:id/status", h.UpdateStatus)
	router.Put("/:id", middleware.AdminOnly(), h.Update)
	router.Delete("/:id", middleware.AdminOnly(), h.Delete)
}

// setupUserRoutes configures user management routes
func setupUserRoutes(router fiber.Router, h *handlers.UserHandler) {
	router.Get("/", h.List)
	router.Post("/", h.Create)
	router.Get("/:id", h.GetByID)
	router.Put("/:id", h.Update)
	router.Delete("/:id", h.Delete)
}
