package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"coldtrack/internal/adapters/http/middleware"
	"coldtrack/internal/adapters/http/routes"
	"coldtrack/internal/adapters/persistence/models"
	"coldtrack/internal/adapters/persistence/repositories"
	"coldtrack/internal/adapters/ws"
	"coldtrack/internal/config"
	"coldtrack/internal/core/services"
	"coldtrack/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed roles, delivery statuses and the bootstrap admin user
	if err := config.NewSeeder(db, cfg).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed master data: %v", err)
	}

	// Register Prometheus metrics
	metrics.Register()

	// Notification hub for live temperature subscribers
	hub := ws.NewHub()

	// Background monitor: alert sweep + daily stats
	sensorRepo := repositories.NewSensorRepository(db)
	deliveryService := services.NewDeliveryService(
		repositories.NewDeliveryRepository(db),
		repositories.NewStatusRepository(db),
		repositories.NewUserRepository(db),
		hub,
	)
	monitor := services.NewMonitorService(sensorRepo, deliveryService, hub)
	if err := monitor.Start(); err != nil {
		log.Fatalf("❌ Failed to start monitor service: %v", err)
	}
	defer monitor.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "ColdTrack API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db, hub and cfg for dependency injection)
	routes.Setup(app, db, hub, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
