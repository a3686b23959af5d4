package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kassahq/terminal-api/internal/application/service"
	"github.com/kassahq/terminal-api/internal/config"
	"github.com/kassahq/terminal-api/internal/infrastructure/database"
	"github.com/kassahq/terminal-api/internal/infrastructure/remote"
	"github.com/kassahq/terminal-api/internal/infrastructure/repository"
	"github.com/kassahq/terminal-api/internal/presentation/http/handler"
	"github.com/kassahq/terminal-api/internal/presentation/http/routes"
	"github.com/kassahq/terminal-api/pkg/printer"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to the terminal's local database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Connect to Redis for the product catalog cache
	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Initialize repositories
	saleQueueRepo := repository.NewSaleQueueRepository(db)
	productRepo := repository.NewProductCacheRepository(db, redisClient, cfg.Sales.ProductCacheTTL)
	suspendedRepo := repository.NewSuspendedCartRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize the back-office gateway and connectivity monitor
	gateway := remote.NewClient(&cfg.Backoffice)
	connectivity := remote.NewMonitor(gateway, cfg.Sales.ConnectivityTTL)

	// Initialize the thermal printer
	thermalPrinter, err := printer.NewPrinterFromConfig(
		cfg.Printer.Type,
		cfg.Printer.USBPath,
		cfg.Printer.Address,
	)
	if err != nil {
		log.Printf("Warning: Failed to initialize printer: %v", err)
		thermalPrinter = printer.NewNullPrinter()
	}

	// Initialize services
	cartService := service.NewCartService(productRepo, suspendedRepo)
	checkoutService := service.NewCheckoutService(
		cartService,
		saleQueueRepo,
		gateway,
		connectivity,
		cfg.App.RegisterID,
		cfg.Sales.DebtDueDays,
	)
	productService := service.NewProductService(productRepo, gateway)
	receiptService := service.NewReceiptService(thermalPrinter, cfg.Printer.Type, cfg.App.Name, cfg.Printer.CharWidth)

	// Clear crash-window leftovers and report the offline backlog
	if err := checkoutService.RecoverOnStartup(context.Background()); err != nil {
		log.Fatalf("Failed to recover offline queue: %v", err)
	}

	// Expire old checkout idempotency keys in the background
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := idempotencyRepo.DeleteExpired(context.Background()); err != nil {
				log.Printf("Warning: Failed to delete expired idempotency keys: %v", err)
			}
		}
	}()

	// Initialize handlers
	handlers := &routes.Handlers{
		Product:  handler.NewProductHandler(productService),
		Cart:     handler.NewCartHandler(cartService),
		Checkout: handler.NewCheckoutHandler(checkoutService, receiptService),
		Sales:    handler.NewSalesHandler(checkoutService),
		Printer:  handler.NewPrinterHandler(receiptService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting %s on port %s (register %s)...", cfg.App.Name, port, cfg.App.RegisterID)
	log.Printf("Environment: %s", cfg.App.Env)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
