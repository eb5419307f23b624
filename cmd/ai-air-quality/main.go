package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	httpapi "github.com/Fareedh-7/Ai-Air-Quality/internal/api/http"
	"github.com/Fareedh-7/Ai-Air-Quality/internal/aod"
	"github.com/Fareedh-7/Ai-Air-Quality/internal/config"
	"github.com/Fareedh-7/Ai-Air-Quality/internal/download"
	"github.com/Fareedh-7/Ai-Air-Quality/internal/geocode"
	"github.com/Fareedh-7/Ai-Air-Quality/internal/granule"
	"github.com/Fareedh-7/Ai-Air-Quality/internal/raster"
	"github.com/Fareedh-7/Ai-Air-Quality/internal/scheduler"
	"github.com/Fareedh-7/Ai-Air-Quality/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound calls. Stage-specific timeouts are
	// applied per request, so the client itself carries none.
	httpClient := &http.Client{}

	// Geocoder backend.
	var geocoder aod.Geocoder
	switch cfg.GeocoderBackend {
	case "google":
		geocoder = geocode.NewGoogle(cfg.GoogleAPIKey, geocode.NewRateLimiter(time.Second))
	default:
		geocoder = geocode.NewNominatim(httpClient)
	}

	// Pipeline components.
	locator := granule.NewCMRLocator(httpClient, "")
	downloader := download.NewClient(httpClient, cfg.CacheDir, cfg.Earthdata)
	extractor := raster.HDFExtractor{}

	// In-memory store with configured retention, plus the optional CSV sink.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)
	var sink aod.Sink
	if cfg.OutCSV != "" {
		sink = store.CSVSink{Path: cfg.OutCSV}
	}

	// Core service sequencing the fetch pipeline.
	service := aod.NewService(geocoder, locator, downloader, extractor, cfg.Earthdata, memStore, sink)

	// Scheduler that periodically fetches and stores readings.
	sched := scheduler.New(cfg.Cities, cfg.FetchInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "ai-air-quality",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// Live fetches download granules; give them room to finish.
		WriteTimeout: 3 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "ai-air-quality",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service)

	// Start server with graceful shutdown
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
