package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-chatbot/internal/api/http"
	"github.com/i474232898/weather-chatbot/internal/cache"
	"github.com/i474232898/weather-chatbot/internal/chatbot"
	"github.com/i474232898/weather-chatbot/internal/config"
	"github.com/i474232898/weather-chatbot/internal/openweather"
	"github.com/i474232898/weather-chatbot/internal/scheduler"
)

func main() {
	// Load configuration (.env picked up if present).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound API calls; per-attempt timeout.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	geo := openweather.NewClient(httpClient, cfg.OpenWeatherAPIKey)

	registry := chatbot.NewCountryRegistry()
	tz := chatbot.NewTimezoneResolver(registry)
	timeMemo := cache.New[chatbot.TimeResult](cfg.TimeCacheSize, cfg.TimeCacheTTL)

	bot := chatbot.NewBot(registry, geo, tz, timeMemo)

	// Scheduler that keeps popular cities warm in the time memo.
	sched := scheduler.New(cfg.WarmCities, cfg.WarmInterval, func(ctx context.Context, city string) error {
		_, err := bot.CityTime(ctx, city)
		return err
	})
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-chatbot",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          60 * time.Second,
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
			"service": "weather-chatbot",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, bot)

	// Start server with graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
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
