package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	OpenWeatherAPIKey string

	// HTTPTimeout is the per-attempt timeout for outbound API calls.
	HTTPTimeout time.Duration

	// Time memo: bounded LRU size and entry TTL.
	TimeCacheSize int
	TimeCacheTTL  time.Duration

	// Cities whose local time is warmed periodically; empty disables the job.
	WarmCities   []string
	WarmInterval time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	if cfg.OpenWeatherAPIKey == "" {
		return nil, fmt.Errorf("OPENWEATHER_API_KEY is required")
	}

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "15s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.TimeCacheSize = getenvInt("TIME_CACHE_SIZE", 128)

	ttlStr := getenvDefault("TIME_CACHE_TTL", "60s")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid TIME_CACHE_TTL: %w", err)
	}
	cfg.TimeCacheTTL = ttl

	if cities := os.Getenv("WARM_CITIES"); cities != "" {
		for _, c := range strings.Split(cities, ",") {
			if c = strings.TrimSpace(c); c != "" {
				cfg.WarmCities = append(cfg.WarmCities, c)
			}
		}
	}

	intervalStr := getenvDefault("WARM_INTERVAL", "15m")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid WARM_INTERVAL: %w", err)
	}
	cfg.WarmInterval = interval

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
