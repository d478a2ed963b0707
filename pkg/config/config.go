package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server struct {
		Port    string
		Env     string
		Timeout time.Duration
	}

	// Upstream message API configuration
	Upstream struct {
		BaseURL   string
		Timeout   time.Duration
		FetchSkip int
		PageLimit int
	}

	// Cache settings
	Cache struct {
		TTL             time.Duration
		MaxSize         int
		RefreshInterval time.Duration
		PreloadOnStart  bool
	}

	// Search settings
	Search struct {
		DefaultPageSize int
		MaxPageSize     int
	}

	// Health probe settings
	Health struct {
		CheckInterval time.Duration
	}

	// Security configuration
	Security struct {
		RateLimit      float64
		RateLimitBurst int
		AllowedOrigins []string
	}

	// Logging configuration
	Logging struct {
		Level  string
		Format string
	}
}

var (
	instance *Config
	once     sync.Once
)

// New creates a new Config instance with values from environment variables
// Uses singleton pattern to ensure only one instance exists
func New() *Config {
	once.Do(func() {
		// Load .env file if exists
		godotenv.Load()

		instance = &Config{}

		// Server config
		instance.Server.Port = getEnvString("PORT", "8000")
		instance.Server.Env = getEnvString("APP_ENV", "development")
		instance.Server.Timeout = getEnvDuration("SERVER_TIMEOUT", 30*time.Second)

		// Upstream config. The upstream redirects /messages -> /messages/,
		// so the trailing slash on the path matters downstream.
		instance.Upstream.BaseURL = getEnvString("UPSTREAM_BASE_URL", "https://november7-730026606190.europe-west1.run.app")
		instance.Upstream.Timeout = getEnvDuration("UPSTREAM_TIMEOUT", 5*time.Second)
		instance.Upstream.FetchSkip = getEnvInt("UPSTREAM_FETCH_SKIP", 0)
		instance.Upstream.PageLimit = getEnvInt("UPSTREAM_PAGE_LIMIT", 100)

		// Cache settings
		instance.Cache.TTL = getEnvDuration("CACHE_TTL", 60*time.Second)
		instance.Cache.MaxSize = getEnvInt("CACHE_MAX_SIZE", 10000)
		instance.Cache.RefreshInterval = getEnvDuration("CACHE_REFRESH_INTERVAL", 60*time.Second)
		instance.Cache.PreloadOnStart = getEnvBool("CACHE_PRELOAD_ON_START", true)

		// Search settings
		instance.Search.DefaultPageSize = getEnvInt("SEARCH_DEFAULT_PAGE_SIZE", 20)
		instance.Search.MaxPageSize = getEnvInt("SEARCH_MAX_PAGE_SIZE", 100)

		// Health config
		instance.Health.CheckInterval = getEnvDuration("HEALTH_CHECK_INTERVAL", 30*time.Second)

		// Security config
		instance.Security.RateLimit = float64(getEnvInt("RATE_LIMIT", 50))
		instance.Security.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 100)
		instance.Security.AllowedOrigins = getEnvStringSlice("ALLOWED_ORIGINS", []string{"*"})

		// Logging config
		instance.Logging.Level = getEnvString("LOG_LEVEL", "info")
		instance.Logging.Format = getEnvString("LOG_FORMAT", "json")
	})

	return instance
}

// Get returns the singleton Config instance
func Get() *Config {
	if instance == nil {
		return New()
	}
	return instance
}

// Helper functions to read environment variables with default values

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
