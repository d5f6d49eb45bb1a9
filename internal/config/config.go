package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL     string
	TestDatabaseURL string
	Testing         bool
	MigrateOnStart  bool

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Game Settings
	SentinelTimeoutSecs int
	SeedTestGame        bool

	// Elo Settings
	StartingElo        int
	EloKCeiling        int
	EloKFloor          int
	EloKDecay          int
	AdminUsername      string
	AdminPassword      string
	TokenExpiryMinutes int

	// Security
	JWTSecret       string
	SessionTTLHours int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:     getEnv("DATABASE_URL", "postgres://localhost:5432/quadline?sslmode=disable"),
		TestDatabaseURL: getEnv("TEST_DATABASE_URL", "postgres://localhost:5432/quadline_test?sslmode=disable"),
		Testing:         getEnvBool("TESTING", false),
		MigrateOnStart:  getEnvBool("MIGRATE_ON_START", true),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8000"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Game Settings
		SentinelTimeoutSecs: getEnvInt("SENTINEL_TIMEOUT_SECONDS", 60),
		SeedTestGame:        getEnvBool("SEED_TEST_GAME", false),

		// Elo Settings
		StartingElo:        getEnvInt("ELO_CALCULATOR_STARTING_ELO", 1200),
		EloKCeiling:        getEnvInt("ELO_CALCULATOR_K_PARAMETER_CEILING", 512),
		EloKFloor:          getEnvInt("ELO_CALCULATOR_K_PARAMETER_FLOOR", 16),
		EloKDecay:          getEnvInt("ELO_CALCULATOR_K_VALUE_DECAY", 2),
		AdminUsername:      getEnv("ELO_CALCULATOR_ADMIN_USERNAME", "admin"),
		AdminPassword:      getEnv("ELO_CALCULATOR_ADMIN_PASSWORD", ""),
		TokenExpiryMinutes: getEnvInt("ELO_CALCULATOR_EXPIRY_MINUTES", 1440),

		// Security
		JWTSecret:       getEnv("ELO_CALCULATOR_SECRET_KEY", "change-me-in-production"),
		SessionTTLHours: getEnvInt("SESSION_TTL_HOURS", 48),
	}
}

// ActiveDatabaseURL returns the database to connect to, honoring the
// TESTING flag so test runs never touch the real record store.
func (c *Config) ActiveDatabaseURL() string {
	if c.Testing {
		return c.TestDatabaseURL
	}
	return c.DatabaseURL
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
