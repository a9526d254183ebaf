// Package config loads process-wide configuration from the environment,
// read once at startup (spec.md §5).
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Postgres DSN components (spec.md §6).
	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     int
	PostgresDB       string

	// External data sources.
	Web3Provider  string
	EtherscanToken string

	// Catalog file layout.
	ProtocolsDir string
	TokensDir    string

	// Worker pool sizing (spec.md §4.5, §4.8).
	TransferCollectorConcurrency int
	PriceCollectorPageWorkers    int
	PriceCollectorPageSize       int

	LogLevel string
}

// Load reads configuration from environment variables, loading a .env
// file first if one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		PostgresUser:     getEnv("POSTGRES_USER", ""),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvAsInt("POSTGRES_PORT", 5432),
		PostgresDB:       getEnv("POSTGRES_DB", ""),

		Web3Provider:   getEnv("WEB3_PROVIDER", ""),
		EtherscanToken: getEnv("ETHERSCAN_TOKEN", ""),

		ProtocolsDir: getEnv("CATALOG_PROTOCOLS_DIR", "data/protocols"),
		TokensDir:    getEnv("CATALOG_TOKENS_DIR", "data/tokens"),

		TransferCollectorConcurrency: getEnvAsInt("TRANSFER_COLLECTOR_CONCURRENCY", 8),
		PriceCollectorPageWorkers:    getEnvAsInt("PRICE_COLLECTOR_PAGE_WORKERS", 8),
		PriceCollectorPageSize:       getEnvAsInt("PRICE_COLLECTOR_PAGE_SIZE", 50),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.PostgresDB == "" {
		return fmt.Errorf("POSTGRES_DB is required")
	}
	if c.EtherscanToken == "" {
		return fmt.Errorf("ETHERSCAN_TOKEN is required")
	}
	return nil
}

// DSN renders the Postgres connection string lib/pq expects.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"user=%s password=%s host=%s port=%d dbname=%s sslmode=disable",
		c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort, c.PostgresDB,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
