package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr           string
	DBPath         string
	DatasetPath    string
	LogLevel       string
	RandomModeSize int
}

// Load reads configuration from a .env file (if present) and environment
// variables, applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:           envOr("ADDR", ":8080"),
		DBPath:         envOr("DB_PATH", "file:quizdeck.db"),
		DatasetPath:    envOr("DATASET_PATH", "data/questions.json"),
		LogLevel:       envOr("LOG_LEVEL", "INFO"),
		RandomModeSize: envIntOr("RANDOM_MODE_SIZE", 25),
	}
}

// Validate reports the first configuration value that cannot be used.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.DatasetPath == "" {
		return fmt.Errorf("DATASET_PATH cannot be empty")
	}
	if c.RandomModeSize <= 0 {
		return fmt.Errorf("RANDOM_MODE_SIZE must be positive, got %d", c.RandomModeSize)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
