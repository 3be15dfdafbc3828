// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for the databases (always absolute)
	Port     int
	LogLevel string
	DevMode  bool

	// Market data provider endpoints. Overridable for tests and self-hosted
	// mirrors; empty means the public APIs.
	CoinGeckoBaseURL string
	YahooBaseURL     string

	Backup *BackupConfig
}

// BackupConfig holds settings for the database backup service. Backups are
// written locally under DataDir and, when an S3 bucket is configured, uploaded
// to any S3-compatible endpoint (AWS, Cloudflare R2, MinIO).
type BackupConfig struct {
	Enabled         bool
	S3Bucket        string
	S3Endpoint      string // empty = AWS default endpoint resolution
	S3Region        string
	AccessKeyID     string
	SecretAccessKey string
	RetentionDays   int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("BOOMER_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:          absDataDir,
		Port:             getEnvAsInt("PORT", 8080),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DevMode:          getEnvAsBool("DEV_MODE", false),
		CoinGeckoBaseURL: getEnv("COINGECKO_BASE_URL", ""),
		YahooBaseURL:     getEnv("YAHOO_BASE_URL", ""),
		Backup:           loadBackupConfig(),
	}

	return cfg, nil
}

// loadBackupConfig loads backup settings. The service stays disabled unless a
// bucket is configured.
func loadBackupConfig() *BackupConfig {
	bucket := getEnv("BACKUP_S3_BUCKET", "")
	return &BackupConfig{
		Enabled:         getEnvAsBool("BACKUP_ENABLED", bucket != ""),
		S3Bucket:        bucket,
		S3Endpoint:      getEnv("BACKUP_S3_ENDPOINT", ""),
		S3Region:        getEnv("BACKUP_S3_REGION", "auto"),
		AccessKeyID:     getEnv("BACKUP_S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("BACKUP_S3_SECRET_ACCESS_KEY", ""),
		RetentionDays:   getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
	}
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
