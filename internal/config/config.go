// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the service needs at startup.
type Config struct {
	// Port is the HTTP listen port.
	Port string

	// ProjectID is the GCP project for BigQuery. When empty the service
	// runs against in-memory storage (single-instance / development mode).
	ProjectID string

	// Dataset is the BigQuery dataset holding import_jobs, transactions
	// and transaction_stats.
	Dataset string

	// ArchiveBucket is the GCS bucket uploaded CSV files are archived to.
	// Archiving is disabled when empty.
	ArchiveBucket string

	// MaxUploadBytes caps the accepted multipart upload size.
	MaxUploadBytes int64

	// QueueBuffer is the import task channel capacity.
	QueueBuffer int

	// Workers is the number of concurrent import workers.
	Workers int
}

// Load reads configuration from the environment. A .env file in the
// working directory is honored when present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:           getEnv("PORT", "8080"),
		ProjectID:      os.Getenv("GCP_PROJECT"),
		Dataset:        getEnv("BQ_DATASET", "banktransactions"),
		ArchiveBucket:  os.Getenv("GCS_ARCHIVE_BUCKET"),
		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 10<<20),
		QueueBuffer:    getEnvInt("IMPORT_QUEUE_BUFFER", 100),
		Workers:        getEnvInt("IMPORT_WORKERS", 4),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
