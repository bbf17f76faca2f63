package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration. It is constructed once in main
// and passed down; nothing reads the environment after startup.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	OCR      OCRConfig
	Pipeline PipelineConfig
	Archive  ArchiveConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN         string
	MaxConns    int
	DialTimeout time.Duration
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
}

// OCRConfig holds text-acquisition configuration
type OCRConfig struct {
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	Pdftoppm      string // binary name or absolute path; if empty -> "pdftoppm"
	TesseractLang string // default "eng"
	DPI           int    // first-page rasterization DPI, default 300
	CallTimeout   time.Duration
	TempDir       string
}

// PipelineConfig holds orchestrator and worker-queue configuration
type PipelineConfig struct {
	Workers        int
	QueueSize      int
	ProcessTimeout time.Duration
	// MinConfidence is the review threshold: results scoring below it are
	// flagged for manual correction, not rejected.
	MinConfidence int
}

// ArchiveConfig holds durable-copy configuration
type ArchiveConfig struct {
	Dir string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:         getEnv("DB_URL", ""),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 10),
			DialTimeout: getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		OCR: OCRConfig{
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			DPI:           getEnvAsInt("OCR_DPI", 300),
			CallTimeout:   getEnvAsDuration("OCR_CALL_TIMEOUT", 30*time.Second),
			TempDir:       getEnv("OCR_TEMP_DIR", ""),
		},
		Pipeline: PipelineConfig{
			Workers:        getEnvAsInt("PIPELINE_WORKERS", 4),
			QueueSize:      getEnvAsInt("PIPELINE_QUEUE_SIZE", 256),
			ProcessTimeout: getEnvAsDuration("PIPELINE_PROCESS_TIMEOUT", 3*time.Minute),
			MinConfidence:  getEnvAsInt("PIPELINE_MIN_CONFIDENCE", 40),
		},
		Archive: ArchiveConfig{
			Dir: getEnv("ARCHIVE_DIR", "./archive"),
		},
	}
}

// Helper functions for environment variable parsing
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Pipeline.MinConfidence < 0 || c.Pipeline.MinConfidence > 100 {
		return NewAppError("CONFIG_ERROR", "PIPELINE_MIN_CONFIDENCE must be in [0,100]", ErrInvalidInput)
	}
	return nil
}
