package config

import (
	"fmt"
	"os"
	"strconv"

	"fleetdocs/internal/logger"
)

type Config struct {
	// Google Cloud Configuration (primary recognition provider)
	GoogleCloudProject    string
	GoogleCloudLocation   string
	DocumentAIProcessorID string

	// Fallback OCR engine
	TesseractLanguage string

	// Fleet registry / document persistence
	MongoURI      string
	MongoDatabase string

	// Image storage
	ImageStoreDir string

	// Batch recognition
	ScanWorkers int

	// Plate extraction
	DisableBarePlateFallback bool

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		GoogleCloudProject:       getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:      getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID:    getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		TesseractLanguage:        getEnv("TESSERACT_LANGUAGE", "ara"),
		MongoURI:                 getEnv("MONGO_URI", ""),
		MongoDatabase:            getEnv("MONGO_DATABASE", "fleetdocs"),
		ImageStoreDir:            getEnv("IMAGE_STORE_DIR", "documents"),
		ScanWorkers:              getEnvInt("SCAN_WORKERS", 3),
		DisableBarePlateFallback: getEnvBool("DISABLE_BARE_PLATE_FALLBACK", false),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		LogFormat:                getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:            getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:                getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.GoogleCloudProject == "" {
		return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required")
	}
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.ScanWorkers < 1 {
		return fmt.Errorf("SCAN_WORKERS must be at least 1")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config.
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
