package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	OCR      OCRConfig
	NER      NERConfig
	Pipeline PipelineConfig
	Ingest   IngestConfig
}

// DatabaseConfig holds document store configuration
type DatabaseConfig struct {
	Driver           string // "sqlite" or "pgx"
	DSN              string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	DialTimeout      time.Duration
	MigrateOnStartup bool
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
}

// OCRConfig holds OCR adapter configuration
type OCRConfig struct {
	Tesseract   string
	Languages   string
	PSM         int
	DPI         int
	TessdataDir string
}

// NERConfig holds entity recognizer collaborator configuration
type NERConfig struct {
	ServiceURL string
	Timeout    time.Duration
}

// PipelineConfig holds engine-level configuration
type PipelineConfig struct {
	PhoneRegion    string
	SkillsFile     string
	Workers        int
	QueueSize      int
	ProcessTimeout time.Duration
}

// IngestConfig holds directory watcher configuration
type IngestConfig struct {
	WatchDir  string
	Recursive bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:           getEnv("DB_DRIVER", "sqlite"),
			DSN:              getEnv("DB_URL", "file:documind.db?_pragma=busy_timeout(5000)"),
			MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			MigrateOnStartup: getEnvAsBool("DB_MIGRATE", true),
		},
		Server: ServerConfig{
			HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
			ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		OCR: OCRConfig{
			Tesseract:   getEnv("TESSERACT_PATH", "tesseract"),
			Languages:   getEnv("TESSERACT_LANG", "eng"),
			PSM:         getEnvAsInt("TESSERACT_PSM", 3),
			DPI:         getEnvAsInt("TESSERACT_DPI", 300),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
		},
		NER: NERConfig{
			ServiceURL: getEnv("NER_URL", ""),
			Timeout:    getEnvAsDuration("NER_TIMEOUT", 15*time.Second),
		},
		Pipeline: PipelineConfig{
			PhoneRegion:    getEnv("PHONE_REGION", "US"),
			SkillsFile:     getEnv("SKILLS_FILE", ""),
			Workers:        getEnvAsInt("PIPELINE_WORKERS", 4),
			QueueSize:      getEnvAsInt("PIPELINE_QUEUE_SIZE", 64),
			ProcessTimeout: getEnvAsDuration("PIPELINE_PROCESS_TIMEOUT", 2*time.Minute),
		},
		Ingest: IngestConfig{
			WatchDir:  getEnv("WATCH_DIR", ""),
			Recursive: getEnvAsBool("WATCH_RECURSIVE", true),
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
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

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Database.Driver != "sqlite" && c.Database.Driver != "pgx" {
		return NewAppError("CONFIG_ERROR", "DB_DRIVER must be sqlite or pgx", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Pipeline.PhoneRegion == "" {
		return NewAppError("CONFIG_ERROR", "PHONE_REGION is required", ErrInvalidInput)
	}
	if c.Pipeline.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "PIPELINE_WORKERS must be positive", ErrInvalidInput)
	}
	return nil
}
