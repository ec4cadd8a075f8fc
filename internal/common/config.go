package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig
	OCR       OCRConfig
	Providers ProvidersConfig
	Pipeline  PipelineConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// OCRConfig holds text-acquisition configuration
type OCRConfig struct {
	Pdftotext     string
	Pdftoppm      string
	Tesseract     string
	TesseractLang string
	DPI           int
}

// ProviderConfig holds one oracle provider's credentials and tuning.
// A provider with an empty APIKey is excluded from the registry.
type ProviderConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// ProvidersConfig holds every known oracle provider, in priority order:
// OpenAI first, then Gemini, then Anthropic.
type ProvidersConfig struct {
	OpenAI    ProviderConfig
	Gemini    ProviderConfig
	Anthropic ProviderConfig
}

// PipelineConfig holds cascade behavior knobs
type PipelineConfig struct {
	ProviderTimeout time.Duration // per oracle call
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		OCR: OCRConfig{
			Pdftotext:     getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			DPI:           getEnvAsInt("OCR_DPI", 300),
		},
		Providers: ProvidersConfig{
			OpenAI: ProviderConfig{
				APIKey:      getEnv("OPENAI_API_KEY", ""),
				BaseURL:     getEnv("OPENAI_BASE_URL", ""),
				Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
				Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.1),
				Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
			},
			Gemini: ProviderConfig{
				APIKey:  getEnv("GEMINI_API_KEY", ""),
				BaseURL: getEnv("GEMINI_BASE_URL", ""),
				Model:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
				Timeout: getEnvAsDuration("GEMINI_TIMEOUT", 45*time.Second),
			},
			Anthropic: ProviderConfig{
				APIKey:  getEnv("ANTHROPIC_API_KEY", ""),
				BaseURL: getEnv("ANTHROPIC_BASE_URL", ""),
				Model:   getEnv("ANTHROPIC_MODEL", "claude-3-haiku-20240307"),
				Timeout: getEnvAsDuration("ANTHROPIC_TIMEOUT", 45*time.Second),
			},
		},
		Pipeline: PipelineConfig{
			ProviderTimeout: getEnvAsDuration("PROVIDER_TIMEOUT", 30*time.Second),
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

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
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

// Validate validates the loaded configuration. Provider keys are optional:
// with no keys at all the cascade degrades to heuristic-only.
func (c *Config) Validate() error {
	if c.OCR.DPI <= 0 {
		return NewAppError("CONFIG_ERROR", "OCR_DPI must be positive", ErrInvalidInput)
	}
	if c.Pipeline.ProviderTimeout <= 0 {
		return NewAppError("CONFIG_ERROR", "PROVIDER_TIMEOUT must be positive", ErrInvalidInput)
	}
	return nil
}
