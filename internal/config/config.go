package config

import (
	"fmt"
	"os"

	"bills/internal/logger"
)

type Config struct {
	// Data files
	DataPath     string // tab-separated source ledger
	CostConfig   string // JSON cost configuration document
	HolidaysFile string // JSON public-holiday dates
	LedgerPath   string // persisted invoice ledger workbook
	OutputDir    string // rendered documents and per-invoice workbooks

	// Holiday provider
	HolidayAPIURL  string
	HolidayCountry string
	HolidayRegion  string

	// GUI server
	GUIHost string
	GUIPort string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		DataPath:       getEnv("DATA_PATH", "data/data.csv"),
		CostConfig:     getEnv("COST_CONFIG_PATH", "data/config.json"),
		HolidaysFile:   getEnv("HOLIDAYS_PATH", "data/holidays.json"),
		LedgerPath:     getEnv("LEDGER_PATH", "data/invoices.xlsx"),
		OutputDir:      getEnv("OUTPUT_DIR", "data"),
		HolidayAPIURL:  getEnv("HOLIDAY_API_URL", "https://date.nager.at/api/v3/PublicHolidays"),
		HolidayCountry: getEnv("HOLIDAY_COUNTRY", "GB"),
		HolidayRegion:  getEnv("HOLIDAY_REGION", "GB-ENG"),
		GUIHost:        getEnv("GUI_HOST", "localhost"),
		GUIPort:        getEnv("GUI_PORT", "3000"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:  getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:      getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.HolidayAPIURL == "" {
		return fmt.Errorf("HOLIDAY_API_URL must not be empty")
	}
	if c.HolidayCountry == "" {
		return fmt.Errorf("HOLIDAY_COUNTRY must not be empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR must not be empty")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
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
