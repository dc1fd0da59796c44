package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath      string
	Endpoint        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	ShowVersion     bool
	Validate        bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	// Define flags with environment variable fallback
	pflag.StringVarP(&cfg.ConfigPath, "config", "c",
		getEnv("FUSIONVIEW_CONFIG", ""),
		"Path to YAML configuration file, empty for defaults (env: FUSIONVIEW_CONFIG)")

	pflag.StringVarP(&cfg.Endpoint, "endpoint", "e",
		getEnv("FUSIONVIEW_ENDPOINT", ""),
		"Telemetry WebSocket endpoint override (env: FUSIONVIEW_ENDPOINT)")

	pflag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("FUSIONVIEW_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: FUSIONVIEW_LOG_LEVEL)")

	pflag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("FUSIONVIEW_LOG_FORMAT", "text"),
		"Log format: json, text (env: FUSIONVIEW_LOG_FORMAT)")

	pflag.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		getEnvDuration("FUSIONVIEW_SHUTDOWN_TIMEOUT", 10*time.Second),
		"Graceful shutdown timeout (env: FUSIONVIEW_SHUTDOWN_TIMEOUT)")

	pflag.BoolVarP(&cfg.ShowVersion, "version", "v", false, "Show version information")
	pflag.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	pflag.Parse()

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion {
		return nil
	}

	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	return nil
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Utility function to check if slice contains string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
