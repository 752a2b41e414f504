package config

import (
	"os"
	"strconv"
	"strings"

	"statcore/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Analysis AnalysisConfig
	Server   ServerConfig
	Batch    BatchConfig
	Output   OutputConfig
	LogLevel string
}

// AnalysisConfig holds defaults applied when a request leaves them unset
type AnalysisConfig struct {
	Alpha         float64
	Correction    string
	TwoSampleMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// BatchConfig bounds how many tests a batch runs at once
type BatchConfig struct {
	MaxConcurrency int
}

// OutputConfig holds the significant digits used when results leave the process
type OutputConfig struct {
	StatDigits   int
	EffectDigits int
}

// Default returns the configuration used when no environment is present.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Alpha:         0.05,
			Correction:    "none",
			TwoSampleMode: "welch",
		},
		Server:   ServerConfig{Port: "8080"},
		Batch:    BatchConfig{MaxConcurrency: 4},
		Output:   OutputConfig{StatDigits: 6, EffectDigits: 4},
		LogLevel: "INFO",
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := Default()

	config.Analysis = *loadAnalysisConfig(config.Analysis)
	config.Server = ServerConfig{Port: getEnvOrDefault("PORT", config.Server.Port)}
	config.Batch = BatchConfig{
		MaxConcurrency: getEnvIntOrDefault("STATCORE_BATCH_CONCURRENCY", config.Batch.MaxConcurrency),
	}
	config.Output = OutputConfig{
		StatDigits:   getEnvIntOrDefault("STATCORE_STAT_DIGITS", config.Output.StatDigits),
		EffectDigits: getEnvIntOrDefault("STATCORE_EFFECT_DIGITS", config.Output.EffectDigits),
	}
	config.LogLevel = getEnvOrDefault("LOG_LEVEL", config.LogLevel)

	if err := Validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadAnalysisConfig(defaults AnalysisConfig) *AnalysisConfig {
	return &AnalysisConfig{
		Alpha:         getEnvFloatOrDefault("STATCORE_ALPHA", defaults.Alpha),
		Correction:    strings.ToLower(getEnvOrDefault("STATCORE_CORRECTION", defaults.Correction)),
		TwoSampleMode: strings.ToLower(getEnvOrDefault("STATCORE_TWO_SAMPLE_MODE", defaults.TwoSampleMode)),
	}
}

// Validate checks ranges and enumerations
func Validate(config *Config) error {
	if !(config.Analysis.Alpha > 0 && config.Analysis.Alpha < 1) {
		return errors.ConfigInvalid("STATCORE_ALPHA must be in (0, 1)")
	}
	switch config.Analysis.Correction {
	case "none", "bonferroni", "holm", "fdr", "bh":
	default:
		return errors.ConfigInvalid("STATCORE_CORRECTION must be one of none, bonferroni, holm, fdr")
	}
	switch config.Analysis.TwoSampleMode {
	case "welch", "pooled", "auto":
	default:
		return errors.ConfigInvalid("STATCORE_TWO_SAMPLE_MODE must be one of welch, pooled, auto")
	}
	if config.Batch.MaxConcurrency < 1 {
		return errors.ConfigInvalid("STATCORE_BATCH_CONCURRENCY must be at least 1")
	}
	if config.Output.StatDigits < 1 || config.Output.EffectDigits < 1 {
		return errors.ConfigInvalid("output digits must be at least 1")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
