package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	errs "filamento/pkg/errors"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation error for field '%s' with value '%s': %s", e.Field, e.Value, e.Message)
}

// ConfigValidator collects validation errors
type ConfigValidator struct {
	errors []ValidationError
}

func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{errors: make([]ValidationError, 0)}
}

func (cv *ConfigValidator) AddError(field, value, message string) {
	cv.errors = append(cv.errors, ValidationError{Field: field, Value: value, Message: message})
}

func (cv *ConfigValidator) HasErrors() bool { return len(cv.errors) > 0 }

func (cv *ConfigValidator) GetErrors() []ValidationError { return cv.errors }

// GetErrorsAsString returns all validation errors, one per line
func (cv *ConfigValidator) GetErrorsAsString() string {
	var lines []string
	for _, err := range cv.errors {
		lines = append(lines, err.Error())
	}
	return strings.Join(lines, "\n")
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	validator := NewConfigValidator()

	c.validateRequired(validator)
	c.validateFormats(validator)
	c.validateRanges(validator)
	c.validateEnvironment(validator)

	if validator.HasErrors() {
		return errs.NewValidation("config.Validate", fmt.Sprintf("configuration validation failed:\n%s", validator.GetErrorsAsString()), nil)
	}
	return nil
}

func (c *Config) validateRequired(validator *ConfigValidator) {
	if c.Port == "" {
		validator.AddError("PORT", c.Port, "port is required")
	}
	if c.CatalogFile == "" {
		validator.AddError("CATALOG_FILE", c.CatalogFile, "catalog file is required")
	}
}

func (c *Config) validateFormats(validator *ConfigValidator) {
	if c.Port != "" {
		if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
			validator.AddError("PORT", c.Port, "invalid port number (must be 1-65535)")
		}
	}

	if c.SchemaFile != "" && c.SchemaInfer {
		validator.AddError("SCHEMA_INFER", "true", "SCHEMA_INFER cannot be combined with SCHEMA_FILE")
	}

	if !contains([]string{"rgb", "hsl"}, c.SimilarityMetric) {
		validator.AddError("SIMILARITY_METRIC", c.SimilarityMetric, "unknown metric (must be one of: rgb, hsl)")
	}

	validLogLevels := []string{"trace", "debug", "info", "warn", "error"}
	if c.LogLevel != "" && !contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		validator.AddError("LOG_LEVEL", c.LogLevel, "invalid log level (must be one of: trace, debug, info, warn, error)")
	}

	if c.LogFormat != "" && c.LogFormat != "json" && c.LogFormat != "text" {
		validator.AddError("LOG_FORMAT", c.LogFormat, "invalid log format (must be 'json' or 'text')")
	}

	if c.MetricsEnabled && !strings.HasPrefix(c.MetricsPath, "/") {
		validator.AddError("METRICS_PATH", c.MetricsPath, "metrics path must start with '/'")
	}
}

func (c *Config) validateRanges(validator *ConfigValidator) {
	if math.IsNaN(c.MatchThreshold) || c.MatchThreshold < 0 || c.MatchThreshold > 100 {
		validator.AddError("MATCH_THRESHOLD", strconv.FormatFloat(c.MatchThreshold, 'f', -1, 64), "match threshold must be between 0 and 100")
	}
	if c.ResultLimit < 0 {
		validator.AddError("RESULT_LIMIT", strconv.Itoa(c.ResultLimit), "result limit must not be negative")
	}
	if math.IsNaN(c.RateLimitRPS) || c.RateLimitRPS < 0 {
		validator.AddError("RATE_LIMIT_RPS", strconv.FormatFloat(c.RateLimitRPS, 'f', -1, 64), "rate limit must not be negative")
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		validator.AddError("RATE_LIMIT_BURST", strconv.Itoa(c.RateLimitBurst), "burst must be at least 1 when rate limiting is on")
	}
}

func (c *Config) validateEnvironment(validator *ConfigValidator) {
	if c.CatalogFile != "" {
		if _, err := os.Stat(c.CatalogFile); err != nil {
			validator.AddError("CATALOG_FILE", c.CatalogFile, fmt.Sprintf("catalog file not readable: %v", err))
		}
	}
	if c.SchemaFile != "" {
		if _, err := os.Stat(c.SchemaFile); err != nil {
			validator.AddError("SCHEMA_FILE", c.SchemaFile, fmt.Sprintf("schema file not readable: %v", err))
		}
	}
	if c.EnableFileLogging && c.LogFile != "" {
		if err := checkDirectoryWritable(c.LogFile); err != nil {
			validator.AddError("LOG_FILE", c.LogFile, fmt.Sprintf("log directory is not writable: %v", err))
		}
	}
}

// checkDirectoryWritable checks that the directory of filePath exists (or can
// be created) and accepts new files.
func checkDirectoryWritable(filePath string) error {
	dir := "."
	if i := strings.LastIndex(filePath, "/"); i > 0 {
		dir = filePath[:i]
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errs.NewValidation("config.checkDirectoryWritable", "cannot create directory", err)
		}
	}
	tempFile := fmt.Sprintf("%s/.write_test_%d", dir, os.Getpid())
	file, err := os.Create(tempFile)
	if err != nil {
		return errs.NewValidation("config.checkDirectoryWritable", "directory is not writable", err)
	}
	file.Close()
	os.Remove(tempFile)
	return nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// GetConfigSummary returns the settings worth logging at startup
func (c *Config) GetConfigSummary() map[string]interface{} {
	return map[string]interface{}{
		"port":              c.Port,
		"env":               c.Env,
		"catalog_file":      c.CatalogFile,
		"schema_file":       c.SchemaFile,
		"schema_infer":      c.SchemaInfer,
		"similarity_metric": c.SimilarityMetric,
		"match_threshold":   c.MatchThreshold,
		"result_limit":      c.ResultLimit,
		"log_level":         c.LogLevel,
		"log_format":        c.LogFormat,
		"metrics_enabled":   c.MetricsEnabled,
		"otel_enabled":      c.OTelEnabled,
		"rate_limit_rps":    c.RateLimitRPS,
		"config_file":       c.ConfigFile,
	}
}
