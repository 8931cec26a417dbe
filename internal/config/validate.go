package config

import (
	"fmt"
	"strings"
)

// Validate validates the configuration and returns an error if invalid
func Validate(config *Config) error {
	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config validation failed: %w", err)
	}

	if err := validateGridConfig(&config.Grid); err != nil {
		return fmt.Errorf("grid config validation failed: %w", err)
	}

	if err := validateUIConfig(&config.UI); err != nil {
		return fmt.Errorf("ui config validation failed: %w", err)
	}

	if err := validateCacheConfig(&config.Cache); err != nil {
		return fmt.Errorf("cache config validation failed: %w", err)
	}

	return nil
}

// ValidateR2 checks the R2 section; it only matters when images live in a bucket
func ValidateR2(config *R2Config) error {
	if strings.TrimSpace(config.AccountID) == "" {
		return fmt.Errorf("account_id is required")
	}

	if strings.TrimSpace(config.AccessKeyID) == "" {
		return fmt.Errorf("access_key_id is required")
	}

	if strings.TrimSpace(config.AccessKeySecret) == "" {
		return fmt.Errorf("access_key_secret is required")
	}

	if strings.TrimSpace(config.BucketName) == "" {
		return fmt.Errorf("bucket_name is required")
	}

	if !isValidBucketName(config.BucketName) {
		return fmt.Errorf("invalid bucket_name format: %s", config.BucketName)
	}

	if config.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative")
	}

	return nil
}

// validateLogConfig validates log configuration
func validateLogConfig(config *LogConfig) error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
		"panic": true,
	}

	level := strings.ToLower(config.Level)
	if !validLevels[level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error, fatal, panic)", config.Level)
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
	}

	format := strings.ToLower(config.Format)
	if !validFormats[format] {
		return fmt.Errorf("invalid log format: %s (valid: text, json)", config.Format)
	}

	return nil
}

// validateGridConfig validates the grid file setting
func validateGridConfig(config *GridConfig) error {
	if strings.TrimSpace(config.File) == "" {
		return fmt.Errorf("grid file is required")
	}
	return nil
}

// validateUIConfig validates user interface configuration
func validateUIConfig(config *UIConfig) error {
	validRenders := map[string]bool{
		"auto":   true,
		"text":   true,
		"kitty":  true,
		"iterm2": true,
		"sixel":  true,
	}

	if !validRenders[strings.ToLower(config.ImageRender)] {
		return fmt.Errorf("invalid image_render: %s (valid: auto, text, kitty, iterm2, sixel)", config.ImageRender)
	}

	if config.WatchDebounceMS < 0 {
		return fmt.Errorf("watch_debounce_ms must be non-negative, got: %d", config.WatchDebounceMS)
	}

	return nil
}

// validateCacheConfig validates cache configuration
func validateCacheConfig(config *CacheConfig) error {
	if strings.TrimSpace(config.Dir) == "" {
		return fmt.Errorf("cache dir is required")
	}

	if config.MaxSizeMB <= 0 {
		return fmt.Errorf("max_size_mb must be positive, got: %d", config.MaxSizeMB)
	}

	return nil
}

// isValidBucketName checks if the bucket name follows basic S3 naming rules
func isValidBucketName(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}

	// Must start and end with letter or number
	if !isAlphaNum(name[0]) || !isAlphaNum(name[len(name)-1]) {
		return false
	}

	for i, char := range name {
		if !isAlphaNum(byte(char)) && char != '-' && char != '.' {
			return false
		}

		// Cannot have consecutive periods or period-dash combinations
		if i > 0 {
			prev := name[i-1]
			if char == '.' && (prev == '.' || prev == '-') {
				return false
			}
			if char == '-' && prev == '.' {
				return false
			}
		}
	}

	return true
}

// isAlphaNum checks if a byte is alphanumeric
func isAlphaNum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
