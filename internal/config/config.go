package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration
type Config struct {
	Log   LogConfig   `mapstructure:"log"`
	Grid  GridConfig  `mapstructure:"grid"`
	UI    UIConfig    `mapstructure:"ui"`
	Cache CacheConfig `mapstructure:"cache"`
	R2    R2Config    `mapstructure:"r2"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// GridConfig points at the grid configuration describing dimensions and layout
type GridConfig struct {
	File string `mapstructure:"file"`
}

// UIConfig holds user interface configuration
type UIConfig struct {
	ImageRender     string `mapstructure:"image_render"`
	Watch           bool   `mapstructure:"watch"`
	WatchDebounceMS int    `mapstructure:"watch_debounce_ms"`
}

// CacheConfig holds the on-disk cache used for remote images
type CacheConfig struct {
	Dir       string `mapstructure:"dir"`
	MaxSizeMB int64  `mapstructure:"max_size_mb"`
}

// R2Config holds R2/S3 specific configuration, only needed for r2:// image paths
type R2Config struct {
	AccountID       string `mapstructure:"account_id"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
}

// Load loads configuration from multiple sources with priority:
// 1. Command line flags (highest)
// 2. Environment variables
// 3. Configuration file
// 4. Defaults (lowest)
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Set environment variable prefix
	v.SetEnvPrefix("NDVIEW")
	v.AutomaticEnv()

	// Environment variable mappings
	v.BindEnv("log.level", "NDVIEW_LOG_LEVEL")
	v.BindEnv("log.format", "NDVIEW_LOG_FORMAT")
	v.BindEnv("log.file", "NDVIEW_LOG_FILE")
	v.BindEnv("grid.file", "NDVIEW_GRID_FILE")
	v.BindEnv("ui.image_render", "NDVIEW_UI_IMAGE_RENDER")
	v.BindEnv("ui.watch", "NDVIEW_UI_WATCH")
	v.BindEnv("ui.watch_debounce_ms", "NDVIEW_UI_WATCH_DEBOUNCE_MS")
	v.BindEnv("cache.dir", "NDVIEW_CACHE_DIR")
	v.BindEnv("cache.max_size_mb", "NDVIEW_CACHE_MAX_SIZE_MB")
	v.BindEnv("r2.account_id", "NDVIEW_R2_ACCOUNT_ID")
	v.BindEnv("r2.access_key_id", "NDVIEW_R2_ACCESS_KEY_ID")
	v.BindEnv("r2.access_key_secret", "NDVIEW_R2_ACCESS_KEY_SECRET")
	v.BindEnv("r2.bucket_name", "NDVIEW_R2_BUCKET_NAME")
	v.BindEnv("r2.endpoint", "NDVIEW_R2_ENDPOINT")
	v.BindEnv("r2.region", "NDVIEW_R2_REGION")
	v.BindEnv("r2.timeout_seconds", "NDVIEW_R2_TIMEOUT_SECONDS")

	// Configuration file handling
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")

		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.ndview")
		v.AddConfigPath("/etc/ndview/")
	}

	// Read configuration file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is not an error - we can use defaults and env vars
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", filepath.Join(os.TempDir(), "ndview", "app.log"))

	// Grid defaults
	v.SetDefault("grid.file", "settings.cfg")

	// UI defaults
	v.SetDefault("ui.image_render", "auto")
	v.SetDefault("ui.watch", true)
	v.SetDefault("ui.watch_debounce_ms", 300)

	// Cache defaults
	v.SetDefault("cache.dir", filepath.Join(os.TempDir(), "ndview", "cache"))
	v.SetDefault("cache.max_size_mb", 256)

	// R2 defaults
	v.SetDefault("r2.endpoint", "auto")
	v.SetDefault("r2.region", "auto")
	v.SetDefault("r2.timeout_seconds", 10)
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./config.toml"
	}
	return filepath.Join(homeDir, ".ndview", "config.toml")
}

// CacheMaxBytes returns the cache size limit in bytes
func (c *CacheConfig) CacheMaxBytes() int64 {
	return c.MaxSizeMB * 1024 * 1024
}
