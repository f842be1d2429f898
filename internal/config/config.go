package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/attachment-router/")
	v.AddConfigPath("$HOME/.attachment-router")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("ATTACHMENT_ROUTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromFile creates a configuration instance from an explicit config file path
func NewFromFile(path string) (*Config, error) {
	v := NewEmptyViper()
	v.SetConfigFile(path)

	v.AutomaticEnv()
	v.SetEnvPrefix("ATTACHMENT_ROUTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Source defaults
	v.SetDefault("source.bucket", "")
	v.SetDefault("source.key", "")
	v.SetDefault("source.prefix", "emails-received/")

	// Destination defaults
	v.SetDefault("destination.bucket", "")
	v.SetDefault("destination.current_prefix", "current")
	v.SetDefault("destination.archive_prefix", "archive")

	// Routing defaults
	v.SetDefault("routing.extensions", []string{"csv", "xlsx"})
	v.SetDefault("routing.timezone", "UTC")
	v.SetDefault("routing.date_format", "2006-01-02")

	// Storage defaults
	v.SetDefault("storage.type", "s3")
	v.SetDefault("storage.root", "./data")

	// AWS defaults
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.endpoint", "")
	v.SetDefault("aws.use_path_style", false)
	v.SetDefault("aws.access_key_id", "")
	v.SetDefault("aws.secret_access_key", "")

	// Verification defaults
	v.SetDefault("verification.enabled", false)
	v.SetDefault("verification.headers", map[string]string{})

	// Ledger defaults
	v.SetDefault("ledger.enabled", false)
	v.SetDefault("ledger.type", "s3")
	v.SetDefault("ledger.sqlite_path", "/data/processed_messages.db")
	v.SetDefault("ledger.mysql_dsn", "user:password@tcp(localhost:3306)/attachment_router?parseTime=true")
	v.SetDefault("ledger.s3_prefix", "processed/")
	v.SetDefault("ledger.retention", "0s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetStringMapString gets a string map value from the configuration
func (c *Config) GetStringMapString(key string) map[string]string {
	return c.v.GetStringMapString(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetLocation loads the time zone named by key
func (c *Config) GetLocation(key string) (*time.Location, error) {
	name := c.GetString(key)
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
