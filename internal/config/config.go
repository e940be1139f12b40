// Package config handles client configuration loading and validation
// from environment variables, providing a type-safe configuration structure.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Credential store backends.
const (
	CredentialStoreFile   = "file"
	CredentialStoreRedis  = "redis"
	CredentialStoreMemory = "memory"
)

// Config holds all client configuration values loaded from environment variables.
type Config struct {
	// API connection
	APIURL         string        // Base URL of the document-management REST API
	RequestTimeout time.Duration // Timeout for a single non-streaming request
	CacheTTL       time.Duration // TTL for cached GET responses (0 disables caching)
	PageSize       int           // Default page size for list operations

	// Credential storage
	CredentialStore string // Backend for the bearer token: "file", "redis" or "memory"
	CredentialFile  string // Path to the credential file for the file backend
	RedisAddr       string // Redis server address for the redis backend
	RedisDB         int    // Redis database number
	RedisKeyPrefix  string // Prefix for the credential key in redis

	// Notifications
	NotifyDelay time.Duration // Auto-close delay for notifications (<=0 keeps them until dismissed)

	// Logging
	LogLevel  string // Log level (debug, info, warn, error)
	LogFormat string // Log format (json, console)
	LogFile   string // Path to log file (empty for stderr)
}

// New creates a new configuration with values from environment variables.
// It applies default values where environment variables are not set,
// and validates the result.
func New() (*Config, error) {
	config := &Config{
		APIURL:         getEnvString("DMS_API_URL", "http://localhost:8000/api/v1"),
		RequestTimeout: getEnvDuration("DMS_REQUEST_TIMEOUT", 30*time.Second),
		CacheTTL:       getEnvDuration("DMS_CACHE_TTL", 0),
		PageSize:       getEnvInt("DMS_PAGE_SIZE", 20),

		CredentialStore: getEnvString("DMS_CREDENTIAL_STORE", CredentialStoreFile),
		CredentialFile:  getEnvString("DMS_CREDENTIAL_FILE", defaultCredentialFile()),
		RedisAddr:       getEnvString("REDIS_ADDR", "localhost:6379"),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		RedisKeyPrefix:  getEnvString("DMS_REDIS_PREFIX", "dms:"),

		NotifyDelay: getEnvDuration("DMS_NOTIFY_DELAY", 5*time.Second),

		LogLevel:  getEnvString("LOG_LEVEL", "warn"),
		LogFormat: getEnvString("LOG_FORMAT", "console"),
		LogFile:   getEnvString("LOG_FILE", ""),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.APIURL == "" {
		result = multierror.Append(result, fmt.Errorf("DMS_API_URL is required"))
	} else if u, err := url.Parse(c.APIURL); err != nil {
		result = multierror.Append(result, fmt.Errorf("invalid DMS_API_URL: %w", err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		result = multierror.Append(result,
			fmt.Errorf("DMS_API_URL must use http or https scheme, got: %q", u.Scheme))
	}

	if c.RequestTimeout <= 0 {
		result = multierror.Append(result,
			fmt.Errorf("request timeout must be positive, got: %v", c.RequestTimeout))
	}
	if c.CacheTTL < 0 {
		result = multierror.Append(result,
			fmt.Errorf("cache TTL must be non-negative, got: %v", c.CacheTTL))
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		result = multierror.Append(result,
			fmt.Errorf("page size must be between 1 and 100, got: %d", c.PageSize))
	}

	switch c.CredentialStore {
	case CredentialStoreFile:
		if c.CredentialFile == "" {
			result = multierror.Append(result, fmt.Errorf("DMS_CREDENTIAL_FILE is required for the file store"))
		}
	case CredentialStoreRedis:
		if c.RedisAddr == "" {
			result = multierror.Append(result, fmt.Errorf("REDIS_ADDR is required for the redis store"))
		}
	case CredentialStoreMemory:
	default:
		result = multierror.Append(result,
			fmt.Errorf("unknown credential store %q (want file, redis or memory)", c.CredentialStore))
	}

	return result.ErrorOrNil()
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		APIURL:         "http://localhost:8000/api/v1",
		RequestTimeout: 30 * time.Second,
		PageSize:       20,

		CredentialStore: CredentialStoreFile,
		CredentialFile:  defaultCredentialFile(),
		RedisAddr:       "localhost:6379",
		RedisKeyPrefix:  "dms:",

		NotifyDelay: 5 * time.Second,

		LogLevel:  "warn",
		LogFormat: "console",
	}
}

func defaultCredentialFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".dms-credentials.yaml"
	}
	return dir + string(os.PathSeparator) + "dms" + string(os.PathSeparator) + "credentials.yaml"
}

// getEnvString retrieves a string value from an environment variable,
// falling back to the provided default value if the variable is not set.
func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer value from an environment variable,
// falling back to the provided default value if the variable is not set
// or cannot be parsed as an integer.
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		parsedValue, err := strconv.Atoi(value)
		if err == nil {
			return parsedValue
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration value from an environment variable,
// falling back to the provided default value if the variable is not set
// or cannot be parsed as a duration.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		parsedValue, err := time.ParseDuration(strings.TrimSpace(value))
		if err == nil {
			return parsedValue
		}
	}
	return defaultValue
}
