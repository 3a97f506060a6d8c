package amend

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config contains all configuration options for the amend engine
type Config struct {
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string
	// StrictMode upgrades advisory notices to errors: a replacement
	// sweep that matches nothing fails instead of being logged.
	StrictMode bool
	// MaxPartBytes is the largest XML part the engine will parse.
	// 0 disables the guard.
	MaxPartBytes int
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once
)

func init() {
	// Initialize global config from environment on first use
	configOnce.Do(func() {
		globalConfig = ConfigFromEnvironment()
	})
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		LogLevel:     "info",
		StrictMode:   false,
		MaxPartBytes: 128 << 20,
	}
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()

	// AMEND_LOG_LEVEL
	if val := os.Getenv("AMEND_LOG_LEVEL"); val != "" {
		config.LogLevel = val
	}

	// AMEND_STRICT_MODE
	if val := os.Getenv("AMEND_STRICT_MODE"); val != "" {
		config.StrictMode = parseBool(val)
	}

	// AMEND_MAX_PART_BYTES
	if val := os.Getenv("AMEND_MAX_PART_BYTES"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			config.MaxPartBytes = n
		}
	}

	return config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"off":   true,
	}

	if !validLogLevels[c.LogLevel] {
		return errors.New("invalid log level: " + c.LogLevel)
	}

	if c.MaxPartBytes < 0 {
		return errors.New("max part bytes cannot be negative")
	}

	return nil
}

// GetGlobalConfig returns the global configuration
func GetGlobalConfig() *Config {
	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}

	// Return a copy to prevent modification
	configCopy := *globalConfig
	return &configCopy
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) {
	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()

	// Update logger based on new config (outside the lock to avoid deadlock)
	UpdateLoggerFromConfig()
}

// parseBool parses a boolean value from a string
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
