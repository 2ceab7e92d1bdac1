// Package config loads runtime configuration from the environment and an optional .env file.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvMongoURI      = "MCX_MONGO_URI"
	EnvMongoDatabase = "MCX_MONGO_DATABASE"
	EnvMongoDisabled = "MCX_MONGO_DISABLED"
	EnvMongoTimeout  = "MCX_MONGO_TIMEOUT"
	EnvORTLibrary    = "MCX_ORT_LIBRARY"
	EnvLogLevel      = "MCX_LOG_LEVEL"
	EnvLicenseKey    = "MCX_LICENSE_KEY"
	EnvSettingsPath  = "MCX_SETTINGS_PATH"
)

// DefaultLicenseKey is the product key accepted when MCX_LICENSE_KEY is unset.
const DefaultLicenseKey = "D1QE80fxUUVcNs4VAAOvNNkJvHHy0dWM"

// Config is the process configuration.
type Config struct {
	MongoURI      string
	MongoDatabase string
	MongoDisabled bool
	MongoTimeout  time.Duration

	// ORTLibraryPath points at the onnxruntime shared library.
	// Empty means the platform default search.
	ORTLibraryPath string

	LogLevel   string
	LicenseKey string

	// SettingsPath overrides the settings file location.
	SettingsPath string
}

// Load reads .env files (if present) and then the environment.
// Variables already set in the environment win over .env values.
func Load(envFiles ...string) *Config {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	return &Config{
		MongoURI:       getEnv(EnvMongoURI, "mongodb://localhost:27017"),
		MongoDatabase:  getEnv(EnvMongoDatabase, "dotmini_mcx"),
		MongoDisabled:  getBool(EnvMongoDisabled, false),
		MongoTimeout:   getDuration(EnvMongoTimeout, 3*time.Second),
		ORTLibraryPath: getEnv(EnvORTLibrary, ""),
		LogLevel:       getEnv(EnvLogLevel, "info"),
		LicenseKey:     getEnv(EnvLicenseKey, DefaultLicenseKey),
		SettingsPath:   getEnv(EnvSettingsPath, ""),
	}
}

// ResolveSettingsPath returns SettingsPath, or <appDir>/settings.yaml when unset.
func (c *Config) ResolveSettingsPath(appDir string) string {
	if c.SettingsPath != "" {
		return c.SettingsPath
	}
	return filepath.Join(appDir, "settings.yaml")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		slog.Warn("Invalid boolean in environment, using default", "key", key, "value", value)
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		slog.Warn("Invalid duration in environment, using default", "key", key, "value", value)
		return fallback
	}
	return d
}
