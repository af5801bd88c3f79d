// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/j-veylop/erwait-dashboard-tui/internal/aggregate"
)

// Config holds the application configuration.
type Config struct {
	APIBaseURL      string
	PermanencePath  string
	SeverityPath    string
	RecordsFile     string
	ConfigFile      string
	LogFile         string
	MetricsAddr     string
	DashboardTitle  string
	HTTPTimeout     time.Duration
	RefreshInterval time.Duration
	Notifications   bool
	Debug           bool

	BucketHours []float64
	Categories  []aggregate.Category

	// Validated forms of BucketHours and Categories.
	Boundaries aggregate.Boundaries
	Severities aggregate.Categories
}

// Default values
const (
	defaultAPIBaseURL     = "http://localhost:3333"
	defaultPermanencePath = "/permanence"
	defaultSeverityPath   = "/severity-and-permanence"
	defaultDashboardTitle = "UPA São Carlos"
	defaultHTTPTimeout    = 10 * time.Second
)

// Load reads configuration from .env files, the optional YAML file and
// environment variables. Invalid bucket boundaries or categories are
// reported here, once, rather than on every refresh.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		APIBaseURL:      strings.TrimRight(getEnvString("API_BASE_URL", defaultAPIBaseURL), "/"),
		PermanencePath:  getEnvString("PERMANENCE_PATH", defaultPermanencePath),
		SeverityPath:    getEnvString("SEVERITY_PATH", defaultSeverityPath),
		RecordsFile:     getEnvString("RECORDS_FILE", ""),
		ConfigFile:      getEnvString("CONFIG_FILE", getDefaultConfigFile()),
		LogFile:         getEnvString("LOG_FILE", ""),
		MetricsAddr:     getEnvString("METRICS_ADDR", ""),
		DashboardTitle:  getEnvString("DASHBOARD_TITLE", defaultDashboardTitle),
		HTTPTimeout:     getEnvDuration("HTTP_TIMEOUT", defaultHTTPTimeout),
		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", 0),
		Notifications:   getEnvBool("NOTIFICATIONS", true),
		Debug:           getEnvBool("DEBUG", false),
		BucketHours:     aggregate.DefaultBucketHours,
		Categories:      aggregate.DefaultCategories,
	}

	file, err := loadFile(cfg.ConfigFile)
	if err != nil {
		return nil, err
	}
	file.apply(cfg)

	if raw := os.Getenv("BUCKET_HOURS"); raw != "" {
		hours, err := parseHours(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid BUCKET_HOURS: %w", err)
		}
		cfg.BucketHours = hours
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate builds the aggregation configuration and rejects bad values.
func (c *Config) validate() error {
	boundaries, err := aggregate.NewBoundaries(c.BucketHours)
	if err != nil {
		return fmt.Errorf("invalid bucket configuration: %w", err)
	}
	severities, err := aggregate.NewCategories(c.Categories)
	if err != nil {
		return fmt.Errorf("invalid category configuration: %w", err)
	}
	if c.RecordsFile == "" && c.APIBaseURL == "" {
		return fmt.Errorf("either API_BASE_URL or RECORDS_FILE is required")
	}

	c.Boundaries = boundaries
	c.Severities = severities
	return nil
}

// SourceDescription returns a human readable description of the record source.
func (c *Config) SourceDescription() string {
	if c.RecordsFile != "" {
		return "file " + c.RecordsFile
	}
	return c.APIBaseURL
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "erwait", ".env"),
			filepath.Join(home, ".erwait", ".env"),
		)
	}

	// Parent directory (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(cwd), ".env"))
	}

	return paths
}

// getDefaultConfigFile returns the default path of the optional YAML file.
func getDefaultConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "erwait.yaml"
	}
	return filepath.Join(home, ".config", "erwait", "config.yaml")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// parseHours parses a comma separated list like "6,12,24,48".
func parseHours(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	hours := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		h, err := strconv.ParseFloat(strings.TrimSuffix(p, "h"), 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", p)
		}
		hours = append(hours, h)
	}
	return hours, nil
}
