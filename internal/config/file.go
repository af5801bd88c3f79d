package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/j-veylop/erwait-dashboard-tui/internal/aggregate"
)

// fileConfig is the on-disk YAML layout:
//
//	bucketHours: [6, 12, 24, 48]
//	categories:
//	  - key: Baixa
//	    name: Low
type fileConfig struct {
	BucketHours    []float64            `yaml:"bucketHours"`
	Categories     []aggregate.Category `yaml:"categories"`
	DashboardTitle string               `yaml:"title"`
}

// loadFile reads the optional YAML configuration. A missing file is not an error.
func loadFile(path string) (*fileConfig, error) {
	fc := &fileConfig{}
	if path == "" {
		return fc, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fc, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(raw, fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return fc, nil
}

// apply overlays values present in the file onto cfg.
func (fc *fileConfig) apply(cfg *Config) {
	if len(fc.BucketHours) > 0 {
		cfg.BucketHours = fc.BucketHours
	}
	if len(fc.Categories) > 0 {
		cfg.Categories = fc.Categories
	}
	if fc.DashboardTitle != "" && os.Getenv("DASHBOARD_TITLE") == "" {
		cfg.DashboardTitle = fc.DashboardTitle
	}
}
