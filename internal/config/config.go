//-------------------------------------------------------------------------
//
// pgEdge Lakehouse
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-lakehouse.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// ValidEnvs are the recognized environment identifiers.
var ValidEnvs = []string{"dev", "stage", "prod"}

// Config holds all configuration for pgedge-lakehouse.
type Config struct {
	// Connection is the PostgreSQL connection string.
	Connection string `mapstructure:"connection"`

	// Env is the target environment (dev, stage, prod). It selects the
	// warehouse catalog namespace and never affects transformation logic.
	Env string `mapstructure:"env"`

	// Catalog overrides the derived catalog namespace. When empty the
	// catalog is "<env>_lakehouse".
	Catalog string `mapstructure:"catalog"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Source holds configuration for the raw relation source.
	Source SourceConfig `mapstructure:"source"`

	// Init holds configuration for the init subcommand.
	Init InitConfig `mapstructure:"init"`

	// Run holds configuration for pipeline execution.
	Run RunConfig `mapstructure:"run"`

	// Quality holds configuration for the quality validator.
	Quality QualityConfig `mapstructure:"quality"`
}

// SourceConfig describes where raw relations are read from.
type SourceConfig struct {
	// Schema is the Postgres schema holding the 8 raw TPC-H relations.
	Schema string `mapstructure:"schema"`

	// System is the lineage source-system tag stamped onto bronze rows.
	System string `mapstructure:"system"`
}

// InitConfig holds configuration for source initialization.
type InitConfig struct {
	// Scale controls synthetic data volume: roughly Scale customers,
	// Scale*10 orders, Scale/10 suppliers and Scale/2 parts.
	Scale int `mapstructure:"scale"`

	// Seed makes synthetic generation reproducible when non-zero.
	Seed uint64 `mapstructure:"seed"`

	// DropExisting drops the raw source schema before initialization.
	DropExisting bool `mapstructure:"drop_existing"`
}

// RunConfig holds configuration for pipeline execution.
type RunConfig struct {
	// Pipeline is the registered pipeline to execute.
	Pipeline string `mapstructure:"pipeline"`

	// AsOfDate is the analysis reference date (YYYY-MM-DD) used for
	// recency and freshness-relative metrics. Empty means today (UTC).
	AsOfDate string `mapstructure:"as_of_date"`

	// MaxUnresolvedFraction is the fraction of fact rows allowed to drop
	// on unresolved join keys before a silver stage aborts.
	MaxUnresolvedFraction float64 `mapstructure:"max_unresolved_fraction"`

	// Retries is how many times a failed source read is retried before
	// the stage aborts.
	Retries int `mapstructure:"retries"`
}

// QualityConfig holds configuration for the quality validator.
type QualityConfig struct {
	// FreshnessHours is the staleness window for lineage timestamps.
	FreshnessHours int `mapstructure:"freshness_hours"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Env:      "dev",
		LogLevel: "info",
		Source: SourceConfig{
			Schema: "tpch",
			System: "tpch",
		},
		Init: InitConfig{
			Scale:        1000,
			DropExisting: false,
		},
		Run: RunConfig{
			Pipeline:              "sales-analytics",
			MaxUnresolvedFraction: 0.05,
			Retries:               2,
		},
		Quality: QualityConfig{
			FreshnessHours: 25,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-lakehouse.yaml
// 3. ~/.config/pgedge-lakehouse/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("pgedge-lakehouse")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-lakehouse"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// CatalogName returns the catalog namespace for the configured environment.
func (c *Config) CatalogName() string {
	if c.Catalog != "" {
		return c.Catalog
	}
	return c.Env + "_lakehouse"
}

// BronzeSchema returns the Postgres schema holding bronze relations.
func (c *Config) BronzeSchema() string {
	return c.CatalogName() + "_bronze"
}

// SilverSchema returns the Postgres schema holding silver relations.
func (c *Config) SilverSchema() string {
	return c.CatalogName() + "_silver"
}

// AsOf resolves the analysis reference date. Empty configuration means
// the current UTC date.
func (c *Config) AsOf() (time.Time, error) {
	if c.Run.AsOfDate == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse("2006-01-02", c.Run.AsOfDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid as_of_date %q: %w", c.Run.AsOfDate, err)
	}
	return t, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	valid := false
	for _, env := range ValidEnvs {
		if c.Env == env {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid env %q: must be one of %v", c.Env, ValidEnvs)
	}
	return nil
}

// ValidateInit checks configuration required for the init command.
func (c *Config) ValidateInit() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Init.Scale < 1 {
		return fmt.Errorf("init scale must be at least 1")
	}
	return nil
}

// ValidateRun checks configuration required for the run command.
func (c *Config) ValidateRun() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Run.Pipeline == "" {
		return fmt.Errorf("pipeline name is required")
	}
	if c.Run.MaxUnresolvedFraction < 0 || c.Run.MaxUnresolvedFraction > 1 {
		return fmt.Errorf("max_unresolved_fraction must be in [0, 1]")
	}
	if c.Run.Retries < 0 {
		return fmt.Errorf("retries must be non-negative")
	}
	if c.Quality.FreshnessHours < 1 {
		return fmt.Errorf("freshness_hours must be at least 1")
	}
	if _, err := c.AsOf(); err != nil {
		return err
	}
	return nil
}
