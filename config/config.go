// Package config holds all configuration for the knowledge-base pipeline.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration tree.
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Service   ServiceConfig   `mapstructure:"service"`
	Selection SelectionConfig `mapstructure:"selection"`
	Stub      StubConfig      `mapstructure:"stub"`
}

// GeneralConfig contains general application settings.
type GeneralConfig struct {
	LogPrefix string `mapstructure:"log_prefix"`
}

// PipelineConfig tunes scoring.
type PipelineConfig struct {
	HighValueCategories []string `mapstructure:"high_value_categories"`
	CriticalKeywords    []string `mapstructure:"critical_keywords"`
}

// ServiceConfig describes the remote knowledge-storage service boundary.
type ServiceConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	ChunkSize  int           `mapstructure:"chunk_size"`
	ChunkDelay time.Duration `mapstructure:"chunk_delay"`
}

func (s ServiceConfig) Validate() error {
	if strings.TrimSpace(s.BaseURL) == "" {
		return errors.New("service.base_url is required")
	}
	if s.ChunkSize < 0 {
		return errors.New("service.chunk_size cannot be negative")
	}
	return nil
}

// SelectionConfig controls the top-N selector.
type SelectionConfig struct {
	TargetCount           int            `mapstructure:"target_count"`
	DefaultCategoryTarget int            `mapstructure:"default_category_target"`
	CategoryTargets       map[string]int `mapstructure:"category_targets"`
}

func (s SelectionConfig) Validate() error {
	if s.TargetCount < 0 {
		return errors.New("selection.target_count cannot be negative")
	}
	for cat, n := range s.CategoryTargets {
		if n < 0 {
			return fmt.Errorf("selection.category_targets.%s cannot be negative", cat)
		}
	}
	return nil
}

// StubConfig configures the local stand-in knowledge service.
type StubConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoadConfig loads config from file, falling back to defaults plus FACTKB_*
// environment overrides when no file is present.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")

	v.SetDefault("general.log_prefix", "[FACTKB] ")
	v.SetDefault("pipeline.high_value_categories", []string{
		"state_licensing_requirements",
		"exam_preparation_testing",
		"insurance_bonding",
	})
	v.SetDefault("pipeline.critical_keywords", []string{
		"license", "exam", "bond", "qualifier",
	})
	v.SetDefault("service.base_url", "http://localhost:8080")
	v.SetDefault("service.timeout", 30*time.Second)
	v.SetDefault("service.chunk_size", 10)
	v.SetDefault("service.chunk_delay", 500*time.Millisecond)
	v.SetDefault("selection.target_count", 1500)
	v.SetDefault("selection.default_category_target", 1)
	v.SetDefault("stub.addr", ":8080")

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("FACTKB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Service.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Selection.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
