// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Snapfind Contributors

package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"

	snaperr "github.com/snapfind-dev/snapfind/pkg/errors"
)

// Config is the top-level snapfind configuration.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Vision  VisionConfig  `mapstructure:"vision"`
	Index   IndexConfig   `mapstructure:"index"`
	Search  SearchConfig  `mapstructure:"search"`
}

// StorageConfig locates the catalog database.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// VisionConfig holds credentials and model selection for the captioning and
// embedding service.
type VisionConfig struct {
	APIKey       string `mapstructure:"api_key"`
	Endpoint     string `mapstructure:"endpoint"`
	CaptionModel string `mapstructure:"caption_model"`
	EmbedModel   string `mapstructure:"embed_model"`
}

// IndexConfig tunes indexing runs.
type IndexConfig struct {
	Workers int `mapstructure:"workers"`
}

// SearchConfig tunes search defaults.
type SearchConfig struct {
	TopK int `mapstructure:"top_k"`
}

// SetDefaults installs default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("storage.path", "snapfind.db")
	v.SetDefault("vision.caption_model", "gpt-4.1-mini")
	v.SetDefault("vision.embed_model", "text-embedding-3-small")
	v.SetDefault("index.workers", 4)
	v.SetDefault("search.top_k", 5)
}

// SetupEnv binds environment variables with the SNAPFIND_ prefix, so e.g.
// SNAPFIND_VISION_API_KEY overrides vision.api_key.
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix("SNAPFIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// FromViper unmarshals and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, snaperr.Errorf(snaperr.CodeConfigValidateInvalidValue, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, snaperr.Errorf(snaperr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides.
func Load(path string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, snaperr.Errorf(snaperr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	return FromViper(v)
}

// Validate checks the configuration for logical errors. It returns all
// validation errors found rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	if c.Storage.Path == "" {
		errs = append(errs, snaperr.Errorf(snaperr.CodeConfigValidateInvalidValue, "config: storage.path must not be empty"))
	}

	if c.Index.Workers < 1 {
		errs = append(errs, snaperr.Errorf(snaperr.CodeConfigValidateInvalidValue,
			"config: index.workers must be at least 1, got %d", c.Index.Workers))
	}

	if c.Search.TopK < 1 {
		errs = append(errs, snaperr.Errorf(snaperr.CodeConfigValidateInvalidValue,
			"config: search.top_k must be at least 1, got %d", c.Search.TopK))
	}

	if c.Vision.CaptionModel == "" {
		errs = append(errs, snaperr.Errorf(snaperr.CodeConfigValidateInvalidValue, "config: vision.caption_model must not be empty"))
	}

	if c.Vision.EmbedModel == "" {
		errs = append(errs, snaperr.Errorf(snaperr.CodeConfigValidateInvalidValue, "config: vision.embed_model must not be empty"))
	}

	return errs
}
