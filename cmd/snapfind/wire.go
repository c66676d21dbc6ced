// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Snapfind Contributors

package main

import (
	"github.com/spf13/viper"

	"github.com/snapfind-dev/snapfind/internal/catalog"
	catalogsqlite "github.com/snapfind-dev/snapfind/internal/catalog/sqlite"
	"github.com/snapfind-dev/snapfind/internal/config"
	"github.com/snapfind-dev/snapfind/internal/vision"
	visionopenai "github.com/snapfind-dev/snapfind/internal/vision/openai"
	snaperr "github.com/snapfind-dev/snapfind/pkg/errors"
)

// loadConfig resolves the effective configuration assembled by initViper.
func loadConfig() (*config.Config, error) {
	return config.FromViper(viper.GetViper())
}

// openCatalog opens the catalog store configured in cfg.
func openCatalog(cfg *config.Config) (catalog.Store, error) {
	store, err := catalogsqlite.New(cfg.Storage.Path)
	if err != nil {
		return nil, snaperr.Wrapf(err, snaperr.CodeCLISetupFailure, "opening catalog %s", cfg.Storage.Path)
	}
	return store, nil
}

// newVisionClient builds the captioning/embedding client configured in cfg.
func newVisionClient(cfg *config.Config) (vision.Client, error) {
	client, err := visionopenai.New(visionopenai.Config{
		APIKey:       cfg.Vision.APIKey,
		BaseURL:      cfg.Vision.Endpoint,
		CaptionModel: cfg.Vision.CaptionModel,
		EmbedModel:   cfg.Vision.EmbedModel,
	})
	if err != nil {
		return nil, snaperr.Wrapf(err, snaperr.CodeCLISetupFailure, "creating vision client")
	}
	return client, nil
}
