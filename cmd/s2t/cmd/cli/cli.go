// Package cli holds the flags and bootstrap shared by all s2t commands.
package cli

import (
	"fmt"

	"go.uber.org/zap"
	"s2t/internal/app"
	"s2t/internal/app/common"
	"s2t/internal/config"
)

// Global flags, bound by the root command
var (
	ConfigPath string
	Verbose    bool
)

// LoadConfig reads .env, the YAML file and environment overrides
func LoadConfig() (*config.Config, error) {
	cfg, err := config.InitializeConfig(ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	if Verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// NewLogger builds the zap logger described by cfg
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	return common.NewLogger(cfg.Log.Development, cfg.Log.Level)
}

// Bootstrap loads configuration and wires the application
func Bootstrap(opts ...app.Option) (*app.App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return BootstrapWith(cfg, opts...)
}

// BootstrapWith wires the application from an already loaded configuration
func BootstrapWith(cfg *config.Config, opts ...app.Option) (*app.App, error) {
	logger, err := NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	a, err := app.New(cfg, logger, opts...)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return a, nil
}
