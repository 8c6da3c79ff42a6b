// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// LoaderOptions configures the configuration loader.
type LoaderOptions struct {
	// ConfigDir is the directory containing config files (default: ./config).
	ConfigDir string
	// Environment overrides automatic environment detection.
	Environment string
	// DotEnvPath, if set, is loaded into the process environment before
	// substitution runs. Missing files are silently ignored.
	DotEnvPath string
	// SkipEnvSubstitution disables environment variable substitution.
	SkipEnvSubstitution bool
	// SkipValidation disables configuration validation.
	SkipValidation bool
}

// DefaultLoaderOptions returns default loader options.
func DefaultLoaderOptions() LoaderOptions {
	return LoaderOptions{
		ConfigDir:  "config",
		DotEnvPath: ".env",
	}
}

// Load loads configuration with automatic environment detection.
func Load(opts ...LoaderOptions) (*Config, error) {
	options := DefaultLoaderOptions()
	if len(opts) > 0 {
		options = opts[0]
	}

	if options.DotEnvPath != "" {
		_ = godotenv.Load(options.DotEnvPath)
	}

	env := options.Environment
	if env == "" {
		env = GetEnvironment()
	}

	// Try to load environment-specific config file, falling back to
	// default.yaml, then config.yaml, then built-in defaults.
	envConfigPath := filepath.Join(options.ConfigDir, fmt.Sprintf("%s.yaml", env))
	cfg, err := loadConfigFile(envConfigPath)
	if err != nil {
		defaultConfigPath := filepath.Join(options.ConfigDir, "default.yaml")
		cfg, err = loadConfigFile(defaultConfigPath)
		if err != nil {
			configPath := filepath.Join(options.ConfigDir, "config.yaml")
			cfg, err = loadConfigFile(configPath)
			if err != nil {
				cfg = &Config{Chains: map[string]*ChainConfig{}}
			}
		}
	}

	if cfg.Environment == "" {
		cfg.Environment = env
	}
	if cfg.Chains == nil {
		cfg.Chains = map[string]*ChainConfig{}
	}

	setDefaults(cfg)

	if !options.SkipEnvSubstitution {
		SubstituteEnvVarsInConfig(cfg)
	}

	applyEnvironmentOverrides(cfg)

	if !options.SkipValidation {
		issues := ValidateConfiguration(cfg)
		for _, e := range issues {
			if e.Level == "error" {
				return nil, fmt.Errorf("configuration validation failed: %s - %s", e.Field, e.Message)
			}
		}
	}

	return cfg, nil
}

// loadConfigFile loads a single config file.
func loadConfigFile(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}
	return LoadFromFile(path)
}

// applyEnvironmentOverrides overrides config with environment variables,
// the highest-priority source.
func applyEnvironmentOverrides(cfg *Config) {
	if threshold := os.Getenv("ZKAUTH_THRESHOLD"); threshold != "" {
		if n, err := strconv.Atoi(threshold); err == nil {
			cfg.Threshold = n
		}
	}
	if totalShares := os.Getenv("ZKAUTH_TOTAL_SHARES"); totalShares != "" {
		if n, err := strconv.Atoi(totalShares); err == nil {
			cfg.TotalShares = n
		}
	}

	// Per-chain RPC URL overrides: ZKAUTH_CHAIN_<TAG>_RPC_URL.
	for tag, chain := range cfg.Chains {
		envKey := "ZKAUTH_CHAIN_" + upperSnake(tag) + "_RPC_URL"
		if rpc := os.Getenv(envKey); rpc != "" {
			chain.RPCURL = rpc
		}
		connKey := "ZKAUTH_CHAIN_" + upperSnake(tag) + "_CONNECTION_STRING"
		if conn := os.Getenv(connKey); conn != "" {
			chain.ConnectionString = conn
		}
	}

	if logLevel := os.Getenv("ZKAUTH_LOG_LEVEL"); logLevel != "" && cfg.Logging != nil {
		cfg.Logging.Level = logLevel
	}
	if logFormat := os.Getenv("ZKAUTH_LOG_FORMAT"); logFormat != "" && cfg.Logging != nil {
		cfg.Logging.Format = logFormat
	}

	if os.Getenv("ZKAUTH_METRICS_ENABLED") == "true" && cfg.Metrics != nil {
		cfg.Metrics.Enabled = true
	}
	if os.Getenv("ZKAUTH_METRICS_ENABLED") == "false" && cfg.Metrics != nil {
		cfg.Metrics.Enabled = false
	}
}

func upperSnake(tag string) string {
	out := make([]byte, 0, len(tag))
	for i := 0; i < len(tag); i++ {
		c := tag[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}

// LoadForEnvironment loads configuration for a specific environment.
func LoadForEnvironment(environment string) (*Config, error) {
	opts := DefaultLoaderOptions()
	opts.Environment = environment
	return Load(opts)
}

// MustLoad loads configuration or panics on error.
func MustLoad(opts ...LoaderOptions) *Config {
	cfg, err := Load(opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}
