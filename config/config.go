// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for an AuthCore instance: which storage
// backends are wired under which tag, the threshold/share-count the
// orchestration layer expects, and the ambient logging/metrics/health knobs.
type Config struct {
	Environment string                  `yaml:"environment" json:"environment"`
	Chains      map[string]*ChainConfig `yaml:"chains" json:"chains"`
	Threshold   int                     `yaml:"threshold" json:"threshold"`
	TotalShares int                     `yaml:"total_shares" json:"total_shares"`
	Logging     *LoggingConfig          `yaml:"logging" json:"logging"`
	Metrics     *MetricsConfig          `yaml:"metrics" json:"metrics"`
	Health      *HealthConfig           `yaml:"health" json:"health"`
}

// ChainConfig is the per-backend-tag configuration. Not every field applies
// to every backend: RPCURL drives the solana backend, ConnectionString drives
// the postgres-backed zcash/starknet backends.
type ChainConfig struct {
	RPCURL           string        `yaml:"rpc_url" json:"rpc_url"`
	ConnectionString string        `yaml:"connection_string" json:"connection_string"`
	MaxRetries       int           `yaml:"max_retries" json:"max_retries"`
	RetryDelay       time.Duration `yaml:"retry_delay" json:"retry_delay"`
	RequestTimeout   time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`
	Format   string `yaml:"format" json:"format"`
	Output   string `yaml:"output" json:"output"`
	FilePath string `yaml:"file_path" json:"file_path"`
}

// MetricsConfig represents metrics configuration.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Port    int    `yaml:"port" json:"port"`
	Path    string `yaml:"path" json:"path"`
}

// HealthConfig represents health check configuration.
type HealthConfig struct {
	Enabled bool     `yaml:"enabled" json:"enabled"`
	Port    int      `yaml:"port" json:"port"`
	Path    string   `yaml:"path" json:"path"`
	Checks  []string `yaml:"checks" json:"checks"`
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}

	// Try to parse as YAML first.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		// Fall back to JSON.
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file (tried YAML and JSON): %w", err)
		}
	}

	setDefaults(cfg)

	return cfg, nil
}

// SaveToFile saves configuration to a file, choosing the format by extension.
func SaveToFile(cfg *Config, path string) error {
	var data []byte
	var err error

	if len(path) >= 5 && path[len(path)-5:] == ".json" {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setDefaults fills in sensible defaults for anything the caller left zero.
func setDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	if cfg.Threshold == 0 {
		cfg.Threshold = 2
	}
	if cfg.TotalShares == 0 {
		cfg.TotalShares = len(cfg.Chains)
	}

	for _, chain := range cfg.Chains {
		if chain.MaxRetries == 0 {
			chain.MaxRetries = 3
		}
		if chain.RetryDelay == 0 {
			chain.RetryDelay = 1 * time.Second
		}
		if chain.RequestTimeout == 0 {
			chain.RequestTimeout = 30 * time.Second
		}
	}

	if cfg.Logging != nil {
		if cfg.Logging.Level == "" {
			cfg.Logging.Level = "info"
		}
		if cfg.Logging.Format == "" {
			cfg.Logging.Format = "json"
		}
		if cfg.Logging.Output == "" {
			cfg.Logging.Output = "stdout"
		}
	}
}
