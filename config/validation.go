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
	"net/url"
	"os"
	"strings"
)

// ValidationError represents a configuration validation issue.
type ValidationError struct {
	Field   string
	Message string
	Level   string // "error", "warning", "info"
}

// ValidateConfiguration validates the entire configuration. Only "error"
// level issues should block Load; "warning" and "info" are advisory.
func ValidateConfiguration(cfg *Config) []ValidationError {
	var issues []ValidationError

	issues = append(issues, validateEnvironment(cfg.Environment)...)
	issues = append(issues, validateThreshold(cfg)...)

	for tag, chain := range cfg.Chains {
		issues = append(issues, validateChainConfig(tag, chain)...)
	}

	return issues
}

// validateThreshold checks the T-of-N relationship the orchestration layer
// depends on.
func validateThreshold(cfg *Config) []ValidationError {
	var issues []ValidationError

	if cfg.Threshold < 2 {
		issues = append(issues, ValidationError{
			Field:   "Threshold",
			Message: "threshold must be at least 2",
			Level:   "error",
		})
	}

	n := cfg.TotalShares
	if n == 0 {
		n = len(cfg.Chains)
	}
	if n > 255 {
		issues = append(issues, ValidationError{
			Field:   "TotalShares",
			Message: "total shares cannot exceed 255 (share index is a single byte)",
			Level:   "error",
		})
	}
	if cfg.Threshold > n {
		issues = append(issues, ValidationError{
			Field:   "Threshold",
			Message: fmt.Sprintf("threshold (%d) cannot exceed total shares (%d)", cfg.Threshold, n),
			Level:   "error",
		})
	}
	if len(cfg.Chains) < cfg.Threshold {
		issues = append(issues, ValidationError{
			Field:   "Chains",
			Message: fmt.Sprintf("only %d backend(s) configured, fewer than the threshold of %d", len(cfg.Chains), cfg.Threshold),
			Level:   "error",
		})
	}

	return issues
}

// validateChainConfig validates a single backend-tag's configuration. It
// checks the RPC URL's shape only — it never dials out, since config
// validation must not depend on network reachability.
func validateChainConfig(tag string, cfg *ChainConfig) []ValidationError {
	var issues []ValidationError

	if cfg.RPCURL == "" && cfg.ConnectionString == "" {
		issues = append(issues, ValidationError{
			Field:   fmt.Sprintf("Chains[%s]", tag),
			Message: "neither rpc_url nor connection_string is set",
			Level:   "warning",
		})
	}

	if cfg.RPCURL != "" {
		if _, err := url.Parse(cfg.RPCURL); err != nil {
			issues = append(issues, ValidationError{
				Field:   fmt.Sprintf("Chains[%s].RPCURL", tag),
				Message: fmt.Sprintf("invalid RPC URL: %v", err),
				Level:   "error",
			})
		}
	}

	if cfg.MaxRetries < 0 {
		issues = append(issues, ValidationError{
			Field:   fmt.Sprintf("Chains[%s].MaxRetries", tag),
			Message: "max retries cannot be negative",
			Level:   "error",
		})
	}
	if cfg.RetryDelay < 0 {
		issues = append(issues, ValidationError{
			Field:   fmt.Sprintf("Chains[%s].RetryDelay", tag),
			Message: "retry delay cannot be negative",
			Level:   "error",
		})
	}

	return issues
}

// validateEnvironment validates environment settings.
func validateEnvironment(env string) []ValidationError {
	var issues []ValidationError

	validEnvs := []string{"local", "development", "staging", "production"}
	env = strings.ToLower(env)

	valid := false
	for _, v := range validEnvs {
		if env == v {
			valid = true
			break
		}
	}

	if !valid {
		issues = append(issues, ValidationError{
			Field:   "Environment",
			Message: fmt.Sprintf("invalid environment: %s (valid: %v)", env, validEnvs),
			Level:   "error",
		})
	}

	if env == "production" {
		issues = append(issues, ValidationError{
			Field:   "Environment",
			Message: "running in production mode - ensure every backend uses a durable connection string",
			Level:   "info",
		})
	}

	return issues
}

// ValidateFile validates a configuration file on disk without loading it
// into a running AuthCore.
func ValidateFile(path string) ([]ValidationError, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", path)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return ValidateConfiguration(cfg), nil
}

// PrintValidationErrors prints validation issues in a formatted way.
func PrintValidationErrors(issues []ValidationError) {
	if len(issues) == 0 {
		fmt.Println("configuration is valid")
		return
	}

	var errorCount, warningCount, infoCount int
	for _, e := range issues {
		switch e.Level {
		case "error":
			errorCount++
		case "warning":
			warningCount++
		case "info":
			infoCount++
		}
	}

	fmt.Printf("configuration validation found %d errors, %d warnings, %d info messages\n\n",
		errorCount, warningCount, infoCount)

	for _, e := range issues {
		if e.Level == "error" {
			fmt.Printf("ERROR: %s - %s\n", e.Field, e.Message)
		}
	}
	for _, e := range issues {
		if e.Level == "warning" {
			fmt.Printf("WARNING: %s - %s\n", e.Field, e.Message)
		}
	}
	for _, e := range issues {
		if e.Level == "info" {
			fmt.Printf("INFO: %s - %s\n", e.Field, e.Message)
		}
	}
}
