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

package main

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/zkauth/zkauth-core/authcore"
	"github.com/zkauth/zkauth-core/config"
	"github.com/zkauth/zkauth-core/internal/logger"
	"github.com/zkauth/zkauth-core/storage"
	"github.com/zkauth/zkauth-core/storage/memory"
	"github.com/zkauth/zkauth-core/storage/postgres"
	zkauthsolana "github.com/zkauth/zkauth-core/storage/solana"
)

// loadAuthCore builds an AuthCore from the configured chains: a postgres
// backend when a chain carries a connection string, a solana backend for
// the "solana" tag, and an in-memory backend as the fallback for anything
// else (letting zkauthctl run with zero external setup by default).
func loadAuthCore(ctx context.Context) (*authcore.AuthCore, error) {
	cfg, err := config.Load(config.LoaderOptions{ConfigDir: configDirOrDefault(), SkipValidation: true})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// Validation runs only when chains are configured, so that an empty
	// configuration reaches the in-memory fallback below.
	if len(cfg.Chains) > 0 {
		for _, issue := range config.ValidateConfiguration(cfg) {
			if issue.Level == "error" {
				return nil, fmt.Errorf("load config: configuration validation failed: %s - %s", issue.Field, issue.Message)
			}
		}
	}

	registry := storage.NewRegistry()

	for tag, chain := range cfg.Chains {
		backend, err := buildBackend(ctx, storage.Tag(tag), chain)
		if err != nil {
			return nil, fmt.Errorf("build backend %q: %w", tag, err)
		}
		if err := registry.Register(backend); err != nil {
			return nil, fmt.Errorf("register backend %q: %w", tag, err)
		}
	}

	if registry.Len() == 0 {
		for _, tag := range []storage.Tag{storage.Zcash, storage.Starknet, storage.Solana} {
			_ = registry.Register(memory.New(tag))
		}
	}

	return authcore.New(authcore.Config{
		Backends:    registry,
		Threshold:   cfg.Threshold,
		TotalShares: cfg.TotalShares,
		Logger:      logger.GetDefaultLogger(),
	})
}

func buildBackend(ctx context.Context, tag storage.Tag, chain *config.ChainConfig) (storage.Backend, error) {
	if tag == storage.Solana {
		programID := solana.PublicKey{}
		return zkauthsolana.New(programID, chain.RPCURL), nil
	}

	if chain.ConnectionString != "" {
		return postgres.New(ctx, tag, chain.ConnectionString)
	}

	return memory.New(tag), nil
}

func configDirOrDefault() string {
	if configPath != "" {
		return configPath
	}
	return "config"
}
