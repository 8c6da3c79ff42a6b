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

// Package solana is the StorageBackend for the "solana" tag. It derives a
// deterministic, PDA-shaped account key for each user and base58-encodes
// receipts the way an on-chain program address would be presented. Shares
// are held in an in-process map. When an rpc.Client is configured, Put also
// fetches a recent blockhash and logs the share's receipt at debug level; no
// memo transaction is built or submitted, and a failure there never fails
// Put.
package solana

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/mr-tron/base58"

	zkautherrors "github.com/zkauth/zkauth-core/errors"
	"github.com/zkauth/zkauth-core/internal/logger"
	"github.com/zkauth/zkauth-core/sharing"
	"github.com/zkauth/zkauth-core/storage"
)

// programSeed namespaces the PDA derivation so share accounts never collide
// with another program's address space.
var programSeed = []byte("zkauth-share")

// Backend implements storage.Backend for the solana tag.
type Backend struct {
	programID solana.PublicKey
	client    *rpc.Client // optional; nil disables the best-effort memo

	mu      sync.RWMutex
	records map[string]sharing.EncryptedShare // keyed by base58 PDA
}

// New creates a solana backend. programID is the (illustrative) program
// address PDAs are derived against. If rpcURL is non-empty, an rpc.Client
// is attached for the best-effort blockhash fetch and receipt log in Put.
func New(programID solana.PublicKey, rpcURL string) *Backend {
	var client *rpc.Client
	if rpcURL != "" {
		client = rpc.New(rpcURL)
	}
	return &Backend{
		programID: programID,
		client:    client,
		records:   make(map[string]sharing.EncryptedShare),
	}
}

// Tag implements storage.Backend.
func (b *Backend) Tag() storage.Tag {
	return storage.Solana
}

// accountKey derives the deterministic PDA-shaped account key for userID.
func (b *Backend) accountKey(userID string) (solana.PublicKey, error) {
	pda, _, err := solana.FindProgramAddress(
		[][]byte{programSeed, []byte(userID)},
		b.programID,
	)
	if err != nil {
		return solana.PublicKey{}, zkautherrors.Wrap(zkautherrors.BackendUnavailable, "failed to derive share account", err)
	}
	return pda, nil
}

// Put implements storage.Backend.
func (b *Backend) Put(ctx context.Context, userID string, share sharing.EncryptedShare) (string, error) {
	pda, err := b.accountKey(userID)
	if err != nil {
		return "", err
	}
	key := pda.String()

	b.mu.Lock()
	b.records[key] = share
	b.mu.Unlock()

	receipt := base58.Encode(pda.Bytes())

	if b.client != nil {
		b.submitMemo(ctx, receipt, share)
	}

	return receipt, nil
}

// Get implements storage.Backend.
func (b *Backend) Get(_ context.Context, userID string) (sharing.EncryptedShare, bool, error) {
	pda, err := b.accountKey(userID)
	if err != nil {
		return sharing.EncryptedShare{}, false, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	share, ok := b.records[pda.String()]
	return share, ok, nil
}

// Has implements storage.Backend.
func (b *Backend) Has(_ context.Context, userID string) (bool, error) {
	pda, err := b.accountKey(userID)
	if err != nil {
		return false, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.records[pda.String()]
	return ok, nil
}

// submitMemo fetches a blockhash and logs the would-be memo transaction
// recording the share's tag and receipt; it never fails Put, since the
// memo is an audit convenience, not part of the storage contract.
func (b *Backend) submitMemo(ctx context.Context, receipt string, share sharing.EncryptedShare) {
	log := logger.GetDefaultLogger()

	_, err := b.client.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		log.Warn("solana backend: failed to fetch blockhash for memo", logger.Error(err))
		return
	}

	log.Debug("solana backend: recorded share receipt",
		logger.String("receipt", receipt),
		logger.BackendTag(share.Chain),
		logger.ShareIndex(share.ShareIndex),
	)
}
