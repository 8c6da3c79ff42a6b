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

// Package memory is the reference StorageBackend implementation: an
// in-memory map keyed by the "<tag>:<userId>:share" composite layout the
// spec names as the reference persisted-state shape.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/zkauth/zkauth-core/sharing"
	"github.com/zkauth/zkauth-core/storage"
)

// Backend is an in-memory StorageBackend. It is the reference
// implementation of the storage contract, not a production persistence
// layer.
type Backend struct {
	tag storage.Tag

	mu      sync.RWMutex
	records map[string]sharing.EncryptedShare
}

// New creates an in-memory backend registered under tag.
func New(tag storage.Tag) *Backend {
	return &Backend{tag: tag, records: make(map[string]sharing.EncryptedShare)}
}

func (b *Backend) key(userID string) string {
	return fmt.Sprintf("%s:%s:share", b.tag, userID)
}

// Tag implements storage.Backend.
func (b *Backend) Tag() storage.Tag {
	return b.tag
}

// Put implements storage.Backend.
func (b *Backend) Put(_ context.Context, userID string, share sharing.EncryptedShare) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.records[b.key(userID)] = share

	receipt := make([]byte, 8)
	_, _ = rand.Read(receipt)
	return "mem-" + hex.EncodeToString(receipt), nil
}

// Get implements storage.Backend.
func (b *Backend) Get(_ context.Context, userID string) (sharing.EncryptedShare, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	share, ok := b.records[b.key(userID)]
	return share, ok, nil
}

// Has implements storage.Backend.
func (b *Backend) Has(_ context.Context, userID string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, ok := b.records[b.key(userID)]
	return ok, nil
}

// Delete removes a stored share, simulating a backend outage or data loss
// for tests exercising AuthCore's partial-failure semantics. Not part of
// the StorageBackend capability.
func (b *Backend) Delete(userID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.records, b.key(userID))
}
