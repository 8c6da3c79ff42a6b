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

// Package storage defines the StorageBackend capability every share store
// must satisfy, and a tag-keyed registry AuthCore consults in the stable
// zcash/starknet/solana ordering the orchestration layer depends on.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	zkautherrors "github.com/zkauth/zkauth-core/errors"
	"github.com/zkauth/zkauth-core/sharing"
)

// Tag identifies a concrete backend implementation.
type Tag string

const (
	Zcash    Tag = "zcash"
	Starknet Tag = "starknet"
	Solana   Tag = "solana"
)

// stableOrder is the fixed ordering AuthCore uses to assign shares to
// backends and to poll them during login.
var stableOrder = []Tag{Zcash, Starknet, Solana}

// Backend is the capability every storage implementation exposes: put a
// share, fetch it back, and check for its presence without returning
// content.
type Backend interface {
	// Tag identifies this backend in the stable ordering.
	Tag() Tag
	// Put durably associates share with userID. Idempotent under the same
	// share. Fails with BackendUnavailable on a transient store error.
	Put(ctx context.Context, userID string, share sharing.EncryptedShare) (receipt string, err error)
	// Get returns the share previously associated with userID, or
	// (EncryptedShare{}, false, nil) if absent.
	Get(ctx context.Context, userID string) (share sharing.EncryptedShare, found bool, err error)
	// Has is a presence check; it must agree with Get's found return.
	Has(ctx context.Context, userID string) (bool, error)
}

// Registry holds the set of enabled backends, keyed by tag.
type Registry struct {
	mu       sync.RWMutex
	backends map[Tag]Backend
}

// NewRegistry creates an empty backend registry.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[Tag]Backend)}
}

// Register adds a backend under its own tag. Fails with AlreadyRegistered
// if a backend is already registered under that tag.
func (r *Registry) Register(b Backend) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tag := b.Tag()
	if _, exists := r.backends[tag]; exists {
		return zkautherrors.New(zkautherrors.AlreadyRegistered, fmt.Sprintf("backend %q already registered", tag))
	}
	r.backends[tag] = b
	return nil
}

// Get returns the backend registered under tag.
func (r *Registry) Get(tag Tag) (Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, exists := r.backends[tag]
	if !exists {
		return nil, zkautherrors.New(zkautherrors.NotRegistered, fmt.Sprintf("no backend registered for %q", tag))
	}
	return b, nil
}

// Enabled returns the registered backends in the library's stable
// zcash/starknet/solana ordering. Backends registered under tags outside
// that fixed set are appended afterward in lexicographic order, so the
// registry never silently drops an otherwise-valid backend.
func (r *Registry) Enabled() []Backend {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Backend, 0, len(r.backends))
	seen := make(map[Tag]bool, len(r.backends))

	for _, tag := range stableOrder {
		if b, ok := r.backends[tag]; ok {
			out = append(out, b)
			seen[tag] = true
		}
	}

	var rest []Tag
	for tag := range r.backends {
		if !seen[tag] {
			rest = append(rest, tag)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	for _, tag := range rest {
		out = append(out, r.backends[tag])
	}

	return out
}

// Len reports the number of registered backends.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.backends)
}
