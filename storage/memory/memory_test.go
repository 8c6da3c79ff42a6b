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

package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkauth/zkauth-core/sharing"
	"github.com/zkauth/zkauth-core/storage"
)

func TestPutGetHasRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := New(storage.Tag("zcash"))

	ok, err := b.Has(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok)

	share := sharing.EncryptedShare{ShareIndex: 1, EncryptedData: "deadbeef", IV: "iv", Tag: "tag", Chain: "zcash"}
	receipt, err := b.Put(ctx, "user-1", share)
	require.NoError(t, err)
	assert.NotEmpty(t, receipt)

	ok, err = b.Has(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, ok)

	got, found, err := b.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, share, got)
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	b := New(storage.Tag("zcash"))

	_, found, err := b.Get(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeleteSimulatesBackendLoss(t *testing.T) {
	ctx := context.Background()
	b := New(storage.Tag("zcash"))

	share := sharing.EncryptedShare{ShareIndex: 1, EncryptedData: "deadbeef", IV: "iv", Tag: "tag"}
	_, err := b.Put(ctx, "user-1", share)
	require.NoError(t, err)

	b.Delete("user-1")

	ok, err := b.Has(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeysAreScopedByTag(t *testing.T) {
	ctx := context.Background()
	zcash := New(storage.Tag("zcash"))
	starknet := New(storage.Tag("starknet"))

	share := sharing.EncryptedShare{ShareIndex: 1, EncryptedData: "deadbeef", IV: "iv", Tag: "tag"}
	_, err := zcash.Put(ctx, "user-1", share)
	require.NoError(t, err)

	ok, err := starknet.Has(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTag(t *testing.T) {
	b := New(storage.Tag("zcash"))
	assert.Equal(t, storage.Tag("zcash"), b.Tag())
}
