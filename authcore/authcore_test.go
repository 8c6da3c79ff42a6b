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

package authcore

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	zkautherrors "github.com/zkauth/zkauth-core/errors"
	"github.com/zkauth/zkauth-core/masterkey"
	"github.com/zkauth/zkauth-core/storage"
	"github.com/zkauth/zkauth-core/storage/memory"
)

func newTestCore(t *testing.T) (*AuthCore, map[storage.Tag]*memory.Backend) {
	t.Helper()

	reg := storage.NewRegistry()
	backends := map[storage.Tag]*memory.Backend{
		storage.Zcash:    memory.New(storage.Zcash),
		storage.Starknet: memory.New(storage.Starknet),
		storage.Solana:   memory.New(storage.Solana),
	}
	for _, tag := range []storage.Tag{storage.Zcash, storage.Starknet, storage.Solana} {
		require.NoError(t, reg.Register(backends[tag]))
	}

	core, err := New(Config{Backends: reg, Threshold: 2, TotalShares: 3})
	require.NoError(t, err)

	return core, backends
}

var testPK = strings.Repeat("11", 32)

func TestRegisterAndLoginHappyPath(t *testing.T) {
	ctx := context.Background()
	core, _ := newTestCore(t)

	reg, err := core.Register(ctx, testPK)
	require.NoError(t, err)
	assert.True(t, reg.Success)
	assert.Len(t, reg.Shares, 3)
	for i, s := range reg.Shares {
		assert.Equal(t, i+1, s.ShareIndex)
	}

	expectedUID, err := masterkey.GenerateUserID(testPK)
	require.NoError(t, err)
	assert.Equal(t, expectedUID, reg.UserID)
	assert.True(t, strings.HasPrefix(reg.UserID, "zkauth:"))

	login, err := core.Login(ctx, testPK)
	require.NoError(t, err)
	assert.True(t, login.Success)
	assert.GreaterOrEqual(t, login.SharesUsed, 2)
	assert.LessOrEqual(t, login.SharesUsed, 3)
	assert.Equal(t, reg.MasterKeyHash, masterkey.Hash(login.MasterKey))

	sess := core.CreateSession(login, 0)
	r, err := sess.Encrypt([]byte("payload"))
	require.NoError(t, err)
	out, err := sess.Decrypt(r)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), out)
}

func TestRegisterTwiceFails(t *testing.T) {
	ctx := context.Background()
	core, _ := newTestCore(t)

	_, err := core.Register(ctx, testPK)
	require.NoError(t, err)

	_, err = core.Register(ctx, testPK)
	require.Error(t, err)
	assert.True(t, zkautherrors.Is(err, zkautherrors.AlreadyRegistered))
}

func TestLoginUnregisteredFails(t *testing.T) {
	ctx := context.Background()
	core, _ := newTestCore(t)

	_, err := core.Login(ctx, testPK)
	require.Error(t, err)
	assert.True(t, zkautherrors.Is(err, zkautherrors.NotRegistered))
}

func TestLoginToleratesOneMissingBackend(t *testing.T) {
	ctx := context.Background()
	core, backends := newTestCore(t)

	reg, err := core.Register(ctx, testPK)
	require.NoError(t, err)

	backends[storage.Starknet].Delete(reg.UserID)

	login, err := core.Login(ctx, testPK)
	require.NoError(t, err)
	assert.Equal(t, 2, login.SharesUsed)
}

func TestLoginFailsWithInsufficientShares(t *testing.T) {
	ctx := context.Background()
	core, backends := newTestCore(t)

	reg, err := core.Register(ctx, testPK)
	require.NoError(t, err)

	backends[storage.Starknet].Delete(reg.UserID)
	backends[storage.Solana].Delete(reg.UserID)

	_, err = core.Login(ctx, testPK)
	require.Error(t, err)
	assert.True(t, zkautherrors.Is(err, zkautherrors.InsufficientShares))
}

func TestTamperedShareIsSkippedNotMisused(t *testing.T) {
	ctx := context.Background()
	core, backends := newTestCore(t)

	reg, err := core.Register(ctx, testPK)
	require.NoError(t, err)

	share, found, err := backends[storage.Zcash].Get(ctx, reg.UserID)
	require.NoError(t, err)
	require.True(t, found)
	share.EncryptedData = "00" + share.EncryptedData[2:]
	_, err = backends[storage.Zcash].Put(ctx, reg.UserID, share)
	require.NoError(t, err)

	login, err := core.Login(ctx, testPK)
	if err != nil {
		assert.True(t, zkautherrors.Is(err, zkautherrors.InsufficientShares))
		return
	}
	assert.Equal(t, reg.MasterKeyHash, masterkey.Hash(login.MasterKey))
}

func TestIsRegisteredHonorsThreshold(t *testing.T) {
	ctx := context.Background()
	core, backends := newTestCore(t)

	reg, err := core.Register(ctx, testPK)
	require.NoError(t, err)

	backends[storage.Zcash].Delete(reg.UserID)
	backends[storage.Starknet].Delete(reg.UserID)

	registered, err := core.IsRegistered(ctx, reg.UserID)
	require.NoError(t, err)
	assert.False(t, registered)
}

func TestRotateSharesIssuesNewMasterKey(t *testing.T) {
	ctx := context.Background()
	core, _ := newTestCore(t)

	reg, err := core.Register(ctx, testPK)
	require.NoError(t, err)

	rotated, err := core.RotateShares(ctx, testPK)
	require.NoError(t, err)
	assert.True(t, rotated.Success)
	assert.NotEqual(t, reg.MasterKeyHash, rotated.MasterKeyHash)

	login, err := core.Login(ctx, testPK)
	require.NoError(t, err)
	assert.Equal(t, rotated.MasterKeyHash, masterkey.Hash(login.MasterKey))
}

func TestRotateSharesRequiresExistingRegistration(t *testing.T) {
	ctx := context.Background()
	core, _ := newTestCore(t)

	_, err := core.RotateShares(ctx, testPK)
	require.Error(t, err)
	assert.True(t, zkautherrors.Is(err, zkautherrors.NotRegistered))
}

func TestNewRejectsTooFewBackends(t *testing.T) {
	reg := storage.NewRegistry()
	require.NoError(t, reg.Register(memory.New(storage.Zcash)))

	_, err := New(Config{Backends: reg, Threshold: 2, TotalShares: 3})
	require.Error(t, err)
	assert.True(t, zkautherrors.Is(err, zkautherrors.ConfigError))
}
