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

package sessiontoken

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	zkautherrors "github.com/zkauth/zkauth-core/errors"
)

func TestCreateVerifyRoundTrip(t *testing.T) {
	seed := make([]byte, 32)
	sk, _, err := KeyPair(seed)
	require.NoError(t, err)

	payload := Payload{ZkID: "zkauth:abc123", Email: "a@example.com"}
	encoded, err := Create(payload, sk, time.Hour)
	require.NoError(t, err)

	got, err := Verify(encoded)
	require.NoError(t, err)
	assert.Equal(t, payload.ZkID, got.ZkID)
	assert.Equal(t, payload.Email, got.Email)
	assert.Greater(t, got.Exp, got.Iat)
}

func TestTokenExpires(t *testing.T) {
	seed := make([]byte, 32)
	sk, _, err := KeyPair(seed)
	require.NoError(t, err)

	payload := Payload{ZkID: "zkauth:abc123", Email: "a@example.com"}
	encoded, err := Create(payload, sk, time.Second)
	require.NoError(t, err)

	time.Sleep(2 * time.Second)

	_, err = Verify(encoded)
	require.Error(t, err)
	assert.True(t, zkautherrors.Is(err, zkautherrors.SessionExpired))
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	seed := make([]byte, 32)
	sk, _, err := KeyPair(seed)
	require.NoError(t, err)

	payload := Payload{ZkID: "zkauth:abc123", Email: "a@example.com"}
	encoded, err := Create(payload, sk, time.Hour)
	require.NoError(t, err)

	tampered := strings.Replace(encoded, encoded[:4], "AAAA", 1)
	_, err = Verify(tampered)
	require.Error(t, err)
}

func TestKeyPairRejectsWrongSeedLength(t *testing.T) {
	_, _, err := KeyPair(make([]byte, 16))
	require.Error(t, err)
	assert.True(t, zkautherrors.Is(err, zkautherrors.InvalidInput))
}
